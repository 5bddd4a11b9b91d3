// Package env keeps names of environment variables with special significance to
// kl.
package env

// Environment variables with special significance to kl.
const (
	HOME            = "HOME"
	KL_CONFIG       = "KL_CONFIG"
	KL_HISTORY_DB   = "KL_HISTORY_DB"
	XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
	XDG_STATE_HOME  = "XDG_STATE_HOME"
)
