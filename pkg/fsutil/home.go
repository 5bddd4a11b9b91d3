package fsutil

import (
	"fmt"
	"os"
	"strings"

	"src.kl.sh/pkg/env"
)

// GetHome finds the home directory of a specified user. When given an empty
// string, it finds the home directory of the current user.
func GetHome(uname string) (string, error) {
	if uname != "" {
		return "", fmt.Errorf("can't resolve ~%s: looking up other users is not supported", uname)
	}
	home := os.Getenv(env.HOME)
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("can't resolve ~: %w", err)
		}
	}
	return strings.TrimRight(home, "/"), nil
}
