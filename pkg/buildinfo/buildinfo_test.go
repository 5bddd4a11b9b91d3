package buildinfo

import (
	"fmt"
	"testing"

	. "src.kl.sh/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	info := Value()
	Test(t, Program,
		ThatKl("-version").WritesStdout(FullVersion()+"\n"),
		ThatKl("-version", "-json").WritesStdout(mustToJSON(FullVersion())+"\n"),

		ThatKl("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\nReproducible build: %v\n",
				info.Version, info.GoVersion, info.Reproducible)),
		ThatKl("-buildinfo", "-json").WritesStdout(mustToJSON(info)+"\n"),

		ThatKl().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestValue(t *testing.T) {
	if v := Value(); v.Version != Version+VersionSuffix {
		t.Errorf("Value().Version = %q, want %q", v.Version, Version+VersionSuffix)
	}
}
