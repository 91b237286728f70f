// Package version reports the build identity of the schooladmin binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set through ldflags by the release build; left at defaults for go install.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is one snapshot of the binary's build identity.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
}

// Get resolves the build identity, falling back to the module build info
// embedded by the toolchain when ldflags were not set.
func Get() Info {
	commit, date := Commit, Date
	if commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					commit = s.Value
				case "vcs.time":
					date = s.Value
				}
			}
		}
	}

	return Info{
		Version:   Version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the one-line form shown by the version command.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if commit == "" {
		commit = "unknown"
	}
	return fmt.Sprintf("schooladmin %s (%s) %s %s", i.Version, commit, i.GoVersion, i.Platform)
}
