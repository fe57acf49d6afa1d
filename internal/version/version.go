package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/flowbaker/hubspot-executor/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	info := Info{
		Version:   resolveVersion(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.GitCommit == "" {
		info.GitCommit = vcsRevision()
	}

	return info
}

// String renders the one-line form printed by the version command.
func (i Info) String() string {
	s := "hubspot-executor " + i.Version

	if len(i.GitCommit) >= 7 {
		s += " (" + i.GitCommit[:7] + ")"
	}

	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}

	return fmt.Sprintf("%s %s %s", s, i.GoVersion, i.Platform)
}

func GetVersion() string {
	return resolveVersion()
}

func resolveVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	return "dev"
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}
