package version

import (
	"fmt"
	"runtime/debug"
)

// version is overridden at build time with -ldflags "-X .../version.version=...".
var version = "main"

const shortCommitLen = 7

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Timestamp string `json:"timestamp"`
}

// Get reads the vcs stamp embedded by the go toolchain.
func Get() Info {
	info := Info{Version: version, Commit: "unknown", Timestamp: "unknown"}
	if info.Version == "" {
		info.Version = "main"
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > shortCommitLen {
				info.Commit = info.Commit[:shortCommitLen]
			}
		case "vcs.time":
			info.Timestamp = s.Value
		}
	}

	return info
}

func Version() string {
	return Get().Version
}

// UserAgent is sent with every LCD and price source request.
func UserAgent(binaryName string) string {
	info := Get()

	return fmt.Sprintf("%s/%s (%s)", binaryName, info.Version, info.Commit)
}
