package version

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/NilFoundation/tokenctl/common"
	"github.com/NilFoundation/tokenctl/common/check"
)

// Set with -ldflags "-X github.com/NilFoundation/tokenctl/common/version.gitTag=..."
var (
	gitTag    string
	gitCommit string
)

const unknownVersion string = "<unknown>"

func BuildVersionString(appTitle string) string {
	ver := gitTag
	if ver == "" {
		ver = moduleVersion()
	}

	parts := strings.SplitN(ver, "-", 2)
	check.PanicIfNot(len(parts) > 0)
	ver = parts[0]

	versionMsg, err := common.ParseTemplate(versionTmpl, map[string]any{
		"Title":   appTitle,
		"Version": ver,
		"OS":      runtime.GOOS,
		"Arch":    runtime.GOARCH,
		"Go":      runtime.Version(),
		"Commit":  GetGitCommit(),
	})
	check.PanicIfErr(err)
	return versionMsg
}

func GetGitCommit() string {
	if gitCommit != "" {
		return gitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return unknownVersion
}

func moduleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return unknownVersion
}

var versionTmpl = `{{ .Title }}
 Version:	{{ .Version }}
 OS/Arch: 	{{ .OS }}/{{ .Arch }}
 Go:	{{ .Go }}
 Git commit:	{{ .Commit }}`
