package utils

import "runtime/debug"

const (
	unknownVersion      = "unknown"
	develVersion        = "(devel)"
	revisionSettingKey  = "vcs.revision"
	modifiedSettingKey  = "vcs.modified"
	revisionLength      = 12
	modifiedSuffix      = "-dirty"
	develRevisionPrefix = "devel-"
)

// Version is injected at link time with -ldflags "-X github.com/temirov/fuse/internal/utils.Version=...".
var Version = ""

// GetApplicationVersion reports the fuse version: the link-time Version, then
// the module version of a `go install`ed binary, then the VCS revision Go
// stamps into binaries built from a checkout.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersion
	}
	return VersionFromBuildInfo(buildInfo)
}

// VersionFromBuildInfo derives a version string from embedded build info.
func VersionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	if buildInfo == nil {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	revision := ""
	modified := false
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > revisionLength {
		revision = revision[:revisionLength]
	}
	if modified {
		revision += modifiedSuffix
	}
	return develRevisionPrefix + revision
}
