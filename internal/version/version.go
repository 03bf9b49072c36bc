// Package version reports the build version of the settings tooling.
package version

import "regexp"

// Version is overridden at build time with
// -ldflags "-X github.com/eugenenazirov/lambda-settings/internal/version.Version=...".
var Version = "0.1.17"

var prereleasePattern = regexp.MustCompile(`-next(?:-major)?\.\d+`)

// Semantic strips release-train suffixes such as "-next.3" and "-next-major.12".
func Semantic() string {
	return Strip(Version)
}

// Strip applies the Semantic rules to an arbitrary version string.
func Strip(v string) string {
	return prereleasePattern.ReplaceAllString(v, "")
}
