package version

import "github.com/fatih/color"

// Build metadata of the symbex CLI. The variables can be overridden at
// build time via -ldflags.

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = Colored(0, 1, 0, "dev")

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders major.minor.patch with each part in its own color and
// an optional pre-release suffix.
func Colored(major, minor, patch int, pre string) string {
	v := majorColor.Sprint(major) + "." + minorColor.Sprint(minor) + "." + patchColor.Sprint(patch)
	if pre != "" {
		v += "-" + pre
	}
	return v
}
