// Package version carries the build metadata printed by `justrun version`.
//
// Release builds set the variables with -ldflags, for example:
//
//	go build -ldflags "-X github.com/grovetools/justrun/version.Version=v0.3.0 \
//	  -X github.com/grovetools/justrun/version.Commit=$(git rev-parse --short HEAD)" ./cmd/justrun
package version

import (
	"fmt"
	"runtime"
)

// Program is the name justrun reports itself as.
const Program = "justrun"

// These variables are populated by the Go linker during the build process.
var (
	Version   = "dev"
	Commit    = "none"
	Branch    = "unknown"
	BuildDate = "unknown"
)

// Info holds all the versioning information.
type Info struct {
	Program   string `json:"program"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// GetInfo returns the metadata of the running binary.
func GetInfo() Info {
	return Info{
		Program:   Program,
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short renders "justrun v0.3.0 (abc1234)", leaving out an unknown commit.
func (i Info) Short() string {
	if i.Commit == "" || i.Commit == "none" {
		return fmt.Sprintf("%s %s", i.Program, i.Version)
	}
	return fmt.Sprintf("%s %s (%s)", i.Program, i.Version, i.Commit)
}

// String returns a formatted string of the version information.
func (i Info) String() string {
	return fmt.Sprintf(
		"Version:\t%s\nCommit:\t\t%s\nBranch:\t\t%s\nBuild Date:\t%s\nGo Version:\t%s\nCompiler:\t%s\nPlatform:\t%s",
		i.Version, i.Commit, i.Branch, i.BuildDate, i.GoVersion, i.Compiler, i.Platform,
	)
}
