// Package utils provides helper functions shared by the dirsnap packages.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	gitExecutableName  = "git"
)

// gitDescribeArgumentSets lists the git describe invocations tried in order.
var gitDescribeArgumentSets = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

// GetApplicationVersion returns the module version recorded in the build info,
// falling back to git describe when running from a source checkout.
func GetApplicationVersion() string {
	if buildInfo, available := debug.ReadBuildInfo(); available {
		moduleVersion := buildInfo.Main.Version
		if moduleVersion != "" && moduleVersion != developmentVersion {
			return moduleVersion
		}
	}

	repositoryRoot, lookupError := findRepositoryRoot(".")
	if lookupError != nil {
		return unknownVersion
	}
	for _, describeArguments := range gitDescribeArgumentSets {
		if description := describeRepository(repositoryRoot, describeArguments); description != "" {
			return description
		}
	}
	return unknownVersion
}

// describeRepository runs git in repositoryRoot and returns its trimmed output,
// or an empty string when the command fails.
func describeRepository(repositoryRoot string, describeArguments []string) string {
	// #nosec G204
	describeCommand := exec.Command(gitExecutableName, describeArguments...)
	describeCommand.Dir = repositoryRoot
	describeOutput, describeError := describeCommand.Output()
	if describeError != nil {
		return ""
	}
	return strings.TrimSpace(string(describeOutput))
}

// findRepositoryRoot walks upward from startDirectory to the first directory
// containing a GitDirectoryName directory.
func findRepositoryRoot(startDirectory string) (string, error) {
	absoluteStartDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf("resolve %s: %w", startDirectory, absoluteError)
	}
	for currentDirectory := absoluteStartDirectory; ; {
		gitInformation, statError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if statError == nil && gitInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf("%s directory not found in or above %s", GitDirectoryName, absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
