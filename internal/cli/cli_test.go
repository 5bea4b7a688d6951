package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	mainFileName    = "main.go"
	mainFileContent = "package main"
	mainFileBlock   = "-- main.go\n```go\npackage main\n```\n"
)

type fakeClipboard struct {
	available bool
	copied    []string
}

func (clipboard *fakeClipboard) Copy(text string) error {
	clipboard.copied = append(clipboard.copied, text)
	return nil
}

func (clipboard *fakeClipboard) Available() bool {
	return clipboard.available
}

// commandEnvironment isolates a run from the user's configuration files.
type commandEnvironment struct {
	projectDirectory string
	workingDirectory string
	homeDirectory    string
	clipboard        *fakeClipboard
}

func newCommandEnvironment(t *testing.T) commandEnvironment {
	t.Helper()
	environment := commandEnvironment{
		projectDirectory: t.TempDir(),
		workingDirectory: t.TempDir(),
		homeDirectory:    t.TempDir(),
		clipboard:        &fakeClipboard{available: true},
	}
	writeFile(t, filepath.Join(environment.projectDirectory, mainFileName), mainFileContent)
	writeFile(t, filepath.Join(environment.projectDirectory, "README.md"), "# readme")
	return environment
}

func (environment commandEnvironment) execute(arguments ...string) (string, string, error) {
	command := createRootCommand(Dependencies{
		Clipboard:        environment.clipboard,
		WorkingDirectory: environment.workingDirectory,
		HomeDirectory:    environment.homeDirectory,
	})
	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	command.SetOut(&standardOutput)
	command.SetErr(&standardError)
	command.SetArgs(normalizeCommandArguments(command, arguments))
	executeError := command.Execute()
	return standardOutput.String(), standardError.String(), executeError
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRootCommandRendering(t *testing.T) {
	testCases := []struct {
		name           string
		files          map[string]string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "renders_directory_to_console",
			arguments:      []string{"--summary=false"},
			expectedOutput: mainFileBlock + "\n",
		},
		{
			name:           "wraps_report_with_prepend_and_append",
			arguments:      []string{"-p", "HEAD", "-a", "TAIL", "--summary", "false"},
			expectedOutput: "HEAD\n" + mainFileBlock + "\nTAIL\n",
		},
		{
			name:           "tree_only",
			files:          map[string]string{"pkg/util.go": "package pkg"},
			arguments:      []string{"-t", "--summary=false"},
			expectedOutput: "-- main.go\n/pkg:\n  -- util.go\n\n",
		},
		{
			name:           "depth_limit",
			files:          map[string]string{"pkg/util.go": "package pkg"},
			arguments:      []string{"--tree", "-d", "1", "--summary=false"},
			expectedOutput: "-- main.go\n/pkg:\n\n",
		},
		{
			name:           "content_limit",
			arguments:      []string{"-m", "4", "--summary=false"},
			expectedOutput: "-- main.go\n```go\npack...[more content...]\n```\n\n",
		},
		{
			name:           "multiple_exclusions",
			files:          map[string]string{"notes.txt": "notes", "todo.txt": "todo"},
			arguments:      []string{"--summary=false", "-e", "notes.txt", "todo.txt"},
			expectedOutput: mainFileBlock + "\n",
		},
		{
			name:           "include_overrides_default_exclusion",
			arguments:      []string{"--summary=false", "--tree", "-i", "README.md"},
			expectedOutput: "-- README.md\n-- main.go\n\n",
		},
		{
			name:           "extension_allowlist",
			files:          map[string]string{"notes.txt": "notes"},
			arguments:      []string{"--summary=false", "-f", ".txt"},
			expectedOutput: "-- notes.txt\n```\nnotes\n```\n\n",
		},
		{
			name:           "strips_comments",
			files:          map[string]string{mainFileName: "// entry point\npackage main"},
			arguments:      []string{"--summary=false", "-s"},
			expectedOutput: "-- main.go\n```go\n\npackage main\n```\n\n",
		},
		{
			name:           "binary_placeholder",
			files:          map[string]string{"logo.png": "\x89PNG"},
			arguments:      []string{"--summary=false", "-b"},
			expectedOutput: "-- logo.png (binary file)\n" + mainFileBlock + "\n",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			environment := newCommandEnvironment(t)
			for relativePath, content := range testCase.files {
				writeFile(t, filepath.Join(environment.projectDirectory, relativePath), content)
			}
			arguments := append([]string{environment.projectDirectory}, testCase.arguments...)
			standardOutput, _, executeError := environment.execute(arguments...)
			if executeError != nil {
				t.Fatalf("unexpected error: %v", executeError)
			}
			if diff := cmp.Diff(testCase.expectedOutput, standardOutput); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRootCommandWritesSummaryToStandardError(t *testing.T) {
	environment := newCommandEnvironment(t)
	_, standardError, executeError := environment.execute(environment.projectDirectory)
	if executeError != nil {
		t.Fatalf("unexpected error: %v", executeError)
	}
	expectedSummary := "Summary: 1 file, 12 B\n"
	if standardError != expectedSummary {
		t.Fatalf("expected summary %q, got %q", expectedSummary, standardError)
	}
}

func TestRootCommandPathNotFound(t *testing.T) {
	environment := newCommandEnvironment(t)
	missingPath := filepath.Join(environment.projectDirectory, "missing")
	standardOutput, _, executeError := environment.execute(missingPath)
	if !errors.Is(executeError, types.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", executeError)
	}
	expectedMessage := "Path '" + missingPath + "' not found."
	if executeError.Error() != expectedMessage {
		t.Fatalf("expected message %q, got %q", expectedMessage, executeError.Error())
	}
	if standardOutput != "" {
		t.Fatalf("expected no output, got %q", standardOutput)
	}
}

func TestRootCommandOutputSinks(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		environment := newCommandEnvironment(t)
		outputPath := filepath.Join(environment.workingDirectory, "snapshot.txt")
		standardOutput, _, executeError := environment.execute(environment.projectDirectory, "-o", outputPath, "-p", "HEAD", "--summary=false")
		if executeError != nil {
			t.Fatalf("unexpected error: %v", executeError)
		}
		if standardOutput != "" {
			t.Fatalf("expected no console output, got %q", standardOutput)
		}
		written, readError := os.ReadFile(outputPath)
		if readError != nil {
			t.Fatalf("read output: %v", readError)
		}
		if diff := cmp.Diff("HEAD\n"+mainFileBlock, string(written)); diff != "" {
			t.Fatalf("file mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("clipboard", func(t *testing.T) {
		environment := newCommandEnvironment(t)
		standardOutput, _, executeError := environment.execute(environment.projectDirectory, "-c", "--summary=false")
		if executeError != nil {
			t.Fatalf("unexpected error: %v", executeError)
		}
		if standardOutput != "" {
			t.Fatalf("expected no console output, got %q", standardOutput)
		}
		if diff := cmp.Diff([]string{mainFileBlock}, environment.clipboard.copied); diff != "" {
			t.Fatalf("clipboard mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("clipboard_unavailable", func(t *testing.T) {
		environment := newCommandEnvironment(t)
		environment.clipboard.available = false
		_, _, executeError := environment.execute(environment.projectDirectory, "--copy")
		if !errors.Is(executeError, errClipboardUnavailable) {
			t.Fatalf("expected clipboard error, got %v", executeError)
		}
	})

	t.Run("file_and_clipboard", func(t *testing.T) {
		environment := newCommandEnvironment(t)
		outputPath := filepath.Join(environment.workingDirectory, "snapshot.txt")
		_, _, executeError := environment.execute(environment.projectDirectory, "-o", outputPath, "-c", "--summary=false")
		if executeError != nil {
			t.Fatalf("unexpected error: %v", executeError)
		}
		if _, statError := os.Stat(outputPath); statError != nil {
			t.Fatalf("expected output file: %v", statError)
		}
		if len(environment.clipboard.copied) != 1 {
			t.Fatalf("expected one clipboard copy, got %d", len(environment.clipboard.copied))
		}
	})
}

func TestRootCommandConfigurationPrecedence(t *testing.T) {
	environment := newCommandEnvironment(t)
	writeFile(t, filepath.Join(environment.projectDirectory, "other.txt"), "other")
	writeFile(t, filepath.Join(environment.homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName),
		"limit: 3\nsummary: false\nexclude:\n  - other.txt\n")
	writeFile(t, filepath.Join(environment.workingDirectory, utils.LocalConfigFileName), "limit: 5\n")

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "local_overrides_global",
			expectedOutput: "-- main.go\n```go\npacka...[more content...]\n```\n\n",
		},
		{
			name:           "flag_overrides_configuration",
			arguments:      []string{"-m", "2"},
			expectedOutput: "-- main.go\n```go\npa...[more content...]\n```\n\n",
		},
		{
			name:           "flag_overrides_configured_exclusions",
			arguments:      []string{"-m", "0", "-e", "README.md"},
			expectedOutput: mainFileBlock + "-- other.txt\n```\nother\n```\n\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := append([]string{environment.projectDirectory}, testCase.arguments...)
			standardOutput, standardError, executeError := environment.execute(arguments...)
			if executeError != nil {
				t.Fatalf("unexpected error: %v", executeError)
			}
			if standardError != "" {
				t.Fatalf("expected configured summary=false, got %q", standardError)
			}
			if diff := cmp.Diff(testCase.expectedOutput, standardOutput); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRootCommandIgnoreFiles(t *testing.T) {
	environment := newCommandEnvironment(t)
	writeFile(t, filepath.Join(environment.projectDirectory, utils.GitIgnoreFileName), "*.log\n")
	writeFile(t, filepath.Join(environment.projectDirectory, "debug.log"), "trace")

	withoutIgnore, _, withoutError := environment.execute(environment.projectDirectory, "-t", "--summary=false")
	if withoutError != nil {
		t.Fatalf("unexpected error: %v", withoutError)
	}
	if !strings.Contains(withoutIgnore, "-- debug.log\n") {
		t.Fatalf("expected debug.log without --gitignore, got %q", withoutIgnore)
	}

	withIgnore, _, withError := environment.execute(environment.projectDirectory, "-t", "--gitignore", "--summary=false")
	if withError != nil {
		t.Fatalf("unexpected error: %v", withError)
	}
	if diff := cmp.Diff("-- main.go\n\n", withIgnore); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRootCommandRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "negative_limit", arguments: []string{"--limit=-1"}},
		{name: "negative_depth", arguments: []string{"--depth=-2"}},
		{name: "unknown_strip_mode", arguments: []string{"-s", "--strip-mode", "ast"}},
		{name: "too_many_paths", arguments: []string{"first", "second"}},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			environment := newCommandEnvironment(t)
			arguments := append([]string{environment.projectDirectory}, testCase.arguments...)
			standardOutput, _, executeError := environment.execute(arguments...)
			if executeError == nil {
				t.Fatalf("expected an error for %v", testCase.arguments)
			}
			if standardOutput != "" {
				t.Fatalf("expected no output, got %q", standardOutput)
			}
		})
	}
}

func TestRootCommandVersion(t *testing.T) {
	environment := newCommandEnvironment(t)
	standardOutput, _, executeError := environment.execute("--version")
	if executeError != nil {
		t.Fatalf("unexpected error: %v", executeError)
	}
	if !strings.HasPrefix(standardOutput, utils.ApplicationName+" version: ") {
		t.Fatalf("unexpected version output %q", standardOutput)
	}
}

func TestInitCommand(t *testing.T) {
	environment := newCommandEnvironment(t)

	standardOutput, _, executeError := environment.execute("init")
	if executeError != nil {
		t.Fatalf("unexpected error: %v", executeError)
	}
	localPath := filepath.Join(environment.workingDirectory, utils.LocalConfigFileName)
	if standardOutput != "Configuration written to "+localPath+"\n" {
		t.Fatalf("unexpected init output %q", standardOutput)
	}

	if _, _, repeatError := environment.execute("init"); repeatError == nil {
		t.Fatalf("expected an error when the configuration already exists")
	}
	if _, _, forceError := environment.execute("init", "--force"); forceError != nil {
		t.Fatalf("unexpected error with --force: %v", forceError)
	}

	if _, _, globalError := environment.execute("init", "--global"); globalError != nil {
		t.Fatalf("unexpected error with --global: %v", globalError)
	}
	globalPath := filepath.Join(environment.homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
	if _, statError := os.Stat(globalPath); statError != nil {
		t.Fatalf("expected global configuration at %s: %v", globalPath, statError)
	}
}
