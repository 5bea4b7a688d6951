package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/temirov/dirsnap/internal/utils"
)

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []struct {
		name          string
		globalContent string
		localContent  string
		explicitPath  string
		explicitBody  string
		expected      ApplicationConfiguration
	}{
		{
			name:          "local_overrides_global",
			globalContent: "limit: 100\ndepth: 2\nsummary: false\nexclude:\n  - \"*.log\"\ntokens:\n  model: gpt-4\n",
			localContent:  "limit: 50\ntree: true\ntokens:\n  enabled: true\n",
			expected: ApplicationConfiguration{
				Limit:   intPointer(50),
				Depth:   intPointer(2),
				Tree:    boolPointer(true),
				Summary: boolPointer(false),
				Exclude: []string{"*.log"},
				Tokens:  TokenConfiguration{Enabled: boolPointer(true), Model: "gpt-4"},
			},
		},
		{
			name:         "explicit_path_replaces_local_file",
			localContent: "limit: 10\n",
			explicitPath: "custom.yaml",
			explicitBody: "strip_comments: true\nstrip_mode: syntax\nfile_extensions:\n  - .py\n",
			expected: ApplicationConfiguration{
				StripComments:  boolPointer(true),
				StripMode:      "syntax",
				FileExtensions: []string{".py"},
			},
		},
		{
			name:          "lists_from_local_replace_global_lists",
			globalContent: "include:\n  - README.md\n",
			localContent:  "include:\n  - LICENSE\n  - LICENSE\ncopy: true\noutput: out.txt\n",
			expected: ApplicationConfiguration{
				Include: []string{"LICENSE"},
				Copy:    boolPointer(true),
				Output:  "out.txt",
			},
		},
		{
			name:     "no_files",
			expected: ApplicationConfiguration{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			if testCase.globalContent != "" {
				configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
				if err := os.MkdirAll(configDir, 0o755); err != nil {
					t.Fatalf("create config dir: %v", err)
				}
				if err := os.WriteFile(filepath.Join(configDir, utils.ConfigFileName), []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				if err := os.WriteFile(filepath.Join(workingDir, utils.LocalConfigFileName), []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				if err := os.WriteFile(filepath.Join(workingDir, testCase.explicitPath), []byte(testCase.explicitBody), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
				HomeDirectory:    homeDir,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			if diff := cmp.Diff(testCase.expected, loadedConfig); diff != "" {
				t.Fatalf("unexpected configuration (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	workingDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(workingDir, utils.LocalConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir, HomeDirectory: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error when configuration path is a directory")
	}
}

func TestLoadApplicationConfigurationRejectsMalformedYAML(t *testing.T) {
	workingDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workingDir, utils.LocalConfigFileName), []byte("limit: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir, HomeDirectory: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for malformed configuration")
	}
}

func TestMergeKeepsUnsetFields(t *testing.T) {
	base := ApplicationConfiguration{Binary: boolPointer(true), StripMode: "pattern", Exclude: []string{"dist"}}
	merged := base.Merge(ApplicationConfiguration{Binary: boolPointer(false)})
	if merged.Binary == nil || *merged.Binary {
		t.Fatalf("expected binary override to apply")
	}
	if merged.StripMode != "pattern" {
		t.Fatalf("expected strip mode to be kept, got %q", merged.StripMode)
	}
	if diff := cmp.Diff([]string{"dist"}, merged.Exclude); diff != "" {
		t.Fatalf("unexpected excludes (-want +got):\n%s", diff)
	}
	*merged.Binary = true
	if *base.Binary != true {
		t.Fatalf("expected base configuration to remain unchanged")
	}
}
