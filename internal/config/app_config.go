package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/dirsnap/internal/utils"
)

const (
	errorWorkingDirectoryFormat    = "determine working directory: %w"
	errorResolveConfigPathFormat   = "resolve configuration path %s: %w"
	errorStatConfigurationFormat   = "stat configuration %s: %w"
	errorConfigurationIsDirFormat  = "configuration path %s is a directory"
	errorReadConfigurationFormat   = "read configuration from %s: %w"
	errorDecodeConfigurationFormat = "decode configuration from %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string

	// HomeDirectory overrides the user home directory used for the global file.
	HomeDirectory string
}

// ApplicationConfiguration holds rendering defaults read from configuration files.
// Nil pointers and empty values mean "not configured".
type ApplicationConfiguration struct {
	Limit          *int               `mapstructure:"limit"`
	Depth          *int               `mapstructure:"depth"`
	Exclude        []string           `mapstructure:"exclude"`
	Include        []string           `mapstructure:"include"`
	Binary         *bool              `mapstructure:"binary"`
	Tree           *bool              `mapstructure:"tree"`
	Recent         *int               `mapstructure:"recent"`
	FileExtensions []string           `mapstructure:"file_extensions"`
	StripComments  *bool              `mapstructure:"strip_comments"`
	StripMode      string             `mapstructure:"strip_mode"`
	SniffBinary    *bool              `mapstructure:"sniff_binary"`
	UseGitignore   *bool              `mapstructure:"use_gitignore"`
	UseIgnoreFile  *bool              `mapstructure:"use_ignore"`
	Summary        *bool              `mapstructure:"summary"`
	Copy           *bool              `mapstructure:"copy"`
	Output         string             `mapstructure:"output"`
	Tokens         TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads the global file and then the local file,
// letting local values override global ones field by field.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	if len(merged.Exclude) > 0 {
		merged.Exclude = utils.DeduplicatePatterns(merged.Exclude)
	}
	if len(merged.Include) > 0 {
		merged.Include = utils.DeduplicatePatterns(merged.Include)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolveConfigPathFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfigurationFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigurationIsDirFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigurationFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigurationFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// Lists in override replace the receiver's lists when non-empty.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Limit = overrideInt(result.Limit, override.Limit)
	result.Depth = overrideInt(result.Depth, override.Depth)
	result.Recent = overrideInt(result.Recent, override.Recent)
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if len(override.Include) > 0 {
		result.Include = append([]string{}, override.Include...)
	}
	if len(override.FileExtensions) > 0 {
		result.FileExtensions = append([]string{}, override.FileExtensions...)
	}
	result.Binary = overrideBool(result.Binary, override.Binary)
	result.Tree = overrideBool(result.Tree, override.Tree)
	result.StripComments = overrideBool(result.StripComments, override.StripComments)
	if override.StripMode != "" {
		result.StripMode = override.StripMode
	}
	result.SniffBinary = overrideBool(result.SniffBinary, override.SniffBinary)
	result.UseGitignore = overrideBool(result.UseGitignore, override.UseGitignore)
	result.UseIgnoreFile = overrideBool(result.UseIgnoreFile, override.UseIgnoreFile)
	result.Summary = overrideBool(result.Summary, override.Summary)
	result.Copy = overrideBool(result.Copy, override.Copy)
	if override.Output != "" {
		result.Output = override.Output
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	result.Enabled = overrideBool(result.Enabled, override.Enabled)
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func overrideBool(current *bool, override *bool) *bool {
	if override == nil {
		return current
	}
	return cloneBool(override)
}

func overrideInt(current *int, override *int) *int {
	if override == nil {
		return current
	}
	return cloneInt(override)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
