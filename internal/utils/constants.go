package utils

// Names of files and directories recognized across the project.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the global configuration file.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the name of the per-project configuration file.
	LocalConfigFileName = ".dirsnap.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding ConfigFileName.
	GlobalConfigDirectoryName = ".dirsnap"
)

// ApplicationName is used in version output and log messages.
const ApplicationName = "dirsnap"

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "initialize logger: %w"

// UnexpectedErrorMessageFormat is printed for any fault other than a missing root path.
const UnexpectedErrorMessageFormat = "An unexpected error occurred: %v"
