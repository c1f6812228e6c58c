package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "refit"

	// ConfigFileName is the default config file name
	ConfigFileName = "refit.config.json"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "REFIT"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)
