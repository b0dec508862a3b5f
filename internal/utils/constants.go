package utils

// Configuration discovery.
const (
	// LocalConfigFileName is read from the working directory.
	LocalConfigFileName = ".solmap.yaml"
	// GlobalConfigDirectoryName lives in the user's home directory.
	GlobalConfigDirectoryName = ".solmap"
	// GlobalConfigFileName is read from GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// EnvironmentFileName is the optional dotenv file of the working directory.
	EnvironmentFileName = ".env"
	// EnvironmentPrefix prefixes every environment variable solmap reads.
	EnvironmentPrefix = "SOLMAP_"
)

// Messages reported by the entry point.
const (
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v"
	ApplicationExecutionFailedMessage       = "solmap failed"
)
