package ir

// Version constants for the manifest IR and the generator.
const (
	// IRVersion is the manifest IR schema version.
	IRVersion = "1"

	// GeneratorVersion is the jsonlogic generator version.
	GeneratorVersion = "0.1.0"
)
