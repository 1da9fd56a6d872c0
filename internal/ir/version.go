package ir

// Version constants for IR schema and checker.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// CheckerVersion is the dimcheck checker version, recorded with each run.
	CheckerVersion = "0.1.0"
)
