package ir

// Version constants for the document schema and engine.
const (
	// SchemaVersion is the composition document schema version.
	SchemaVersion = "1"

	// EngineVersion is the reel engine version.
	EngineVersion = "0.1.0"
)
