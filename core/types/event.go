package types

// Event represents a structured state change recorded by the ledger.
// Attributes are flat string pairs so downstream indexers can consume them
// without schema knowledge.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
