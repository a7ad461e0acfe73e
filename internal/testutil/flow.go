package testutil

// FixedTraceIDGenerator returns the same trace id every time.
//
// CLI and API responses carry a trace id; pinning it lets golden files
// compare byte-identical output.
//
// Thread-safety: FixedTraceIDGenerator is stateless and safe for concurrent use.
type FixedTraceIDGenerator struct {
	id string
}

// NewFixedTraceIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceIDGenerator(id string) *FixedTraceIDGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceIDGenerator{id: id}
}

// Generate returns the fixed trace id.
func (g *FixedTraceIDGenerator) Generate() string {
	return g.id
}
