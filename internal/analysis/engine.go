// Package analysis implements the yield analytics engine: grouped
// aggregation, crop-year normalization, the cross-crop variance-ratio test,
// and ranking with tier classification. Every operation is a pure function
// of an immutable snapshot plus its parameters, with no cross-call state, so
// concurrent sessions need no coordination and external caches may key
// results by (snapshot version, operation, parameters).
package analysis

// Engine is the stateless entry point for all analytic operations
type Engine struct{}

// NewEngine creates a new analytics engine
func NewEngine() *Engine {
	return &Engine{}
}
