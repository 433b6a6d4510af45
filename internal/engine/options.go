package engine

// Option configures an Engine.
type Option func(*Engine)

// WithParallelism sets how many team-season pools are assembled at once.
// Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}
