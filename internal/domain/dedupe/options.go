package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*ringDeduper)

// WithMaxSize sets how many request IDs are remembered.
// If maxSize > 0 the oldest ID is evicted once the limit is reached.
// If maxSize <= 0 IDs are never evicted.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
