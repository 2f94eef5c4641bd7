package dedupe

// Option applies a configuration option to the deduper.
type Option func(*lruDeduper)

// WithMaxSize sets the maximum number of ids to remember.
// maxSize <= 0 disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *lruDeduper) {
		d.maxSize = maxSize
	}
}
