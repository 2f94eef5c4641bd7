// Package dedupe tracks like transaction ids so a chain transaction is
// applied to the forest at most once.
package dedupe

import (
	"context"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultMaxSize bounds the number of remembered tx ids.
const defaultMaxSize = 50_000

// Deduper records seen transaction ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a submission that failed to enqueue can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// lruDeduper remembers up to maxSize ids. Lookups never refresh an id, so
// eviction drops the oldest recorded id first.
type lruDeduper struct {
	cache   *lru.Cache[string, struct{}]
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	size := d.maxSize
	if size <= 0 {
		size = math.MaxInt
	}
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		// only a non-positive size fails
		panic(err)
	}
	d.cache = cache
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	seen, _ := d.cache.ContainsOrAdd(id, struct{}{})
	return seen
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Remove(id)
}

func (d *lruDeduper) Size() int64 {
	return int64(d.cache.Len())
}
