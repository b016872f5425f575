package analytics

// ============================================================================
// OPTIONS — Functional options for CountBy / RatioBy
// ============================================================================

// Option configures an aggregation via the functional options pattern.
type Option func(*config)

type config struct {
	Sort         SortMode
	Limit        int    // 0 = all groups
	MissingLabel string // when set, null keys group under this label
}

// WithSort sets the group ordering. Default is first-encounter order.
func WithSort(mode SortMode) Option {
	return func(c *config) {
		c.Sort = mode
	}
}

// WithLimit keeps only the first n groups after sorting.
func WithLimit(n int) Option {
	return func(c *config) {
		c.Limit = n
	}
}

// WithMissingBucket groups rows with a null key under the given label
// instead of excluding them from the result.
func WithMissingBucket(label string) Option {
	return func(c *config) {
		c.MissingLabel = label
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
