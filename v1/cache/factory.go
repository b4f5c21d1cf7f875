package cache

// Strategy defines the eviction policy used by cache.New.
type Strategy int

const (
	// ExactStrategy uses LFUCache: exact counts, FIFO among ties.
	ExactStrategy Strategy = iota
	// ApproximateStrategy uses RistrettoCache: sketched counts and
	// TinyLFU admission.
	ApproximateStrategy
)

// String returns the strategy name as accepted by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case ApproximateStrategy:
		return "approximate"
	default:
		return "exact"
	}
}

// ParseStrategy maps a name to a Strategy. Unknown names yield ExactStrategy
// and false.
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "exact", "lfu":
		return ExactStrategy, true
	case "approximate", "ristretto", "tinylfu":
		return ApproximateStrategy, true
	}
	return ExactStrategy, false
}

// Option configures cache.New.
type Option[T any] func(*factoryConfig[T])

type factoryConfig[T any] struct {
	strategy      Strategy
	lfuOpts       []LFUOption[T]
	ristrettoOpts []RistrettoOption
}

// WithStrategy selects the eviction strategy to use. The default is ExactStrategy.
func WithStrategy[T any](s Strategy) Option[T] {
	return func(cfg *factoryConfig[T]) {
		cfg.strategy = s
	}
}

// WithLFUOptions forwards options to NewLFU when ExactStrategy is selected.
func WithLFUOptions[T any](opts ...LFUOption[T]) Option[T] {
	return func(cfg *factoryConfig[T]) {
		cfg.lfuOpts = append(cfg.lfuOpts, opts...)
	}
}

// WithRistrettoOptions forwards options to NewRistretto when
// ApproximateStrategy is selected.
func WithRistrettoOptions[T any](opts ...RistrettoOption) Option[T] {
	return func(cfg *factoryConfig[T]) {
		cfg.ristrettoOpts = append(cfg.ristrettoOpts, opts...)
	}
}

// New returns a Cache of the given capacity using the selected strategy.
func New[T any](capacity int, opts ...Option[T]) (Cache[T], error) {
	cfg := factoryConfig[T]{strategy: ExactStrategy}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.strategy == ApproximateStrategy {
		c, err := NewRistretto[T](capacity, cfg.ristrettoOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := NewLFU[T](capacity, cfg.lfuOpts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}
