package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory builds a sink from the configured options
type Factory func(ctx context.Context, opts Options) (Sink, error)

// Registry manages sink factories by kind
type Registry interface {
	// Register adds a new sink factory
	Register(kind Kind, factory Factory) error
	// Create instantiates the sink of the given kind
	Create(ctx context.Context, kind Kind, opts Options) (Sink, error)
	// Kinds returns the registered kinds in sorted order
	Kinds() []Kind
}

type registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry creates an empty sink registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[Kind]Factory),
	}
}

// DefaultRegistry returns a registry with the local, S3 and MinIO sinks.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for kind, f := range map[Kind]Factory{
		KindLocal: func(_ context.Context, opts Options) (Sink, error) { return NewLocalSink(opts.Dir) },
		KindS3:    NewS3Sink,
		KindMinIO: NewMinIOSink,
	} {
		if err := r.Register(kind, f); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *registry) Register(kind Kind, factory Factory) error {
	if kind == "" {
		return fmt.Errorf("sink kind cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("sink %q is already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, kind Kind, opts Options) (Sink, error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return factory(ctx, opts)
}

func (r *registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
