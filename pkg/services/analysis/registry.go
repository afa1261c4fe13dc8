package analysis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// Registry manages the analyzers available to the report service
type Registry interface {
	// Register adds an analyzer under its report type
	Register(a Analyzer) error
	// Get returns the analyzer for a report type
	Get(t domain.ReportType) (Analyzer, error)
	// Types returns the registered report types in sorted order
	Types() []domain.ReportType
}

type registry struct {
	mu        sync.RWMutex
	analyzers map[domain.ReportType]Analyzer
}

// NewRegistry creates an empty analyzer registry
func NewRegistry() Registry {
	return &registry{
		analyzers: make(map[domain.ReportType]Analyzer),
	}
}

// DefaultRegistry returns a registry holding the four built-in report families.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for _, a := range []Analyzer{
		NewSeasonalAnalyzer(),
		NewLandHoldingAnalyzer(),
		NewIrrigationAnalyzer(),
		NewGroundwaterAnalyzer(),
	} {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *registry) Register(a Analyzer) error {
	if a == nil {
		return fmt.Errorf("analyzer cannot be nil")
	}
	t := a.Type()
	if t == "" {
		return fmt.Errorf("report type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.analyzers[t]; exists {
		return fmt.Errorf("report type %q is already registered", t)
	}

	r.analyzers[t] = a
	return nil
}

func (r *registry) Get(t domain.ReportType) (Analyzer, error) {
	r.mu.RLock()
	a, exists := r.analyzers[t]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, t)
	}
	return a, nil
}

func (r *registry) Types() []domain.ReportType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.ReportType, 0, len(r.analyzers))
	for t := range r.analyzers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
