package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewGroundwaterAnalyzer()))

		a, err := r.Get(domain.ReportGroundwater)
		require.NoError(t, err)
		assert.Equal(t, domain.ReportGroundwater, a.Type())
	})

	t.Run("duplicate registration", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewSeasonalAnalyzer()))
		assert.Error(t, r.Register(NewSeasonalAnalyzer()))
	})

	t.Run("nil analyzer", func(t *testing.T) {
		assert.Error(t, NewRegistry().Register(nil))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewRegistry().Get("rainfall")
		assert.ErrorIs(t, err, ErrUnknownReport)
	})

	t.Run("default types are sorted", func(t *testing.T) {
		assert.Equal(t, []domain.ReportType{
			domain.ReportGroundwater,
			domain.ReportIrrigation,
			domain.ReportLandHolding,
			domain.ReportSeasonal,
		}, DefaultRegistry().Types())
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := DefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Get(domain.ReportSeasonal)
			assert.NoError(t, err)
			assert.Len(t, r.Types(), 4)
		}()
	}
	wg.Wait()
}
