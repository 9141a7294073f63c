package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardikramesh/tradingbot1/internal/domain"
)

func TestMemoryDefaultsToFlat(t *testing.T) {
	m := NewMemory()

	sig, err := m.Get(context.Background(), "NEVER_SEEN")
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedFlat, sig)
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "AAPL", domain.AppliedBuy))
	require.NoError(t, m.Set(ctx, "TSLA", domain.AppliedSell))

	sig, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedBuy, sig)

	sig, err = m.Get(ctx, "TSLA")
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedSell, sig)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Set(ctx, "AAPL", domain.AppliedBuy)
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Get(ctx, "AAPL")
		}()
	}
	wg.Wait()

	sig, err := m.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, domain.AppliedBuy, sig)
}
