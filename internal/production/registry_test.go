package production

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/hsmx/internal/primitives"
)

func TestRegistryVersions(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	v1, err := r.Register(ctx, sampleConfig())
	require.NoError(t, err)
	assert.Regexp(t, `^xxh-[0-9a-f]{16}$`, v1)

	_, err = r.Register(ctx, sampleConfig())
	assert.ErrorIs(t, err, ErrExists)

	changed := sampleConfig()
	changed.States[0].Child("State2").Transition("Reset", "State1")
	v2, err := r.Register(ctx, changed)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	pinned := sampleConfig()
	pinned.Version = "1.0.0"
	v3, err := r.Register(ctx, pinned)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v3)

	versions, err := r.ListVersions(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, []string{v3, v2, v1}, versions)

	latest, err := r.Latest(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", latest.Version)
	assert.Equal(t, "sample", latest.Config.ID)

	first, err := r.Version(ctx, "sample", v1)
	require.NoError(t, err)
	assert.True(t, first.Timestamp.Before(latest.Timestamp))
	assert.Nil(t, first.Config.States[0].Child("State2").On["Reset"])
}

func TestRegistryNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	_, err := r.Latest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Version(ctx, "missing", "v")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.ListVersions(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := r.ListMachines(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRegistryRejectsInvalidAndCanceled(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register(context.Background(), primitives.MachineConfig{ID: "bad", Initial: "nowhere"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Register(ctx, sampleConfig())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.ListMachines(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := sampleConfig()
			cfg.ID = []string{"a", "b"}[i%2]
			_, _ = r.Register(ctx, cfg)
		}()
	}
	wg.Wait()

	ids, err := r.ListMachines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	for _, id := range ids {
		versions, err := r.ListVersions(ctx, id)
		require.NoError(t, err)
		assert.Len(t, versions, 1)
	}
}
