package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSequencer records how often the store was hit.
type countingSequencer struct {
	*MemorySequencer
	calls int
	err   error
}

func (c *countingSequencer) Advance(ctx context.Context, key string, by int64) (int64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.MemorySequencer.Advance(ctx, key, by)
}

var period = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	seq := &countingSequencer{MemorySequencer: NewMemorySequencer()}
	svc := New(seq, Options{})
	ctx := context.Background()
	cfg := DefaultConfig("RCV")

	num, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "RCV-2026-00001", num)

	num, err = svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "RCV-2026-00002", num)
	assert.Equal(t, 2, seq.calls)

	// A new year starts over.
	num, err = svc.Next(ctx, cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "RCV-2027-00001", num)
}

func TestNext_Cached(t *testing.T) {
	seq := &countingSequencer{MemorySequencer: NewMemorySequencer()}
	svc := New(seq, Options{Strategy: StrategyCached, RangeSize: 10})
	ctx := context.Background()
	cfg := DefaultConfig("ISS")

	for i := 1; i <= 10; i++ {
		num, err := svc.Next(ctx, cfg, period)
		require.NoError(t, err)
		assert.Equal(t, int64(i), ParseNumber(num))
	}
	assert.Equal(t, 1, seq.calls)

	num, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "ISS-2026-00011", num)
	assert.Equal(t, 2, seq.calls)
}

func TestNext_CachedConcurrentUnique(t *testing.T) {
	svc := New(NewMemorySequencer(), Options{Strategy: StrategyCached, RangeSize: 7})
	cfg := DefaultConfig("TRF")

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				num, err := svc.Next(context.Background(), cfg, period)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[num] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 200)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	seq := NewMemorySequencer()
	svc := New(seq, Options{Strategy: StrategyCached, RangeSize: 10})
	ctx := context.Background()
	cfg := DefaultConfig("ADJ")

	_, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "ADJ-2026-00101", num)
}

func TestNext_SequencerError(t *testing.T) {
	seq := &countingSequencer{MemorySequencer: NewMemorySequencer(), err: errors.New("connection refused")}
	svc := New(seq, Options{})

	_, err := svc.Next(context.Background(), DefaultConfig("RCV"), period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RCV_2026")
}

func TestFormatAndParse(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"default", DefaultConfig("RCV"), "RCV-2026-00042"},
		{"no year", Config{Prefix: "MV", PadWidth: 3}, "MV-042"},
		{"wide", Config{Prefix: "X", IncludeYear: true, PadWidth: 8}, "X-2026-00000042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatNumber(tt.cfg, period, 42)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(42), ParseNumber(got))
		})
	}

	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "RCV_2026", buildKey(Config{Prefix: "RCV", ResetPeriod: "year"}, period))
	assert.Equal(t, "RCV_2026_03", buildKey(Config{Prefix: "RCV", ResetPeriod: "month"}, period))
	assert.Equal(t, "RCV", buildKey(Config{Prefix: "RCV", ResetPeriod: "never"}, period))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("cached")
	require.NoError(t, err)
	assert.Equal(t, StrategyCached, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyStrict, s)

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}
