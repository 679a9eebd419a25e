// Package numerator issues human-readable sequential numbers such as
// RCV-2026-00042. Numbers are drawn outside business transactions, so a
// rolled back operation leaves a gap.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict advances the stored counter for every number.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers and hands them out from memory.
	// Much faster, but a restart abandons the rest of the range.
	StrategyCached
)

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "strict":
		return StrategyStrict, nil
	case "cached":
		return StrategyCached, nil
	}
	return 0, fmt.Errorf("unknown numbering strategy %q", s)
}

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// Sequencer stores named counters.
type Sequencer interface {
	// Advance adds by to the counter (creating it at zero) and returns the new value.
	Advance(ctx context.Context, key string, by int64) (int64, error)
	// Set overwrites the counter.
	Set(ctx context.Context, key string, value int64) error
}

type cachedRange struct {
	current int64
	max     int64
}

// Service provides numbering. Safe for concurrent use.
type Service struct {
	seq  Sequencer
	opts Options

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator over seq.
func New(seq Sequencer, opts Options) *Service {
	if opts.RangeSize <= 0 {
		opts.RangeSize = 50
	}
	return &Service{
		seq:    seq,
		opts:   opts,
		ranges: make(map[string]*cachedRange),
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "RCV", "ISS")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns a yearly counter with the year in the number.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Next generates the next number for period.
// Pattern: PREFIX-YEAR-XXXXX (e.g., RCV-2026-00001)
func (s *Service) Next(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	switch s.opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, key)
	default:
		num, err = s.seq.Advance(ctx, key, 1)
	}
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return formatNumber(cfg, period, num), nil
}

// nextCached hands out the next value of the reserved range, reserving a new
// range when the current one is used up.
func (s *Service) nextCached(ctx context.Context, key string) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		newMax, err := s.seq.Advance(ctx, key, s.opts.RangeSize)
		if err != nil {
			return 0, err
		}
		// The stored value is the last reserved number: the range is
		// (newMax - size, newMax].
		rng.current = newMax - s.opts.RangeSize
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber makes value the last issued number (for migrations).
func (s *Service) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)
	if err := s.seq.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set number for %s: %w", key, err)
	}

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()
	return nil
}

// buildKey creates the sequence key based on config and period.
func buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// formatNumber creates the final number string.
func formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts numeric part from formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndexByte(formatted, '-')
	if i < 0 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}

// MemorySequencer keeps counters in process memory.
type MemorySequencer struct {
	mu   sync.Mutex
	vals map[string]int64
}

// NewMemorySequencer creates an empty sequencer.
func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{vals: map[string]int64{}}
}

// Advance implements Sequencer.
func (m *MemorySequencer) Advance(_ context.Context, key string, by int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] += by
	return m.vals[key], nil
}

// Set implements Sequencer.
func (m *MemorySequencer) Set(_ context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}
