// Package ratelimit meters MCP tool calls with per-key token buckets.
package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrRateLimited is returned by Check when a tool's bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// Budget is the allowance of one tool: a sustained rate and a burst, which
// is also the number of calls available up front.
type Budget struct {
	PerMinute float64
	Burst     int
}

func (b Budget) perSecond() float64 { return b.PerMinute / 60 }

// DefaultBudgets gives simulation the tightest allowance; listing tools are
// cheap reads.
var DefaultBudgets = map[string]Budget{
	"carbonpath_simulate":     {PerMinute: 20, Burst: 5},
	"carbonpath_technologies": {PerMinute: 60, Burst: 10},
	"carbonpath_countries":    {PerMinute: 60, Burst: 10},
	"carbonpath_paths":        {PerMinute: 60, Burst: 10},
	"carbonpath_validate":     {PerMinute: 10, Burst: 5},
}

// Limiter holds one token bucket per key. It is safe for concurrent use.
type Limiter struct {
	budget Budget
	clock  func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// NewLimiter returns a limiter where every key starts with a full burst.
func NewLimiter(b Budget) *Limiter {
	return &Limiter{
		budget:  b,
		clock:   time.Now,
		buckets: make(map[string]*bucket),
	}
}

// refill tops up key's bucket for the time since its last use.
func (l *Limiter) refill(key string) *bucket {
	now := l.clock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.budget.Burst), updated: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.updated); elapsed > 0 {
		b.tokens = math.Min(b.tokens+elapsed.Seconds()*l.budget.perSecond(), float64(l.budget.Burst))
		b.updated = now
	}
	return b
}

// Allow takes one token from key's bucket, reporting false when none is left.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Remaining reports how many whole calls key could make right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.refill(key).tokens)
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters builds a limiter per budget; nil means DefaultBudgets.
func NewToolLimiters(budgets map[string]Budget) ToolLimiters {
	if budgets == nil {
		budgets = DefaultBudgets
	}
	tl := make(ToolLimiters, len(budgets))
	for tool, b := range budgets {
		tl[tool] = NewLimiter(b)
	}
	return tl
}

// Check takes a token for tool. Unknown tools are never limited.
func (tl ToolLimiters) Check(tool string) error {
	l, ok := tl[tool]
	if !ok || l.Allow(tool) {
		return nil
	}
	return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, tool)
}
