package store

import (
	"strconv"
	"sync"
	"time"
)

// idGenerator hands out time-derived note ids. Ids are the current Unix
// time in milliseconds, bumped past the previous id when the clock has not
// advanced so one process never repeats an id.
type idGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func newIDGenerator(now func() time.Time) *idGenerator {
	if now == nil {
		now = time.Now
	}
	return &idGenerator{now: now}
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
