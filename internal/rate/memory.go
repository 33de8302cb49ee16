package rate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter replica la ventana fija en proceso para correr sin Redis
// (dev y tests). No sirve con más de una réplica.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())

	var hits int64
	if v, ok := l.c.Get(k); ok {
		ctr := v.(*int64)
		hits = atomic.AddInt64(ctr, 1)
	} else {
		ctr := new(int64)
		*ctr = 1
		hits = 1
		l.c.Set(k, ctr, l.Window)
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= l.Max, Remaining: remaining}
	if !res.Allowed {
		res.RetryAfter = winStart.Add(l.Window).Sub(time.Now().UTC())
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
	}
	return res, nil
}
