package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown allows each user one request per period.
type Cooldown struct {
	mu     sync.Mutex
	period time.Duration
	users  map[int64]*userLimit
	now    func() time.Time
}

type userLimit struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewCooldown creates a per-user cooldown. A period <= 0 disables it.
func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period: period,
		users:  make(map[int64]*userLimit),
		now:    time.Now,
	}
}

// Allow reports whether userID may start a request now and, if not, how long until it may.
func (c *Cooldown) Allow(userID int64) (bool, time.Duration) {
	if c.period <= 0 {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	u, ok := c.users[userID]
	if !ok {
		u = &userLimit{limiter: rate.NewLimiter(rate.Every(c.period), 1)}
		c.users[userID] = u
	}

	if !u.limiter.AllowN(now, 1) {
		return false, u.last.Add(c.period).Sub(now)
	}
	u.last = now
	return true, 0
}

// Cleanup forgets users whose cooldown has expired.
func (c *Cooldown) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, u := range c.users {
		if now.Sub(u.last) >= c.period {
			delete(c.users, id)
		}
	}
}

// Len returns the number of tracked users.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}
