package kit

import "time"

func (l *IPRateLimiter) SetClock(now func() time.Time) { l.now = now }

func (l *IPRateLimiter) Tracked() int { return l.tracked() }
