package clock

import "time"

// Clock abstracts time.Now so billing-day decisions stay deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Fixed returns a Clock pinned to a single instant.
func Fixed(at time.Time) Clock { return fixedClock{at: at} }

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }
