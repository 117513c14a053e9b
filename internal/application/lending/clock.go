package lending

import "time"

// Clock abstracts "today" so date-derived statuses are testable
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock
func SystemClock() Clock { return systemClock{} }
