// Package jobs holds the one-shot scheduled posts: birthday greetings and the number-one song of a random day
package jobs

import "time"

// Clock abstracts time.Now() for deterministic tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
