package models

import (
	"fmt"
	"time"
)

// RefreshConfig is the user-facing auto-refresh control.
type RefreshConfig struct {
	AutoRefresh bool `json:"autoRefresh"`
	Interval    int  `json:"interval"` // seconds
}

// RefreshIntervals lists the accepted refresh intervals in seconds.
var RefreshIntervals = []int{5, 10, 30, 60}

// DefaultRefreshConfig is the control state at startup.
var DefaultRefreshConfig = RefreshConfig{
	AutoRefresh: true,
	Interval:    10,
}

// Validate checks that the interval is one of RefreshIntervals.
func (c RefreshConfig) Validate() error {
	for _, v := range RefreshIntervals {
		if c.Interval == v {
			return nil
		}
	}
	return fmt.Errorf("invalid refresh interval %ds (allowed: %v)", c.Interval, RefreshIntervals)
}

// IntervalDuration returns the interval as a time.Duration.
func (c RefreshConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
