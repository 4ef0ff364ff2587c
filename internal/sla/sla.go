// Package sla classifies ticket deadlines into urgency buckets.
//
// Buckets are half-open: a deadline exactly one hour away is Warning, and
// exactly two hours away is OnTime.
package sla

import (
	"fmt"
	"strings"
	"time"
)

// Urgency is the SLA classification of a deadline relative to now.
type Urgency int

const (
	Expired Urgency = iota
	Critical
	Warning
	OnTime
)

const (
	CriticalWindow = time.Hour
	WarningWindow  = 2 * time.Hour
)

// Classify buckets deadline against now.
func Classify(deadline, now time.Time) Urgency {
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return Expired
	case remaining < CriticalWindow:
		return Critical
	case remaining < WarningWindow:
		return Warning
	default:
		return OnTime
	}
}

// Remaining returns the time left until deadline; negative once expired.
func Remaining(deadline, now time.Time) time.Duration {
	return deadline.Sub(now)
}

func (u Urgency) String() string {
	switch u {
	case Expired:
		return "expired"
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	case OnTime:
		return "on_time"
	}
	return fmt.Sprintf("urgency(%d)", int(u))
}

// ParseUrgency accepts the String form, case-insensitively.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expired":
		return Expired, nil
	case "critical":
		return Critical, nil
	case "warning":
		return Warning, nil
	case "on_time", "ontime":
		return OnTime, nil
	}
	return 0, fmt.Errorf("unknown sla urgency %q", s)
}
