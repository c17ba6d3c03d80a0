// Package presence decides whether a user counts as online.
//
// Every online indicator and every "online members" count in the app goes
// through this package so that the window is defined exactly once.
package presence

import "time"

// Window is how recent a user's last activity must be to count as online.
const Window = 10 * time.Minute

// IsOnline reports whether lastActivityAt falls strictly inside window
// before now. A nil timestamp is never online.
func IsOnline(lastActivityAt *time.Time, now time.Time, window time.Duration) bool {
	if lastActivityAt == nil {
		return false
	}
	return now.Sub(*lastActivityAt) < window
}

// Online applies the shared Window.
func Online(lastActivityAt *time.Time, now time.Time) bool {
	return IsOnline(lastActivityAt, now, Window)
}

// Threshold returns the cut-off for database counts: a user is online when
// last_activity_at > Threshold(now).
func Threshold(now time.Time) time.Time {
	return now.Add(-Window)
}
