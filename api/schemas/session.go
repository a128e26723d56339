package schemas

import "time"

// UserSession is the persisted per-device record that backs the free-tier
// quota. One session exists per browser profile; it is replaced wholesale
// when its window expires.
type UserSession struct {
	UserID       string `json:"userId"`
	FirstAccess  int64  `json:"firstAccess"`  // unix millis, start of the quota window
	RequestCount int    `json:"requestCount"` // accepted requests inside the window
	LastRequest  int64  `json:"lastRequest"`  // unix millis of the last accepted request, 0 if none
}

// Age returns how long the session has existed relative to now.
func (s UserSession) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.FirstAccess))
}

// Expired reports whether the quota window has elapsed.
func (s UserSession) Expired(now time.Time, window time.Duration) bool {
	return s.Age(now) > window
}

// UserStatus is a pure projection of the session for display purposes.
// Reading it never mutates the underlying session.
type UserStatus struct {
	RemainingRequests int           `json:"remainingRequests"`
	TimeRemaining     time.Duration `json:"timeRemaining"`
	IsBlocked         bool          `json:"isBlocked"`
	ResetTime         int64         `json:"resetTime"` // unix millis
}

// SessionInfo is the debug projection of a session, including its age.
type SessionInfo struct {
	UserSession
	SessionAge time.Duration `json:"sessionAge"`
}
