package schemas

// SearchHistoryItem is one persisted (platform, topic) query, newest first
// in the stored list. At most one entry exists per platform and
// case-insensitive topic.
type SearchHistoryItem struct {
	ID        string `json:"id"`
	Platform  string `json:"platform"`
	Topic     string `json:"topic"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Caption   string `json:"caption,omitempty"`
}

// HistoryStats summarizes the stored history.
type HistoryStats struct {
	TotalSearches   int   `json:"totalSearches"`
	UniquePlatforms int   `json:"uniquePlatforms"`
	TodaySearches   int   `json:"todaySearches"`
	OldestSearch    int64 `json:"oldestSearch,omitempty"` // unix millis, 0 when empty
	NewestSearch    int64 `json:"newestSearch,omitempty"`
}
