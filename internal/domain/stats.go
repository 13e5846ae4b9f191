package domain

// ImportStats summarizes one import call. It is never persisted.
type ImportStats struct {
	Folders         int `json:"folders"`
	Links           int `json:"links"`
	Skipped         int `json:"skipped"`
	FaviconsFetched int `json:"favicons_fetched"`
}

// Add merges o into s.
func (s *ImportStats) Add(o ImportStats) {
	s.Folders += o.Folders
	s.Links += o.Links
	s.Skipped += o.Skipped
	s.FaviconsFetched += o.FaviconsFetched
}
