// Package search provides full-text search over changesets, Meilisearch-first
// with a PostgreSQL FTS fallback.
package search

// Result is a single search hit returned to the caller.
type Result struct {
	UUID    string `json:"uuid"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Snippet string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Status string // empty = all statuses
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ChangesetRecord is the data we index per changeset.
type ChangesetRecord struct {
	UUID       string   `json:"uuid"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	SettingIDs []string `json:"settingIds"`
}
