package store

import "time"

// ChangesetType is the only document type this store serves. Query vars carry
// it explicitly so the type filter is always store-injected, never user input.
const ChangesetType = "customize_changeset"

// Changeset statuses. StatusTrash is reachable only through a non-forced delete.
const (
	StatusAutoDraft = "auto-draft"
	StatusDraft     = "draft"
	StatusFuture    = "future"
	StatusPublish   = "publish"
	StatusPrivate   = "private"
	StatusTrash     = "trash"
)

type User struct {
	ID           int64
	DisplayName  string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Changeset is the persisted draft of pending setting changes for a site.
// Settings holds the raw JSON object of setting id -> {"value": ...}; the app
// layer interprets it. Date/DateGMT are nil while the changeset is unscheduled.
type Changeset struct {
	ID        int64
	UUID      string
	Status    string
	AuthorID  int64
	Title     string
	Settings  string
	Date      *time.Time
	DateGMT   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
