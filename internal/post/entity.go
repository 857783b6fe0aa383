// AngelaMos | 2026
// entity.go

package post

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected}
}

type Post struct {
	ID        string    `db:"id"         json:"id"`
	Title     string    `db:"title"      json:"title"`
	Content   string    `db:"content"    json:"content"`
	AuthorID  string    `db:"author_id"  json:"author_id"`
	Status    Status    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsPublic is the single visibility rule: only APPROVED posts are public.
func (p *Post) IsPublic() bool {
	return p.Status == StatusApproved
}

// statusAfterEdit is the moderation outcome of a content edit. Edits by
// anyone but an admin send the post back to the queue.
func statusAfterEdit(current Status, byAdmin bool) Status {
	if byAdmin {
		return current
	}
	return StatusPending
}

// affectsFeed reports whether moving from one status to another can change
// the public listing.
func affectsFeed(from, to Status) bool {
	return from == StatusApproved || to == StatusApproved
}
