// Package comments implements the per-entity comment stores and the process-wide comment cache,
// which indexes all comments by their opaque ID and by their legacy integer ID.
package comments

import (
	"github.com/icinga/icingacore/pkg/types"
	"time"
)

// Comment is an operator annotation attached to a host or service.
type Comment struct {
	// ID is the opaque, globally unique identifier (a UUID).
	ID string `json:"id" db:"id"`
	// LegacyID is the small integer identifier used by legacy protocols.
	LegacyID   int               `json:"legacy_id" db:"legacy_id"`
	EntryTime  types.UnixMilli   `json:"entry_time" db:"entry_time"`
	EntryType  types.CommentType `json:"entry_type" db:"entry_type"`
	Author     string            `json:"author" db:"author"`
	Text       string            `json:"text" db:"text"`
	ExpireTime types.UnixMilli   `json:"expire_time" db:"expire_time"`
}

// IsExpired reports whether the comment has an expiry time and it lies before now.
func (c *Comment) IsExpired(now time.Time) bool {
	return !c.ExpireTime.IsZero() && c.ExpireTime.Time().Before(now)
}

func (c *Comment) clone() *Comment {
	cc := *c
	return &cc
}
