package comments

import (
	"github.com/icinga/icingacore/pkg/types"
	"github.com/stretchr/testify/require"
	"sync/atomic"
	"testing"
	"time"
)

func newTestComment(id string, legacyID int, expire time.Time) *Comment {
	return &Comment{
		ID:         id,
		LegacyID:   legacyID,
		EntryTime:  types.UnixMilli(time.Now()),
		EntryType:  types.CommentUser,
		Author:     "icingaadmin",
		Text:       "text of " + id,
		ExpireTime: types.UnixMilli(expire),
	}
}

func commentIDs(comments []*Comment) []string {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}

	return ids
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	var touches atomic.Int32
	s := NewStore(func() { touches.Add(1) })

	for _, id := range []string{"c", "a", "b"} {
		s.Add(newTestComment(id, 1, time.Time{}))
	}

	require.Equal(t, []string{"c", "a", "b"}, commentIDs(s.Comments()))
	require.Equal(t, int32(3), touches.Load())

	s.Add(newTestComment("a", 2, time.Time{}))
	require.Equal(t, []string{"c", "b", "a"}, commentIDs(s.Comments()), "re-added comment must replace the old one")
	require.Equal(t, 3, s.Len())

	c, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, c.LegacyID)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	s.Add(newTestComment("a", 1, time.Time{}))

	c, ok := s.Get("a")
	require.True(t, ok)
	c.Text = "modified"

	c, ok = s.Get("a")
	require.True(t, ok)
	require.Equal(t, "text of a", c.Text)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestStore_Load(t *testing.T) {
	var touches atomic.Int32
	s := NewStore(func() { touches.Add(1) })

	s.Load([]*Comment{newTestComment("a", 1, time.Time{}), newTestComment("b", 2, time.Time{})})

	require.Equal(t, 2, s.Len())
	require.Zero(t, touches.Load(), "loading persisted comments must not touch")
}

func TestStore_Remove(t *testing.T) {
	var touches atomic.Int32
	s := NewStore(func() { touches.Add(1) })
	s.Load([]*Comment{
		newTestComment("a", 1, time.Time{}),
		newTestComment("b", 2, time.Time{}),
		newTestComment("c", 3, time.Time{}),
	})

	require.Equal(t, 2, s.Remove("a", "c", "missing"))
	require.Equal(t, int32(1), touches.Load())
	require.Equal(t, []string{"b"}, commentIDs(s.Comments()))

	require.Zero(t, s.Remove("missing"))
	require.Equal(t, int32(1), touches.Load(), "removing nothing must not touch")
}

func TestStore_RemoveAll(t *testing.T) {
	var touches atomic.Int32
	s := NewStore(func() { touches.Add(1) })
	s.Load([]*Comment{newTestComment("a", 1, time.Time{}), newTestComment("b", 2, time.Time{})})

	require.ElementsMatch(t, []string{"a", "b"}, s.RemoveAll())
	require.Zero(t, s.Len())
	require.Equal(t, int32(1), touches.Load())
}

func TestStore_RemoveExpired(t *testing.T) {
	now := time.Now()

	var touches atomic.Int32
	s := NewStore(func() { touches.Add(1) })
	s.Load([]*Comment{
		newTestComment("never", 1, time.Time{}),
		newTestComment("past1", 2, now.Add(-time.Second)),
		newTestComment("future", 3, now.Add(time.Hour)),
		newTestComment("past2", 4, now.Add(-time.Hour)),
	})

	require.ElementsMatch(t, []string{"past1", "past2"}, s.RemoveExpired(now))
	require.Equal(t, int32(1), touches.Load(), "a sweep must touch once, not once per comment")
	require.Equal(t, []string{"never", "future"}, commentIDs(s.Comments()))

	require.Empty(t, s.RemoveExpired(now))
	require.Equal(t, int32(1), touches.Load())
}

func TestComment_IsExpired(t *testing.T) {
	now := time.Now()

	subtests := []struct {
		name   string
		expire time.Time
		output bool
	}{
		{"never", time.Time{}, false},
		{"past", now.Add(-time.Second), true},
		{"now", now, false},
		{"future", now.Add(time.Second), false},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			c := newTestComment("a", 1, st.expire)
			require.Equal(t, st.output, c.IsExpired(now))
		})
	}
}
