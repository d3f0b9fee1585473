package comments

import (
	"context"
	"github.com/google/uuid"
	"github.com/icinga/icinga-go-library/periodic"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/metrics"
	"github.com/icinga/icingacore/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Handle identifies a comment owner without referencing it.
// It is resolved through the Source on every access, so the cache never keeps an entity alive.
type Handle struct {
	Kind string
	Name string
}

// String returns "<kind> '<name>'".
func (h Handle) String() string {
	return h.Kind + " '" + h.Name + "'"
}

// Owner is an entity owning a comment Store, i.e. a host or a service.
type Owner interface {
	Handle() Handle
	Comments() *Store
}

// Source provides the comment owners to the Cache.
type Source interface {
	// Owners returns all current comment owners.
	Owners() []Owner
	// Owner resolves a handle. It returns false if the entity no longer exists.
	Owner(Handle) (Owner, bool)
}

// Options define Cache options.
type Options struct {
	// ExpireInterval is the interval of the expiry sweeper.
	ExpireInterval time.Duration `yaml:"expire-interval" default:"5m"`
}

// Validate checks constraints in the supplied options and returns an error if they are violated.
func (o *Options) Validate() error {
	if o.ExpireInterval <= 0 {
		return errors.New("comment expire interval must be positive")
	}

	return nil
}

// Cache is the process-wide index of all comments of all owners of a Source.
// It maps comment IDs to their owner and legacy IDs to comment IDs and
// allocates legacy IDs from a counter that is never decremented.
// It is derived from the owners' stores and rebuilt by Refresh.
// The first Refresh starts the expiry sweeper, Close stops it.
type Cache struct {
	source  Source
	logger  *logging.Logger
	options Options
	ctx     context.Context
	now     func() time.Time

	// writeMu serializes Refresh with comment additions and removals,
	// so that a rebuilt index never misses or resurrects a comment.
	writeMu sync.Mutex

	// mu protects the following fields.
	mu           sync.Mutex
	nextLegacyID int
	legacyIDs    map[int]string
	owners       map[string]Handle
	sweeper      periodic.Stopper
}

// NewCache returns a new, empty Cache over the owners of source.
// The expiry sweeper is bound to ctx.
func NewCache(ctx context.Context, source Source, logger *logging.Logger, options Options) *Cache {
	return &Cache{
		source:       source,
		logger:       logger,
		options:      options,
		ctx:          ctx,
		now:          time.Now,
		nextLegacyID: 1,
		legacyIDs:    map[int]string{},
		owners:       map[string]Handle{},
	}
}

// NextLegacyID returns the legacy ID the next new comment will get.
func (c *Cache) NextLegacyID() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nextLegacyID
}

// AddComment adds a new comment to the owner's store and returns its ID.
// The comment gets the next legacy ID and a fresh UUID. A zero expireTime means the comment never expires.
func (c *Cache) AddComment(
	owner Owner, entryType types.CommentType, author, text string, expireTime time.Time,
) string {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	comment := &Comment{
		ID:         uuid.NewString(),
		LegacyID:   c.allocateLegacyID(),
		EntryTime:  types.UnixMilli(c.now()),
		EntryType:  entryType,
		Author:     author,
		Text:       text,
		ExpireTime: types.UnixMilli(expireTime),
	}

	owner.Comments().Add(comment)

	c.mu.Lock()
	c.legacyIDs[comment.LegacyID] = comment.ID
	c.owners[comment.ID] = owner.Handle()
	c.mu.Unlock()

	c.logger.Debugw("Added comment",
		zap.Stringer("owner", owner.Handle()), zap.String("id", comment.ID), zap.Int("legacy_id", comment.LegacyID))

	return comment.ID
}

// RemoveComment removes the comment with the given ID from its owner's store.
// It is a no-op returning false if the owner cannot be resolved.
func (c *Cache) RemoveComment(id string) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	owner, ok := c.GetOwnerByCommentID(id)
	if !ok {
		return false
	}

	if owner.Comments().Remove(id) == 0 {
		return false
	}

	c.forget(id)

	return true
}

// RemoveAllComments clears the owner's store.
func (c *Cache) RemoveAllComments(owner Owner) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.forget(owner.Comments().RemoveAll()...)
}

// GetOwnerByCommentID returns the owner of the comment with the given ID.
// Unknown IDs and owners that no longer exist yield false.
func (c *Cache) GetOwnerByCommentID(id string) (Owner, bool) {
	c.mu.Lock()
	handle, ok := c.owners[id]
	c.mu.Unlock()

	if !ok {
		return nil, false
	}

	return c.source.Owner(handle)
}

// GetCommentIDFromLegacyID returns the ID of the comment with the given legacy ID.
func (c *Cache) GetCommentIDFromLegacyID(legacyID int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.legacyIDs[legacyID]
	return id, ok
}

// GetCommentByID returns a copy of the comment with the given ID.
func (c *Cache) GetCommentByID(id string) (*Comment, bool) {
	owner, ok := c.GetOwnerByCommentID(id)
	if !ok {
		return nil, false
	}

	return owner.Comments().Get(id)
}

// Refresh rebuilds the index from all owners' stores and swaps it in as a whole.
//
// The legacy ID counter is advanced past every legacy ID seen. If a legacy ID is already claimed by
// another comment during the same pass, the later comment is given a new legacy ID and its owner is touched,
// so that legacy IDs stay unique even if persisted data says otherwise.
func (c *Cache) Refresh() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	start := time.Now()
	legacyIDs := map[int]string{}
	owners := map[string]Handle{}
	reassigned := 0

	for _, owner := range c.source.Owners() {
		store := owner.Comments()
		if store == nil {
			continue
		}

		handle := owner.Handle()

		store.update(func(comment *Comment) bool {
			c.advanceLegacyID(comment.LegacyID)

			var modified bool
			if _, claimed := legacyIDs[comment.LegacyID]; claimed {
				old := comment.LegacyID
				comment.LegacyID = c.allocateLegacyID()
				modified = true
				reassigned++

				c.logger.Debugw("Reassigned duplicate legacy comment ID",
					zap.Stringer("owner", handle), zap.String("id", comment.ID),
					zap.Int("old_legacy_id", old), zap.Int("legacy_id", comment.LegacyID))
			}

			legacyIDs[comment.LegacyID] = comment.ID
			owners[comment.ID] = handle

			return modified
		})
	}

	c.mu.Lock()
	c.legacyIDs = legacyIDs
	c.owners = owners

	if c.sweeper == nil {
		c.sweeper = periodic.Start(c.ctx, c.options.ExpireInterval, func(tick periodic.Tick) {
			c.RemoveExpiredComments(tick.Time)
		})
	}
	c.mu.Unlock()

	took := time.Since(start)
	metrics.RecordCacheRefresh(len(owners), took)

	c.logger.Debugw("Refreshed comment cache",
		zap.Int("comments", len(owners)), zap.Int("reassigned", reassigned), zap.Duration("took", took))
}

// RemoveExpiredComments removes all comments expired at now from all owners and returns how many were removed.
// Each owner is touched at most once.
func (c *Cache) RemoveExpiredComments(now time.Time) int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var removed int

	for _, owner := range c.source.Owners() {
		store := owner.Comments()
		if store == nil {
			continue
		}

		if expired := store.RemoveExpired(now); len(expired) > 0 {
			c.forget(expired...)
			removed += len(expired)

			c.logger.Debugw("Removed expired comments", zap.Stringer("owner", owner.Handle()), zap.Strings("ids", expired))
		}
	}

	if removed > 0 {
		metrics.RecordCommentsExpired(removed)
		c.logger.Infof("Removed %d expired comments", removed)
	}

	return removed
}

// Close stops the expiry sweeper, if started.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sweeper != nil {
		c.sweeper.Stop()
	}

	return nil
}

func (c *Cache) allocateLegacyID() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextLegacyID
	c.nextLegacyID++

	return id
}

func (c *Cache) advanceLegacyID(seen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seen >= c.nextLegacyID {
		c.nextLegacyID = seen + 1
	}
}

// forget drops the given comment IDs from the index.
func (c *Cache) forget(ids ...string) {
	if len(ids) == 0 {
		return
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range drop {
		delete(c.owners, id)
	}

	for legacyID, id := range c.legacyIDs {
		if _, ok := drop[id]; ok {
			delete(c.legacyIDs, legacyID)
		}
	}
}
