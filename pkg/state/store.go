// Package state persists the comments of all hosts and services to SQLite.
package state

import (
	"context"
	"fmt"
	"github.com/icinga/icinga-go-library/backoff"
	"github.com/icinga/icinga-go-library/periodic"
	"github.com/icinga/icinga-go-library/retry"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/strcase"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS comment (
	id          TEXT    NOT NULL PRIMARY KEY,
	owner_kind  TEXT    NOT NULL,
	owner_name  TEXT    NOT NULL,
	legacy_id   INTEGER NOT NULL,
	entry_time  INTEGER NOT NULL,
	entry_type  INTEGER NOT NULL,
	author      TEXT    NOT NULL,
	text        TEXT    NOT NULL,
	expire_time INTEGER
);
CREATE INDEX IF NOT EXISTS idx_comment_owner ON comment (owner_kind, owner_name);
`

// row is a comment together with its owner as stored in the comment table.
type row struct {
	comments.Comment
	OwnerKind string
	OwnerName string
}

// Store persists comments. It implements objects.Toucher:
// owners whose comments have changed are marked dirty and written by the next Flush.
type Store struct {
	db      *sqlx.DB
	logger  *logging.Logger
	options Options

	insertStmt string

	// mu protects the following fields.
	mu     sync.Mutex
	dirty  map[comments.Handle]struct{}
	source comments.Source
}

// Open opens, and creates if necessary, the SQLite database.
func Open(ctx context.Context, c *Config, logger *logging.Logger) (*Store, error) {
	dsn := url.URL{
		Scheme:   "file",
		Opaque:   c.Path,
		RawQuery: url.Values{"_busy_timeout": {fmt.Sprint(c.Options.BusyTimeout.Milliseconds())}}.Encode(),
	}

	db, err := sqlx.Open("sqlite3", dsn.String())
	if err != nil {
		return nil, errors.Wrap(err, "can't open database")
	}

	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.Mapper = reflectx.NewMapperFunc("db", strcase.Snake)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "can't create database schema")
	}

	s := &Store{
		db:      db,
		logger:  logger,
		options: c.Options,
		dirty:   map[comments.Handle]struct{}{},
	}
	s.insertStmt = s.buildInsertStmt()

	return s, nil
}

// Touch implements the objects.Toucher interface.
func (s *Store) Touch(owner comments.Handle, attribute string) {
	if attribute != comments.Attribute {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty[owner] = struct{}{}
}

// Load restores all persisted comments into the stores of their owners from source
// and uses source to resolve dirty owners from now on.
// Comments of owners that no longer exist are dropped from the database with the next Flush.
func (s *Store) Load(ctx context.Context, source comments.Source) error {
	var rows []row
	query := `SELECT * FROM comment ORDER BY owner_kind, owner_name, rowid`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return errors.Wrapf(err, "can't perform %q", query)
	}

	byOwner := map[comments.Handle][]*comments.Comment{}
	var order []comments.Handle
	for i := range rows {
		h := comments.Handle{Kind: rows[i].OwnerKind, Name: rows[i].OwnerName}
		if _, ok := byOwner[h]; !ok {
			order = append(order, h)
		}

		byOwner[h] = append(byOwner[h], &rows[i].Comment)
	}

	s.mu.Lock()
	s.source = source
	s.mu.Unlock()

	for _, h := range order {
		owner, ok := source.Owner(h)
		if !ok {
			s.logger.Warnw("Dropping comments of unknown object",
				zap.Stringer("owner", h), zap.Int("comments", len(byOwner[h])))
			s.Touch(h, comments.Attribute)

			continue
		}

		owner.Comments().Load(byOwner[h])
	}

	s.logger.Infof("Loaded %d comments of %d objects", len(rows), len(order))

	return nil
}

// Flush writes the comments of all dirty owners to the database in one transaction.
// It retries while the database is locked. On failure, the owners stay dirty.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	source := s.source
	s.dirty = map[comments.Handle]struct{}{}
	s.mu.Unlock()

	if len(dirty) == 0 {
		return nil
	}

	start := time.Now()

	err := retry.WithBackoff(
		ctx,
		func(ctx context.Context) error {
			return s.flush(ctx, source, dirty)
		},
		isRetryable,
		backoff.NewExponentialWithJitter(10*time.Millisecond, time.Second),
		retry.Settings{
			Timeout: retry.DefaultTimeout,
			OnRetryableError: func(_ time.Duration, _ uint64, err, lastErr error) {
				if lastErr == nil || err.Error() != lastErr.Error() {
					s.logger.Warnw("Can't persist comments. Retrying", zap.Error(err))
				}
			},
		},
	)
	if err != nil {
		s.mu.Lock()
		for h := range dirty {
			s.dirty[h] = struct{}{}
		}
		s.mu.Unlock()

		return errors.Wrap(err, "can't persist comments")
	}

	s.logger.Debugf("Persisted comments of %d objects in %s", len(dirty), time.Since(start))

	return nil
}

// Run flushes periodically until ctx is canceled.
func (s *Store) Run(ctx context.Context) error {
	stopper := periodic.Start(ctx, s.options.FlushInterval, func(periodic.Tick) {
		if err := s.Flush(ctx); err != nil && ctx.Err() == nil {
			s.logger.Errorw("Can't persist comments", zap.Error(err))
		}
	})
	defer stopper.Stop()

	<-ctx.Done()

	return nil
}

// Close flushes once more and closes the database.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := s.Flush(ctx)
	if closeErr := s.db.Close(); err == nil {
		err = errors.Wrap(closeErr, "can't close database")
	}

	return err
}

func (s *Store) flush(ctx context.Context, source comments.Source, dirty map[comments.Handle]struct{}) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't start transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const deleteStmt = `DELETE FROM comment WHERE owner_kind = ? AND owner_name = ?`

	for h := range dirty {
		if _, err := tx.ExecContext(ctx, deleteStmt, h.Kind, h.Name); err != nil {
			return errors.Wrapf(err, "can't perform %q", deleteStmt)
		}

		if source == nil {
			continue
		}

		owner, ok := source.Owner(h)
		if !ok {
			continue
		}

		for _, c := range owner.Comments().Comments() {
			r := row{Comment: *c, OwnerKind: h.Kind, OwnerName: h.Name}
			if _, err := tx.NamedExecContext(ctx, s.insertStmt, r); err != nil {
				return errors.Wrapf(err, "can't perform %q", s.insertStmt)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "can't commit transaction")
}

// buildInsertStmt returns an INSERT statement for row with all of its mapped columns.
func (s *Store) buildInsertStmt() string {
	var columns []string
	for _, f := range s.db.Mapper.TypeMap(reflect.TypeOf(row{})).Index {
		if f.Embedded || strings.Contains(f.Path, ".") {
			continue
		}

		columns = append(columns, f.Name)
	}

	return fmt.Sprintf(
		`INSERT INTO comment (%s) VALUES (:%s)`,
		strings.Join(columns, ", "),
		strings.Join(columns, ", :"),
	)
}

// isRetryable reports whether err is caused by a locked database.
func isRetryable(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}
