package repositories

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// Repository owns a badger database and the post and comment repositories on top of it.
type Repository struct {
	db       *badger.DB
	mutex    sync.Mutex
	closed   bool
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
}

// NewRepository opens the badger database at path. An empty path opens an
// in-memory database, which is what the tests use.
func NewRepository(path string) (*Repository, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	log.WithField("path", path).Debug("[repositories] badger opened")

	return &Repository{
		db:       db,
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}, nil
}

// DB returns the underlying database.
func (r *Repository) DB() *badger.DB {
	return r.db
}

// Close closes the database. Calling it more than once is safe.
func (r *Repository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}
