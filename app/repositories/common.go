package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
)

const (
	// Key prefix for post documents
	PostKeyPrefix = "post:"

	// Attempts made when a transaction loses a write conflict
	maxTxnAttempts = 16

	// Number of locks post writers are spread over
	postLockStripes = 256
)

// postLocks serializes writers of the same post document across every
// repository in the process, so post and comment writes never conflict.
var postLocks [postLockStripes]sync.Mutex

var (
	ErrNotFound        = errors.New("record not found")
	ErrCommentNotFound = models.ErrCommentNotFound
	ErrInvalidEntity   = errors.New("invalid entity")
)

func postKey(id primitive.ObjectID) []byte {
	return []byte(PostKeyPrefix + id.Hex())
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

// update runs fn in a read-write transaction, starting over when badger
// reports that a concurrent transaction committed a conflicting write.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d conflicting attempts: %w", maxTxnAttempts, err)
}

// lockPost takes the writer lock for one post and returns its release.
func lockPost(id primitive.ObjectID) func() {
	mu := &postLocks[xxhash.Sum64(id[:])%postLockStripes]
	mu.Lock()
	return mu.Unlock
}

// updatePost runs fn in a read-write transaction while holding the post's
// writer lock.
func updatePost(db *badger.DB, id primitive.ObjectID, fn func(txn *badger.Txn) error) error {
	unlock := lockPost(id)
	defer unlock()
	return update(db, fn)
}

// loadPost reads a post inside a transaction
func loadPost(txn *badger.Txn, id primitive.ObjectID) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	normalize(&post)
	return &post, nil
}

// savePost validates and writes a post inside a transaction
func savePost(txn *badger.Txn, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	return txn.Set(postKey(post.ID), data)
}
