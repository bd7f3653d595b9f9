package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post. The post must already carry its id and timestamps.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return updatePost(r.db, post.ID, func(txn *badger.Txn) error {
		_, err := txn.Get(postKey(post.ID))
		if err == nil {
			return errors.New("post already exists")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return savePost(txn, post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Exists reports whether a post with the given ID is stored
func (r *BadgerPostRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	found := false
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(postKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// List retrieves every post matching the filter, newest first
func (r *BadgerPostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			if filter.Course != "" && post.Course != filter.Course {
				continue
			}
			normalize(&post)
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Update applies a partial update to an existing post
func (r *BadgerPostRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *models.Post
	err := updatePost(r.db, id, func(txn *badger.Txn) error {
		post, err := loadPost(txn, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = post
			return nil
		}

		patch.Apply(post)
		post.UpdatedAt = time.Now().UTC()
		if err := savePost(txn, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes a post by ID together with its comments
func (r *BadgerPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return updatePost(r.db, id, func(txn *badger.Txn) error {
		return txn.Delete(postKey(id))
	})
}
