package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"studentblog/app/models"
	"studentblog/app/repositories"
)

// Store holds posts in memory. PostRepository and CommentRepository share it.
type Store struct {
	posts map[primitive.ObjectID]models.Post
	mutex sync.RWMutex

	// Err, when set, is returned by every operation.
	Err error
	// Writes counts successful mutations.
	Writes int
}

type PostRepository struct{ *Store }

type CommentRepository struct{ *Store }

func NewStore() *Store {
	return &Store{posts: make(map[primitive.ObjectID]models.Post)}
}

func NewPostRepository(s *Store) *PostRepository {
	return &PostRepository{Store: s}
}

func NewCommentRepository(s *Store) *CommentRepository {
	return &CommentRepository{Store: s}
}

// Len returns the number of stored posts.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.posts)
}

func clone(p models.Post) *models.Post {
	p.Comments = append([]models.Comment{}, p.Comments...)
	return &p
}

// PostRepository implementation
func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := post.Validate(); err != nil {
		return repositories.ErrInvalidEntity
	}
	m.posts[post.ID] = *clone(*post)
	m.Writes++
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clone(post), nil
}

func (m *PostRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.posts[id]
	return exists, nil
}

func (m *PostRepository) List(_ context.Context, filter models.PostFilter) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	for _, post := range m.posts {
		if filter.Course != "" && post.Course != filter.Course {
			continue
		}
		posts = append(posts, clone(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *PostRepository) Update(_ context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	stored, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post := clone(stored)
	if patch.IsEmpty() {
		return post, nil
	}
	patch.Apply(post)
	post.UpdatedAt = time.Now().UTC()
	if err := post.Validate(); err != nil {
		return nil, repositories.ErrInvalidEntity
	}
	m.posts[id] = *clone(*post)
	m.Writes++
	return post, nil
}

func (m *PostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[id]; exists {
		delete(m.posts, id)
		m.Writes++
	}
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Prepend(_ context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, exists := m.posts[postID]
	if !exists {
		return repositories.ErrNotFound
	}
	post := clone(stored)
	if err := post.AddComment(comment); err != nil {
		return err
	}
	m.posts[postID] = *post
	m.Writes++
	return nil
}

func (m *CommentRepository) ListByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[postID]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clone(post).Comments, nil
}

func (m *CommentRepository) Delete(_ context.Context, postID, commentID primitive.ObjectID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, exists := m.posts[postID]
	if !exists {
		return repositories.ErrNotFound
	}
	post := clone(stored)
	if err := post.RemoveComment(commentID); err != nil {
		return err
	}
	m.posts[postID] = *post
	m.Writes++
	return nil
}
