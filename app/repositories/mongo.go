package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentblog/app/models"
)

const postsCollection = "posts"

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")
)

// MongoConfig locates the MongoDB database holding the posts collection.
type MongoConfig struct {
	URI    string
	DBName string
}

func (c MongoConfig) Options() *options.ClientOptions {
	return options.Client().ApplyURI(c.URI)
}

// MongoStore owns a MongoDB client and the repositories built on it.
type MongoStore struct {
	client   *mongo.Client
	dbName   string
	Posts    *MongoPostRepository
	Comments *MongoCommentRepository
}

// NewMongoStore connects to MongoDB and makes sure the posts collection exists.
func NewMongoStore(ctx context.Context, conf MongoConfig) (*MongoStore, error) {
	if conf.URI == "" || conf.DBName == "" {
		return nil, fmt.Errorf("%w: uri and database name are required", ErrConnectDB)
	}

	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectDB, err)
	}

	s := &MongoStore{client: client, dbName: conf.DBName}
	coll := s.collection()
	s.Posts = &MongoPostRepository{coll: coll}
	s.Comments = &MongoCommentRepository{coll: coll}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", ErrDBNotResponding, err)
	}
	if err := s.createCollection(ctx, postsCollection); err != nil {
		log.WithError(err).Warn("[repositories] unable to create posts collection")
	}
	return s, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(postsCollection)
}

// createCollection creates a collection with the given name in the database if it doesn't already exist.
func (s *MongoStore) createCollection(ctx context.Context, collName string) error {
	db := s.client.Database(s.dbName)
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collName}})
	if err != nil {
		return fmt.Errorf("failed to list collection names: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	return db.CreateCollection(ctx, collName)
}

// MongoPostRepository implements PostRepository on a MongoDB collection.
type MongoPostRepository struct {
	coll *mongo.Collection
}

// Create inserts a new post document
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

// GetByID retrieves a post by ID
func (r *MongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalize(&post)
	return &post, nil
}

// Exists reports whether a post with the given ID is stored
func (r *MongoPostRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List retrieves every post matching the filter, newest first
func (r *MongoPostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := bson.M{}
	if filter.Course != "" {
		query["course"] = filter.Course
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	for _, p := range posts {
		normalize(p)
	}
	return posts, nil
}

// Update sets the patched fields in a single atomic operation
func (r *MongoPostRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Course != nil {
		set["course"] = *patch.Course
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalize(&post)
	return &post, nil
}

// Delete removes the post document, comments included
func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// MongoCommentRepository implements CommentRepository with atomic array operators
// on the embedded comments field.
type MongoCommentRepository struct {
	coll *mongo.Collection
}

// Prepend pushes the comment to position 0 of the post's comments
func (r *MongoCommentRepository) Prepend(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comments": bson.M{
			"$each":     []*models.Comment{comment},
			"$position": 0,
		}},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPost retrieves the comments of a post, most recent first
func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	var post models.Post
	opts := options.FindOne().SetProjection(bson.M{"comments": 1})
	err := r.coll.FindOne(ctx, bson.M{"_id": postID}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalize(&post)
	return post.Comments, nil
}

// Delete pulls one comment out of the post's comments
func (r *MongoCommentRepository) Delete(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrCommentNotFound
}

func normalize(post *models.Post) {
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
}
