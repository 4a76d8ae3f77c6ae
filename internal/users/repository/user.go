package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	usererrors "skybook/internal/users/errors"
	"skybook/pkg/config"
	"skybook/pkg/model"
)

const CollectionName = "users"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context, limit int) ([]*model.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	SetRole(ctx context.Context, id string, role model.UserRole) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create relies on the unique email index; a duplicate key surfaces as
// ErrEmailTaken.
func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usererrors.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usererrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context, limit int) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

func (r *mongoUserRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return r.setField(ctx, id, "blocked", blocked)
}

func (r *mongoUserRepository) SetRole(ctx context.Context, id string, role model.UserRole) error {
	return r.setField(ctx, id, "role", role)
}

func (r *mongoUserRepository) setField(ctx context.Context, id, field string, value any) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return usererrors.ErrNotFound
	}
	return nil
}
