// File: internal/user/mongo_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_backend/internal/common"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Avatar    string    `bson:"avatar"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d userDoc) toUser() (*User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("user document has bad _id %q: %w", d.ID, err)
	}
	u := &User{Username: d.Username, Email: d.Email, Password: d.Password, Avatar: d.Avatar}
	u.ID = id
	u.CreatedAt = d.CreatedAt
	u.UpdatedAt = d.UpdatedAt
	return u, nil
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a user repository backed by MongoDB.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(usersCollection)}
}

// EnsureMongoIndexes creates the unique username and email indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	user.EnsureID(time.Now().UTC())
	doc := userDoc{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *mongoRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *mongoRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = NormalizeEmail(*patch.Email)
	}
	if patch.PasswordHash != nil {
		set["password"] = *patch.PasswordHash
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}

	var doc userDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithMessage("User not found!")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, errDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.toUser()
}

func (r *mongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound.WithMessage("User not found!")
	}
	return nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithMessage("User not found!")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser()
}
