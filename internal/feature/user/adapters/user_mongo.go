package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/feature/user/usecase"
)

// UsersCollection is the MongoDB collection holding user documents.
const UsersCollection = "users"

// userDocument is the BSON shape of a user. Both graph sets are embedded arrays.
type userDocument struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	Password   string    `bson:"password"`
	About      string    `bson:"about,omitempty"`
	AvatarPath *string   `bson:"avatar_path,omitempty"`
	Following  []string  `bson:"following"`
	Followers  []string  `bson:"followers"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d *userDocument) toEntity() *entity.User {
	u := &entity.User{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Password:   d.Password,
		About:      d.About,
		AvatarPath: d.AvatarPath,
		Following:  d.Following,
		Followers:  d.Followers,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	return u
}

// userMongo is a MongoDB implementation of the UserRepository interface.
// Set mutations map directly onto $addToSet and $pull.
type userMongo struct {
	col *mongo.Collection
}

// Compile-time check to ensure userMongo implements UserRepository.
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo creates a new instance of userMongo on the given database.
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{col: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", UsersCollection, err)
	}
	return nil
}

// wrapError maps driver errors onto usecase errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return usecase.ErrUserNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return usecase.ErrEmailAlreadyExists
	}
	return err
}

// Create inserts a new user document. An empty ID is replaced with a random UUID.
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}

	doc := userDocument{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Password:   u.Password,
		About:      u.About,
		AvatarPath: u.AvatarPath,
		Following:  u.Following,
		Followers:  u.Followers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return wrapError(err)
}

func (r *userMongo) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toEntity(), nil
}

// FindByID retrieves a user by ID.
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// FindByEmail retrieves a user by email.
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userMongo) findMany(ctx context.Context, filter bson.D, projection bson.D) ([]*entity.User, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	users := []*entity.User{}
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindAll lists every user without credentials or graph sets.
func (r *userMongo) FindAll(ctx context.Context) ([]*entity.User, error) {
	return r.findMany(ctx, bson.D{}, bson.D{
		{Key: "name", Value: 1},
		{Key: "email", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "updated_at", Value: 1},
	})
}

// FindAllExcept lists every user whose ID is not in ids, projected to feed fields.
func (r *userMongo) FindAllExcept(ctx context.Context, ids []string) ([]*entity.User, error) {
	if ids == nil {
		ids = []string{}
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}
	return r.findMany(ctx, filter, bson.D{
		{Key: "name", Value: 1},
		{Key: "avatar_path", Value: 1},
	})
}

// findOneAndUpdate applies update to the document with the given ID and returns it after the update.
func (r *userMongo) findOneAndUpdate(ctx context.Context, id string, update bson.D) (*entity.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toEntity(), nil
}

// Update applies the allow-listed patch with $set.
func (r *userMongo) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.About != nil {
		set = append(set, bson.E{Key: "about", Value: *patch.About})
	}
	if patch.AvatarPath != nil {
		set = append(set, bson.E{Key: "avatar_path", Value: *patch.AvatarPath})
	}
	return r.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: set}})
}

// Delete removes the document and returns it as it was.
func (r *userMongo) Delete(ctx context.Context, id string) (*entity.User, error) {
	var doc userDocument
	if err := r.col.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toEntity(), nil
}

// AddToSet inserts value into the named array with $addToSet.
func (r *userMongo) AddToSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	return r.mutateSet(ctx, id, "$addToSet", field, value)
}

// RemoveFromSet removes value from the named array with $pull.
func (r *userMongo) RemoveFromSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	return r.mutateSet(ctx, id, "$pull", field, value)
}

func (r *userMongo) mutateSet(ctx context.Context, id, operator string, field entity.SetField, value string) (*entity.User, error) {
	if !field.Valid() {
		return nil, errors.New("unknown set field: " + string(field))
	}
	update := bson.D{
		{Key: operator, Value: bson.D{{Key: string(field), Value: value}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
	return r.findOneAndUpdate(ctx, id, update)
}
