package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civic-backend/internal/database"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

type userDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Username          string             `bson:"username"`
	Email             string             `bson:"email"`
	Password          string             `bson:"password"`
	Role              string             `bson:"role"`
	IsVerified        bool               `bson:"isVerified"`
	VerificationToken string             `bson:"verificationToken,omitempty"`
	Name              string             `bson:"name,omitempty"`
	Age               *int               `bson:"age,omitempty"`
	DOB               *time.Time         `bson:"dob,omitempty"`
	Phone             string             `bson:"phone,omitempty"`
	Bio               string             `bson:"bio,omitempty"`
	ProfilePic        string             `bson:"profilePic,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:                d.ID.Hex(),
		Username:          d.Username,
		Email:             d.Email,
		PasswordHash:      d.Password,
		Role:              d.Role,
		IsVerified:        d.IsVerified,
		VerificationToken: d.VerificationToken,
		Name:              d.Name,
		Age:               d.Age,
		DOB:               d.DOB,
		Phone:             d.Phone,
		Bio:               d.Bio,
		ProfilePic:        d.ProfilePic,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type UserRepo struct{ coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) repository.UserRepository {
	return &UserRepo{coll: db.Collection(database.CollUsers)}
}

func decodeUser(res *mongo.SingleResult) (*models.User, error) {
	var d userDoc
	err := res.Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d.model(), nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleCitizen
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		Username:          u.Username,
		Email:             strings.ToLower(u.Email),
		Password:          u.PasswordHash,
		Role:              u.Role,
		IsVerified:        u.IsVerified,
		VerificationToken: u.VerificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mapWriteErr(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id.Hex()
	}
	u.Email = doc.Email
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	key, ok := oid(id)
	if !ok {
		return nil, nil
	}
	return decodeUser(r.coll.FindOne(ctx, bson.M{"_id": key}))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return decodeUser(r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}))
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return decodeUser(r.coll.FindOne(ctx, bson.M{"verificationToken": token}))
}

func (r *UserRepo) MarkVerified(ctx context.Context, id string) error {
	key, ok := oid(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": key}, bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"verificationToken": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, error) {
	key, ok := oid(id)
	if !ok {
		return nil, nil
	}
	set := bson.M{
		"name":      p.Name,
		"age":       p.Age,
		"dob":       p.DOB,
		"phone":     p.Phone,
		"bio":       p.Bio,
		"updatedAt": time.Now().UTC(),
	}
	if p.ProfilePic != nil {
		set["profilePic"] = *p.ProfilePic
	}
	return r.findAndSet(ctx, key, set)
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	key, ok := oid(id)
	if !ok {
		return nil, nil
	}
	return r.findAndSet(ctx, key, bson.M{"role": role, "updatedAt": time.Now().UTC()})
}

func (r *UserRepo) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return decodeUser(r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}
