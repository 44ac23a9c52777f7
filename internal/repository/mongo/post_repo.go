package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civic-backend/internal/database"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
)

type geoDoc struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	User        primitive.ObjectID   `bson:"user"`
	Description string               `bson:"description,omitempty"`
	VoiceMsg    string               `bson:"voiceMsg,omitempty"`
	Media       []string             `bson:"media"`
	Location    geoDoc               `bson:"location"`
	Likes       []primitive.ObjectID `bson:"likes"`
	Comments    []commentDoc         `bson:"comments"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`

	// Author is only filled by the $lookup stage of reads.
	Author *userDoc `bson:"author,omitempty"`
}

func (d postDoc) model() models.Post {
	p := models.Post{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		Description: d.Description,
		VoiceMsg:    d.VoiceMsg,
		Media:       d.Media,
		Likes:       make([]string, 0, len(d.Likes)),
		Comments:    []models.PostComment{},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	if len(d.Location.Coordinates) == 2 {
		p.Location = models.NewGeoPoint(d.Location.Coordinates[1], d.Location.Coordinates[0])
	}
	for _, id := range d.Likes {
		p.Likes = append(p.Likes, id.Hex())
	}
	if d.Author != nil {
		p.Author = &models.Author{ID: d.Author.ID.Hex(), Username: d.Author.Username, Email: d.Author.Email}
	}
	return p
}

type PostRepo struct {
	posts *mongo.Collection
	users *mongo.Collection
}

func NewPostRepo(db *mongo.Database) repository.PostRepository {
	return &PostRepo{posts: db.Collection(database.CollPosts), users: db.Collection(database.CollUsers)}
}

func (r *PostRepo) Create(ctx context.Context, p *models.Post) error {
	uid, ok := oid(p.UserID)
	if !ok {
		return repository.ErrNotFound
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := postDoc{
		User:        uid,
		Description: p.Description,
		VoiceMsg:    p.VoiceMsg,
		Media:       p.Media,
		Location:    geoDoc{Type: "Point", Coordinates: []float64{p.Location.Lng(), p.Location.Lat()}},
		Likes:       []primitive.ObjectID{},
		Comments:    []commentDoc{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := r.posts.InsertOne(ctx, doc)
	if err != nil {
		return mapWriteErr(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id.Hex()
	}
	p.Likes = []string{}
	p.Comments = []models.PostComment{}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// withAuthor joins the posting user the way populate("user") would.
func withAuthor(stages ...bson.D) mongo.Pipeline {
	return append(mongo.Pipeline(stages),
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         database.CollUsers,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "author",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
	)
}

func (r *PostRepo) Get(ctx context.Context, id string) (*models.Post, error) {
	pid, ok := oid(id)
	if !ok {
		return nil, nil
	}
	cur, err := r.posts.Aggregate(ctx, withAuthor(bson.D{{Key: "$match", Value: bson.M{"_id": pid}}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		return nil, cur.Err()
	}
	var row postDoc
	if err := cur.Decode(&row); err != nil {
		return nil, err
	}

	p := row.model()
	names, err := r.usernames(ctx, row.Comments)
	if err != nil {
		return nil, err
	}
	for _, c := range row.Comments {
		p.Comments = append(p.Comments, models.PostComment{
			ID:        c.ID.Hex(),
			PostID:    p.ID,
			UserID:    c.User.Hex(),
			Username:  names[c.User],
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return &p, nil
}

func (r *PostRepo) usernames(ctx context.Context, comments []commentDoc) (map[primitive.ObjectID]string, error) {
	names := map[primitive.ObjectID]string{}
	if len(comments) == 0 {
		return names, nil
	}
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u userDoc
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		names[u.ID] = u.Username
	}
	return names, cur.Err()
}

// List returns posts newest first with authors populated; comments are only
// loaded by Get.
func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	cur, err := r.posts.Aggregate(ctx, withAuthor(
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$skip", Value: int64(offset)}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	for cur.Next(ctx) {
		var row postDoc
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.model())
	}
	return out, cur.Err()
}

// ToggleLike pulls the like when present and adds it otherwise.
func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	pid, ok := oid(postID)
	if !ok {
		return false, 0, repository.ErrNotFound
	}
	uid, ok := oid(userID)
	if !ok {
		return false, 0, repository.ErrNotFound
	}

	after := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var d postDoc
	err := r.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": pid, "likes": uid},
		bson.M{"$pull": bson.M{"likes": uid}},
		after,
	).Decode(&d)
	if err == nil {
		return false, len(d.Likes), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, err
	}

	err = r.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": pid},
		bson.M{"$addToSet": bson.M{"likes": uid}},
		after,
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, repository.ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return true, len(d.Likes), nil
}

func (r *PostRepo) AddComment(ctx context.Context, postID, userID, text string) (*models.PostComment, error) {
	pid, ok := oid(postID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	uid, ok := oid(userID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	var author userDoc
	err := r.users.FindOne(ctx, bson.M{"_id": uid}, options.FindOne().SetProjection(bson.M{"username": 1})).Decode(&author)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c := commentDoc{
		ID:        primitive.NewObjectID(),
		User:      uid,
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": pid}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updatedAt": c.CreatedAt},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, repository.ErrNotFound
	}
	return &models.PostComment{
		ID:        c.ID.Hex(),
		PostID:    postID,
		UserID:    userID,
		Username:  author.Username,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}, nil
}
