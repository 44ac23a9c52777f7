package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
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

type complaintDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	ComplaintID  string              `bson:"complaintId"`
	PhoneNumber  string              `bson:"phoneNumber"`
	RecordingURL string              `bson:"recordingUrl"`
	Description  string              `bson:"description,omitempty"`
	Status       string              `bson:"status"`
	Priority     string              `bson:"priority"`
	Category     string              `bson:"category"`
	AssignedTo   *primitive.ObjectID `bson:"assignedTo,omitempty"`
	Notes        []string            `bson:"notes"`
	CreatedAt    time.Time           `bson:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt"`
}

func (d complaintDoc) model() models.Complaint {
	notes := d.Notes
	if notes == nil {
		notes = []string{}
	}
	return models.Complaint{
		ID:           d.ID.Hex(),
		ComplaintID:  d.ComplaintID,
		PhoneNumber:  d.PhoneNumber,
		RecordingURL: d.RecordingURL,
		Description:  d.Description,
		Status:       models.ComplaintStatus(d.Status),
		Priority:     models.ComplaintPriority(d.Priority),
		Category:     models.ComplaintCategory(d.Category),
		AssignedTo:   hexOrEmpty(d.AssignedTo),
		Notes:        notes,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type ComplaintRepo struct {
	coll  *mongo.Collection
	newID func() string
}

func NewComplaintRepo(db *mongo.Database, newID func() string) *ComplaintRepo {
	return &ComplaintRepo{coll: db.Collection(database.CollComplaints), newID: newID}
}

func (r *ComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	c.PrepareCreate(r.newID)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalid, err)
	}
	doc := complaintDoc{
		ComplaintID:  c.ComplaintID,
		PhoneNumber:  c.PhoneNumber,
		RecordingURL: c.RecordingURL,
		Description:  c.Description,
		Status:       string(c.Status),
		Priority:     string(c.Priority),
		Category:     string(c.Category),
		Notes:        c.Notes,
	}
	if c.AssignedTo != "" {
		id, ok := oid(c.AssignedTo)
		if !ok {
			return fmt.Errorf("%w: assignedTo is not a user id", repository.ErrInvalid)
		}
		doc.AssignedTo = &id
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc.CreatedAt, doc.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mapWriteErr(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = id.Hex()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *ComplaintRepo) FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	var d complaintDoc
	err := r.coll.FindOne(ctx, bson.M{"complaintId": complaintID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := d.model()
	return &c, nil
}

func (r *ComplaintRepo) UpdateStatus(ctx context.Context, complaintID string, status models.ComplaintStatus, note string) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", repository.ErrInvalid, status)
	}
	var d complaintDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"complaintId": complaintID},
		statusUpdate(status, note, time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := d.model()
	return &c, nil
}

// statusUpdate sets status and pushes note when it has content. Existing
// notes are never rewritten.
func statusUpdate(status models.ComplaintStatus, note string, now time.Time) bson.M {
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": now}}
	if note = strings.TrimSpace(note); note != "" {
		update["$push"] = bson.M{"notes": note}
	}
	return update
}

func (r *ComplaintRepo) List(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	f = f.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, complaintQuery(f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Complaint{}
	for cur.Next(ctx) {
		var d complaintDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.model())
	}
	return out, cur.Err()
}

func (r *ComplaintRepo) Count(ctx context.Context, f repository.ComplaintFilter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, complaintQuery(f.Normalize()))
	return int(n), err
}

func (r *ComplaintRepo) Summary(ctx context.Context, resolvedSince time.Time) (repository.ComplaintSummary, error) {
	open := bson.A{string(models.StatusPending), string(models.StatusInProgress)}
	done := bson.A{string(models.StatusResolved), string(models.StatusClosed)}

	var s repository.ComplaintSummary
	queries := []struct {
		dst    *int
		filter bson.M
	}{
		{&s.Open, bson.M{"status": bson.M{"$in": open}}},
		{&s.Resolved7d, bson.M{"status": bson.M{"$in": done}, "updatedAt": bson.M{"$gte": resolvedSince}}},
		{&s.UrgentOpen, bson.M{
			"status":   bson.M{"$in": open},
			"priority": bson.M{"$in": bson.A{string(models.PriorityHigh), string(models.PriorityUrgent)}},
		}},
	}
	for _, q := range queries {
		n, err := r.coll.CountDocuments(ctx, q.filter)
		if err != nil {
			return s, err
		}
		*q.dst = int(n)
	}
	return s, nil
}

// complaintQuery mirrors the SQL filter set of the postgres repository; q
// matches literally, case-insensitive, on both.
func complaintQuery(f repository.ComplaintFilter) bson.M {
	q := bson.M{}
	if f.Q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Q), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"phoneNumber": rx},
			bson.M{"description": rx},
		}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	return q
}
