package doctorRepo

import (
	"context"
	"fmt"
	"time"

	"medibook/database"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDoctorRepo is the MongoDB-backed doctor repository.
type MongoDoctorRepo struct {
	coll     *mongo.Collection
	apptColl *mongo.Collection
}

// NewMongoDoctorRepo returns a doctor repository bound to the global client.
func NewMongoDoctorRepo() *MongoDoctorRepo {
	db := database.DB()
	return &MongoDoctorRepo{
		coll:     db.Collection("doctors"),
		apptColl: db.Collection("appointments"),
	}
}

func (r *MongoDoctorRepo) Insert(ctx context.Context, doc *models.Doctor) error {
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert doctor: %w", err)
	}
	return nil
}

func (r *MongoDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	var doc models.Doctor
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch doctor %s: %w", id, err)
	}
	return &doc, nil
}

func (r *MongoDoctorRepo) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doc models.Doctor
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch doctor by email: %w", err)
	}
	return &doc, nil
}

func (r *MongoDoctorRepo) List(ctx context.Context) ([]models.Doctor, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Doctor
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode doctors: %w", err)
	}
	return docs, nil
}

func (r *MongoDoctorRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update doctor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoDoctorRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"available": available})
}

// ReserveSlot claims (date, slotTime) with a single conditional update: the
// filter only matches when the time label is absent from the date's booked
// array, so under concurrency exactly one caller's $addToSet lands and every
// other caller sees MatchedCount == 0.
func (r *MongoDoctorRepo) ReserveSlot(ctx context.Context, id, date, slotTime string) error {
	key := "slots_booked." + date
	filter := bson.M{
		"id": id,
		key:  bson.M{"$ne": slotTime},
	}
	update := bson.M{
		"$addToSet": bson.M{key: slotTime},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the slot is taken or the doctor is gone; tell them apart.
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return fmt.Errorf("failed to verify doctor %s: %w", id, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrSlotTaken
	}
	return nil
}

// ReleaseSlot pulls the time label from the date's booked array. Pulling an
// absent element matches the document but modifies nothing, which keeps the
// operation idempotent.
func (r *MongoDoctorRepo) ReleaseSlot(ctx context.Context, id, date, slotTime string) error {
	key := "slots_booked." + date
	update := bson.M{
		"$pull": bson.M{key: slotTime},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

func (r *MongoDoctorRepo) BookedSlots(ctx context.Context, id, date string) ([]string, error) {
	key := "slots_booked." + date
	var result struct {
		SlotsBooked map[string][]string `bson:"slots_booked"`
	}
	opts := options.FindOne().SetProjection(bson.M{key: 1})
	err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booked slots for %s: %w", id, err)
	}
	return result.SlotsBooked[date], nil
}

// RebuildSlotCalendar recomputes the whole slots_booked map from the
// appointment ledger (live statuses only) and overwrites the cached view.
// This is an administrative repair, not part of any booking path.
func (r *MongoDoctorRepo) RebuildSlotCalendar(ctx context.Context, id string) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"doctor_id": id,
			"status":    bson.M{"$in": models.LiveStatuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$slot_date",
			"times": bson.M{"$addToSet": "$slot_time"},
		}}},
	}

	cursor, err := r.apptColl.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to aggregate appointments for %s: %w", id, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date  string   `bson:"_id"`
		Times []string `bson:"times"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return fmt.Errorf("failed to decode calendar aggregation: %w", err)
	}

	calendar := make(map[string][]string, len(rows))
	for _, row := range rows {
		calendar[row.Date] = row.Times
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"slots_booked": calendar, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to store rebuilt calendar for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
