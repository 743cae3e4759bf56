package mongodb

import (
	"context"
	"errors"
	"time"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type availabilityRepository struct {
	coll *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) domainRepo.AvailabilityRepository {
	return &availabilityRepository{coll: db.Collection(availabilitiesCollection)}
}

func (r *availabilityRepository) Upsert(ctx context.Context, availability *entity.WeeklyAvailability) error {
	now := time.Now().UTC()
	slots := []string(availability.Slots)
	if slots == nil {
		slots = []string{}
	}

	filter := bson.M{"doctor_id": availability.DoctorID.String(), "day_of_week": int(availability.DayOfWeek)}
	update := bson.M{
		"$set":         bson.M{"slots": slots, "updated_at": now},
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "created_at": now},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}

	stored, err := r.FindByDoctorAndDay(ctx, availability.DoctorID, availability.DayOfWeek)
	if err != nil {
		return err
	}
	if stored != nil {
		*availability = *stored
	}
	return nil
}

func (r *availabilityRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.WeeklyAvailability, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"doctor_id": doctorID.String()},
		options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []availabilityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]entity.WeeklyAvailability, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, *d.toEntity())
	}
	return rows, nil
}

func (r *availabilityRepository) FindByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday) (*entity.WeeklyAvailability, error) {
	var doc availabilityDoc
	err := r.coll.FindOne(ctx, bson.M{"doctor_id": doctorID.String(), "day_of_week": int(day)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}
