package mongodb

import (
	"context"
	"errors"
	"time"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"
	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) domainRepo.BookingRepository {
	return &bookingRepository{
		coll:  db.Collection(bookingsCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.BookingCode == "" {
		booking.BookingCode = entity.NewBookingCode(booking.Date)
	}
	if booking.Status == "" {
		booking.Status = entity.BookingStatusScheduled
	}
	now := time.Now().UTC()
	booking.CreatedAt, booking.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, toBookingDoc(booking))
	if isDuplicateKey(err, activeSlotIndex) {
		return domainRepo.ErrSlotTaken.Wrap(err)
	}
	return err
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var doc bookingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	bookings := []entity.Booking{doc.toEntity()}
	if err := r.attachUsers(ctx, bookings); err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

func (r *bookingRepository) FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date calendar.Date, timeSlot string) (*entity.Booking, error) {
	var doc bookingDoc
	err := r.coll.FindOne(ctx, bson.M{
		"doctor_id": doctorID.String(),
		"date":      date.String(),
		"time_slot": timeSlot,
		"occupying": true,
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	b := doc.toEntity()
	return &b, nil
}

func (r *bookingRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date calendar.Date, statuses []entity.BookingStatus) ([]entity.Booking, error) {
	filter := bson.M{"doctor_id": doctorID.String(), "date": date.String()}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statusStrings(statuses)}
	}
	return r.find(ctx, filter, bson.D{{Key: "time_slot", Value: 1}})
}

func (r *bookingRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Booking, error) {
	bookings, err := r.find(ctx,
		bson.M{"patient_id": patientID.String()},
		bson.D{{Key: "date", Value: -1}, {Key: "time_slot", Value: -1}},
	)
	if err != nil {
		return nil, err
	}
	return bookings, r.attachUsers(ctx, bookings)
}

func (r *bookingRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID, date *calendar.Date) ([]entity.Booking, error) {
	filter := bson.M{"doctor_id": doctorID.String()}
	if date != nil {
		filter["date"] = date.String()
	}
	bookings, err := r.find(ctx, filter, bson.D{{Key: "date", Value: 1}, {Key: "time_slot", Value: 1}})
	if err != nil {
		return nil, err
	}
	return bookings, r.attachUsers(ctx, bookings)
}

func (r *bookingRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]entity.Booking, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	bookings := make([]entity.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toEntity())
	}
	return bookings, nil
}

// Transition is a conditional update: the status filter makes concurrent transitions
// of the same booking resolve to exactly one winner.
func (r *bookingRepository) Transition(ctx context.Context, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus, fields entity.BookingFields) (int64, error) {
	set := bson.M{
		"status":     string(to),
		"occupying":  to.Occupies(),
		"updated_at": time.Now().UTC(),
	}
	if fields.Notes != nil {
		set["notes"] = *fields.Notes
	}
	if fields.CancelReason != nil {
		set["cancel_reason"] = *fields.CancelReason
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "status": bson.M{"$in": statusStrings(from)}},
		bson.M{"$set": set},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *bookingRepository) CountBySpecialtyAndStatus(ctx context.Context, from, to calendar.Date) ([]entity.SpecialtyStatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from.String(), "$lte": to.String()}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"specialty": "$specialty", "status": "$status"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.specialty", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Specialty string `bson:"specialty"`
			Status    string `bson:"status"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]entity.SpecialtyStatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.SpecialtyStatusCount{
			Specialty: row.ID.Specialty,
			Status:    entity.BookingStatus(row.ID.Status),
			Count:     row.Count,
		})
	}
	return out, nil
}

// attachUsers fills Doctor and Patient the way the SQL store preloads them.
func (r *bookingRepository) attachUsers(ctx context.Context, bookings []entity.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bookings)*2)
	seen := make(map[string]struct{})
	for _, b := range bookings {
		for _, id := range []string{b.DoctorID.String(), b.PatientID.String()} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}
	users := make(map[uuid.UUID]*entity.User, len(docs))
	for _, d := range docs {
		u := d.toEntity()
		users[u.ID] = u
	}

	for i := range bookings {
		bookings[i].Doctor = users[bookings[i].DoctorID]
		bookings[i].Patient = users[bookings[i].PatientID]
	}
	return nil
}
