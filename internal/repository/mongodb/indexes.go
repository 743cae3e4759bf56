package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	activeSlotIndex  = "ux_bookings_active_slot"
	emailIndex       = "ux_users_email"
	licenseIndex     = "ux_users_license_number"
	doctorDayIndex   = "ux_availability_doctor_day"
	bookingCodeIndex = "ux_bookings_booking_code"
)

// EnsureIndexes creates the unique indexes every repository in this package relies on.
// It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName(emailIndex).SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "doctor_profile.license_number", Value: 1}},
				Options: options.Index().SetName(licenseIndex).SetUnique(true).
					SetPartialFilterExpression(bson.M{"doctor_profile.license_number": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "full_name", Value: 1}}},
		},
		availabilitiesCollection: {
			{
				Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "day_of_week", Value: 1}},
				Options: options.Index().SetName(doctorDayIndex).SetUnique(true),
			},
		},
		bookingsCollection: {
			{
				Keys:    bson.D{{Key: "booking_code", Value: 1}},
				Options: options.Index().SetName(bookingCodeIndex).SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time_slot", Value: 1}},
				Options: options.Index().SetName(activeSlotIndex).SetUnique(true).
					SetPartialFilterExpression(bson.M{"occupying": true}),
			},
			{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		auditLogsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// isDuplicateKey reports whether err is a duplicate key error on the named index.
func isDuplicateKey(err error, index string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), index)
}
