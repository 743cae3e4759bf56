package mongodb

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) domainRepo.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.IsActive == nil {
		user.IsActive = entity.BoolPtr(true)
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	syncProfileIDs(user)

	_, err := r.coll.InsertOne(ctx, toUserDoc(user))
	return mapUserError(err)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now().UTC()
	syncProfileIDs(user)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, toUserDoc(user))
	return mapUserError(err)
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *userRepository) ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]entity.User, int64, error) {
	query := bson.M{"role": string(entity.RoleDoctor), "doctor_profile": bson.M{"$exists": true}}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.Name != "" {
		query["full_name"] = containsPattern(filter.Name)
	}
	if filter.Specialization != "" {
		query["doctor_profile.specialization"] = containsPattern(filter.Specialization)
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	users := make([]entity.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toEntity())
	}
	return users, total, nil
}

// containsPattern is a case-insensitive substring match with the input taken literally.
func containsPattern(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(strings.TrimSpace(s)), "$options": "i"}
}

func syncProfileIDs(user *entity.User) {
	if user.DoctorProfile != nil {
		user.DoctorProfile.UserID = user.ID
	}
	if user.PatientProfile != nil {
		user.PatientProfile.UserID = user.ID
	}
}

func mapUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicateKey(err, emailIndex):
		return domainRepo.ErrEmailTaken
	case isDuplicateKey(err, licenseIndex):
		return domainRepo.ErrLicenseTaken
	default:
		return err
	}
}
