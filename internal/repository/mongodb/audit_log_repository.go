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

type auditLogRepository struct {
	coll *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) domainRepo.AuditLogRepository {
	return &auditLogRepository{coll: db.Collection(auditLogsCollection)}
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, toAuditLogDoc(log))
	return err
}

func (r *auditLogRepository) FindAll(ctx context.Context, filter entity.AuditLogFilter, limit, offset int) ([]entity.AuditLog, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = filter.UserID.String()
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []auditLogDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	logs := make([]entity.AuditLog, 0, len(docs))
	for _, d := range docs {
		logs = append(logs, d.toEntity())
	}
	return logs, total, nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AuditLog, error) {
	var doc auditLogDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	l := doc.toEntity()
	return &l, nil
}
