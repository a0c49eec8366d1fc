package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/datamind/datamind-api/internal/core/domain"
)

const auditCollection = "auth_events"

// MongoAuditRepository implements ports.AuditRepository on MongoDB.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuthEvent struct {
	UserID    string `bson:"user_id"`
	Email     string `bson:"email"`
	SessionID string `bson:"session_id,omitempty"`
	Type      string `bson:"type"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuthEvent{
		UserID:    event.UserID,
		Email:     event.Email,
		SessionID: event.SessionID,
		Type:      string(event.Type),
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

func (r *MongoAuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuthEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*domain.AuthEvent
	for cursor.Next(ctx) {
		var me mongoAuthEvent
		if err := cursor.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode auth event: %w", err)
		}
		events = append(events, &domain.AuthEvent{
			UserID:    me.UserID,
			Email:     me.Email,
			SessionID: me.SessionID,
			Type:      domain.AuthEventType(me.Type),
			Timestamp: unixToTime(me.Timestamp),
		})
	}
	return events, cursor.Err()
}
