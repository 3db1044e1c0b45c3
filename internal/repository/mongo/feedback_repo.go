package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mjnutrafit/coaching-api/internal/domain"
)

type feedbackRepository struct {
	collection *mongo.Collection
	ids        *sequence
	users      *userRepository
}

// Upsert updates the feedback of fb.ProgressLogID in place or inserts a new
// document; the unique index on progressLogId guards concurrent inserts.
func (r *feedbackRepository) Upsert(ctx context.Context, fb *domain.Feedback) error {
	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"progressLogId": fb.ProgressLogID},
		bson.M{"$set": bson.M{"feedback": fb.Text, "coachId": fb.CoachID, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		id, err := r.ids.next(ctx, feedbackCollection)
		if err != nil {
			return err
		}
		fb.ID = id
		fb.CreatedAt = now
		fb.UpdatedAt = now
		if _, err := r.collection.InsertOne(ctx, fb); err != nil {
			return translate(err)
		}
	}

	stored, err := r.GetByLogID(ctx, fb.ProgressLogID)
	if err != nil {
		return err
	}
	*fb = *stored
	return nil
}

func (r *feedbackRepository) GetByLogID(ctx context.Context, logID uint) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := r.collection.FindOne(ctx, bson.M{"progressLogId": logID}).Decode(&fb); err != nil {
		return nil, translate(err)
	}
	coach, err := r.users.GetByID(ctx, fb.CoachID)
	if err == nil {
		fb.Coach = coach
	}
	return &fb, nil
}

func (r *feedbackRepository) DeleteByLogID(ctx context.Context, logID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"progressLogId": logID})
	return err
}

func (r *feedbackRepository) byLogIDs(ctx context.Context, logIDs []uint) (map[uint]*domain.Feedback, error) {
	var items []domain.Feedback
	if err := findAll(ctx, r.collection, bson.M{"progressLogId": bson.M{"$in": logIDs}}, &items); err != nil {
		return nil, err
	}
	out := make(map[uint]*domain.Feedback, len(items))
	for i := range items {
		out[items[i].ProgressLogID] = &items[i]
	}
	return out, nil
}
