package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mjnutrafit/coaching-api/internal/domain"
)

type progressRepository struct {
	collection *mongo.Collection
	ids        *sequence
	users      *userRepository
	plans      *planRepository
	feedback   *feedbackRepository
}

func (r *progressRepository) Create(ctx context.Context, log *domain.ProgressLog) error {
	id, err := r.ids.next(ctx, progressCollection)
	if err != nil {
		return err
	}
	log.ID = id
	log.WeekStartDate = domain.NormalizeWeek(log.WeekStartDate)
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	_, err = r.collection.InsertOne(ctx, log)
	return translate(err)
}

func (r *progressRepository) Update(ctx context.Context, log *domain.ProgressLog) error {
	log.WeekStartDate = domain.NormalizeWeek(log.WeekStartDate)
	log.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": log.ID}, log)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *progressRepository) GetByID(ctx context.Context, id uint) (*domain.ProgressLog, error) {
	var log domain.ProgressLog
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log); err != nil {
		return nil, translate(err)
	}
	logs := []domain.ProgressLog{log}
	if err := r.attach(ctx, logs, true, true); err != nil {
		return nil, err
	}
	return &logs[0], nil
}

func (r *progressRepository) GetByClientAndWeek(ctx context.Context, clientID uint, week time.Time) (*domain.ProgressLog, error) {
	var log domain.ProgressLog
	filter := bson.M{"clientId": clientID, "weekStartDate": domain.NormalizeWeek(week)}
	if err := r.collection.FindOne(ctx, filter).Decode(&log); err != nil {
		return nil, translate(err)
	}
	return &log, nil
}

func (r *progressRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.ProgressLog, error) {
	logs, err := r.list(ctx, bson.M{"clientId": clientID}, 0)
	if err != nil {
		return nil, err
	}
	return logs, r.attach(ctx, logs, false, true)
}

func (r *progressRepository) ListForCoach(ctx context.Context, coachID uint) ([]domain.ProgressLog, error) {
	clientIDs, err := r.plans.clientIDsOf(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if len(clientIDs) == 0 {
		return []domain.ProgressLog{}, nil
	}
	logs, err := r.list(ctx, bson.M{"clientId": bson.M{"$in": clientIDs}}, 0)
	if err != nil {
		return nil, err
	}
	return logs, r.attach(ctx, logs, true, true)
}

func (r *progressRepository) Recent(ctx context.Context, clientID uint, limit int) ([]domain.ProgressLog, error) {
	return r.list(ctx, bson.M{"clientId": clientID}, int64(limit))
}

func (r *progressRepository) CountSubmittedForCoach(ctx context.Context, coachID uint) (int64, error) {
	clientIDs, err := r.plans.clientIDsOf(ctx, coachID)
	if err != nil || len(clientIDs) == 0 {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{
		"status":   domain.LogSubmitted,
		"clientId": bson.M{"$in": clientIDs},
	})
}

func (r *progressRepository) list(ctx context.Context, filter bson.M, limit int64) ([]domain.ProgressLog, error) {
	logs := []domain.ProgressLog{}
	opts := newestFirst("weekStartDate")
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if err := findAll(ctx, r.collection, filter, &logs, opts); err != nil {
		return nil, err
	}
	return logs, nil
}

// attach fills Client and/or Feedback (with its coach) on logs.
func (r *progressRepository) attach(ctx context.Context, logs []domain.ProgressLog, client, feedback bool) error {
	if len(logs) == 0 {
		return nil
	}
	logIDs := make([]uint, 0, len(logs))
	userIDs := make([]uint, 0, len(logs))
	for _, l := range logs {
		logIDs = append(logIDs, l.ID)
		if client {
			userIDs = append(userIDs, l.ClientID)
		}
	}

	var fbByLog map[uint]*domain.Feedback
	if feedback {
		var err error
		fbByLog, err = r.feedback.byLogIDs(ctx, logIDs)
		if err != nil {
			return err
		}
		for _, fb := range fbByLog {
			userIDs = append(userIDs, fb.CoachID)
		}
	}

	users, err := r.users.byIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	for i := range logs {
		if client {
			logs[i].Client = users[logs[i].ClientID]
		}
		if fb, ok := fbByLog[logs[i].ID]; ok {
			fb.Coach = users[fb.CoachID]
			logs[i].Feedback = fb
		}
	}
	return nil
}
