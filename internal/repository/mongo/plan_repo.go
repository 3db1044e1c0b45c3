package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mjnutrafit/coaching-api/internal/domain"
)

type planRepository struct {
	collection *mongo.Collection
	ids        *sequence
	users      *userRepository
}

// CreateActive deactivates the client's active plans, then inserts plan.
// The two writes are not atomic without a replica-set transaction.
func (r *planRepository) CreateActive(ctx context.Context, plan *domain.Plan) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"clientId": plan.ClientID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	if err != nil {
		return err
	}

	id, err := r.ids.next(ctx, plansCollection)
	if err != nil {
		return err
	}
	plan.ID = id
	plan.IsActive = true
	plan.CreatedAt = now
	plan.UpdatedAt = now
	_, err = r.collection.InsertOne(ctx, plan)
	return translate(err)
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"dietText":    plan.DietText,
		"workoutText": plan.WorkoutText,
		"isActive":    plan.IsActive,
		"updatedAt":   plan.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *planRepository) ListByCoach(ctx context.Context, coachID uint) ([]domain.Plan, error) {
	plans, err := r.list(ctx, bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	return plans, r.attach(ctx, plans, false, true)
}

func (r *planRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.Plan, error) {
	plans, err := r.list(ctx, bson.M{"clientId": clientID})
	if err != nil {
		return nil, err
	}
	return plans, r.attach(ctx, plans, true, false)
}

func (r *planRepository) GetActiveForClient(ctx context.Context, clientID uint) (*domain.Plan, error) {
	var plan domain.Plan
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"clientId": clientID, "isActive": true}, opts).Decode(&plan)
	if err != nil {
		return nil, translate(err)
	}
	plans := []domain.Plan{plan}
	if err := r.attach(ctx, plans, true, false); err != nil {
		return nil, err
	}
	return &plans[0], nil
}

func (r *planRepository) ExistsForClient(ctx context.Context, clientID uint) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"clientId": clientID}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *planRepository) LinksCoachAndClient(ctx context.Context, coachID, clientID uint) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"coachId": coachID, "clientId": clientID},
		options.Count().SetLimit(1))
	return n > 0, err
}

// clientIDsOf returns the distinct clients coachID authored a plan for.
func (r *planRepository) clientIDsOf(ctx context.Context, coachID uint) ([]uint, error) {
	raw, err := r.collection.Distinct(ctx, "clientId", bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case int64:
			ids = append(ids, uint(n))
		case int32:
			ids = append(ids, uint(n))
		}
	}
	return ids, nil
}

func (r *planRepository) list(ctx context.Context, filter bson.M) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	if err := findAll(ctx, r.collection, filter, &plans, newestFirst("createdAt")); err != nil {
		return nil, err
	}
	return plans, nil
}

// attach fills the Coach and/or Client references of plans.
func (r *planRepository) attach(ctx context.Context, plans []domain.Plan, coach, client bool) error {
	ids := make([]uint, 0, len(plans))
	for _, p := range plans {
		if coach {
			ids = append(ids, p.CoachID)
		}
		if client {
			ids = append(ids, p.ClientID)
		}
	}
	users, err := r.users.byIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range plans {
		if coach {
			plans[i].Coach = users[plans[i].CoachID]
		}
		if client {
			plans[i].Client = users[plans[i].ClientID]
		}
	}
	return nil
}
