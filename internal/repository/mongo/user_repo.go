package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mjnutrafit/coaching-api/internal/domain"
)

type userRepository struct {
	collection *mongo.Collection
	ids        *sequence
}

// Create inserts a new user with the next numeric id.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	id, err := r.ids.next(ctx, usersCollection)
	if err != nil {
		return err
	}
	user.ID = id
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": domain.NormalizeEmail(email)}
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update replaces the stored document.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *userRepository) ListByRoleAndStatus(ctx context.Context, role domain.Role, status domain.UserStatus) ([]domain.User, error) {
	users := []domain.User{}
	filter := bson.M{"role": role, "status": status}
	if err := findAll(ctx, r.collection, filter, &users, newestFirst("createdAt")); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListActiveCoachIDs(ctx context.Context) ([]uint, error) {
	var coaches []struct {
		ID uint `bson:"_id"`
	}
	filter := bson.M{"role": domain.RoleCoach, "status": domain.StatusActive}
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &coaches, opts); err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(coaches))
	for _, c := range coaches {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// byIDs loads the users with the given ids keyed by id. Unknown ids are skipped.
func (r *userRepository) byIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	out := make(map[uint]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := findAll(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, &users); err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}
