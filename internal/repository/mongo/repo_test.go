package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/logger"
	"mjnutrafit/coaching-api/internal/repository"
)

func newMockStore(mt *mtest.T) *repository.Store {
	return New(mt.Client, mt.DB, logger.Discard())
}

func seqResponse(name string, seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: name},
		{Key: "seq", Value: seq},
	}})
}

func writeResponse(n int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func found(coll string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, "test."+coll, mtest.FirstBatch, docs...)
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestSequence(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increments per collection", func(mt *mtest.T) {
		ids := &sequence{collection: mt.DB.Collection(countersCollection)}
		mt.AddMockResponses(seqResponse(plansCollection, 41))

		id, err := ids.next(context.Background(), plansCollection)
		require.NoError(mt, err)
		assert.EqualValues(mt, 41, id)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, plansCollection, cmd.Lookup("query", "_id").StringValue())
		assert.EqualValues(mt, 1, cmd.Lookup("update", "$inc", "seq").AsInt64())
		assert.True(mt, cmd.Lookup("upsert").Boolean())
		assert.True(mt, cmd.Lookup("new").Boolean())
	})

	mt.Run("command error", func(mt *mtest.T) {
		ids := &sequence{collection: mt.DB.Collection(countersCollection)}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad", Name: "BadValue"}))

		_, err := ids.next(context.Background(), plansCollection)
		assert.Error(mt, err)
	})
}

func TestPlanCreateActiveSupersedes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deactivates then inserts", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			writeResponse(1),
			seqResponse(plansCollection, 3),
			writeResponse(1),
		)

		plan := &domain.Plan{CoachID: 2, ClientID: 7, DietText: "diet", WorkoutText: "workout"}
		require.NoError(mt, store.Plans.CreateActive(context.Background(), plan))
		assert.EqualValues(mt, 3, plan.ID)
		assert.True(mt, plan.IsActive)
		assert.False(mt, plan.CreatedAt.IsZero())

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 3)
		assert.Equal(mt, []string{"update", "findAndModify", "insert"}, commandNames(mt))

		update := events[0].Command
		assert.EqualValues(mt, 7, update.Lookup("updates", "0", "q", "clientId").AsInt64())
		assert.True(mt, update.Lookup("updates", "0", "q", "isActive").Boolean())
		assert.False(mt, update.Lookup("updates", "0", "u", "$set", "isActive").Boolean())
		assert.True(mt, update.Lookup("updates", "0", "multi").Boolean())

		insert := events[2].Command
		assert.EqualValues(mt, 3, insert.Lookup("documents", "0", "_id").AsInt64())
		assert.True(mt, insert.Lookup("documents", "0", "isActive").Boolean())
	})

	mt.Run("failed deactivation inserts nothing", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad filter", Name: "BadValue"}))

		err := store.Plans.CreateActive(context.Background(), &domain.Plan{CoachID: 2, ClientID: 7})
		assert.Error(mt, err)
		assert.Equal(mt, []string{"update"}, commandNames(mt))
	})
}

func TestFeedbackUpsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	coachDoc := bson.D{{Key: "_id", Value: int64(2)}, {Key: "email", Value: "coach@example.com"}, {Key: "role", Value: "coach"}}

	mt.Run("inserts on miss", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			writeResponse(0),
			seqResponse(feedbackCollection, 5),
			writeResponse(1),
			found(feedbackCollection, bson.D{
				{Key: "_id", Value: int64(5)},
				{Key: "progressLogId", Value: int64(9)},
				{Key: "coachId", Value: int64(2)},
				{Key: "feedback", Value: "more protein"},
			}),
			found(usersCollection, coachDoc),
		)

		fb := &domain.Feedback{ProgressLogID: 9, CoachID: 2, Text: "more protein"}
		require.NoError(mt, store.Feedback.Upsert(context.Background(), fb))
		assert.EqualValues(mt, 5, fb.ID)
		assert.Equal(mt, "more protein", fb.Text)
		require.NotNil(mt, fb.Coach)
		assert.Equal(mt, "coach@example.com", fb.Coach.Email)
		assert.Equal(mt, []string{"update", "findAndModify", "insert", "find", "find"}, commandNames(mt))
	})

	mt.Run("updates in place on hit", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			writeResponse(1),
			found(feedbackCollection, bson.D{
				{Key: "_id", Value: int64(5)},
				{Key: "progressLogId", Value: int64(9)},
				{Key: "coachId", Value: int64(2)},
				{Key: "feedback", Value: "log your meals"},
			}),
			found(usersCollection, coachDoc),
		)

		fb := &domain.Feedback{ProgressLogID: 9, CoachID: 2, Text: "log your meals"}
		require.NoError(mt, store.Feedback.Upsert(context.Background(), fb))
		assert.EqualValues(mt, 5, fb.ID)
		assert.Equal(mt, []string{"update", "find", "find"}, commandNames(mt))

		update := mt.GetStartedEvent().Command
		assert.EqualValues(mt, 9, update.Lookup("updates", "0", "q", "progressLogId").AsInt64())
		assert.Equal(mt, "log your meals", update.Lookup("updates", "0", "u", "$set", "feedback").StringValue())
	})

	mt.Run("racing insert is a duplicate", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			writeResponse(0),
			seqResponse(feedbackCollection, 6),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		err := store.Feedback.Upsert(context.Background(), &domain.Feedback{ProgressLogID: 9, CoachID: 2, Text: "x"})
		assert.ErrorIs(mt, err, repository.ErrDuplicateKey)
	})

	mt.Run("delete by log", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(writeResponse(1), found(feedbackCollection))

		require.NoError(mt, store.Feedback.DeleteByLogID(context.Background(), 9))
		evt := mt.GetStartedEvent()
		assert.Equal(mt, "delete", evt.CommandName)
		assert.EqualValues(mt, 9, evt.Command.Lookup("deletes", "0", "q", "progressLogId").AsInt64())

		_, err := store.Feedback.GetByLogID(context.Background(), 9)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestProgressGetByClientAndWeek(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	week := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	mt.Run("existing week", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(found(progressCollection, bson.D{
			{Key: "_id", Value: int64(4)},
			{Key: "clientId", Value: int64(7)},
			{Key: "weekStartDate", Value: primitive.NewDateTimeFromTime(week)},
			{Key: "weight", Value: 80.5},
			{Key: "status", Value: string(domain.LogRejected)},
		}))

		// A timestamp within the day matches the stored week
		got, err := store.Progress.GetByClientAndWeek(context.Background(), 7, week.Add(15*time.Hour))
		require.NoError(mt, err)
		assert.EqualValues(mt, 4, got.ID)
		assert.Equal(mt, domain.LogRejected, got.Status)
		assert.True(mt, week.Equal(got.WeekStartDate))

		filter := mt.GetStartedEvent().Command.Lookup("filter")
		assert.EqualValues(mt, 7, filter.Document().Lookup("clientId").AsInt64())
		assert.True(mt, week.Equal(filter.Document().Lookup("weekStartDate").Time()))
	})

	mt.Run("free week", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(found(progressCollection))

		_, err := store.Progress.GetByClientAndWeek(context.Background(), 7, week)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestProgressGetByIDAttachesRelations(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("client and feedback coach", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			found(progressCollection, bson.D{
				{Key: "_id", Value: int64(4)},
				{Key: "clientId", Value: int64(7)},
				{Key: "status", Value: string(domain.LogRejected)},
			}),
			found(feedbackCollection, bson.D{
				{Key: "_id", Value: int64(1)},
				{Key: "progressLogId", Value: int64(4)},
				{Key: "coachId", Value: int64(2)},
				{Key: "feedback", Value: "redo"},
			}),
			found(usersCollection,
				bson.D{{Key: "_id", Value: int64(7)}, {Key: "email", Value: "client@example.com"}},
				bson.D{{Key: "_id", Value: int64(2)}, {Key: "email", Value: "coach@example.com"}},
			),
		)

		got, err := store.Progress.GetByID(context.Background(), 4)
		require.NoError(mt, err)
		require.NotNil(mt, got.Client)
		assert.Equal(mt, "client@example.com", got.Client.Email)
		require.NotNil(mt, got.Feedback)
		assert.Equal(mt, "redo", got.Feedback.Text)
		require.NotNil(mt, got.Feedback.Coach)
		assert.Equal(mt, "coach@example.com", got.Feedback.Coach.Email)
	})

	mt.Run("unknown log", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(found(progressCollection))

		_, err := store.Progress.GetByID(context.Background(), 99)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
