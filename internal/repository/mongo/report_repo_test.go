package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjnutrafit/coaching-api/internal/domain"
)

func TestSummarize(t *testing.T) {
	t.Run("no logs", func(t *testing.T) {
		s := domain.ClientSummary{}
		summarize(&s, nil)
		assert.Zero(t, s.LogCount)
		assert.Nil(t, s.MaxWeight)
		assert.Nil(t, s.MinWeight)
	})

	t.Run("aggregates", func(t *testing.T) {
		s := domain.ClientSummary{}
		summarize(&s, []domain.ProgressLog{
			{Weight: 81.5, MealAdherence: 90, WorkoutCompletion: 100},
			{Weight: 80, MealAdherence: 70, WorkoutCompletion: 50},
			{Weight: 82, MealAdherence: 80, WorkoutCompletion: 75},
		})
		assert.EqualValues(t, 3, s.LogCount)
		assert.InDelta(t, 80, s.AvgMealAdherence, 0.001)
		assert.InDelta(t, 75, s.AvgWorkoutCompletion, 0.001)
		require.NotNil(t, s.MaxWeight)
		require.NotNil(t, s.MinWeight)
		assert.Equal(t, 82.0, *s.MaxWeight)
		assert.Equal(t, 80.0, *s.MinWeight)
	})
}
