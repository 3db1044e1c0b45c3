package domain

import (
	"encoding/json"
	"time"
)

// Date is a calendar day rendered as YYYY-MM-DD in JSON.
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(WeekLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseWeek(s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) Time() time.Time { return time.Time(d) }

// ClientSummary is one row of a coach's roster with aggregate progress figures.
type ClientSummary struct {
	ID                   uint       `json:"id"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Email                string     `json:"email"`
	Status               UserStatus `json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	PlanCount            int64      `json:"planCount"`
	LogCount             int64      `json:"logCount"`
	AvgMealAdherence     float64    `json:"avgMealAdherence"`
	AvgWorkoutCompletion float64    `json:"avgWorkoutCompletion"`
	MaxWeight            *float64   `json:"maxWeight"`
	MinWeight            *float64   `json:"minWeight"`
	LastLogDate          *Date      `json:"lastLogDate"`
}

// TrendPoint is a single data point of a weight/adherence trend chart.
type TrendPoint struct {
	WeekStartDate     Date    `json:"weekStartDate"`
	Weight            float64 `json:"weight"`
	MealAdherence     int     `json:"mealAdherence"`
	WorkoutCompletion int     `json:"workoutCompletion"`
}

// TrendFromLogs converts logs ordered newest first into chronological trend points.
func TrendFromLogs(logs []ProgressLog) []TrendPoint {
	points := make([]TrendPoint, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		points = append(points, TrendPoint{
			WeekStartDate:     Date(l.WeekStartDate),
			Weight:            l.Weight,
			MealAdherence:     l.MealAdherence,
			WorkoutCompletion: l.WorkoutCompletion,
		})
	}
	return points
}
