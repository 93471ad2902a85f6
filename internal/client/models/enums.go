package models

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when parsing an enum from user input fails.
var ErrUnknownValue = errors.New("unknown value")

// ActivityType classifies a Japanese study session.
type ActivityType string

const (
	ActivityFlashcards ActivityType = "flashcards"
	ActivityReading    ActivityType = "reading"
	ActivityWatching   ActivityType = "watching"
	ActivityListening  ActivityType = "listening"
)

// MealType is the meal slot of a MealEntry.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// SportType is the discipline of a SportActivity.
type SportType string

const (
	SportRunning       SportType = "running"
	SportStreetWorkout SportType = "street_workout"
	SportBike          SportType = "bike"
)

// TrainingType refines a running session.
type TrainingType string

const (
	TrainingBase      TrainingType = "base"
	TrainingIntervals TrainingType = "intervals"
	TrainingLongRun   TrainingType = "long_run"
)

var (
	activityTypes = []ActivityType{ActivityFlashcards, ActivityReading, ActivityWatching, ActivityListening}
	mealTypes     = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}
	sportTypes    = []SportType{SportRunning, SportStreetWorkout, SportBike}
	trainingTypes = []TrainingType{TrainingBase, TrainingIntervals, TrainingLongRun}
)

func parseEnum[T ~string](s string, all []T) (T, error) {
	for _, v := range all {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w %q, expected one of %v", ErrUnknownValue, s, all)
}

func ParseActivityType(s string) (ActivityType, error) { return parseEnum(s, activityTypes) }
func ParseMealType(s string) (MealType, error)         { return parseEnum(s, mealTypes) }
func ParseSportType(s string) (SportType, error)       { return parseEnum(s, sportTypes) }
func ParseTrainingType(s string) (TrainingType, error) { return parseEnum(s, trainingTypes) }
