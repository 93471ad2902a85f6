package models

import "time"

// Book tracks a book being read and its accumulated reading time.
type Book struct {
	Syncable
	Title                   string     `json:"title"`
	Completed               bool       `json:"completed"`
	StartedAt               *time.Time `json:"startedAt,omitempty"`
	CompletedAt             *time.Time `json:"completedAt,omitempty"`
	TotalReadingTimeMinutes int        `json:"totalReadingTimeMinutes"`
}

// JapaneseActivity is one study session.
type JapaneseActivity struct {
	Syncable
	Type            ActivityType `json:"type"`
	DurationMinutes int          `json:"durationMinutes"`
	// NewCards is only meaningful for flashcard sessions.
	NewCards *int `json:"newCards,omitempty"`
	// BookID links a reading session to a book.
	BookID *string `json:"bookId,omitempty"`
	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"date"`
}

// Food is a reference item with macro nutrients per 100g.
type Food struct {
	Syncable
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	ProteinPer100g  float64 `json:"proteinPer100g"`
	CarbsPer100g    float64 `json:"carbsPer100g"`
	FatPer100g      float64 `json:"fatPer100g"`
}

// MealEntry is a quantity of a food eaten in a meal slot on a date.
type MealEntry struct {
	Syncable
	FoodID        string   `json:"foodId"`
	MealType      MealType `json:"mealType"`
	QuantityGrams float64  `json:"quantityGrams"`
	Date          string   `json:"date"`
}

// SportActivity is one workout.
type SportActivity struct {
	Syncable
	SportType       SportType     `json:"sportType"`
	DurationMinutes int           `json:"durationMinutes"`
	DistanceKm      *float64      `json:"distanceKm,omitempty"`
	TrainingType    *TrainingType `json:"trainingType,omitempty"`
	Date            string        `json:"date"`
}

// WeightEntry is a body weight measurement; at most one live entry per date.
type WeightEntry struct {
	Syncable
	WeightKg float64 `json:"weightKg"`
	Date     string  `json:"date"`
}
