package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
)

// FoodInput holds the nutrient profile of a food per 100g.
type FoodInput struct {
	Name            string
	CaloriesPer100g float64
	ProteinPer100g  float64
	CarbsPer100g    float64
	FatPer100g      float64
}

// MealInput is a quantity of a food eaten. An empty Date means today.
type MealInput struct {
	FoodID        string
	MealType      models.MealType
	QuantityGrams float64
	Date          string
}

// Meal is a meal entry joined with its food.
type Meal struct {
	Entry models.MealEntry
	Food  models.Food
}

// Macros are the nutrient totals of a day.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

type NutritionService interface {
	AddFood(ctx context.Context, in FoodInput) (models.Food, error)
	UpdateFood(ctx context.Context, id string, in FoodInput) (models.Food, error)
	DeleteFood(ctx context.Context, id string) error
	// ListFoods returns foods ordered by name.
	ListFoods(ctx context.Context) ([]models.Food, error)

	AddMeal(ctx context.Context, in MealInput) (models.MealEntry, error)
	UpdateMeal(ctx context.Context, id string, in MealInput) (models.MealEntry, error)
	DeleteMeal(ctx context.Context, id string) error
	// MealsForDate returns the day's entries whose food still exists.
	MealsForDate(ctx context.Context, date string) ([]Meal, error)
	DailyMacros(ctx context.Context, date string) (Macros, error)
}

type nutritionService struct {
	base
	foods records.Repository[models.Food]
	meals records.Repository[models.MealEntry]
}

func NewNutritionService(d Deps, foods records.Repository[models.Food], meals records.Repository[models.MealEntry]) NutritionService {
	return &nutritionService{base: newBase(d), foods: foods, meals: meals}
}

func validateFood(in *FoodInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName("name", in.Name); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"calories": in.CaloriesPer100g,
		"protein":  in.ProteinPer100g,
		"carbs":    in.CarbsPer100g,
		"fat":      in.FatPer100g,
	} {
		if v < 0 {
			return validationError("%s must not be negative", name)
		}
	}
	return nil
}

func (s *nutritionService) AddFood(ctx context.Context, in FoodInput) (models.Food, error) {
	if err := validateFood(&in); err != nil {
		return models.Food{}, err
	}

	f := models.Food{Syncable: models.NewSyncable(s.newID(), s.timestamp())}
	applyFood(&f, in)
	if err := insert(ctx, s.base, s.foods, f); err != nil {
		return models.Food{}, err
	}
	return f, nil
}

func applyFood(f *models.Food, in FoodInput) {
	f.Name = in.Name
	f.CaloriesPer100g = in.CaloriesPer100g
	f.ProteinPer100g = in.ProteinPer100g
	f.CarbsPer100g = in.CarbsPer100g
	f.FatPer100g = in.FatPer100g
}

func (s *nutritionService) UpdateFood(ctx context.Context, id string, in FoodInput) (models.Food, error) {
	if err := validateFood(&in); err != nil {
		return models.Food{}, err
	}
	return update(ctx, s.base, s.foods, id, func(f *models.Food) error {
		applyFood(f, in)
		return nil
	})
}

func (s *nutritionService) DeleteFood(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.foods, id)
}

func (s *nutritionService) ListFoods(ctx context.Context) ([]models.Food, error) {
	foods, err := s.foods.List(ctx)
	if err != nil {
		return nil, err
	}
	sortBy(foods, func(f models.Food) string { return strings.ToLower(f.Name) })
	return foods, nil
}

func (s *nutritionService) validateMeal(ctx context.Context, in *MealInput) error {
	if _, err := models.ParseMealType(string(in.MealType)); err != nil {
		return validationError("meal type: %v", err)
	}
	if err := validatePositive("quantity", in.QuantityGrams); err != nil {
		return err
	}
	if in.Date == "" {
		in.Date = s.today()
	}
	if err := validateDate(in.Date); err != nil {
		return err
	}
	if _, err := s.foods.GetByID(ctx, in.FoodID); err != nil {
		return fmt.Errorf("food %s: %w", in.FoodID, err)
	}
	return nil
}

func (s *nutritionService) AddMeal(ctx context.Context, in MealInput) (models.MealEntry, error) {
	if err := s.validateMeal(ctx, &in); err != nil {
		return models.MealEntry{}, err
	}

	m := models.MealEntry{
		Syncable:      models.NewSyncable(s.newID(), s.timestamp()),
		FoodID:        in.FoodID,
		MealType:      in.MealType,
		QuantityGrams: in.QuantityGrams,
		Date:          in.Date,
	}
	if err := insert(ctx, s.base, s.meals, m); err != nil {
		return models.MealEntry{}, err
	}
	return m, nil
}

func (s *nutritionService) UpdateMeal(ctx context.Context, id string, in MealInput) (models.MealEntry, error) {
	if err := s.validateMeal(ctx, &in); err != nil {
		return models.MealEntry{}, err
	}
	return update(ctx, s.base, s.meals, id, func(m *models.MealEntry) error {
		m.FoodID = in.FoodID
		m.MealType = in.MealType
		m.QuantityGrams = in.QuantityGrams
		m.Date = in.Date
		return nil
	})
}

func (s *nutritionService) DeleteMeal(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.meals, id)
}

func (s *nutritionService) MealsForDate(ctx context.Context, date string) ([]Meal, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	entries, err := s.meals.FindBy(ctx, "date", date)
	if err != nil {
		return nil, err
	}

	meals := make([]Meal, 0, len(entries))
	for _, e := range entries {
		f, err := s.foods.GetByID(ctx, e.FoodID)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		meals = append(meals, Meal{Entry: e, Food: f})
	}
	return meals, nil
}

func (s *nutritionService) DailyMacros(ctx context.Context, date string) (Macros, error) {
	meals, err := s.MealsForDate(ctx, date)
	if err != nil {
		return Macros{}, err
	}

	var m Macros
	for _, meal := range meals {
		k := meal.Entry.QuantityGrams / 100
		m.Calories += meal.Food.CaloriesPer100g * k
		m.Protein += meal.Food.ProteinPer100g * k
		m.Carbs += meal.Food.CarbsPer100g * k
		m.Fat += meal.Food.FatPer100g * k
	}

	m.Calories = math.Round(m.Calories)
	m.Protein = math.Round(m.Protein*10) / 10
	m.Carbs = math.Round(m.Carbs*10) / 10
	m.Fat = math.Round(m.Fat*10) / 10
	return m, nil
}
