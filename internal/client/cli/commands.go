package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/services"
	"github.com/dmitrijs2005/lifesync/internal/common"
)

var errUsage = errors.New("usage")

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return errUsage
}

func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, "Error:", err)
	return err
}

func (a *App) today() string {
	return a.now().Format(common.DateLayout)
}

func (a *App) Sync(ctx context.Context, _ []string) error {
	fmt.Fprintln(a.out, "Syncing...")
	res := a.engine.SyncNow(ctx, a.config.UserID)
	if !res.Success {
		return a.fail(errors.New(res.Error))
	}
	fmt.Fprintf(a.out, "Synced: %d pushed, %d pulled\n", res.Pushed, res.Pulled)
	return nil
}

func (a *App) Status(ctx context.Context, _ []string) error {
	st := a.engine.Status()
	fmt.Fprintf(a.out, "State:       %s\n", st.State)
	fmt.Fprintf(a.out, "Connection:  %s\n", orDefault(string(a.getMode()), "unknown"))

	last, err := a.engine.LastSyncedAt(ctx)
	if err != nil {
		return a.fail(err)
	}
	if last == nil {
		fmt.Fprintln(a.out, "Last synced: never")
	} else {
		fmt.Fprintf(a.out, "Last synced: %s\n", last.Local().Format(time.DateTime))
	}
	if st.LastError != "" {
		fmt.Fprintf(a.out, "Last error:  %s\n", st.LastError)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

/*************
 * Books
 *************/

func (a *App) AddBook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("addbook <title>")
	}
	b, err := a.books.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Added book %s (%s)\n", b.Title, b.ID)
	return nil
}

func (a *App) Books(ctx context.Context, args []string) error {
	var (
		books []models.Book
		err   error
	)
	if len(args) > 0 {
		books, err = a.books.Search(ctx, strings.Join(args, " "))
	} else {
		books, err = a.books.List(ctx)
	}
	if err != nil {
		return a.fail(err)
	}

	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books")
		return nil
	}
	for _, b := range books {
		state := "reading"
		if b.Completed {
			state = "done"
		}
		fmt.Fprintf(a.out, "%s  %-30s %-7s %4d min\n", b.ID, b.Title, state, b.TotalReadingTimeMinutes)
	}

	if last, err := a.books.LastRead(ctx); err == nil {
		fmt.Fprintf(a.out, "Last read: %s\n", last.Title)
	}
	return nil
}

func (a *App) Read(ctx context.Context, args []string) error {
	pos, opts := splitOptions(args)
	if len(pos) != 2 {
		return a.usage("read <bookId> <minutes> [date=YYYY-MM-DD]")
	}
	minutes, err := strconv.Atoi(pos[1])
	if err != nil {
		return a.usage("read <bookId> <minutes> [date=YYYY-MM-DD]")
	}

	bookID := pos[0]
	_, err = a.study.Add(ctx, services.StudyInput{
		Type:            models.ActivityReading,
		DurationMinutes: minutes,
		BookID:          &bookID,
		Date:            opts["date"],
	})
	if err != nil {
		return a.fail(err)
	}

	b, err := a.books.Get(ctx, bookID)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "%s: %d min total\n", b.Title, b.TotalReadingTimeMinutes)
	return nil
}

// Finish expects "done" or "reopen" followed by the book id.
func (a *App) Finish(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("finish <bookId> | reopen <bookId>")
	}

	var err error
	if args[0] == "reopen" {
		_, err = a.books.MarkIncomplete(ctx, args[1])
	} else {
		_, err = a.books.MarkComplete(ctx, args[1])
	}
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

/*************
 * Study
 *************/

func (a *App) Study(ctx context.Context, args []string) error {
	const text = "study <flashcards|reading|watching|listening> <minutes> [cards=N] [book=ID] [date=YYYY-MM-DD]"

	pos, opts := splitOptions(args)
	if len(pos) != 2 {
		return a.usage(text)
	}
	minutes, err := strconv.Atoi(pos[1])
	if err != nil {
		return a.usage(text)
	}
	cards, err := optInt(opts, "cards")
	if err != nil {
		return a.fail(err)
	}

	act, err := a.study.Add(ctx, services.StudyInput{
		Type:            models.ActivityType(strings.ToLower(pos[0])),
		DurationMinutes: minutes,
		NewCards:        cards,
		BookID:          optString(opts, "book"),
		Date:            opts["date"],
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Logged %d min of %s on %s (%s)\n", act.DurationMinutes, act.Type, act.Date, act.ID)
	return nil
}

func (a *App) Activities(ctx context.Context, args []string) error {
	var (
		acts []models.JapaneseActivity
		err  error
	)
	switch {
	case len(args) == 0:
		acts, err = a.study.List(ctx)
	case strings.Contains(args[0], "-"):
		acts, err = a.study.ForDate(ctx, args[0])
	default:
		var t models.ActivityType
		if t, err = models.ParseActivityType(args[0]); err == nil {
			acts, err = a.study.ByType(ctx, t)
		}
	}
	if err != nil {
		return a.fail(err)
	}

	total := 0
	for _, act := range acts {
		line := fmt.Sprintf("%s  %s  %-10s %4d min", act.ID, act.Date, act.Type, act.DurationMinutes)
		if act.NewCards != nil {
			line += fmt.Sprintf("  %d new cards", *act.NewCards)
		}
		fmt.Fprintln(a.out, line)
		total += act.DurationMinutes
	}
	fmt.Fprintf(a.out, "%d sessions, %d min\n", len(acts), total)
	return nil
}

/*************
 * Nutrition
 *************/

func (a *App) Food(ctx context.Context, _ []string) error {
	name, err := GetSimpleText(a.reader, "Food name", a.out)
	if err != nil {
		return a.fail(err)
	}

	var in = services.FoodInput{Name: name}
	for _, f := range []struct {
		prompt string
		dst    *float64
	}{
		{"Calories per 100g", &in.CaloriesPer100g},
		{"Protein per 100g", &in.ProteinPer100g},
		{"Carbs per 100g", &in.CarbsPer100g},
		{"Fat per 100g", &in.FatPer100g},
	} {
		if *f.dst, err = GetFloat(a.reader, f.prompt, 0, a.out); err != nil {
			return a.fail(err)
		}
	}

	food, err := a.nutrition.AddFood(ctx, in)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Added food %s (%s)\n", food.Name, food.ID)
	return nil
}

func (a *App) Foods(ctx context.Context, _ []string) error {
	foods, err := a.nutrition.ListFoods(ctx)
	if err != nil {
		return a.fail(err)
	}
	for _, f := range foods {
		fmt.Fprintf(a.out, "%s  %-20s %6.0f kcal  P %.1f  C %.1f  F %.1f\n",
			f.ID, f.Name, f.CaloriesPer100g, f.ProteinPer100g, f.CarbsPer100g, f.FatPer100g)
	}
	return nil
}

func (a *App) Meal(ctx context.Context, args []string) error {
	const text = "meal <foodId> <breakfast|lunch|dinner|snack> <grams> [date=YYYY-MM-DD]"

	pos, opts := splitOptions(args)
	if len(pos) != 3 {
		return a.usage(text)
	}
	grams, err := strconv.ParseFloat(pos[2], 64)
	if err != nil {
		return a.usage(text)
	}

	m, err := a.nutrition.AddMeal(ctx, services.MealInput{
		FoodID:        pos[0],
		MealType:      models.MealType(strings.ToLower(pos[1])),
		QuantityGrams: grams,
		Date:          opts["date"],
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Logged %s on %s (%s)\n", m.MealType, m.Date, m.ID)
	return nil
}

func (a *App) Meals(ctx context.Context, args []string) error {
	date := a.today()
	if len(args) > 0 {
		date = args[0]
	}

	meals, err := a.nutrition.MealsForDate(ctx, date)
	if err != nil {
		return a.fail(err)
	}
	for _, m := range meals {
		fmt.Fprintf(a.out, "%s  %-9s %-20s %5.0f g\n", m.Entry.ID, m.Entry.MealType, m.Food.Name, m.Entry.QuantityGrams)
	}

	macros, err := a.nutrition.DailyMacros(ctx, date)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "%s: %.0f kcal, protein %.1f g, carbs %.1f g, fat %.1f g\n",
		date, macros.Calories, macros.Protein, macros.Carbs, macros.Fat)
	return nil
}

/*************
 * Sport & weight
 *************/

func (a *App) Sport(ctx context.Context, args []string) error {
	const text = "sport <running|street_workout|bike> <minutes> [km=N] [training=base|intervals|long_run] [date=YYYY-MM-DD]"

	pos, opts := splitOptions(args)
	if len(pos) != 2 {
		return a.usage(text)
	}
	minutes, err := strconv.Atoi(pos[1])
	if err != nil {
		return a.usage(text)
	}
	km, err := optFloat(opts, "km")
	if err != nil {
		return a.fail(err)
	}

	var training *models.TrainingType
	if s := optString(opts, "training"); s != nil {
		t := models.TrainingType(*s)
		training = &t
	}

	act, err := a.sport.Add(ctx, services.SportInput{
		SportType:       models.SportType(strings.ToLower(pos[0])),
		DurationMinutes: minutes,
		DistanceKm:      km,
		TrainingType:    training,
		Date:            opts["date"],
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Logged %d min of %s on %s (%s)\n", act.DurationMinutes, act.SportType, act.Date, act.ID)
	return nil
}

func (a *App) Weight(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return a.usage("weight <kg> [YYYY-MM-DD]")
	}
	kg, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", "."), 64)
	if err != nil {
		return a.usage("weight <kg> [YYYY-MM-DD]")
	}
	date := ""
	if len(args) == 2 {
		date = args[1]
	}

	w, err := a.weight.AddOrUpdate(ctx, kg, date)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "%s: %.1f kg\n", w.Date, w.WeightKg)
	return nil
}

func (a *App) Weights(ctx context.Context, _ []string) error {
	entries, err := a.weight.List(ctx)
	if err != nil {
		return a.fail(err)
	}
	for _, w := range entries {
		fmt.Fprintf(a.out, "%s  %s  %.1f kg\n", w.ID, w.Date, w.WeightKg)
	}
	return nil
}

/*************
 * Delete
 *************/

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("delete <books|activities|foods|meals|sports|weights> <id>")
	}

	table, id := strings.ToLower(args[0]), args[1]

	var err error
	switch table {
	case "book", "books":
		err = a.books.Delete(ctx, id)
	case "activity", "activities":
		err = a.study.Delete(ctx, id)
	case "food", "foods":
		err = a.nutrition.DeleteFood(ctx, id)
	case "meal", "meals":
		err = a.nutrition.DeleteMeal(ctx, id)
	case "sport", "sports":
		err = a.sport.Delete(ctx, id)
	case "weight", "weights":
		err = a.weight.Delete(ctx, id)
	default:
		return a.usage("delete <books|activities|foods|meals|sports|weights> <id>")
	}

	if services.IsNotFound(err) {
		return a.fail(fmt.Errorf("%s %s not found", table, id))
	}
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
