package syncer

import (
	"github.com/dmitrijs2005/lifesync/internal/client/client"
	"github.com/dmitrijs2005/lifesync/internal/client/models"
)

// TablesFrom binds every synchronized table of the local mirror.
func TablesFrom(r *client.Repositories) []Table {
	return []Table{
		Bind[models.Book](r.Books),
		Bind[models.JapaneseActivity](r.JapaneseActivities),
		Bind[models.Food](r.Foods),
		Bind[models.MealEntry](r.MealEntries),
		Bind[models.SportActivity](r.SportActivities),
		Bind[models.WeightEntry](r.WeightEntries),
	}
}
