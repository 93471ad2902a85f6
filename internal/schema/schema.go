// Package schema describes the six synchronized tables: their local
// (camelCase) and remote (snake_case) names, and the type of every column.
//
// The field tables here are the single source of truth for naming. The field
// mapper, the SQLite mirror and the Postgres repositories all read them, so a
// column added to an entity only has to be declared once.
package schema

// Kind is the value type a column carries on the remote side.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	// KindTime is an instant, serialized as an ISO-8601 UTC string.
	KindTime
	// KindDate is a calendar date in YYYY-MM-DD form.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column pairs a local field name with its remote column name.
type Column struct {
	Local    string
	Remote   string
	Kind     Kind
	Nullable bool
}

// Envelope field names shared by every entity.
const (
	FieldID          = "id"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldDeletedAt   = "deletedAt"
	FieldPendingSync = "pendingSync"

	ColumnID        = "id"
	ColumnUserID    = "user_id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnDeletedAt = "deleted_at"
)

// Envelope lists the columns every table carries on both sides. pendingSync
// is local-only and user_id is remote-only, so neither appears here.
var Envelope = []Column{
	{Local: FieldID, Remote: ColumnID, Kind: KindString},
	{Local: FieldCreatedAt, Remote: ColumnCreatedAt, Kind: KindTime},
	{Local: FieldUpdatedAt, Remote: ColumnUpdatedAt, Kind: KindTime},
	{Local: FieldDeletedAt, Remote: ColumnDeletedAt, Kind: KindTime, Nullable: true},
}

// Table describes one synchronized entity table.
type Table struct {
	Local  string
	Remote string
	// Fields holds the domain columns; Columns() prepends the envelope.
	Fields []Column
}

// Columns returns the envelope columns followed by the domain columns.
func (t Table) Columns() []Column {
	cols := make([]Column, 0, len(Envelope)+len(t.Fields))
	cols = append(cols, Envelope...)
	return append(cols, t.Fields...)
}

// ByLocal finds a column by its local field name.
func (t Table) ByLocal(name string) (Column, bool) {
	for _, c := range Envelope {
		if c.Local == name {
			return c, true
		}
	}
	for _, c := range t.Fields {
		if c.Local == name {
			return c, true
		}
	}
	return Column{}, false
}

// ByRemote finds a column by its remote column name.
func (t Table) ByRemote(name string) (Column, bool) {
	for _, c := range Envelope {
		if c.Remote == name {
			return c, true
		}
	}
	for _, c := range t.Fields {
		if c.Remote == name {
			return c, true
		}
	}
	return Column{}, false
}

var (
	Books = Table{
		Local:  "books",
		Remote: "books",
		Fields: []Column{
			{Local: "title", Remote: "title", Kind: KindString},
			{Local: "completed", Remote: "completed", Kind: KindBool},
			{Local: "startedAt", Remote: "started_at", Kind: KindTime, Nullable: true},
			{Local: "completedAt", Remote: "completed_at", Kind: KindTime, Nullable: true},
			{Local: "totalReadingTimeMinutes", Remote: "total_reading_time_minutes", Kind: KindInt},
		},
	}

	JapaneseActivities = Table{
		Local:  "japaneseActivities",
		Remote: "japanese_activities",
		Fields: []Column{
			{Local: "type", Remote: "type", Kind: KindString},
			{Local: "durationMinutes", Remote: "duration_minutes", Kind: KindInt},
			{Local: "newCards", Remote: "new_cards", Kind: KindInt, Nullable: true},
			{Local: "bookId", Remote: "book_id", Kind: KindString, Nullable: true},
			{Local: "date", Remote: "date", Kind: KindDate},
		},
	}

	Foods = Table{
		Local:  "foods",
		Remote: "foods",
		Fields: []Column{
			{Local: "name", Remote: "name", Kind: KindString},
			{Local: "caloriesPer100g", Remote: "calories_per_100g", Kind: KindFloat},
			{Local: "proteinPer100g", Remote: "protein_per_100g", Kind: KindFloat},
			{Local: "carbsPer100g", Remote: "carbs_per_100g", Kind: KindFloat},
			{Local: "fatPer100g", Remote: "fat_per_100g", Kind: KindFloat},
		},
	}

	MealEntries = Table{
		Local:  "mealEntries",
		Remote: "meal_entries",
		Fields: []Column{
			{Local: "foodId", Remote: "food_id", Kind: KindString},
			{Local: "mealType", Remote: "meal_type", Kind: KindString},
			{Local: "quantityGrams", Remote: "quantity_grams", Kind: KindFloat},
			{Local: "date", Remote: "date", Kind: KindDate},
		},
	}

	SportActivities = Table{
		Local:  "sportActivities",
		Remote: "sport_activities",
		Fields: []Column{
			{Local: "sportType", Remote: "sport_type", Kind: KindString},
			{Local: "durationMinutes", Remote: "duration_minutes", Kind: KindInt},
			{Local: "distanceKm", Remote: "distance_km", Kind: KindFloat, Nullable: true},
			{Local: "trainingType", Remote: "training_type", Kind: KindString, Nullable: true},
			{Local: "date", Remote: "date", Kind: KindDate},
		},
	}

	WeightEntries = Table{
		Local:  "weightEntries",
		Remote: "weight_entries",
		Fields: []Column{
			{Local: "weightKg", Remote: "weight_kg", Kind: KindFloat},
			{Local: "date", Remote: "date", Kind: KindDate},
		},
	}
)

// All returns every synchronized table in a stable order.
func All() []Table {
	return []Table{Books, JapaneseActivities, Foods, MealEntries, SportActivities, WeightEntries}
}

// ByRemoteName looks a table up by its remote name.
func ByRemoteName(name string) (Table, bool) {
	for _, t := range All() {
		if t.Remote == name {
			return t, true
		}
	}
	return Table{}, false
}

// ByLocalName looks a table up by its local name.
func ByLocalName(name string) (Table, bool) {
	for _, t := range All() {
		if t.Local == name {
			return t, true
		}
	}
	return Table{}, false
}
