package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/talkie/internal/mode"
)

const (
	usersTableName       = "users"
	progressTableName    = "progress"
	attemptsTableName    = "attempts"
	badgeAwardsTableName = "badge_awards"
	llmEventsTableName   = "llm_events"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       usersTableName,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// ProgressColumns holds the columns for the "progress" table. There is
	// one xp_<mode> counter per exercise mode.
	ProgressColumns = progressColumns()
	// ProgressTable holds the schema information for the "progress" table.
	ProgressTable = &schema.Table{
		Name:       progressTableName,
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0]},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "mode", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString, Default: "easy"},
		{Name: "score", Type: field.TypeInt},
		{Name: "xp_earned", Type: field.TypeInt, Default: 0},
		{Name: "stars_earned", Type: field.TypeInt, Default: 0},
		{Name: "day", Type: field.TypeString, Size: 10},
		{Name: "created_at", Type: field.TypeTime},
	}
	// AttemptsTable holds the schema information for the "attempts" table.
	AttemptsTable = &schema.Table{
		Name:       attemptsTableName,
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_day", Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[7]}},
			{Name: "attempt_user_id_mode", Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[2]}},
		},
	}

	// BadgeAwardsColumns holds the columns for the "badge_awards" table.
	BadgeAwardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "badge_id", Type: field.TypeString},
		{Name: "awarded_at", Type: field.TypeTime},
	}
	// BadgeAwardsTable holds the schema information for the "badge_awards" table.
	BadgeAwardsTable = &schema.Table{
		Name:       badgeAwardsTableName,
		Columns:    BadgeAwardsColumns,
		PrimaryKey: []*schema.Column{BadgeAwardsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "badgeaward_user_id_badge_id", Unique: true, Columns: []*schema.Column{BadgeAwardsColumns[1], BadgeAwardsColumns[2]}},
		},
	}

	// LlmEventsColumns holds the columns for the "llm_events" table.
	LlmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmEventsTable holds the schema information for the "llm_events" table.
	LlmEventsTable = &schema.Table{
		Name:       llmEventsTableName,
		Columns:    LlmEventsColumns,
		PrimaryKey: []*schema.Column{LlmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmevent_purpose", Columns: []*schema.Column{LlmEventsColumns[4]}},
			{Name: "llmevent_timestamp", Columns: []*schema.Column{LlmEventsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		ProgressTable,
		AttemptsTable,
		BadgeAwardsTable,
		LlmEventsTable,
	}
)

// xpColumns maps every mode to its counter column. Built from the mode
// chain so adding a mode adds a column.
var xpColumns = func() map[mode.Mode]string {
	m := make(map[mode.Mode]string)
	for _, md := range mode.Chain() {
		m[md] = "xp_" + string(md)
	}
	return m
}()

func progressColumns() []*schema.Column {
	cols := []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "xp_total", Type: field.TypeInt, Default: 0},
	}
	for _, md := range mode.Chain() {
		cols = append(cols, &schema.Column{Name: "xp_" + string(md), Type: field.TypeInt, Default: 0})
	}
	return append(cols,
		&schema.Column{Name: "total_stars", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "total_sessions", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "average_accuracy", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "streak", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "last_active", Type: field.TypeTime, Nullable: true},
	)
}

// XPColumn returns the counter column for m. Unknown modes are an error
// rather than a silent no-op.
func XPColumn(m mode.Mode) (string, error) {
	col, ok := xpColumns[m]
	if !ok {
		return "", fmt.Errorf("store: unknown mode %q", m)
	}
	return col, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
