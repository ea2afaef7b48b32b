package store

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/talkie/internal/mode"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo runs queries for users, progress, attempts, badges and LLM events.
// A Repo obtained inside Store.InTx shares that transaction.
type Repo struct {
	q querier
	b *entsql.DialectBuilder
}

func newRepo(q querier, dialectName string) *Repo {
	return &Repo{q: q, b: entsql.Dialect(dialectName)}
}

// QueryOpts filters LLM event queries. Zero fields do not filter.
type QueryOpts struct {
	Limit      int
	After      int64 // id > After
	Before     int64 // id < Before
	From       time.Time
	To         time.Time
	Purpose    string
	FailedOnly bool
}

// User is a learner account.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Progress is the cached per-user counter row. It can always be rebuilt
// from the attempt log.
type Progress struct {
	UserID          string
	XPTotal         int
	ModeXP          map[mode.Mode]int
	TotalStars      int
	TotalSessions   int
	AverageAccuracy float64
	Streak          int
	LastActive      time.Time // zero if the user never practiced
}

// XP returns the XP earned in m.
func (p Progress) XP(m mode.Mode) int {
	return p.ModeXP[m]
}

// Attempt is one row of the append-only attempt log.
type Attempt struct {
	ID         int64
	UserID     string
	Mode       mode.Mode
	Difficulty mode.Difficulty
	Score      int
	XPEarned   int
	Stars      int
	Day        string // YYYY-MM-DD in the ledger's time zone
	CreatedAt  time.Time
}

// ModeStat aggregates a user's attempts in one mode.
type ModeStat struct {
	Mode      mode.Mode
	Attempts  int
	MeanScore float64
}

// BadgeAward records when a user first earned a badge.
type BadgeAward struct {
	BadgeID   string
	AwardedAt time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMEventRepo provides append and query access to LLM request events.
type LLMEventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

func (r *Repo) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	return r.q.ExecContext(ctx, query, args...)
}

func (r *Repo) query(ctx context.Context, q entsql.Querier) (*sql.Rows, error) {
	query, args := q.Query()
	return r.q.QueryContext(ctx, query, args...)
}

func (r *Repo) queryRow(ctx context.Context, q entsql.Querier) *sql.Row {
	query, args := q.Query()
	return r.q.QueryRowContext(ctx, query, args...)
}
