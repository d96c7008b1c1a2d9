package decks

import (
	"gorm.io/gorm"

	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

// StatsRepo pushes the dashboard aggregation into Postgres. Other dialects report
// Supported() == false and callers aggregate in memory instead.
type StatsRepo interface {
	Supported() bool
	// Summary returns nil when the user (or deck, when deckID is set) has no games.
	Summary(dbc dbctx.Context, userID, deckID string) (*domain.Stats, error)
	DeckRows(dbc dbctx.Context, userID string) ([]*domain.DeckStatsRow, error)
}

type statsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatsRepo(db *gorm.DB, baseLog *logger.Logger) StatsRepo {
	return &statsRepo{
		db:  db,
		log: baseLog.With("repo", "StatsRepo"),
	}
}

func (r *statsRepo) Supported() bool {
	return r.db != nil && r.db.Dialector.Name() == "postgres"
}

type summaryRow struct {
	TotalGames    int64    `gorm:"column:total_games"`
	Wins          int64    `gorm:"column:wins"`
	Losses        int64    `gorm:"column:losses"`
	AvgFunSelf    *float64 `gorm:"column:avg_fun_self"`
	StdFunSelf    *float64 `gorm:"column:std_fun_self"`
	AvgFunWins    *float64 `gorm:"column:avg_fun_wins"`
	AvgFunLosses  *float64 `gorm:"column:avg_fun_losses"`
	AvgEstBracket *float64 `gorm:"column:avg_est_bracket"`
	ExpectedWins  *float64 `gorm:"column:expected_wins"`
	AvgFunOthers  *float64 `gorm:"column:avg_fun_others"`
}

// The losses-only fun bucket follows the legacy 0 flag, same as the in-memory aggregation.
const summarySQL = `
	WITH scoped AS (
		SELECT *
		FROM games
		WHERE user_id = @user
			AND (@deck = '' OR deck_id = @deck)
	)
	SELECT
		count(*)::int AS total_games,
		count(*) FILTER (WHERE winner = 1)::int AS wins,
		count(*) FILTER (WHERE winner IN (2, 3, 4))::int AS losses,
		avg(fun)::float AS avg_fun_self,
		stddev_samp(fun)::float AS std_fun_self,
		avg(CASE WHEN winner = 1 THEN fun END)::float AS avg_fun_wins,
		avg(CASE WHEN winner = 0 THEN fun END)::float AS avg_fun_losses,
		avg(est_bracket)::float AS avg_est_bracket,
		sum(
			1.0
			/
			(
				1
				+ (CASE WHEN p2_fun IS NOT NULL THEN 1 ELSE 0 END)
				+ (CASE WHEN p3_fun IS NOT NULL THEN 1 ELSE 0 END)
				+ (CASE WHEN p4_fun IS NOT NULL THEN 1 ELSE 0 END)
			)
		)::float AS expected_wins,
		(
			SELECT avg(val)::float
			FROM (
				SELECT unnest(array[p2_fun, p3_fun, p4_fun]) AS val
				FROM scoped
			) vals
			WHERE val IS NOT NULL
		) AS avg_fun_others
	FROM scoped
`

func (r *statsRepo) Summary(dbc dbctx.Context, userID, deckID string) (*domain.Stats, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row summaryRow
	if err := transaction.WithContext(dbc.Ctx).
		Raw(summarySQL, map[string]any{"user": userID, "deck": deckID}).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return statsFromSummary(row), nil
}

func statsFromSummary(row summaryRow) *domain.Stats {
	if row.TotalGames == 0 {
		return nil
	}
	out := &domain.Stats{
		TotalGames:    int(row.TotalGames),
		Wins:          int(row.Wins),
		Losses:        int(row.Losses),
		AvgFunSelf:    row.AvgFunSelf,
		StdFunSelf:    row.StdFunSelf,
		AvgFunOthers:  row.AvgFunOthers,
		AvgFunWins:    row.AvgFunWins,
		AvgFunLosses:  row.AvgFunLosses,
		AvgEstBracket: row.AvgEstBracket,
	}
	total := float64(row.TotalGames)
	out.WinRate = float64(row.Wins) / total
	if row.ExpectedWins != nil {
		out.ExpectedWinrate = *row.ExpectedWins / total
	}
	return out
}

type deckStatsRow struct {
	ID           string   `gorm:"column:id"`
	Name         string   `gorm:"column:name"`
	Games        int64    `gorm:"column:games"`
	Wins         int64    `gorm:"column:wins"`
	Losses       int64    `gorm:"column:losses"`
	AvgFunSelf   *float64 `gorm:"column:avg_fun_self"`
	AvgFunOthers *float64 `gorm:"column:avg_fun_others"`
}

const deckRowsSQL = `
	WITH base AS (
		SELECT
			d.id,
			d.name,
			count(g.id)::int AS games,
			count(*) FILTER (WHERE g.winner = 1)::int AS wins,
			count(*) FILTER (WHERE g.winner IN (2, 3, 4))::int AS losses,
			avg(g.fun)::float AS avg_fun_self
		FROM decks d
		JOIN games g ON g.deck_id = d.id AND g.user_id = @user
		WHERE d.user_id = @user
		GROUP BY d.id, d.name
	),
	others AS (
		SELECT
			d.id,
			avg(u.val)::float AS avg_fun_others
		FROM decks d
		JOIN games g ON g.deck_id = d.id AND g.user_id = @user
		LEFT JOIN LATERAL unnest(array[g.p2_fun, g.p3_fun, g.p4_fun]) AS u(val) ON true
		WHERE d.user_id = @user
		GROUP BY d.id
	)
	SELECT
		base.id,
		base.name,
		base.games,
		base.wins,
		base.losses,
		base.avg_fun_self,
		others.avg_fun_others
	FROM base
	LEFT JOIN others ON others.id = base.id
	ORDER BY base.games DESC, base.name ASC
`

// DeckRows returns one row per deck that has games, UsagePercent left at 0.
func (r *statsRepo) DeckRows(dbc dbctx.Context, userID string) ([]*domain.DeckStatsRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []deckStatsRow
	if err := transaction.WithContext(dbc.Ctx).
		Raw(deckRowsSQL, map[string]any{"user": userID}).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.DeckStatsRow, 0, len(rows))
	for _, row := range rows {
		ds := &domain.DeckStatsRow{
			ID:           row.ID,
			Name:         row.Name,
			Games:        int(row.Games),
			Wins:         int(row.Wins),
			Losses:       int(row.Losses),
			AvgFunSelf:   row.AvgFunSelf,
			AvgFunOthers: row.AvgFunOthers,
		}
		if row.Games > 0 {
			ds.WinRate = float64(row.Wins) / float64(row.Games) * 100
		}
		out = append(out, ds)
	}
	return out, nil
}
