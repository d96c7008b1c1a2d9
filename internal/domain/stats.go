package domain

// Stats is derived from a game collection and never stored.
// Nullable averages mean "no data yet".
type Stats struct {
	TotalGames      int      `json:"totalGames"`
	Wins            int      `json:"wins"`
	Losses          int      `json:"losses"`
	WinRate         float64  `json:"winRate"`
	ExpectedWinrate float64  `json:"expectedWinrate"`
	AvgFunSelf      *float64 `json:"avgFunSelf"`
	StdFunSelf      *float64 `json:"stdFunSelf"`
	AvgFunOthers    *float64 `json:"avgFunOthers"`
	AvgFunWins      *float64 `json:"avgFunWins"`
	AvgFunLosses    *float64 `json:"avgFunLosses"`
	AvgEstBracket   *float64 `json:"avgEstBracket"`
}

// DeckStatsRow is one line of the dashboard deck table. WinRate and UsagePercent are 0..100.
type DeckStatsRow struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Games        int      `json:"games"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	WinRate      float64  `json:"winRate"`
	UsagePercent float64  `json:"usagePercent"`
	AvgFunSelf   *float64 `json:"avgFunSelf"`
	AvgFunOthers *float64 `json:"avgFunOthers"`
}

// DashboardStats is the overall summary plus one row per deck that has games. Stats is nil
// when no games exist.
type DashboardStats struct {
	Stats     *Stats          `json:"stats"`
	DeckStats []*DeckStatsRow `json:"deckStats"`
}
