package dto

// PeriodBreakdown aggregates dues collection per monthly period.
type PeriodBreakdown struct {
	Period    string `json:"period"`
	Collected int64  `json:"collected"`
}

// FundSummaryResponse aggregates the overall fund position.
type FundSummaryResponse struct {
	TotalCollected int64             `json:"total_collected"`
	TotalExpenses  int64             `json:"total_expenses"`
	Balance        int64             `json:"balance"`
	Periods        []PeriodBreakdown `json:"periods"`
	CacheHit       bool              `json:"cache_hit"`
}
