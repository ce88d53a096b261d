package model

// QueryMetricRecord is a single search query with its accumulated
// performance metrics, as delivered by the query source for a date range.
// Records are immutable inputs; the engine never modifies or fabricates
// metric values.
type QueryMetricRecord struct {
	Cpl         *float64 `json:"cpl,omitempty"`
	Query       string   `json:"query"`
	Impressions int      `json:"impressions"`
	Clicks      int      `json:"clicks"`
	Conversions int      `json:"conversions"`
	Cost        float64  `json:"cost"`
	CTR         float64  `json:"ctr"`
	AvgCpc      float64  `json:"avgCpc"`
}

// EffectiveCpl returns the supplied CPL, or derives cost/conversions when
// conversions are present. Returns nil when CPL is undefined.
func (r *QueryMetricRecord) EffectiveCpl() *float64 {
	if r.Cpl != nil {
		return r.Cpl
	}
	if r.Conversions > 0 {
		cpl := r.Cost / float64(r.Conversions)
		return &cpl
	}
	return nil
}

// EffectiveCTR returns the supplied CTR, or derives clicks/impressions.
// The value is a fraction (0.01 == 1%).
func (r *QueryMetricRecord) EffectiveCTR() float64 {
	if r.CTR > 0 {
		return r.CTR
	}
	if r.Impressions > 0 {
		return float64(r.Clicks) / float64(r.Impressions)
	}
	return 0
}

// WordStat is a pre-aggregated per-word rollup used by the word-level
// filter. Aggregation from a query corpus happens upstream.
type WordStat struct {
	Word           string   `json:"word"`
	ExampleQueries []string `json:"exampleQueries,omitempty"`
	TotalCost      float64  `json:"totalCost"`
	TotalClicks    int      `json:"totalClicks"`
	QueriesCount   int      `json:"queriesCount"`
}
