package anomaly

import "time"

// Severity buckets deviation into five discrete levels. Level 0 never
// appears: a zero anomaly score still maps to level 1.
type Severity int

const (
	SeverityLow      Severity = 1
	SeverityModerate Severity = 2
	SeverityElevated Severity = 3
	SeverityHigh     Severity = 4
	SeverityCritical Severity = 5
)

// BaselineStats holds the population statistics for one feature across
// the current batch. Variance is population variance (divide by n).
type BaselineStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Baseline maps feature name to its batch statistics.
type Baseline map[string]BaselineStats

// Feature describes one feature's deviation within a data point.
// NormalRange is [mean-2std, mean+2std], purely descriptive.
type Feature struct {
	Name         string     `json:"name"`
	Value        float64    `json:"value"`
	NormalRange  [2]float64 `json:"normal_range"`
	Severity     Severity   `json:"severity"`
	ZScore       float64    `json:"z_score"`
	Contribution float64    `json:"contribution"` // 0-100
}

// DataPoint is one scored customer. Derived purely from a MetricRow plus
// a Baseline; never mutated after creation.
type DataPoint struct {
	CustomerID       string    `json:"customer_id"`
	CustomerName     string    `json:"customer_name"`
	AnomalyScore     float64   `json:"anomaly_score"` // 0-1
	Severity         Severity  `json:"severity"`
	Region           string    `json:"region"`
	State            string    `json:"state"`
	Country          string    `json:"country"`
	Segment          string    `json:"segment"`
	DetectionDate    time.Time `json:"detection_date"`
	TransactionCount float64   `json:"transaction_count"`
	TotalAmount      float64   `json:"total_amount"`
	AvgAmount        float64   `json:"avg_amount"`
	Features         []Feature `json:"features"`
}

// TopFeature returns the highest-contribution feature of the data point,
// or a zero Feature when none are present.
func (dp DataPoint) TopFeature() Feature {
	var top Feature
	for _, f := range dp.Features {
		if f.Contribution > top.Contribution {
			top = f
		}
	}
	return top
}

// SeverityDistributionItem is one bucket of the severity histogram over a
// filtered anomaly set.
type SeverityDistributionItem struct {
	Level      Severity `json:"level"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Color      string   `json:"color"`
}

// FeatureContribution summarises one feature's importance across a
// filtered anomaly set.
type FeatureContribution struct {
	FeatureName     string  `json:"feature_name"`
	Importance      float64 `json:"importance"` // mean contribution, 0-100
	AnomalousMean   float64 `json:"anomalous_mean"`
	AnomalousStd    float64 `json:"anomalous_std"`
	SeparationIndex float64 `json:"separation_index"` // importance / 100
}

// KPI holds the dashboard top-line figures.
//
// NewAnomalies24h counts anomalies whose detection date falls within the
// trailing 24 hours. Detection dates are stamped at scoring time, so
// without a persisted first-seen ledger this equals the filtered count;
// New24hIsApproximate makes that limitation explicit to consumers.
type KPI struct {
	AnomalyRate         float64 `json:"anomaly_rate"` // percent of the unfiltered population
	HighSeverityCount   int     `json:"high_severity_count"`
	TopAnomalousFeature string  `json:"top_anomalous_feature"`
	MeanAnomalyScore    float64 `json:"mean_anomaly_score"`
	NewAnomalies24h     int     `json:"new_anomalies_24h"`
	New24hIsApproximate bool    `json:"new_24h_is_approximate"`
	RateTrend           float64 `json:"rate_trend"`
	ScoreTrend          float64 `json:"score_trend"`
}
