package anomaly

import (
	"math"
	"sort"
	"time"
)

// Default gates applied even when the caller supplies none, so every
// consumer sees "interesting anomalies only" unless it opts out.
const (
	DefaultMinScore    = 0.2
	DefaultMinSeverity = SeverityLow
)

// FilterParams gates a scored anomaly set. SeverityLevels and Regions
// are optional allow-lists; nil means no restriction. The gates are
// conjunctive, so ordering only affects short-circuiting. Callers that
// take params from the outside should start from DefaultFilterParams so
// unspecified gates fall back to the defaults; an explicit MinScore of 0
// with MinSeverity 1 is an unfiltered pass-through.
type FilterParams struct {
	MinScore       float64
	MinSeverity    Severity
	SeverityLevels []Severity
	Regions        []string
}

// DefaultFilterParams returns the implicit "interesting anomalies only"
// gates applied when a caller specifies nothing.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		MinScore:    DefaultMinScore,
		MinSeverity: DefaultMinSeverity,
	}
}

// normalized clamps out-of-domain gate values.
func (p FilterParams) normalized() FilterParams {
	if p.MinScore < 0 {
		p.MinScore = 0
	}
	if p.MinSeverity < SeverityLow {
		p.MinSeverity = SeverityLow
	}
	return p
}

// Filter returns the data points passing every gate, preserving order.
func Filter(points []DataPoint, params FilterParams) []DataPoint {
	params = params.normalized()

	levelSet := make(map[Severity]bool, len(params.SeverityLevels))
	for _, lvl := range params.SeverityLevels {
		levelSet[lvl] = true
	}
	regionSet := make(map[string]bool, len(params.Regions))
	for _, region := range params.Regions {
		regionSet[region] = true
	}

	filtered := make([]DataPoint, 0, len(points))
	for _, dp := range points {
		if dp.AnomalyScore < params.MinScore {
			continue
		}
		if dp.Severity < params.MinSeverity {
			continue
		}
		if len(levelSet) > 0 && !levelSet[dp.Severity] {
			continue
		}
		if len(regionSet) > 0 && !regionSet[dp.Region] {
			continue
		}
		filtered = append(filtered, dp)
	}
	return filtered
}

// severityColors indexes dashboard colors by severity level.
var severityColors = map[Severity]string{
	SeverityLow:      "#22c55e",
	SeverityModerate: "#eab308",
	SeverityElevated: "#f97316",
	SeverityHigh:     "#ef4444",
	SeverityCritical: "#991b1b",
}

// SeverityDistribution buckets a filtered anomaly set by severity level.
// Percentages are over the filtered count. An empty input yields an empty
// slice so consumers can distinguish "no anomalies" from "all zero".
func SeverityDistribution(points []DataPoint) []SeverityDistributionItem {
	if len(points) == 0 {
		return []SeverityDistributionItem{}
	}

	counts := make(map[Severity]int, 5)
	for _, dp := range points {
		counts[dp.Severity]++
	}

	total := float64(len(points))
	items := make([]SeverityDistributionItem, 0, 5)
	for level := SeverityLow; level <= SeverityCritical; level++ {
		items = append(items, SeverityDistributionItem{
			Level:      level,
			Count:      counts[level],
			Percentage: float64(counts[level]) / total * 100,
			Color:      severityColors[level],
		})
	}
	return items
}

// FeatureContributions groups every feature entry across the filtered
// anomalies by name and ranks them by mean contribution, descending.
// Mean/std over the raw values use the population formulas, consistent
// with the baseline calculator.
func FeatureContributions(points []DataPoint) []FeatureContribution {
	grouped := make(map[string][]Feature)
	for _, dp := range points {
		for _, f := range dp.Features {
			grouped[f.Name] = append(grouped[f.Name], f)
		}
	}

	contributions := make([]FeatureContribution, 0, len(grouped))
	for name, features := range grouped {
		values := make([]float64, 0, len(features))
		contributionSum := 0.0
		for _, f := range features {
			values = append(values, f.Value)
			contributionSum += f.Contribution
		}
		importance := contributionSum / float64(len(features))
		stats := computeStats(values)

		contributions = append(contributions, FeatureContribution{
			FeatureName:     name,
			Importance:      importance,
			AnomalousMean:   stats.Mean,
			AnomalousStd:    stats.Std,
			SeparationIndex: importance / 100,
		})
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Importance > contributions[j].Importance
	})
	return contributions
}

// ComputeKPI derives the dashboard top-line figures. totalCustomers is
// the unfiltered batch size: the anomaly rate reflects prevalence in the
// whole population, not in the filtered subset.
func ComputeKPI(filtered []DataPoint, totalCustomers int, now time.Time) KPI {
	kpi := KPI{
		TopAnomalousFeature: "None",
		New24hIsApproximate: true,
	}
	if totalCustomers > 0 {
		kpi.AnomalyRate = float64(len(filtered)) / float64(totalCustomers) * 100
	}
	if len(filtered) == 0 {
		return kpi
	}

	scoreSum := 0.0
	cutoff := now.Add(-24 * time.Hour)
	for _, dp := range filtered {
		scoreSum += dp.AnomalyScore
		if dp.Severity >= SeverityHigh {
			kpi.HighSeverityCount++
		}
		if dp.DetectionDate.After(cutoff) {
			kpi.NewAnomalies24h++
		}
	}
	kpi.MeanAnomalyScore = scoreSum / float64(len(filtered))

	if ranked := FeatureContributions(filtered); len(ranked) > 0 {
		kpi.TopAnomalousFeature = ranked[0].FeatureName
	}
	return kpi
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
