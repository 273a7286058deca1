package anomaly

import (
	"sort"

	"github.com/google/uuid"
)

// Priority tiers for risk alerts.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// RiskAlert is one ranked, actionable anomaly. Impact is the ranking key
// score×totalAmount: risk weighted by financial exposure, not raw score.
type RiskAlert struct {
	ID               uuid.UUID `json:"id"`
	CustomerID       string    `json:"customer_id"`
	CustomerName     string    `json:"customer_name"`
	AnomalyScore     float64   `json:"anomaly_score"`
	Severity         Severity  `json:"severity"`
	TotalAmount      float64   `json:"total_amount"`
	Impact           float64   `json:"impact"`
	Priority         Priority  `json:"priority"`
	TimeToActHours   int       `json:"time_to_act_hours"`
	Category         string    `json:"category"`
	SuggestedActions []string  `json:"suggested_actions"`
}

// monitorAction is appended to every alert regardless of category.
const monitorAction = "Monitor next 3 transactions (low confidence)"

// alertPlaybook maps a dominant feature to an alert category and its
// suggested actions.
var alertPlaybook = map[string]struct {
	category string
	actions  []string
}{
	FeatureDaysSinceLastTransaction: {
		category: "Customer Retention",
		actions: []string{
			"Launch re-engagement campaign",
			"Offer personalized discount on previously purchased products",
		},
	},
	FeatureUniqueProducts: {
		category: "Product Engagement",
		actions: []string{
			"Recommend product variety based on segment peers",
			"Review cross-sell placement for this customer",
		},
	},
	FeatureTotalAmount: {
		category: "Spend Review",
		actions: []string{
			"Review recent transactions for fraudulent activity",
			"Verify unusual spend with the account owner",
		},
	},
}

var defaultPlaybook = struct {
	category string
	actions  []string
}{
	category: "General Review",
	actions:  []string{"Queue for manual review"},
}

// RankRiskAlerts orders anomalies by score×totalAmount descending and
// derives priority, response window, and suggested actions per alert.
// limit caps the result when positive.
func RankRiskAlerts(points []DataPoint, limit int) []RiskAlert {
	alerts := make([]RiskAlert, 0, len(points))
	for _, dp := range points {
		category, actions := playbookFor(dp)
		priority, hours := priorityFor(dp.Severity)

		alerts = append(alerts, RiskAlert{
			ID:               uuid.New(),
			CustomerID:       dp.CustomerID,
			CustomerName:     dp.CustomerName,
			AnomalyScore:     dp.AnomalyScore,
			Severity:         dp.Severity,
			TotalAmount:      dp.TotalAmount,
			Impact:           dp.AnomalyScore * dp.TotalAmount,
			Priority:         priority,
			TimeToActHours:   hours,
			Category:         category,
			SuggestedActions: actions,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Impact > alerts[j].Impact
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}

func playbookFor(dp DataPoint) (string, []string) {
	top := dp.TopFeature()
	entry, ok := alertPlaybook[top.Name]
	if !ok {
		entry = defaultPlaybook
	}
	actions := make([]string, 0, len(entry.actions)+1)
	actions = append(actions, entry.actions...)
	actions = append(actions, monitorAction)
	return entry.category, actions
}

func priorityFor(severity Severity) (Priority, int) {
	switch {
	case severity >= SeverityCritical:
		return PriorityCritical, 2
	case severity >= SeverityHigh:
		return PriorityHigh, 6
	default:
		return PriorityMedium, 24
	}
}
