package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/domain/customer"
)

// fakeRepo is an in-memory MetricsRepository for use-case tests.
type fakeRepo struct {
	rows          []customer.MetricRow
	daily         map[string][]customer.DailyPoint // keyed by customer ID, "" for population
	categories    []customer.CategoryStat
	metricsCalls  int
	seriesCalls   int
	categoryCalls int
}

func (f *fakeRepo) GetCustomerMetrics(_ context.Context, _ customer.MetricsFilter) ([]customer.MetricRow, error) {
	f.metricsCalls++
	return f.rows, nil
}

func (f *fakeRepo) GetDailyTransactionSeries(_ context.Context, _ int, customerID string) ([]customer.DailyPoint, error) {
	f.seriesCalls++
	return f.daily[customerID], nil
}

func (f *fakeRepo) GetCategoryCustomerStats(_ context.Context, _, _ time.Time) ([]customer.CategoryStat, error) {
	f.categoryCalls++
	return f.categories, nil
}

// memoryCache is a map-backed SnapshotCache.
type memoryCache struct {
	store map[string]*Snapshot
}

func (c *memoryCache) Get(_ context.Context, key string) (*Snapshot, error) {
	return c.store[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, snapshot *Snapshot) error {
	c.store[key] = snapshot
	return nil
}

func metricRow(id, region, segment string, txCount, total, avg, products, daysSince, daysBetween float64) customer.MetricRow {
	return customer.MetricRow{
		CustomerID:                 id,
		CustomerName:               "Customer " + id,
		State:                      "CA",
		Country:                    "US",
		Region:                     region,
		Segment:                    segment,
		TransactionCount:           txCount,
		TotalAmount:                total,
		AvgAmount:                  avg,
		UniqueProducts:             products,
		DaysSinceLastTransaction:   daysSince,
		AvgDaysBetweenTransactions: daysBetween,
	}
}

func testRows() []customer.MetricRow {
	return []customer.MetricRow{
		metricRow("c1", "West", "Enterprise", 10, 100, 10, 3, 5, 2),
		metricRow("c2", "West", "Enterprise", 12, 120, 10, 4, 6, 2),
		metricRow("c3", "East", "SMB", 11, 110, 10, 3, 4, 2),
		metricRow("c4", "East", "SMB", 80, 9000, 112, 20, 90, 30),
	}
}

func newProvider(repo *fakeRepo, cache SnapshotCache) *SnapshotProvider {
	return NewSnapshotProvider(repo, cache, zerolog.Nop())
}

func TestSnapshotProviderMemoizes(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	cache := &memoryCache{store: make(map[string]*Snapshot)}
	provider := newProvider(repo, cache)

	ctx := context.Background()
	first, err := provider.Take(ctx, customer.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := provider.Take(ctx, customer.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.metricsCalls != 1 {
		t.Fatalf("expected one storage fetch, got %d", repo.metricsCalls)
	}
	if len(first.Points) != len(second.Points) {
		t.Fatalf("cached snapshot differs")
	}
	if _, ok := cache.store["analytics:snapshot:all"]; !ok {
		t.Fatalf("unbounded range should cache under the stable key, stored: %v", keysOf(cache.store))
	}
}

func keysOf(m map[string]*Snapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestSnapshotProviderEmptyBatch(t *testing.T) {
	provider := newProvider(&fakeRepo{}, nil)
	if _, err := provider.Take(context.Background(), customer.DateRange{}); err != customer.ErrEmptyBatch {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestDashboardUseCase(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewDashboardUseCase(newProvider(repo, nil), zerolog.Nop())

	out, err := uc.Execute(context.Background(), DashboardInput{Filter: anomaly.DefaultFilterParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.TotalCustomers != 4 {
		t.Fatalf("total customers = %d, want 4", out.TotalCustomers)
	}
	if len(out.Anomalies) == 0 {
		t.Fatalf("expected the outlier to pass the default gates")
	}
	for _, dp := range out.Anomalies {
		if dp.AnomalyScore < anomaly.DefaultMinScore {
			t.Fatalf("anomaly %s below the default gate", dp.CustomerID)
		}
	}
	if out.KPI.TopAnomalousFeature == "None" {
		t.Fatalf("expected a top anomalous feature")
	}
}

func TestDashboardUseCaseEmptyBatch(t *testing.T) {
	uc := NewDashboardUseCase(newProvider(&fakeRepo{}, nil), zerolog.Nop())

	out, err := uc.Execute(context.Background(), DashboardInput{})
	if err != nil {
		t.Fatalf("empty batch must degrade, got error: %v", err)
	}
	if len(out.Anomalies) != 0 || len(out.SeverityDistribution) != 0 {
		t.Fatalf("expected empty payload, got %+v", out)
	}
	if out.KPI.TopAnomalousFeature != "None" {
		t.Fatalf("empty KPI top feature = %q, want None", out.KPI.TopAnomalousFeature)
	}
}

func TestDistributionUseCaseRegions(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewDistributionUseCase(newProvider(repo, nil), repo, zerolog.Nop())

	rates, err := uc.Regions(context.Background(), DistributionInput{Filter: anomaly.DefaultFilterParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(rates))
	}
	if rates[0].Key != "East" {
		t.Fatalf("expected East (the outlier's region) ranked first, got %q", rates[0].Key)
	}
}

func TestDistributionUseCaseCategories(t *testing.T) {
	repo := &fakeRepo{
		rows: testRows(),
		categories: []customer.CategoryStat{
			{Category: "Electronics", CustomerID: "c4", TxCount: 10},
			{Category: "Electronics", CustomerID: "c1", TxCount: 5},
		},
	}
	uc := NewDistributionUseCase(newProvider(repo, nil), repo, zerolog.Nop())

	items, err := uc.Categories(context.Background(), DistributionInput{Filter: anomaly.DefaultFilterParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Key != "Electronics" {
		t.Fatalf("unexpected categories: %v", items)
	}
	if repo.categoryCalls != 3 {
		t.Fatalf("expected full+recent+previous window fetches, got %d", repo.categoryCalls)
	}
}

func TestTimeSeriesUseCase(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{
		daily: map[string][]customer.DailyPoint{
			"": {
				{Date: now.AddDate(0, 0, -1), Count: 10},
				{Date: now.AddDate(0, 0, -2), Count: 50},
			},
		},
	}
	uc := NewTimeSeriesUseCase(repo, zerolog.Nop())

	series, err := uc.Execute(context.Background(), TimeSeriesInput{Days: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(series))
	}
}

func TestPeerComparisonUseCaseMissingCustomer(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewPeerComparisonUseCase(newProvider(repo, nil), zerolog.Nop())

	out, err := uc.Execute(context.Background(), "ghost", customer.DateRange{})
	if !errors.Is(err, customer.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output for missing customer, got %+v", out)
	}

	empty := NewPeerComparisonUseCase(newProvider(&fakeRepo{}, nil), zerolog.Nop())
	if _, err := empty.Execute(context.Background(), "c1", customer.DateRange{}); !errors.Is(err, customer.ErrCustomerNotFound) {
		t.Fatalf("empty batch should report the customer missing, got %v", err)
	}
}

func TestPeerComparisonUseCase(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewPeerComparisonUseCase(newProvider(repo, nil), zerolog.Nop())

	out, err := uc.Execute(context.Background(), "c1", customer.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || out.PeerCount != 1 {
		t.Fatalf("expected one Enterprise peer, got %+v", out)
	}
	if len(out.Metrics) != 4 {
		t.Fatalf("expected 4 comparison metrics, got %d", len(out.Metrics))
	}
}

func TestRiskAlertUseCase(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewRiskAlertUseCase(newProvider(repo, nil), zerolog.Nop())

	alerts, err := uc.Execute(context.Background(), RiskAlertInput{Filter: anomaly.DefaultFilterParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) == 0 {
		t.Fatalf("expected at least one alert")
	}
	if alerts[0].CustomerID != "c4" {
		t.Fatalf("expected the high-exposure outlier first, got %q", alerts[0].CustomerID)
	}
}

func TestForecastUseCase(t *testing.T) {
	now := time.Now().UTC()
	daily := make([]customer.DailyPoint, 0, 10)
	for i := 0; i < 10; i++ {
		daily = append(daily, customer.DailyPoint{Date: now.AddDate(0, 0, -i), Count: float64(10 + i)})
	}
	repo := &fakeRepo{
		rows:  testRows(),
		daily: map[string][]customer.DailyPoint{"c4": daily},
	}
	uc := NewForecastUseCase(newProvider(repo, nil), repo, zerolog.Nop())

	forecasts, err := uc.Execute(context.Background(), ForecastInput{Filter: anomaly.DefaultFilterParams(), Top: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forecasts) == 0 {
		t.Fatalf("expected forecasts for the filtered anomalies")
	}
	for _, f := range forecasts {
		if f.NextWeekScore < 0 || f.NextWeekScore > 1 || f.Confidence < 0 || f.Confidence > 1 {
			t.Fatalf("forecast out of bounds: %+v", f)
		}
	}
}

func TestSimulationUseCase(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewSimulationUseCase(newProvider(repo, nil), zerolog.Nop())

	sim, err := uc.Execute(context.Background(), "c4", customer.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim == nil {
		t.Fatalf("expected simulation payload")
	}
	if len(sim.Baseline) != 6 || len(sim.Snapshot) != 6 {
		t.Fatalf("expected full baseline and snapshot, got %d/%d", len(sim.Baseline), len(sim.Snapshot))
	}
	if sim.CurrentScore <= 0 {
		t.Fatalf("outlier should carry a positive current score, got %v", sim.CurrentScore)
	}

	missing, err := uc.Execute(context.Background(), "ghost", customer.DateRange{})
	if !errors.Is(err, customer.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil payload for missing customer, got %+v", missing)
	}
}

func TestTimeSeriesUseCaseConfiguredDefaultDays(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepo{
		daily: map[string][]customer.DailyPoint{
			"": {{Date: now, Count: 10}},
		},
	}
	uc := NewTimeSeriesUseCase(repo, zerolog.Nop())
	uc.SetDefaultDays(5)

	series, err := uc.Execute(context.Background(), TimeSeriesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected the configured 5-day window, got %d rows", len(series))
	}
}

func TestRiskAlertUseCaseConfiguredDefaultLimit(t *testing.T) {
	repo := &fakeRepo{rows: testRows()}
	uc := NewRiskAlertUseCase(newProvider(repo, nil), zerolog.Nop())
	uc.SetDefaultLimit(2)

	// Pass-through gates so all four customers rank.
	alerts, err := uc.Execute(context.Background(), RiskAlertInput{
		Filter: anomaly.FilterParams{MinScore: 0, MinSeverity: anomaly.SeverityLow},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected the configured cap of 2 alerts, got %d", len(alerts))
	}
}

func TestForecastUseCaseConfiguredDefaults(t *testing.T) {
	now := time.Now().UTC()
	daily := []customer.DailyPoint{
		{Date: now.AddDate(0, 0, -1), Count: 5},
		{Date: now, Count: 6},
	}
	repo := &fakeRepo{
		rows:  testRows(),
		daily: map[string][]customer.DailyPoint{"c1": daily, "c2": daily, "c3": daily, "c4": daily},
	}
	uc := NewForecastUseCase(newProvider(repo, nil), repo, zerolog.Nop())
	uc.SetDefaults(1, 10)

	forecasts, err := uc.Execute(context.Background(), ForecastInput{
		Filter: anomaly.FilterParams{MinScore: 0, MinSeverity: anomaly.SeverityLow},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forecasts) != 1 {
		t.Fatalf("expected the configured top-1 projection, got %d", len(forecasts))
	}
	if repo.seriesCalls != 1 {
		t.Fatalf("expected one history fetch for the configured top, got %d", repo.seriesCalls)
	}
}
