package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/metrics"
	"github.com/de-tools/agri-atlas/pkg/store/dataset"
)

type Option func(*Service)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the report ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service builds report documents from a dataset provider. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	provider  dataset.Provider
	analyzers Registry
	rules     RuleSet
	now       func() time.Time
	newID     func() string
}

func NewService(provider dataset.Provider, analyzers Registry, rules RuleSet, opts ...Option) *Service {
	s := &Service{
		provider:  provider,
		analyzers: analyzers,
		rules:     rules,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ReportTypes() []domain.ReportType {
	return s.analyzers.Types()
}

func (s *Service) Regions(ctx context.Context) ([]domain.Region, error) {
	return s.provider.Regions(ctx)
}

// Analyzer returns the analyzer registered for t.
func (s *Service) Analyzer(t domain.ReportType) (Analyzer, error) {
	return s.analyzers.Get(t)
}

type regionResult struct {
	region  domain.Region
	snap    domain.MetricSnapshot
	rows    [][]any
	metrics []domain.DerivedMetric
	noData  bool
}

// GenerateReport builds the report of type t for sel. Missing dataset entries
// do not fail the call: the affected tables are left header-only and a
// "No data available" narrative is added.
func (s *Service) GenerateReport(ctx context.Context, t domain.ReportType, sel domain.Selection) (*domain.Report, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	a, err := s.analyzers.Get(t)
	if err != nil {
		return nil, err
	}
	regions, err := s.resolveRegions(ctx, sel)
	if err != nil {
		return nil, err
	}

	results := make([]regionResult, 0, len(regions))
	for _, r := range regions {
		res, err := s.collect(ctx, a, r, sel.Year, sel.Season)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	b := NewDocument(s.newID(), t, a.Title()+" Report", sel, s.now())
	if sel.IsAllRegions() {
		err = s.buildOverview(ctx, b, a, sel, results)
	} else {
		err = s.buildRegion(ctx, b, a, sel, results[0])
	}
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func (s *Service) resolveRegions(ctx context.Context, sel domain.Selection) ([]domain.Region, error) {
	if sel.IsAllRegions() {
		regions, err := s.provider.Regions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list regions: %w", err)
		}
		return regions, nil
	}
	r, err := s.provider.Region(ctx, sel.Region)
	if errors.Is(err, domain.ErrNoData) {
		id := strings.ToLower(strings.TrimSpace(sel.Region))
		return []domain.Region{{ID: id, Name: sel.Region}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve region %s: %w", sel.Region, err)
	}
	return []domain.Region{r}, nil
}

func (s *Service) collect(ctx context.Context, a Analyzer, r domain.Region, year int, season domain.Season) (regionResult, error) {
	res := regionResult{region: r}
	logger := zerolog.Ctx(ctx)

	snap, err := s.provider.Snapshot(ctx, r.ID, year)
	if err == nil {
		res.snap = snap
		res.rows, err = a.Rows(snap, season)
	}
	if err == nil {
		res.metrics, err = a.Metrics(snap, season)
	}
	if errors.Is(err, domain.ErrNoData) {
		logger.Debug().Str("region", r.ID).Int("year", year).Str("report", string(a.Type())).Msg("no data for selection")
		res.noData = true
		res.rows = nil
		res.metrics = unavailable(a)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to load %s/%d: %w", r.ID, year, err)
	}
	return res, nil
}

func unavailable(a Analyzer) []domain.DerivedMetric {
	inds := a.Indicators()
	ms := make([]domain.DerivedMetric, 0, len(inds))
	for _, ind := range inds {
		ms = append(ms, derived(ind, domain.NA))
	}
	return ms
}

func (s *Service) buildRegion(ctx context.Context, b *DocumentBuilder, a Analyzer, sel domain.Selection, res regionResult) error {
	b.Heading(regionHeading(res.region), sel.String())

	detail := a.Detail()
	b.Table(detail.Title, NewTable(detail.Columns...).Rows(res.rows).Chart(detail.Chart))

	if res.noData {
		b.Narrative(noDataText(res.region.String(), sel.Year, sel.Season))
		b.Region(domain.RegionMetrics{Region: res.region, Metrics: res.metrics, NoData: true})
		return nil
	}

	indicators := NewTable("Indicator", "Value", "Unit", "Classification")
	for _, m := range res.metrics {
		indicators.Row(m.Label, m.Value, m.Unit, m.Class)
	}
	b.Table("Key Indicators", indicators)

	if sel.ViewMode == domain.ViewComparison {
		prev, err := s.previousMetrics(ctx, a, res.region, sel)
		if err != nil {
			return err
		}
		tbl := NewTable("Indicator", yearColumn("Previous", sel.Year-1), yearColumn("Current", sel.Year), "Change", "Change (%)", "Direction")
		for _, m := range res.metrics {
			p, _ := findMetric(prev, m.Key)
			tbl.Row(changeRow(m.Label, p.Value, m.Value)...)
		}
		if prev == nil {
			b.Narrative(fmt.Sprintf("No data available for %s in %d; year-over-year changes are shown as %s.",
				res.region, sel.Year-1, domain.NotAvailable))
		}
		b.Table("Year-over-Year Change", tbl)
	}

	b.Summary(a.Summary(res.snap, sel.Season)...)

	alerts, err := s.rules.Evaluate(res.region, res.metrics)
	if err != nil {
		return err
	}
	b.Alerts(alerts...)
	b.Region(domain.RegionMetrics{Region: res.region, Metrics: res.metrics, Rank: 1})
	return nil
}

func (s *Service) buildOverview(ctx context.Context, b *DocumentBuilder, a Analyzer, sel domain.Selection, results []regionResult) error {
	b.Heading("All Regions", sel.String())

	inds := a.Indicators()
	keyIdx := 0
	for i, ind := range inds {
		if ind.Key == a.KeyMetric() {
			keyIdx = i
		}
	}
	key := inds[keyIdx]

	values := make([]domain.Number, len(results))
	for i, res := range results {
		values[i] = res.metrics[keyIdx].Value
	}
	ranks := metrics.RankDescending(values)
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		rx, ry := ranks[order[x]], ranks[order[y]]
		if rx == 0 || ry == 0 {
			return rx != 0 && ry == 0
		}
		return rx < ry
	})

	columns := []string{"Rank", "Region"}
	for _, ind := range inds {
		columns = append(columns, ind.Heading())
	}
	overview := NewTable(columns...).Chart(&domain.ChartSpec{LabelColumn: 1, ValueColumn: 2 + keyIdx, ValueLabel: key.Heading()})

	var missing []string
	for _, i := range order {
		res := results[i]
		rank := any(ranks[i])
		if ranks[i] == 0 {
			rank = domain.NotAvailable
		}
		row := []any{rank, res.region.String()}
		for _, m := range res.metrics {
			row = append(row, m.Value)
		}
		overview.Row(row...)
		if res.noData {
			missing = append(missing, res.region.String())
		}
	}
	b.Table("Regional Overview", overview)

	switch {
	case len(missing) == len(results):
		b.Narrative(noDataText("any region", sel.Year, sel.Season))
	case len(missing) > 0:
		b.Narrative(noDataText(strings.Join(missing, ", "), sel.Year, sel.Season))
	}

	if sel.ViewMode == domain.ViewComparison {
		tbl := NewTable("Region", yearColumn("Previous", sel.Year-1), yearColumn("Current", sel.Year), "Change", "Change (%)", "Direction")
		for _, i := range order {
			res := results[i]
			prev, err := s.previousMetrics(ctx, a, res.region, sel)
			if err != nil {
				return err
			}
			p, _ := findMetric(prev, key.Key)
			tbl.Row(changeRow(res.region.String(), p.Value, values[i])...)
		}
		b.Table(key.Label+" Year-over-Year", tbl)
	}

	withData := len(results) - len(missing)
	b.Summary(
		domain.SummaryLine{Label: "Regions", Value: strconv.Itoa(len(results))},
		domain.SummaryLine{Label: "Regions with Data", Value: strconv.Itoa(withData)},
	)
	if withData > 0 {
		top := results[order[0]]
		b.Summary(domain.SummaryLine{
			Label: "Highest " + key.Label,
			Value: fmt.Sprintf("%s (%s)", top.region, withUnit(values[order[0]], key.Unit)),
		})
		valid := make([]domain.Number, 0, withData)
		for _, v := range values {
			if v.Valid {
				valid = append(valid, v)
			}
		}
		avg := metrics.WeightedAverage(valid, func(n domain.Number) float64 { return n.Value }, func(domain.Number) float64 { return 1 })
		b.Summary(domain.SummaryLine{Label: "Average " + key.Label, Value: withUnit(avg, key.Unit)})
	}

	for _, i := range order {
		res := results[i]
		if !res.noData {
			alerts, err := s.rules.Evaluate(res.region, res.metrics)
			if err != nil {
				return err
			}
			b.Alerts(alerts...)
		}
		b.Region(domain.RegionMetrics{Region: res.region, Metrics: res.metrics, Rank: ranks[i], NoData: res.noData})
	}
	return nil
}

// previousMetrics returns the metrics of the year before sel.Year, or nil
// when that year has no data.
func (s *Service) previousMetrics(ctx context.Context, a Analyzer, r domain.Region, sel domain.Selection) ([]domain.DerivedMetric, error) {
	snap, err := s.provider.Snapshot(ctx, r.ID, sel.Year-1)
	if err == nil {
		var ms []domain.DerivedMetric
		ms, err = a.Metrics(snap, sel.Season)
		if err == nil {
			return ms, nil
		}
	}
	if errors.Is(err, domain.ErrNoData) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to load %s/%d: %w", r.ID, sel.Year-1, err)
}

func changeRow(label string, prev, cur domain.Number) []any {
	if !prev.Valid || !cur.Valid {
		return []any{label, prev, cur, domain.NA, domain.NA, domain.NotAvailable}
	}
	c := metrics.YearOverYearChange(cur.Value, prev.Value)
	return []any{label, prev, cur, domain.Num(c.Delta), c.Percent, c.Direction()}
}

func yearColumn(label string, year int) string {
	return fmt.Sprintf("%s (%d)", label, year)
}

func regionHeading(r domain.Region) string {
	if r.LocalName == "" {
		return r.String()
	}
	return fmt.Sprintf("%s (%s)", r, r.LocalName)
}

func noDataText(subject string, year int, season domain.Season) string {
	if season != domain.SeasonAll {
		return fmt.Sprintf("No data available for %s in %d (%s).", subject, year, season.Title())
	}
	return fmt.Sprintf("No data available for %s in %d.", subject, year)
}
