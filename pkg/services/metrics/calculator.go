// Package metrics derives percentages, deltas, averages and classification
// labels from dataset snapshots. Every function is pure and safe to call
// concurrently.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// PercentTolerance is the allowed deviation from 100 for a category breakdown.
const PercentTolerance = 0.5

// PercentageOf returns part as a percentage of total. A zero total yields N/A.
func PercentageOf(part, total float64) domain.Number {
	if total == 0 {
		return domain.NA
	}
	return domain.Num(part * 100 / total)
}

// Ratio returns num/den, or N/A when den is zero.
func Ratio(num, den float64) domain.Number {
	if den == 0 {
		return domain.NA
	}
	return domain.Num(num / den)
}

// PortionOf returns the absolute amount that percent represents of total.
func PortionOf(total, percent float64) float64 {
	return total * percent / 100
}

// Change is a year-over-year comparison of two values.
type Change struct {
	Delta      float64
	Percent    domain.Number
	IsPositive bool
}

// YearOverYearChange compares current with previous. The percent change is
// N/A when previous is zero.
func YearOverYearChange(current, previous float64) Change {
	delta := current - previous
	return Change{
		Delta:      delta,
		Percent:    PercentageOf(delta, previous),
		IsPositive: delta >= 0,
	}
}

// Direction renders the sign of a change for tables.
func (c Change) Direction() string {
	switch {
	case c.Delta > 0:
		return "up"
	case c.Delta < 0:
		return "down"
	}
	return "unchanged"
}

// Sum adds f(item) over items.
func Sum[T any](items []T, f func(T) float64) float64 {
	total := 0.0
	for _, it := range items {
		total += f(it)
	}
	return total
}

// WeightedAverage averages value(item) weighted by weight(item). A zero total
// weight yields N/A.
func WeightedAverage[T any](items []T, value, weight func(T) float64) domain.Number {
	var num, den float64
	for _, it := range items {
		w := weight(it)
		num += value(it) * w
		den += w
	}
	return Ratio(num, den)
}

// CollapseSources merges irrigation rows sharing a source name. Areas are
// summed and percentages are averaged weighted by area; rows without any
// area fall back to an unweighted mean. First-seen order is kept.
func CollapseSources(sources []domain.SourceShare) []domain.SourceShare {
	var order []string
	groups := make(map[string][]domain.SourceShare)
	for _, s := range sources {
		key := strings.ToLower(strings.TrimSpace(s.Source))
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	out := make([]domain.SourceShare, 0, len(order))
	for _, key := range order {
		rows := groups[key]
		area := Sum(rows, func(s domain.SourceShare) float64 { return s.Area })
		weight := func(s domain.SourceShare) float64 { return s.Area }
		if area == 0 {
			weight = func(domain.SourceShare) float64 { return 1 }
		}
		avg := WeightedAverage(rows, func(s domain.SourceShare) float64 { return s.Percentage }, weight)
		out = append(out, domain.SourceShare{
			Source:     strings.TrimSpace(rows[0].Source),
			Area:       area,
			Percentage: avg.Value,
		})
	}
	return out
}

// SimpsonDiversity returns 1 - Σp² over the normalised shares, in [0, 1).
// Zero total share yields N/A.
func SimpsonDiversity(shares []float64) domain.Number {
	total := 0.0
	for _, s := range shares {
		total += s
	}
	if total == 0 {
		return domain.NA
	}
	sumSq := 0.0
	for _, s := range shares {
		p := s / total
		sumSq += p * p
	}
	return domain.Num(1 - sumSq)
}

// RankDescending returns 1-based competition ranks ("1224") for values, the
// largest first. N/A values are left unranked (0).
func RankDescending(values []domain.Number) []int {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if v.Valid {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]].Value > values[idx[b]].Value
	})

	ranks := make([]int, len(values))
	for pos, i := range idx {
		if pos > 0 && values[idx[pos-1]].Value == values[i].Value {
			ranks[i] = ranks[idx[pos-1]]
			continue
		}
		ranks[i] = pos + 1
	}
	return ranks
}

// CheckPercentages verifies that a breakdown sums to 100 within PercentTolerance.
func CheckPercentages(name string, pcts []float64) error {
	total := 0.0
	for _, p := range pcts {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%s: invalid percentage %v", name, p)
		}
		total += p
	}
	if math.Abs(total-100) > PercentTolerance {
		return fmt.Errorf("%s: percentages sum to %.2f, expected 100", name, total)
	}
	return nil
}

// CheckSnapshot runs CheckPercentages over every breakdown of the snapshot.
func CheckSnapshot(s domain.MetricSnapshot) []error {
	groups := s.PercentageGroups()
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		name := fmt.Sprintf("%s/%d %s", s.Region.ID, s.Year, k)
		if err := CheckPercentages(name, groups[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
