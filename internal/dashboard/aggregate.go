// Package dashboard groups projects into time buckets and sums their
// revenue and profit for KPI display and charting.
package dashboard

import (
	"math"
	"sort"
	"time"

	"marginbook/internal/domain/document"
	"marginbook/internal/domain/project"
	"marginbook/internal/margin"
)

// Query selects which projects feed the dashboard. An empty ClientIDs
// set means "all clients".
type Query struct {
	Window    Window
	ClientIDs []string
}

// Totals are the grand figures over every filtered project's products,
// with the aggregate margin computed the same revenue-weighted way as
// per-bucket margins.
type Totals struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	AvgMarginPct float64 `json:"avgMarginPct"`
}

// Point is one chart bucket. Key is a zero-padded date or month string
// whose lexicographic order equals chronological order.
type Point struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	MarginPct float64 `json:"marginPct"`
}

// Report is the aggregated dashboard output.
type Report struct {
	Projects []project.Project `json:"filteredProjects"`
	Totals   Totals            `json:"totals"`
	Series   []Point           `json:"chartSeries"`
}

// Aggregate filters projects by client and time window, then computes
// grand totals and the bucketed chart series.
//
// The time filter is fail-open: a project whose business date (falling
// back to createdAt) cannot be parsed stays in the filtered set and in
// the totals, but is skipped during bucketing since it has no bucket
// key.
func Aggregate(projects []project.Project, q Query, now time.Time) Report {
	clientSet := make(map[string]struct{}, len(q.ClientIDs))
	for _, id := range q.ClientIDs {
		clientSet[id] = struct{}{}
	}
	from, to, bounded := q.Window.Range(now)

	inClients := func(p project.Project) bool {
		if len(clientSet) == 0 {
			return true
		}
		if p.ClientID == nil {
			return false
		}
		_, ok := clientSet[*p.ClientID]
		return ok
	}
	inWindow := func(p project.Project) bool {
		if !bounded {
			return true
		}
		d, ok := businessDate(p)
		if !ok {
			return true
		}
		return !d.Before(from) && !d.After(to)
	}

	filtered := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if inClients(p) && inWindow(p) {
			filtered = append(filtered, p)
		}
	}

	var pooled []project.Product
	for _, p := range filtered {
		pooled = append(pooled, p.Products...)
	}
	sum := margin.Totals(pooled)
	totals := Totals{
		Revenue:      sum.Revenue,
		Cost:         sum.Cost,
		Profit:       sum.Profit,
		AvgMarginPct: sum.MarginPct,
	}

	granularity := q.Window.Granularity()
	buckets := make(map[string]*Point)
	for _, p := range filtered {
		d, ok := businessDate(p)
		if !ok {
			continue
		}
		key := bucketKey(d, granularity)
		pt, exists := buckets[key]
		if !exists {
			pt = &Point{Key: key, Label: bucketLabel(d, granularity)}
			buckets[key] = pt
		}
		s := margin.Totals(p.Products)
		pt.Revenue += s.Revenue
		pt.Profit += s.Profit
	}

	series := make([]Point, 0, len(buckets))
	for _, pt := range buckets {
		if pt.Revenue > 0 {
			pt.MarginPct = pt.Profit / pt.Revenue * 100
		}
		pt.Revenue = roundCents(pt.Revenue)
		pt.Profit = roundCents(pt.Profit)
		series = append(series, *pt)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Key < series[j].Key })

	return Report{Projects: filtered, Totals: totals, Series: series}
}

// businessDate resolves the date a project counts under: the business
// date, falling back to createdAt.
func businessDate(p project.Project) (time.Time, bool) {
	if d, ok := document.ParseTime(p.Date); ok {
		return d, true
	}
	return document.ParseTime(p.CreatedAt)
}

func bucketKey(d time.Time, g Granularity) string {
	if g == ByDay {
		return d.Format("2006-01-02")
	}
	return d.Format("2006-01")
}

func bucketLabel(d time.Time, g Granularity) string {
	if g == ByDay {
		return d.Format("2 Jan")
	}
	return d.Format("Jan 06")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
