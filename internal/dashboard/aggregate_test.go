package dashboard_test

import (
	"testing"
	"time"

	"marginbook/internal/dashboard"
	"marginbook/internal/domain/project"

	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func proj(id, clientID, date string, products ...project.Product) project.Project {
	p := project.Project{ID: id, Title: id, Date: date, Products: products}
	if clientID != "" {
		p.ClientID = strp(clientID)
	}
	return p
}

func TestAggregate_MonthBucketsSumRevenueAndProfit(t *testing.T) {
	projects := []project.Project{
		proj("p1", "c1", "2025-01-05",
			project.Product{SellingPrice: 100, CostPrice: 60}),
		proj("p2", "c1", "2025-01-20",
			project.Product{SellingPrice: 50, CostPrice: 40}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.SpecificYear, Year: 2025},
	}, now)

	require.Len(t, report.Series, 1)
	pt := report.Series[0]
	require.Equal(t, "2025-01", pt.Key)
	require.Equal(t, "Jan 25", pt.Label)
	require.Equal(t, 150.0, pt.Revenue)
	require.Equal(t, 50.0, pt.Profit)
	require.InDelta(t, 33.33, pt.MarginPct, 0.01)
}

func TestAggregate_NoMatchingClientsYieldsEmptyReport(t *testing.T) {
	projects := []project.Project{
		proj("p1", "c1", "2025-06-01", project.Product{SellingPrice: 100}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window:    dashboard.Window{Mode: dashboard.AllTime},
		ClientIDs: []string{"other"},
	}, now)

	require.Empty(t, report.Projects)
	require.Empty(t, report.Series)
	require.Zero(t, report.Totals.Revenue)
	require.Zero(t, report.Totals.Profit)
	require.Zero(t, report.Totals.AvgMarginPct)
}

func TestAggregate_ClientFilterMatchesPointer(t *testing.T) {
	projects := []project.Project{
		proj("p1", "c1", "2025-06-01", project.Product{SellingPrice: 10}),
		proj("p2", "c2", "2025-06-01", project.Product{SellingPrice: 20}),
		proj("p3", "", "2025-06-01", project.Product{SellingPrice: 40}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window:    dashboard.Window{Mode: dashboard.AllTime},
		ClientIDs: []string{"c2"},
	}, now)

	require.Len(t, report.Projects, 1)
	require.Equal(t, "p2", report.Projects[0].ID)
	require.Equal(t, 20.0, report.Totals.Revenue)
}

func TestAggregate_ThisMonthUsesDayBuckets(t *testing.T) {
	projects := []project.Project{
		proj("p1", "", "2025-06-03", project.Product{SellingPrice: 100, CostPrice: 50}),
		proj("p2", "", "2025-06-03", project.Product{SellingPrice: 100, CostPrice: 50}),
		proj("p3", "", "2025-06-20", project.Product{SellingPrice: 10}),
		proj("old", "", "2025-05-30", project.Product{SellingPrice: 999}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.ThisMonth},
	}, now)

	require.Len(t, report.Projects, 3)
	require.Len(t, report.Series, 2)
	require.Equal(t, "2025-06-03", report.Series[0].Key)
	require.Equal(t, "3 Jun", report.Series[0].Label)
	require.Equal(t, 200.0, report.Series[0].Revenue)
	require.Equal(t, "2025-06-20", report.Series[1].Key)
}

func TestAggregate_LastMonthWindow(t *testing.T) {
	projects := []project.Project{
		proj("may", "", "2025-05-31", project.Product{SellingPrice: 30}),
		proj("june", "", "2025-06-01", project.Product{SellingPrice: 70}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.LastMonth},
	}, now)

	require.Len(t, report.Projects, 1)
	require.Equal(t, "may", report.Projects[0].ID)
}

func TestAggregate_UnparsableDatePassesFilterSkipsBuckets(t *testing.T) {
	bad := proj("bad", "", "not a date", project.Product{SellingPrice: 100, CostPrice: 25})
	good := proj("good", "", "2025-06-10", project.Product{SellingPrice: 100, CostPrice: 25})

	report := dashboard.Aggregate([]project.Project{bad, good}, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.ThisMonth},
	}, now)

	require.Len(t, report.Projects, 2, "unparsable dates never hide a project")
	require.Equal(t, 200.0, report.Totals.Revenue)
	require.Len(t, report.Series, 1, "only the parseable date gets a bucket")
	require.Equal(t, 100.0, report.Series[0].Revenue)
}

func TestAggregate_FallsBackToCreatedAt(t *testing.T) {
	p := project.Project{
		ID:        "p1",
		CreatedAt: "2025-06-02T09:00:00.000Z",
		Products:  []project.Product{{SellingPrice: 10}},
	}

	report := dashboard.Aggregate([]project.Project{p}, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.ThisMonth},
	}, now)

	require.Len(t, report.Series, 1)
	require.Equal(t, "2025-06-02", report.Series[0].Key)
}

func TestAggregate_SeriesRoundedToCents(t *testing.T) {
	p := proj("p1", "", "2025-06-10",
		project.Product{SellingPrice: 10.005, CostPrice: 1.001},
		project.Product{SellingPrice: 0.004})

	report := dashboard.Aggregate([]project.Project{p}, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.ThisMonth},
	}, now)

	require.Len(t, report.Series, 1)
	require.Equal(t, 10.01, report.Series[0].Revenue)
	require.Equal(t, 9.01, report.Series[0].Profit)
}

func TestAggregate_SeriesSortedAscending(t *testing.T) {
	projects := []project.Project{
		proj("c", "", "2025-03-01", project.Product{SellingPrice: 1}),
		proj("a", "", "2025-01-01", project.Product{SellingPrice: 1}),
		proj("b", "", "2025-02-01", project.Product{SellingPrice: 1}),
	}

	report := dashboard.Aggregate(projects, dashboard.Query{
		Window: dashboard.Window{Mode: dashboard.SpecificYear, Year: 2025},
	}, now)

	require.Len(t, report.Series, 3)
	require.Equal(t, "2025-01", report.Series[0].Key)
	require.Equal(t, "2025-02", report.Series[1].Key)
	require.Equal(t, "2025-03", report.Series[2].Key)
}

func TestWindow_RangeBoundaries(t *testing.T) {
	w := dashboard.Window{Mode: dashboard.ThisMonth}
	from, to, bounded := w.Range(now)
	require.True(t, bounded)
	require.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), to)

	_, _, bounded = dashboard.Window{Mode: dashboard.AllTime}.Range(now)
	require.False(t, bounded)
}

func TestParseMode(t *testing.T) {
	m, err := dashboard.ParseMode("last-month")
	require.NoError(t, err)
	require.Equal(t, dashboard.LastMonth, m)

	_, err = dashboard.ParseMode("fortnight")
	require.Error(t, err)
}
