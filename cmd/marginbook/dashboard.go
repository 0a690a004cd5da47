package main

import (
	"context"
	"fmt"
	"math"
	"text/tabwriter"
	"time"

	"marginbook/internal/dashboard"
	"marginbook/internal/store"

	"github.com/Rhymond/go-money"
	"github.com/spf13/cobra"
)

var (
	dashWindow  string
	dashYear    int
	dashClients []string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show revenue, profit and margin for a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := dashboard.ParseMode(dashWindow)
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		svc := store.NewService(a.repo, a.logger)
		doc, err := svc.Snapshot(context.Background())
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}

		report := dashboard.Aggregate(doc.Projects, dashboard.Query{
			Window:    dashboard.Window{Mode: mode, Year: dashYear},
			ClientIDs: dashClients,
		}, time.Now())

		out := cmd.OutOrStdout()
		cur := a.cfg.Currency
		fmt.Fprintf(out, "window: %s  projects: %d\n", mode, len(report.Projects))
		fmt.Fprintf(out, "revenue: %s  cost: %s  profit: %s  margin: %.1f%%\n",
			amount(report.Totals.Revenue, cur),
			amount(report.Totals.Cost, cur),
			amount(report.Totals.Profit, cur),
			report.Totals.AvgMarginPct)

		if len(report.Series) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "period\trevenue\tprofit\tmargin")
		for _, pt := range report.Series {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\n",
				pt.Label, amount(pt.Revenue, cur), amount(pt.Profit, cur), pt.MarginPct)
		}
		return w.Flush()
	},
}

// amount renders a float in the configured currency's display format.
func amount(v float64, currency string) string {
	return money.New(int64(math.Round(v*100)), currency).Display()
}

func init() {
	dashboardCmd.Flags().StringVarP(&dashWindow, "window", "w", "this-month",
		"time window: this-month, last-month, year, all-time")
	dashboardCmd.Flags().IntVarP(&dashYear, "year", "y", 0,
		"year for the year window (default current)")
	dashboardCmd.Flags().StringSliceVarP(&dashClients, "client", "c", nil,
		"filter by client id (repeatable)")
}
