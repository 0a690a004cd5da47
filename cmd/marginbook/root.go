package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marginbook",
	Short: "Client and project margin tracking",
	Long: `marginbook tracks clients, projects and their line-item products in a
single local document, and reports revenue, profit and margin over time.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dashboardCmd)
}
