package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"marginbook/internal/snapshot"
	"marginbook/internal/store"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document as a snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		payload, err := snapshot.Export(doc, time.Now())
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
			return err
		}
		if err := os.WriteFile(exportOut, payload, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		a.logger.Info("snapshot exported",
			"file", exportOut, "clients", len(doc.Clients), "projects", len(doc.Projects))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}
