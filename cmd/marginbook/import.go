package main

import (
	"context"
	"fmt"
	"os"

	"marginbook/internal/snapshot"
	"marginbook/internal/store"

	"github.com/spf13/cobra"
)

var importMode string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot file",
	Long: `Import a snapshot file into the document.

Mode "replace" swaps the whole document for the snapshot contents.
Mode "merge" upserts snapshot records into the existing document:
matching ids are overwritten, fresh ids appended, and a record that
fails to import does not abort the rest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importMode != "replace" && importMode != "merge" {
			return fmt.Errorf("unknown import mode %q", importMode)
		}

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		svc := store.NewService(a.repo, a.logger)
		ctx := context.Background()

		if importMode == "replace" {
			doc, err := snapshot.ImportReplace(ctx, svc, payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d clients, %d projects\n",
				len(doc.Clients), len(doc.Projects))
			return nil
		}

		res, err := snapshot.ImportMerge(ctx, svc, payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "merged %d clients, %d projects\n",
			res.Clients, res.Projects)
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importMode, "mode", "m", "replace", "import mode: replace or merge")
}
