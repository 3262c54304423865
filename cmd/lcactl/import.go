package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kgdevtools/lca-auth-sub003/internal/service"
	"github.com/kgdevtools/lca-auth-sub003/internal/store"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		force        bool
		tournamentID string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import standings pages, tournament sheets and PGN files",
		Long: `Imports every supported file among the given paths. Directories are walked.

  *.html, *.htm  Swiss-Manager standings export
  *.csv          tournament sheet, one tournament per row
  *.pgn          games, stored in a table named after the file

Files whose content was imported before are skipped unless --force is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.imports.ImportPaths(cmd.Context(), args, service.ImportOptions{
				Force:        force,
				TournamentID: tournamentID,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reimport files that were imported before")
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID stored with imported games")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func printSummary(w io.Writer, summary *service.ImportSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tKIND\tROWS\tTARGET\tPATH")
	for _, r := range summary.Results {
		target := r.TournamentID
		if r.Table != "" {
			target = r.Table
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Status, r.Kind, r.Rows, target, r.Path)
		if r.Error != "" {
			fmt.Fprintf(tw, "\t\t\t\t  %s\n", r.Error)
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nrun %s: %d imported, %d skipped, %d failed\n",
		summary.RunID, summary.Imported, summary.Skipped, summary.Failed)
}

func newImportsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Inspect the import ledger",
	}

	var (
		limit  int
		cursor string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded imports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.imports.ListImports(cmd.Context(), store.PaginationParams{Limit: limit, Cursor: cursor})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "IMPORTED\tKIND\tROWS\tFINGERPRINT\tPATH")
			for _, rec := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.12s\t%s\n",
					rec.ImportedAt.Local().Format("2006-01-02 15:04"), rec.Kind, rec.Rows, rec.Fingerprint, rec.Path)
			}
			_ = tw.Flush()
			if page.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "\nmore: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Records per page")
	list.Flags().StringVar(&cursor, "cursor", "", "Cursor from a previous page")

	forget := &cobra.Command{
		Use:   "forget <fingerprint>",
		Short: "Forget an import so the file is imported again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.imports.Forget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, forget)
	return cmd
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the player search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.search.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d players\n", n)
			return nil
		},
	}
}
