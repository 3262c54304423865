package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kgdevtools/lca-auth-sub003/internal/importer"
	"github.com/kgdevtools/lca-auth-sub003/internal/normalize"
)

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Show how raw values are normalized",
	}

	date := &cobra.Command{
		Use:   "date <value>...",
		Short: "Normalize dates: spreadsheet serials, ISO literals, calendar text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, v := range args {
				res := normalize.NormalizeDate(v)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v, res.Date, res.Kind)
			}
			return tw.Flush()
		},
	}

	reverse := false
	table := &cobra.Command{
		Use:   "table <name>...",
		Short: "Convert game table names to display names, or back with --reverse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range args {
				if reverse {
					fmt.Fprintln(cmd.OutOrStdout(), normalize.DisplayNameToTableName(v))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), normalize.TableNameToDisplayName(v))
				}
			}
			return nil
		},
	}
	table.Flags().BoolVar(&reverse, "reverse", false, "Convert display names to table names")

	tiebreak := &cobra.Command{
		Use:   "tiebreak <column>...",
		Short: "Classify tie-break column headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := normalize.DefaultTieBreakClassifier()
			path := opts.tieBreakRules
			if path == "" {
				path = os.Getenv("TIEBREAK_RULES_PATH")
			}
			if path != "" {
				var err error
				if classifier, err = normalize.LoadTieBreakRulesFile(path); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range args {
				label, ok := classifier.Label(key, nil)
				if !ok {
					label = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\n", key, label)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(date, table, tiebreak)
	return cmd
}

func newPGNCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgn",
		Short: "Inspect PGN files",
	}

	headers := &cobra.Command{
		Use:   "headers <file>",
		Short: "Print the header tags of every game in a PGN file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			games, err := importer.SplitPGN(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, game := range games {
				if i > 0 {
					fmt.Fprintln(out)
				}
				tags := normalize.ParsePGNHeaders(game)
				keys := make([]string, 0, len(tags))
				for k := range tags {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				fmt.Fprintf(out, "game %d\n", i+1)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s: %s\n", k, tags[k])
				}
			}
			return nil
		},
	}

	cmd.AddCommand(headers)
	return cmd
}
