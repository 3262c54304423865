// Package main provides lcactl, the command line companion of the academy
// results server. It imports files, rebuilds the search index and shows how
// raw values are normalized, working directly on the server's data
// directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	dataPath      string
	envFile       string
	logLevel      string
	tieBreakRules string
	verbose       bool
}

// configArgs renders the shared flags for config.Load.
func (o *rootOptions) configArgs() []string {
	args := []string{"--env-file", o.envFile}
	if o.dataPath != "" {
		args = append(args, "--data-path", o.dataPath)
	}
	if o.verbose {
		args = append(args, "--log-level", "debug")
	} else if o.logLevel != "" {
		args = append(args, "--log-level", o.logLevel)
	}
	if o.tieBreakRules != "" {
		args = append(args, "--tiebreak-rules", o.tieBreakRules)
	}
	return args
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "lcactl",
		Short:         "Manage the chess academy results data",
		Long:          `lcactl imports tournament files, rebuilds the player search index and inspects normalization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataPath, "data-path", "", "Data directory (or set DATA_PATH env)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.tieBreakRules, "tiebreak-rules", "", "YAML file replacing the built-in tie-break rules")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newImportCmd(opts),
		newImportsCmd(opts),
		newReindexCmd(opts),
		newNormalizeCmd(opts),
		newPGNCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
