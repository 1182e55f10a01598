package main

import (
	"fmt"

	"progress-pulse/internal/logger"
	"progress-pulse/internal/store"
	"progress-pulse/internal/trace"

	"github.com/spf13/cobra"
)

type runFlags struct {
	configPath   string
	date         string
	includeToday bool
	noRemote     bool
}

// overrides turns the flags that were set on cmd into config overrides.
func (f *runFlags) overrides(cmd *cobra.Command) []func(*store.Config) {
	var out []func(*store.Config)
	if f.date != "" {
		out = append(out, func(c *store.Config) { c.Date = f.date })
	}
	if cmd.Flags().Changed("include-today") {
		out = append(out, func(c *store.Config) { c.Progress.IncludeToday = f.includeToday })
	}
	if f.noRemote {
		out = append(out, func(c *store.Config) { c.Content.UseRemote = false })
	}
	return out
}

func newRootCmd() *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:   "progresspulse",
		Short: "Post how much of the year has passed, with a progress chart",
		Long: `progresspulse computes the share of the current year that has passed,
renders it as a bar chart, composes a short post around it and publishes
the post to X or a Telegram channel.

Run without a subcommand to post.`,
		Version:       trace.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "config.yaml", "Path to the YAML config file (missing file uses defaults)")
	pf.StringVar(&flags.date, "date", "", "Compute progress for this date (YYYY-MM-DD) instead of today")
	pf.BoolVar(&flags.includeToday, "include-today", false, "Count today as passed")
	pf.BoolVar(&flags.noRemote, "no-remote", false, "Never fetch quotes or jokes over the network")

	root.AddCommand(
		&cobra.Command{
			Use:   "post",
			Short: "Compute, compose and publish today's post",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPost(cmd, flags)
			},
		},
		&cobra.Command{
			Use:   "preview",
			Short: "Compose today's post into the local outbox and print it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPreview(cmd, flags)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", trace.ServiceName, trace.Version)
			},
		},
	)

	return root
}

func runPost(cmd *cobra.Command, flags *runFlags) error {
	ctx := cmd.Context()

	cfg, err := bootstrap(ctx, flags.configPath, flags.overrides(cmd)...)
	if err != nil {
		return err
	}

	res, err := initializeRunner(ctx, cfg).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Post.URL)
	return nil
}

func runPreview(cmd *cobra.Command, flags *runFlags) error {
	ctx := cmd.Context()

	overrides := append(flags.overrides(cmd), func(c *store.Config) { c.Mode = store.ModeDryRun })
	cfg, err := bootstrap(ctx, flags.configPath, overrides...)
	if err != nil {
		return err
	}

	res, err := initializeRunner(ctx, cfg).Run(ctx)
	if err != nil {
		return err
	}

	history, err := newOutbox(ctx, cfg).ReadEntries(res.Record.Today)
	if err != nil {
		logger.Warn(ctx, "Failed to read outbox history", "error", err)
	}

	printPreview(cmd.OutOrStdout(), res, cfg.Content.MaxPostLength, history)
	return nil
}
