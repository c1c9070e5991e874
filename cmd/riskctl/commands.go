package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"BizPulse/internal/di"
	"BizPulse/internal/domain/models"
	"BizPulse/pkg/config"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	timeout     time.Duration
	reason      string
	maxAgeHours int

	rootCmd = &cobra.Command{
		Use:           "riskctl",
		Short:         "Inspect KPIs and manage business risks without the HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current monitoring snapshot",
		Args:  cobra.NoArgs,
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), e.Manager.Snapshot(ctx))
		}),
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate risks from a fresh snapshot and store them",
		Args:  cobra.NoArgs,
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, _ []string) error {
			risks, err := e.Manager.GenerateAndStore(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), risks)
		}),
	}

	risksCmd = &cobra.Command{
		Use:       "risks [active|historical|all]",
		Short:     "List stored risks",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"active", "historical", "all"},
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, args []string) error {
			which := "active"
			if len(args) == 1 {
				which = args[0]
			}

			var (
				risks []models.Risk
				err   error
			)
			switch which {
			case "historical":
				risks, err = e.Manager.HistoricalRisks(ctx)
			case "all":
				risks, err = e.Manager.AllRisks(ctx)
			default:
				risks, err = e.Manager.ActiveRisks(ctx)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), risks)
		}),
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve <risk_id>",
		Short: "Resolve one active risk",
		Args:  cobra.ExactArgs(1),
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, args []string) error {
			resolved, err := e.Manager.Resolve(ctx, args[0], reason)
			if err != nil {
				return err
			}
			if len(resolved) == 0 {
				return fmt.Errorf("risk %s is not active", args[0])
			}
			return printJSON(cmd.OutOrStdout(), resolved)
		}),
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Auto-resolve stale risks whose condition no longer holds",
		Args:  cobra.NoArgs,
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, _ []string) error {
			resolved, err := e.Manager.AutoResolveStale(ctx, maxAgeHours)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resolved)
		}),
	}

	insightCmd = &cobra.Command{
		Use:   "insight <revenue|customers|finance|inventory>",
		Short: "Print the health insight of one domain",
		Args:  cobra.ExactArgs(1),
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, args []string) error {
			domain, err := models.ParseDomain(args[0])
			if err != nil {
				return err
			}
			insight, err := e.Health.Insight(ctx, domain)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), insight)
		}),
	}

	actionsCmd = &cobra.Command{
		Use:   "actions",
		Short: "Print the prioritized action plan across all domains",
		Args:  cobra.NoArgs,
		RunE: withEngine(func(ctx context.Context, e *di.Engine, cmd *cobra.Command, _ []string) error {
			plan, err := e.Health.ActionPlan(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		}),
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall command timeout")

	resolveCmd.Flags().StringVar(&reason, "reason", "", "resolution note stored with the risk")
	sweepCmd.Flags().IntVar(&maxAgeHours, "max-age-hours", 24, "minimum age before a stale risk is resolved")

	rootCmd.AddCommand(snapshotCmd, generateCmd, risksCmd, resolveCmd, sweepCmd, insightCmd, actionsCmd)
}

type engineFunc func(ctx context.Context, e *di.Engine, cmd *cobra.Command, args []string) error

// withEngine builds the core from --config and tears it down after fn.
func withEngine(fn engineFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return err
		}
		engine, cleanup, err := di.InitializeEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		defer engine.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return fn(ctx, engine, cmd, args)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
