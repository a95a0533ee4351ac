package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"backflow_portal_backend/internal/analytics"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/repository"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	tenant    string
	timeframe string
	demo      bool
	seed      int64
	all       bool
	quiet     bool
}

type tenantReport struct {
	TenantID     uuid.UUID                  `json:"tenantId"`
	Organization string                     `json:"organization"`
	Insights     *domain.PredictiveInsights `json:"insights"`
}

var opts reportOptions

var rootCmd = &cobra.Command{
	Use:   "insights-report",
	Short: "Generates predictive insights reports",
	Long: `insights-report runs the demand, churn and maintenance models for an organization
and writes the combined report to stdout as JSON. Use --demo to run against seeded sample data.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if opts.demo {
			if err := os.Setenv("ANALYTICS_DATA_SOURCE", config.DataSourceDemo); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("seed") {
			if err := os.Setenv("ANALYTICS_DEMO_SEED", strconv.FormatInt(opts.seed, 10)); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.tenant, "tenant", "", "Organization ID to report on")
	rootCmd.Flags().StringVar(&opts.timeframe, "timeframe", string(domain.DefaultTimeframe), "Report timeframe (30d, 90d, 6m, 1y)")
	rootCmd.Flags().BoolVar(&opts.demo, "demo", false, "Use seeded demo data instead of the database")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", 42, "Seed for demo data and external factors")
	rootCmd.Flags().BoolVar(&opts.all, "all", false, "Report on every organization")
	rootCmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Hide the progress bar")
	rootCmd.MarkFlagsMutuallyExclusive("tenant", "all")
	rootCmd.MarkFlagsOneRequired("tenant", "all")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o reportOptions, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout carries the report, so logs go to stderr.
	log := logger.NewWithHandler(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if _, err := domain.ParseTimeframe(o.timeframe); err != nil {
		return err
	}

	tables, err := domain.LoadTables(cfg.GetAnalyticsModelFile())
	if err != nil {
		return err
	}

	source, err := analytics.OpenSource(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer source.Close()

	engine := analytics.NewComponents(source.Reader, tables, cfg, log).Engine

	tenants, err := selectTenants(ctx, source.Reader, o)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if o.all && !o.quiet {
		bar = progressbar.NewOptions(len(tenants),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("generating insights"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	reports := make([]tenantReport, 0, len(tenants))
	for _, t := range tenants {
		insights, err := engine.GeneratePredictiveInsights(ctx, t.ID, o.timeframe)
		if err != nil {
			return fmt.Errorf("tenant %s: %w", t.ID, err)
		}
		reports = append(reports, tenantReport{TenantID: t.ID, Organization: t.Name, Insights: insights})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if o.all {
		return enc.Encode(reports)
	}
	return enc.Encode(reports[0])
}

func selectTenants(ctx context.Context, tenants repository.TenantReader, o reportOptions) ([]repository.Tenant, error) {
	if o.all {
		list, err := tenants.ListTenants(ctx)
		if err != nil {
			return nil, fmt.Errorf("list organizations: %w", err)
		}
		return list, nil
	}

	id, err := uuid.Parse(o.tenant)
	if err != nil {
		return nil, fmt.Errorf("invalid --tenant %q: %w", o.tenant, err)
	}
	t, err := tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return []repository.Tenant{t}, nil
}
