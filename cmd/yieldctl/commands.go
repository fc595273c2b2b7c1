package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
	"yieldcurve_backend/internal/platform/config"
	"yieldcurve_backend/internal/platform/db"
	jwtmw "yieldcurve_backend/internal/platform/jwt"
	"yieldcurve_backend/internal/platform/logger"
)

// cli はコマンド間で共有する状態です。
type cli struct {
	open      opener
	configDir string
	logLevel  string
	date      string
	cfg       *config.Config
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:           "yieldctl",
		Short:         "Daily closing tool for the bond yield curve engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.logLevel != "" {
				cfg.Logging.Level = c.logLevel
			}
			// 標準出力は結果の JSON 用
			slog.SetDefault(logger.New(os.Stderr, cfg.Logging))
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configDir, "config", "", "directory containing config.yaml")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.date, "date", "", "business date YYYY-MM-DD (default: today in server.timezone)")

	root.AddCommand(
		c.draftCmd(),
		c.closeCmd(),
		c.publishCmd(),
		c.curveCmd(),
		c.tokenCmd(),
		c.migrateCmd(),
	)
	return root
}

// withEngine は engine を開いて fn を実行し、必ず閉じます。
func (c *cli) withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *engine, date time.Time) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := c.open(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer e.close()

	date := e.today()
	if c.date != "" {
		if date, err = dto.ParseDate(c.date); err != nil {
			return fmt.Errorf("invalid --date %q: %w", c.date, err)
		}
	}
	return fn(ctx, e, date)
}

// --- draft ---

func (c *cli) draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Compute the implied yield draft without confirming it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, func(ctx context.Context, e *engine, date time.Time) error {
				run, err := e.yc.ImpliedYields.ComputeDraftImpliedYields(ctx, date)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.NewDraftResponse(run))
			})
		},
	}
}

// --- close ---

// closingResult は close コマンドの出力です。
type closingResult struct {
	Draft     dto.DraftResponse    `json:"draft"`
	Confirmed *dto.ConfirmResponse `json:"confirmed,omitempty"`
	Curve     *dto.CurveResponse   `json:"curve,omitempty"`
}

func (c *cli) closeCmd() *cobra.Command {
	var dryRun, skipPublish bool
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Confirm the engine's selections for the day and publish the official curve",
		Long: `Runs the daily closing: computes the implied yield draft, confirms every
selected yield as-is, then builds and stores the official curve.
Use "draft" and the HTTP confirm endpoint when an operator needs to override a selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, func(ctx context.Context, e *engine, date time.Time) error {
				res, err := runClosing(ctx, e, date, dryRun, skipPublish)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the draft without confirming")
	cmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "confirm implied yields but do not publish the curve")
	return cmd
}

// runClosing はドラフト計算 → 全件確定 → 公式カーブ公表を行います。
func runClosing(ctx context.Context, e *engine, date time.Time, dryRun, skipPublish bool) (*closingResult, error) {
	run, err := e.yc.ImpliedYields.ComputeDraftImpliedYields(ctx, date)
	if err != nil {
		return nil, err
	}
	res := &closingResult{Draft: dto.NewDraftResponse(run)}
	if dryRun {
		return res, nil
	}
	if run.AlreadyConfirmed {
		return nil, fmt.Errorf("%s: %w", date.Format(dto.DateLayout), domain.ErrAlreadyConfirmedForDate)
	}

	selections := make([]entity.ConfirmedSelection, 0, len(run.Selections))
	for _, s := range run.Selections {
		selections = append(selections, entity.ConfirmedSelection{BondID: s.BondID, Yield: s.Selected})
	}
	if err := e.yc.ImpliedYields.ConfirmImpliedYields(ctx, date, selections); err != nil {
		return nil, err
	}
	res.Confirmed = &dto.ConfirmResponse{Date: date.Format(dto.DateLayout), Confirmed: len(selections)}
	if skipPublish {
		return res, nil
	}

	curve, err := e.yc.Curves.PublishOfficialCurve(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("implied yields confirmed but curve not published: %w", err)
	}
	cr := dto.NewCurveResponse(curve)
	res.Curve = &cr
	return res, nil
}

// --- publish ---

func (c *cli) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Build and store the official curve from confirmed implied yields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, func(ctx context.Context, e *engine, date time.Time) error {
				curve, err := e.yc.Curves.PublishOfficialCurve(ctx, date)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.NewCurveResponse(curve))
			})
		},
	}
}

// --- curve ---

func (c *cli) curveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "curve official|quoted",
		Short:     "Print a curve without storing it",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"official", "quoted"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, func(ctx context.Context, e *engine, date time.Time) error {
				build := e.yc.Curves.BuildOfficialCurve
				if args[0] == "quoted" {
					build = e.yc.Curves.BuildQuotedCurve
				}
				curve, err := build(ctx, date)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.NewCurveResponse(curve))
			})
		},
	}
}

// --- token ---

func (c *cli) tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator JWT for the write endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = c.cfg.Auth.TokenTTL
			}
			token, err := jwtmw.NewGenerator(c.cfg.Auth.JWTSecret, ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// --- migrate ---

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := db.OpenDB(c.cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			return db.RunMigrations(gdb)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
