package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/content"
	"github.com/folio/internal/handler"
	"github.com/folio/internal/kvstore"
	"github.com/folio/internal/logger"
	"github.com/folio/internal/metrics"
	"github.com/folio/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// app 持有一次命令执行所需的全部依赖。
type app struct {
	cfg     config.AppConfig
	log     *zap.Logger
	metrics *metrics.Metrics
	store   kvstore.Store
	api     *handler.API
}

func newApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	log := logger.New(cfg.LogLevel, cfg.LogFile)

	library, err := content.Load(cfg.ContentDir)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("load content: %w", err)
	}
	log.Info("content loaded", zap.String("dir", cfg.ContentDir), zap.Int("posts", len(library.List())))

	m := metrics.New()
	store := kvstore.Instrument(kvstore.Open(ctx, cfg.StoreOptions(), log), m, log)

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		store:   store,
		api:     handler.NewAPI(store, library, log, m, cfg.MinReadingTime),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close analytics store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "folio serves blog content and engagement analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newStatsCmd(), newPopularCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			gin.SetMode(cfg.GinMode)

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			return serve(a)
		},
	}
}

func serve(a *app) error {
	r := router.SetupRouter(a.api, a.metrics, a.log, router.Options{AllowOrigins: a.cfg.AllowOrigins})
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", a.cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case sig := <-quit:
		a.log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	a.log.Info("server exited")
	return nil
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <slug>",
		Short: "Print view and reading-time statistics of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.api.Stats().Combined(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "slug\t%s\n", stats.Slug)
			fmt.Fprintf(w, "views\t%d\n", stats.ViewCount)
			fmt.Fprintf(w, "today\t%d\n", stats.TodayViews)
			fmt.Fprintf(w, "avg reading time\t%ds\n", stats.AverageReadingTime)
			fmt.Fprintf(w, "reads\t%d\n", stats.TotalReads)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newPopularCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Print the most viewed posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer a.close()

			posts, err := a.api.Popular().Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), posts)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tslug\tviews\tavg reading\ttitle")
			for i, post := range posts {
				fmt.Fprintf(w, "%d\t%s\t%d\t%ds\t%s\n", i+1, post.Slug, post.ViewCount, post.AverageReadingTime, post.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of posts to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
