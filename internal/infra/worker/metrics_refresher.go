package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"news-api/internal/handler/http/respond"
	"news-api/internal/observability/metrics"
	pkgcfg "news-api/pkg/config"
)

const refreshJob = "articles_total_refresh"

// ArticleCounter is the slice of the article service the refresher needs.
type ArticleCounter interface {
	Count(ctx context.Context) (int64, error)
}

// RefresherConfig configures MetricsRefresher.
type RefresherConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 1m".
	Schedule string
	// Timeout bounds a single Count call.
	Timeout time.Duration
}

// MetricsRefresher periodically copies the article count into the
// articles_total gauge.
type MetricsRefresher struct {
	counter ArticleCounter
	timeout time.Duration
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewMetricsRefresher validates cfg and schedules the refresh job. The job
// does not run until Start is called.
func NewMetricsRefresher(counter ArticleCounter, cfg RefresherConfig, logger *slog.Logger) (*MetricsRefresher, error) {
	if counter == nil {
		return nil, errors.New("metrics refresher: counter is required")
	}
	if err := pkgcfg.ValidateCronSchedule(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("metrics refresher: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &MetricsRefresher{counter: counter, timeout: cfg.Timeout, logger: logger}
	cl := cronLogger{logger}
	r.cron = cron.New(
		cron.WithParser(pkgcfg.CronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := r.cron.AddFunc(cfg.Schedule, func() { _ = r.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("metrics refresher: add job: %w", err)
	}
	return r, nil
}

// RunOnce counts the stored articles and updates the gauge. On failure the
// gauge keeps its previous value.
func (r *MetricsRefresher) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	n, err := r.counter.Count(ctx)
	elapsed := time.Since(start)
	if err != nil {
		recordJobRun(refreshJob, "failure", elapsed.Seconds())
		r.logger.Warn("article count refresh failed",
			slog.String("job", refreshJob),
			slog.String("error", respond.SanitizeError(err)))
		return err
	}

	metrics.SetArticlesTotal(n)
	recordJobRun(refreshJob, "success", elapsed.Seconds())
	r.logger.Debug("article count refreshed",
		slog.Int64("articles", n),
		slog.Duration("duration", elapsed))
	return nil
}

// Start refreshes once immediately, then hands the job to the scheduler.
func (r *MetricsRefresher) Start(ctx context.Context) {
	_ = r.RunOnce(ctx)
	r.cron.Start()
}

// Stop halts the scheduler and returns a context that is done once any
// running refresh has finished.
func (r *MetricsRefresher) Stop() context.Context {
	return r.cron.Stop()
}

// cronLogger routes scheduler messages to slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
