package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kindred-stories/kindred/internal/access"
	jobmetrics "github.com/kindred-stories/kindred/internal/jobs"
	"github.com/kindred-stories/kindred/internal/users"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// UserScanner streams every stored user.
type UserScanner interface {
	EachUser(ctx context.Context, fn func(users.User) error) error
}

// RoleIntegrityReport summarises one scan.
type RoleIntegrityReport struct {
	Scanned   int              `json:"scanned"`
	Anomalies []access.Anomaly `json:"-"`
	ByColumn  map[string]int   `json:"by_column"`
}

// RoleIntegrityJob finds stored role strings that no longer parse.
type RoleIntegrityJob struct {
	Users   UserScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRoleIntegrityJob initialises the role integrity handler.
func NewRoleIntegrityJob(scanner UserScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *RoleIntegrityJob {
	return &RoleIntegrityJob{Users: scanner, Logger: logger, Metrics: metrics}
}

// Handle executes the scan for an Asynq task.
func (j *RoleIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("role integrity: handler not configured")
	}
	var payload RoleIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run scans all users once. Each anomaly is logged at warn level and the
// per-column gauge is replaced with this run's counts.
func (j *RoleIntegrityJob) Run(ctx context.Context, payload RoleIntegrityPayload) (report RoleIntegrityReport, err error) {
	tracker := j.metrics().Track(TaskRoleIntegrityScan)
	defer func() {
		err = tracker.End(err)
	}()
	if j.Users == nil {
		return report, errors.New("role integrity: user scanner not configured")
	}

	start := time.Now()
	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	logger.Info("starting role integrity scan")

	report.ByColumn = map[string]int{"admin_role": 0, "user_role": 0}
	err = j.Users.EachUser(ctx, func(u users.User) error {
		report.Scanned++
		for _, anomaly := range inspect(u) {
			report.Anomalies = append(report.Anomalies, anomaly)
			report.ByColumn[anomaly.Field]++
			logger.Warn("invalid stored role value",
				slog.String("user_id", anomaly.UserID),
				slog.String("column", anomaly.Field),
				slog.String("value", anomaly.Value),
				slog.Any("error", anomaly.Err),
			)
		}
		return nil
	})
	if err != nil {
		logger.Error("role integrity scan failed", slog.Any("error", err))
		return report, err
	}

	for column, count := range report.ByColumn {
		j.metrics().SetRoleAnomalies(column, count)
	}
	logger.Info("completed role integrity scan",
		slog.Int("scanned", report.Scanned),
		slog.Int("anomalies", len(report.Anomalies)),
		slog.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// inspect checks both role columns independently. Decide stops at the
// assigned role, so a bad legacy value behind a valid assignment would
// otherwise go unreported.
func inspect(u users.User) []access.Anomaly {
	p := u.Principal()
	var found []access.Anomaly
	if p.AssignedRole != "" {
		if _, anomaly := access.Decide(access.Principal{UserID: p.UserID, AssignedRole: p.AssignedRole}); anomaly != nil {
			found = append(found, *anomaly)
		}
	}
	if _, anomaly := access.Decide(access.Principal{UserID: p.UserID, LegacyRole: p.LegacyRole}); anomaly != nil {
		found = append(found, *anomaly)
	}
	return found
}

func (j *RoleIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRoleIntegrityScan))
	}
	return slog.Default().With(slog.String("job", TaskRoleIntegrityScan))
}

func (j *RoleIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
