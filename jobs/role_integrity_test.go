package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/kindred-stories/kindred/internal/jobs"
	"github.com/kindred-stories/kindred/internal/users"
)

type stubScanner struct {
	users []users.User
	err   error
}

func (s stubScanner) EachUser(ctx context.Context, fn func(users.User) error) error {
	for _, u := range s.users {
		if err := fn(u); err != nil {
			return err
		}
	}
	return s.err
}

func user(legacy, assigned string) users.User {
	return users.User{ID: uuid.New(), UserRole: legacy, AdminRole: assigned}
}

func TestRoleIntegrityRunReportsAnomalies(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	var logs bytes.Buffer
	job := NewRoleIntegrityJob(stubScanner{users: []users.User{
		user("user", ""),
		user("admin", "circle_admin"),
		user("superuser", ""),
		user("moderator", "root"),
		user("owner", "chief"),
		user("user", "Super_Admin"),
	}}, slog.New(slog.NewTextHandler(&logs, nil)), metrics)

	report, err := job.Run(context.Background(), RoleIntegrityPayload{Trigger: "test"})
	require.NoError(t, err)
	assert.Equal(t, 6, report.Scanned)
	assert.Len(t, report.Anomalies, 5)
	assert.Equal(t, map[string]int{"admin_role": 3, "user_role": 2}, report.ByColumn)

	assert.Contains(t, logs.String(), "invalid stored role value")
	assert.Contains(t, logs.String(), "value=superuser")
	assert.Contains(t, logs.String(), "value=chief")
	assert.Contains(t, logs.String(), "value=Super_Admin")

	count, err := testutil.GatherAndCount(registry, "kindred_role_anomalies")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = testutil.GatherAndCount(registry, "kindred_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRoleIntegrityResetsGaugeWhenClean(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)

	_, err := NewRoleIntegrityJob(stubScanner{users: []users.User{user("owner", "")}}, nil, metrics).Run(context.Background(), RoleIntegrityPayload{})
	require.NoError(t, err)
	_, err = NewRoleIntegrityJob(stubScanner{users: []users.User{user("user", "")}}, nil, metrics).Run(context.Background(), RoleIntegrityPayload{})
	require.NoError(t, err)

	expected := `
# HELP kindred_role_anomalies Stored role values that failed to parse in the last integrity scan, by column.
# TYPE kindred_role_anomalies gauge
kindred_role_anomalies{column="admin_role"} 0
kindred_role_anomalies{column="user_role"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(registry, bytes.NewBufferString(expected), "kindred_role_anomalies"))
}

func TestRoleIntegrityScanFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	boom := errors.New("connection reset")

	_, err := NewRoleIntegrityJob(stubScanner{err: boom}, nil, metrics).Run(context.Background(), RoleIntegrityPayload{})
	assert.ErrorIs(t, err, boom)

	expected := `
# HELP kindred_jobs_failures_total Total failures observed for background jobs.
# TYPE kindred_jobs_failures_total counter
kindred_jobs_failures_total{job="roles:integrity-scan"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, bytes.NewBufferString(expected), "kindred_jobs_failures_total"))
}

func TestRoleIntegrityHandle(t *testing.T) {
	job := NewRoleIntegrityJob(stubScanner{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewRoleIntegrityScanTask(RoleIntegrityPayload{Trigger: "cron"})
	require.NoError(t, err)
	assert.Equal(t, TaskRoleIntegrityScan, task.Type())
	var payload RoleIntegrityPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "cron", payload.Trigger)
	assert.NoError(t, job.Handle(context.Background(), task))

	assert.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskRoleIntegrityScan, nil)))
	assert.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskRoleIntegrityScan, []byte("{"))), asynq.SkipRetry)
}
