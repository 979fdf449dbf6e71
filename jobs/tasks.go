package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRoleIntegrityScan re-parses every stored role value.
	TaskRoleIntegrityScan = "roles:integrity-scan"
	// RoleIntegrityCron runs the scan at the top of every hour.
	RoleIntegrityCron = "0 * * * *"
)

// RoleIntegrityPayload configures a role integrity scan run.
type RoleIntegrityPayload struct {
	// Trigger names who queued the run, e.g. "cron" or "cli".
	Trigger string `json:"trigger"`
}

// NewRoleIntegrityScanTask constructs an Asynq task.
func NewRoleIntegrityScanTask(payload RoleIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoleIntegrityScan, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
