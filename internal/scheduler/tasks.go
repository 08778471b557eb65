package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskOrphanReprocess = "routing.orphans.reprocess"

const TaskDeletionScan = "roster.deletion.scan"

// SweepPayload stamps when a periodic sweep was requested.
type SweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewOrphanReprocessTask() (*asynq.Task, error) {
	data, err := json.Marshal(SweepPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrphanReprocess, data), nil
}

func NewDeletionScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(SweepPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeletionScan, data), nil
}

func ParseSweepPayload(task *asynq.Task) (SweepPayload, error) {
	var payload SweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SweepPayload{}, err
	}
	return payload, nil
}
