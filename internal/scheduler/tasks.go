package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskSLASweep evaluates every organization's leads against the SLA table.
const TaskSLASweep = "board.sla.sweep"

// TaskFollowUpReminder nudges an organization about a single stale lead.
const TaskFollowUpReminder = "board.leads.followup"

type SLASweepPayload struct {
	// OrganizationID narrows the sweep to one tenant; empty sweeps all.
	OrganizationID string `json:"organizationId,omitempty"`
}

type FollowUpReminderPayload struct {
	LeadID         string `json:"leadId"`
	OrganizationID string `json:"organizationId"`
}

func NewSLASweepTask(payload SLASweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSLASweep, data), nil
}

func ParseSLASweepPayload(task *asynq.Task) (SLASweepPayload, error) {
	var payload SLASweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SLASweepPayload{}, err
	}
	return payload, nil
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	return payload, nil
}
