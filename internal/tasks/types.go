package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeFinalReport  = "ingest:final_report"
	TypeRetestReport = "ingest:retest_report"
)

// ReportPayload carries an uploaded report to the worker that runs the
// analysis call and merges the result into the ticket.
type ReportPayload struct {
	TicketID string `json:"ticket_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

func NewFinalReportTask(payload ReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFinalReport, data), nil
}

func NewRetestReportTask(payload ReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRetestReport, data), nil
}
