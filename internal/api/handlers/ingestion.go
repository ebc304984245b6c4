package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/internal/tasks"
)

// maxReportSize caps uploaded assessment reports at 25 MiB.
const maxReportSize = 25 << 20

type IngestionHandler struct {
	tickets     *store.TicketStore
	asynqClient *asynq.Client
}

func NewIngestionHandler(tickets *store.TicketStore, asynqClient *asynq.Client) *IngestionHandler {
	return &IngestionHandler{tickets: tickets, asynqClient: asynqClient}
}

// UploadFinalReport handles POST /api/v1/tickets/:id/reports/final
func (h *IngestionHandler) UploadFinalReport(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, tasks.TypeFinalReport)
}

// UploadRetestReport handles POST /api/v1/tickets/:id/reports/retest
func (h *IngestionHandler) UploadRetestReport(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, tasks.TypeRetestReport)
}

// Status handles GET /api/v1/tickets/:id/reports/status
func (h *IngestionHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]bool{
		"processing": h.tickets.IngestLocked(r.Context(), id),
	})
}

// upload accepts a multipart report file, takes the per-ticket ingest lock
// and hands the bytes to the worker. The lock is held until the worker
// finishes merging the analysis result, so a second upload for the same
// ticket is rejected while one is in flight.
func (h *IngestionHandler) upload(w http.ResponseWriter, r *http.Request, taskType string) {
	id := chi.URLParam(r, "id")

	if _, err := h.tickets.Get(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReportSize)
	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("report")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Report file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read report file"})
		return
	}

	locked, err := h.tickets.TryLockIngest(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to start ingestion"})
		return
	}
	if !locked {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A report is already being processed for this ticket"})
		return
	}

	payload := tasks.ReportPayload{
		TicketID: id,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}

	var task *asynq.Task
	if taskType == tasks.TypeFinalReport {
		task, err = tasks.NewFinalReportTask(payload)
	} else {
		task, err = tasks.NewRetestReportTask(payload)
	}
	if err == nil {
		_, err = h.asynqClient.Enqueue(task)
	}
	if err != nil {
		h.tickets.UnlockIngest(r.Context(), id)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to enqueue report"})
		return
	}

	writeJSON(w, http.StatusAccepted, dto.SuccessResponse{Message: "Report accepted for processing"})
}
