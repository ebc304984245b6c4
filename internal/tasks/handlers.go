package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/appsec-portal/internal/ingest"
	"github.com/hugh/appsec-portal/internal/store"
)

// Handler executes report-ingestion tasks on the worker. The enqueueing
// side takes the per-ticket ingest lock; the handler releases it once the
// merge lands or fails for good, so a second upload cannot race the first.
type Handler struct {
	ingest  *ingest.Service
	tickets *store.TicketStore
	logger  *slog.Logger
}

func NewHandler(ingestSvc *ingest.Service, tickets *store.TicketStore, logger *slog.Logger) *Handler {
	return &Handler{ingest: ingestSvc, tickets: tickets, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeFinalReport, h.HandleFinalReport)
	mux.HandleFunc(TypeRetestReport, h.HandleRetestReport)
}

func (h *Handler) HandleFinalReport(ctx context.Context, t *asynq.Task) error {
	var payload ReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	defer h.tickets.UnlockIngest(ctx, payload.TicketID)

	h.logger.Info("starting final report ingestion",
		"ticket_id", payload.TicketID,
		"file", payload.FileName,
	)

	ticket, err := h.ingest.IngestFinalReport(ctx, payload.TicketID, payload.FileName, payload.MimeType, payload.Data)
	if err != nil {
		h.logger.Error("final report ingestion failed", "ticket_id", payload.TicketID, "error", err)
		return err
	}

	h.logger.Info("completed final report ingestion",
		"ticket_id", payload.TicketID,
		"findings_total", len(ticket.Vulnerabilities),
	)
	return nil
}

func (h *Handler) HandleRetestReport(ctx context.Context, t *asynq.Task) error {
	var payload ReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	defer h.tickets.UnlockIngest(ctx, payload.TicketID)

	h.logger.Info("starting retest report ingestion",
		"ticket_id", payload.TicketID,
		"file", payload.FileName,
	)

	ticket, err := h.ingest.IngestRetestReport(ctx, payload.TicketID, payload.FileName, payload.MimeType, payload.Data)
	if err != nil {
		h.logger.Error("retest report ingestion failed", "ticket_id", payload.TicketID, "error", err)
		return err
	}

	h.logger.Info("completed retest report ingestion",
		"ticket_id", payload.TicketID,
		"retest_reports", len(ticket.RetestReports),
	)
	return nil
}
