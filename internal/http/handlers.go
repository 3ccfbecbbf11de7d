package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r.URL.Query())

	page, err := s.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, "Failed to fetch transactions")
		return
	}

	respondOK(w, "Fetched transactions", page)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := t.Validate(); err != nil {
		respondError(w, r, err, "Failed to create transaction")
		return
	}

	created, err := s.store.Create(r.Context(), t)
	if err != nil {
		respondError(w, r, err, "Failed to create transaction")
		return
	}

	s.publishEvent(r.Context(), "created", created.ID)
	respondCreated(w, "Transaction created", created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	var patch core.TransactionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondFail(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := patch.Validate(); err != nil {
		respondError(w, r, err, "Failed to update transaction")
		return
	}

	updated, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err, "Failed to update transaction")
		return
	}

	s.publishEvent(r.Context(), "updated", updated.ID)
	respondOK(w, "Transaction updated", updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "Failed to delete transaction")
		return
	}

	s.publishEvent(r.Context(), "deleted", deleted.ID)
	respondOK(w, "Transaction deleted", deleted)
}

func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.All(r.Context())
	if err != nil {
		respondError(w, r, err, "Failed to fetch dashboard data")
		return
	}

	respondOK(w, "Fetched transactions data", core.ComputeStats(transactions))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "ok", nil)
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.List(r.Context(), core.Filter{PageSize: 1}.Normalize()); err != nil {
		respondError(w, r, err, "Store not ready")
		return
	}
	respondOK(w, "ready", nil)
}

func transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respondFail(w, http.StatusBadRequest, "Invalid transaction id", raw)
		return 0, false
	}
	return id, true
}

// publishEvent emits a write event when AMQP is configured. Publishing
// is best-effort: failures are logged and never fail the request.
func (s *Server) publishEvent(ctx context.Context, action string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, action, id); err != nil {
		slog.WarnContext(ctx, "failed to publish transaction event",
			"action", action,
			"transaction_id", id,
			"error", err)
	}
}
