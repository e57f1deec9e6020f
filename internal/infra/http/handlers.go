package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/model"
)

type checkoutRequest struct {
	Duration  string `json:"duration"`
	UserCount int    `json:"user_count"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims := claimsFrom(r.Context())
	res, err := s.checkoutUC.Checkout(r.Context(), claims.UserID, claims.SessionID,
		model.TariffDuration(req.Duration), req.UserCount)
	if err != nil {
		s.writeDomainError(w, r, err, "checkout failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type tariffResponse struct {
	Duration            string `json:"duration"`
	UserCount           int    `json:"user_count"`
	PricePerUserKopecks int64  `json:"price_per_user_kopecks"`
	TotalKopecks        int64  `json:"total_kopecks"`
}

func (s *Server) handleListTariffs(w http.ResponseWriter, r *http.Request) {
	tariffs, err := s.checkoutUC.ListTariffs(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "tariff listing failed")
		return
	}
	out := make([]tariffResponse, 0, len(tariffs))
	for _, t := range tariffs {
		out = append(out, tariffResponse{
			Duration:            string(t.Duration),
			UserCount:           t.UserCount,
			PricePerUserKopecks: t.PricePerUserKopecks,
			TotalKopecks:        t.TotalPrice(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type assistRequest struct {
	Prompt string `json:"prompt"`
}

type assistResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims := claimsFrom(r.Context())
	reply, err := s.assistUC.Ask(r.Context(), claims.UserID, req.Prompt)
	if err != nil {
		s.writeDomainError(w, r, err, "assist failed")
		return
	}
	writeJSON(w, http.StatusOK, assistResponse{Reply: reply})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	ns, err := s.notifUC.ListNew(r.Context(), claims.UserID)
	if err != nil {
		s.writeDomainError(w, r, err, "notification listing failed")
		return
	}
	type item struct {
		ID        string `json:"id"`
		Kind      string `json:"kind"`
		Message   string `json:"message"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]item, 0, len(ns))
	for _, n := range ns {
		out = append(out, item{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Message:   n.Message,
			CreatedAt: n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := s.notifUC.MarkRead(r.Context(), claims.UserID); err != nil {
		s.writeDomainError(w, r, err, "notification mark-read failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.statsUC.Summary(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "stats summary failed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// writeDomainError maps sentinel errors to HTTP statuses; anything unmapped
// is a 500 with the detail kept in the log, not the response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoOrganization),
		errors.Is(err, domain.ErrSubscriptionInactive):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrOrganizationPaid):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrTariffNotFound), errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		http.Error(w, "payment gateway unavailable", http.StatusBadGateway)
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
