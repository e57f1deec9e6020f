package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/ipallow"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/infra/metrics"
)

// webhookNotification is the subset of the gateway's notification body that
// reconciliation depends on. The embedded status is deliberately ignored: the
// engine always re-fetches the authoritative state from the gateway instead
// of trusting the pushed payload.
type webhookNotification struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// handleWebhook processes gateway payment notifications.
//
// Order matters: the IP gate runs before the body is read, an unparseable or
// incomplete body is the caller's fault (400), and everything after that is
// acknowledged with 200 so the gateway stops retrying. The one exception is
// the gateway's own API being unreachable during reconciliation; 502 tells it
// to redeliver later.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	clientIP := ipallow.ClientIP(r)
	if !s.ipcheck.IsAllowed(clientIP) {
		metrics.IncWebhook("rejected_ip")
		s.log.Warn().Str("client_ip", clientIP).Msg("webhook from unlisted ip rejected")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var n webhookNotification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&n); err != nil {
		metrics.IncWebhook("bad_json")
		s.log.Warn().Err(err).Str("client_ip", clientIP).Msg("webhook body not parseable")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if n.Event == "" || n.Object.ID == "" {
		metrics.IncWebhook("missing_id")
		s.log.Warn().Str("event", n.Event).Str("client_ip", clientIP).Msg("webhook missing event or payment id")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ctx := logging.WithPaymentID(r.Context(), n.Object.ID)
	log := logging.With(ctx, s.log)

	rec, err := s.payments.FindByProviderID(ctx, repository.NoTX, n.Object.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// Unknown payment: acknowledge without touching anything, the
		// notification may belong to another shop or a purged record.
		metrics.IncWebhook("not_found")
		log.Info().Str("event", n.Event).Msg("webhook for unknown payment acknowledged")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("event", n.Event).Msg("webhook record lookup failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if rec.Status.IsTerminal() {
		metrics.IncWebhook("already_processed")
		log.Info().
			Str("event", n.Event).
			Str("status", string(rec.Status)).
			Msg("webhook for already settled payment acknowledged")
		// Still run the engine: the fast path re-verifies the org flag.
		if _, err := s.reconcile.Reconcile(ctx, rec, "webhook"); err != nil {
			log.Error().Err(err).Msg("settled-payment verification failed")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	result, err := s.reconcile.Reconcile(ctx, rec, "webhook")
	if errors.Is(err, domain.ErrGatewayUnavailable) {
		metrics.IncWebhook("gateway_error")
		log.Warn().Err(err).Str("event", n.Event).Msg("webhook reconcile deferred, gateway unreachable")
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("event", n.Event).Msg("webhook reconcile failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.IncWebhook("processed")
	log.Info().
		Str("event", n.Event).
		Str("result", string(result)).
		Msg("webhook processed")
	w.WriteHeader(http.StatusOK)
}
