package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"org-subscription-saas/internal/domain"
	"org-subscription-saas/internal/usecase"
)

var returnPage = template.Must(template.New("return").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
{{if .Refresh}}<meta http-equiv="refresh" content="5" />{{end}}
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020} .wait{color:#92400e}
.btn{display:inline-block;margin-top:16px;padding:10px 16px;border-radius:8px;border:1px solid #888;text-decoration:none}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{.Class}}">{{.Title}}</h2>
  <p>{{.Msg}}</p>
  {{if .Refresh}}<div class="small">This page refreshes automatically.</div>{{end}}
  <a class="btn" href="/">Back to dashboard</a>
</div>
</body>
</html>`))

type returnPageData struct {
	Title   string
	Class   string
	Msg     string
	Refresh bool
}

// handlePaymentReturn renders the page the gateway redirects the user back
// to. The result is a best-effort verification; the webhook and the stale
// reconciler settle anything this page could not.
func (s *Server) handlePaymentReturn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	claims := claimsFrom(ctx)
	out, err := s.returnUC.CheckReturn(ctx, claims.UserID, claims.SessionID)
	switch {
	case errors.Is(err, domain.ErrGatewayUnavailable):
		s.renderReturn(w, http.StatusOK, returnPageData{
			Title:   "Could not verify payment",
			Class:   "wait",
			Msg:     "The payment provider is temporarily unreachable. Refresh this page in a moment; your payment is not lost.",
			Refresh: true,
		})
		return
	case err != nil:
		s.log.Error().Err(err).Msg("return flow failed")
		s.renderReturn(w, http.StatusInternalServerError, returnPageData{
			Title: "Something went wrong",
			Class: "fail",
			Msg:   "We could not check your payment right now. Please try again later.",
		})
		return
	}

	if !out.Found {
		s.renderReturn(w, http.StatusNotFound, returnPageData{
			Title: "Payment not found",
			Class: "fail",
			Msg:   "We could not find a payment for your session. If you were charged, contact support.",
		})
		return
	}

	switch out.Result {
	case usecase.ResultSucceeded:
		s.renderReturn(w, http.StatusOK, returnPageData{
			Title: "Payment successful",
			Class: "ok",
			Msg:   "Your payment has been confirmed and your subscription is now active.",
		})
	case usecase.ResultPending:
		s.renderReturn(w, http.StatusOK, returnPageData{
			Title:   "Payment processing",
			Class:   "wait",
			Msg:     "The provider has not confirmed your payment yet. This usually takes under a minute.",
			Refresh: true,
		})
	default:
		s.renderReturn(w, http.StatusOK, returnPageData{
			Title: "Payment not completed",
			Class: "fail",
			Msg:   "Your payment was canceled or failed. No money was taken; you can start a new checkout.",
		})
	}
}

func (s *Server) renderReturn(w http.ResponseWriter, code int, data returnPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := returnPage.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("return page render failed")
	}
}
