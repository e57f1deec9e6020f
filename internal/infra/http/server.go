package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"org-subscription-saas/internal/config"
	"org-subscription-saas/internal/domain/ports/repository"
	"org-subscription-saas/internal/infra/ipallow"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/usecase"
)

type Server struct {
	cfg      *config.Config
	ipcheck  *ipallow.Validator
	sessions *SessionManager

	payments   repository.PaymentRepository
	checkoutUC usecase.CheckoutUseCase
	reconcile  usecase.ReconcileUseCase
	returnUC   usecase.ReturnFlowUseCase
	assistUC   usecase.AssistUseCase
	notifUC    usecase.NotificationUseCase
	statsUC    usecase.StatsUseCase

	log    *zerolog.Logger
	server *http.Server
}

func NewServer(
	cfg *config.Config,
	ipcheck *ipallow.Validator,
	sessions *SessionManager,
	payments repository.PaymentRepository,
	checkoutUC usecase.CheckoutUseCase,
	reconcile usecase.ReconcileUseCase,
	returnUC usecase.ReturnFlowUseCase,
	assistUC usecase.AssistUseCase,
	notifUC usecase.NotificationUseCase,
	statsUC usecase.StatsUseCase,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		ipcheck:    ipcheck,
		sessions:   sessions,
		payments:   payments,
		checkoutUC: checkoutUC,
		reconcile:  reconcile,
		returnUC:   returnUC,
		assistUC:   assistUC,
		notifUC:    notifUC,
		statsUC:    statsUC,
		log:        logger,
	}
}

// Router builds the full route tree. Exposed separately from Start so handler
// tests can drive it through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// Gateway-facing, no session.
	r.Post("/webhook/yookassa", s.handleWebhook)

	// Browser-facing, session cookie required.
	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/payment/return", s.handlePaymentReturn)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tariffs", s.handleListTariffs)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Post("/checkout", s.handleCheckout)
			r.Post("/assist", s.handleAssist)
			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications/read", s.handleMarkNotificationsRead)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.withSession, s.adminOnly)
			r.Get("/stats", s.handleStats)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ===== middleware =====

type ctxKey string

const claimsKey ctxKey = "session_claims"

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessions.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = logging.WithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := claimsFrom(r.Context()); c == nil || !c.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(claimsKey).(*SessionClaims)
	return c
}
