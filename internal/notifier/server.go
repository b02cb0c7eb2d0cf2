package notifier

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth"
)

const maxPayloadBytes = 64 << 10

// RouterConfig holds the HTTP-facing settings of the notifier.
type RouterConfig struct {
	RateLimit      int
	AllowedOrigins []string
}

// Handler serves the notifier HTTP API.
type Handler struct {
	svc       *Service
	tokenAuth *jwtauth.JWTAuth
}

func NewHandler(svc *Service, serviceSecret string) *Handler {
	return &Handler{svc: svc, tokenAuth: jwtauth.New("HS256", []byte(serviceSecret), nil)}
}

// NewRouter mounts /health and one POST /email/<kind> route per kind.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	r.Get("/health", h.Health)
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(requireServiceClaim)
		for _, kind := range notify.Kinds {
			r.Post("/email/"+kind, h.send(kind))
		}
	})
	return r
}

func writeReply(w http.ResponseWriter, status int, reply notify.Reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		utils.LogError(err, "notifier: failed to write reply")
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeReply(w, http.StatusOK, notify.Reply{Success: true, Message: "notifier is running"})
}

func (h *Handler) send(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
		if err != nil {
			writeReply(w, http.StatusBadRequest, notify.Reply{Message: "unreadable body"})
			return
		}
		err = h.svc.Dispatch(r.Context(), kind, "http", raw)
		switch {
		case err == nil:
			writeReply(w, http.StatusOK, notify.Reply{Success: true, Message: "Email sent"})
		case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrUnknownKind):
			writeReply(w, http.StatusBadRequest, notify.Reply{Message: err.Error()})
		default:
			utils.LogWarn(err, "notifier: send failed", map[string]interface{}{"kind": kind})
			writeReply(w, http.StatusInternalServerError, notify.Reply{Message: "Failed to send email"})
		}
	}
}

// requireServiceClaim rejects valid user tokens that share the secret.
func requireServiceClaim(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || claims["service"] != "api" {
			writeReply(w, http.StatusUnauthorized, notify.Reply{Message: "service token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		utils.LogInfo("notifier request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"latency":    time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}
