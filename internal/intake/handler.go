// Package intake turns lead-ads webhook deliveries into persisted leads and
// answers the provider's subscription handshake.
package intake

import (
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"loandesk/internal/common/config"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/observability"

	"github.com/go-chi/chi/v5"
)

const (
	bodyOK              = "OK"
	bodyMissingParams   = "Missing required parameters"
	bodyForbidden       = "Forbidden"
	bodyBadRequest      = "Bad Request"
	bodyInternalFailure = "Internal Server Error"

	subscribeMode = "subscribe"
)

type Handler struct {
	config  *Config
	logger  logger.Logger
	service *Service
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Fetcher       LeadFetcher
	Creator       LeadCreator
	Notifier      Notifier
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for lead intake: %w", err)
	}
	if opts.Creator == nil {
		return nil, fmt.Errorf("lead intake requires a lead creator")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"provider": Provider})

	if opts.Fetcher == nil || !opts.Fetcher.Configured() {
		log.Warn("facebook access token not configured, every lead fetch will be skipped", nil)
	}
	if cfg.VerifyToken == "" {
		log.Warn("facebook verify token not configured, subscription handshakes will be refused", nil)
	}

	h := &Handler{config: cfg, logger: log}
	h.service = NewService(ServiceDependencies{
		Logger:        log,
		Fetcher:       opts.Fetcher,
		Creator:       opts.Creator,
		Notifier:      opts.Notifier,
		Observability: opts.Observability,
	}, cfg)
	return h, nil
}

// Routes mounts the handshake and notification endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Verify)
	r.Post("/", h.Receive)
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	defer h.recoverInternal(w, r)

	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "" || token == "" || challenge == "" {
		writeText(w, http.StatusBadRequest, bodyMissingParams)
		return
	}

	if mode != subscribeMode || !h.tokenMatches(token) {
		h.logger.Warn("webhook verification refused", map[string]interface{}{"mode": mode})
		writeText(w, http.StatusForbidden, bodyForbidden)
		return
	}

	h.logger.Info("webhook verified", nil)
	writeText(w, http.StatusOK, challenge)
}

// Receive processes a notification batch. Any object body is acknowledged
// with 200 no matter how its changes fared.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	defer h.recoverInternal(w, r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		h.logger.Warn("webhook body unreadable", map[string]interface{}{"error": err.Error()})
		writeText(w, http.StatusBadRequest, bodyBadRequest)
		return
	}

	batch, err := Parse(body)
	if err != nil {
		h.logger.Warn("webhook payload rejected", map[string]interface{}{
			"error":     err.Error(),
			"notObject": stderrors.Is(err, ErrPayloadNotObject),
		})
		writeText(w, http.StatusBadRequest, bodyBadRequest)
		return
	}

	h.service.Process(r.Context(), batch)
	writeText(w, http.StatusOK, bodyOK)
}

func (h *Handler) tokenMatches(token string) bool {
	if h.config.VerifyToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.config.VerifyToken)) == 1
}

func (h *Handler) recoverInternal(w http.ResponseWriter, r *http.Request) {
	if rec := recover(); rec != nil {
		h.logger.Error("webhook handler failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"panic":  fmt.Sprint(rec),
		})
		writeText(w, http.StatusInternalServerError, bodyInternalFailure)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
