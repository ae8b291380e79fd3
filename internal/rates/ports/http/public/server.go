package public

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/entities"
	mwLogger "github.com/224solutions/exchange/internal/rates/ports/http/public/middleware/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Server  *http.Server
	cfg     *config.Config
	service Service
}

func NewServer(server *http.Server, cfg *config.Config, service Service) *Server {
	return &Server{
		Server:  server,
		cfg:     cfg,
		service: service,
	}
}

// StartServer wires the router, starts listening and returns a channel that
// closes once the server has shut down after ctx cancellation.
func StartServer(ctx context.Context, service Service, cfg *config.Config) <-chan struct{} {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	serverConfig := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, cfg, service)

	r.Get("/currencies", server.GetCurrencies)
	r.Get("/currencies/{code}", server.GetRate)
	r.Post("/convert", server.Convert)
	r.Get("/format", server.Format)
	r.Post("/refresh", server.Refresh)
	r.Get("/users/{userID}/currency", server.GetPreferredCurrency)
	r.Put("/users/{userID}/currency", server.SetPreferredCurrency)

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

func (s *Server) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.service.SupportedCurrencies())
}

func (s *Server) GetRate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	rate, err := s.service.GetRate(code)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "unknown currency: "+code)
		return
	}

	RespondWithJSON(w, http.StatusOK, rate)
}

type convertRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

type convertResponse struct {
	entities.ConversionResult
	Formatted string `json:"formatted"`
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		RespondWithError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	result, err := s.service.Convert(ctx, req.Amount, req.From, req.To)
	if err != nil {
		var unsupported *entities.UnsupportedCurrencyError
		if errors.As(err, &unsupported) {
			RespondWithError(w, http.StatusBadRequest, unsupported.Error())
			return
		}
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, convertResponse{
		ConversionResult: result,
		Formatted:        s.service.FormatAmount(result.ConvertedAmount, result.ToCurrency, false),
	})
}

func (s *Server) Format(w http.ResponseWriter, r *http.Request) {
	amountParam := r.URL.Query().Get("amount")
	currency := r.URL.Query().Get("currency")
	alt := r.URL.Query().Get("alt") == "true"

	amount, err := strconv.ParseFloat(amountParam, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if currency == "" {
		RespondWithError(w, http.StatusBadRequest, "currency is required")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{
		"formatted": s.service.FormatAmount(amount, currency, alt),
	})
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Refresh(r.Context()); err != nil {
		RespondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type preferenceRequest struct {
	Currency string `json:"currency"`
}

func (s *Server) GetPreferredCurrency(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	RespondWithJSON(w, http.StatusOK, map[string]string{
		"currency": s.service.PreferredCurrency(r.Context(), userID),
	})
}

func (s *Server) SetPreferredCurrency(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Currency == "" {
		RespondWithError(w, http.StatusBadRequest, "currency is required")
		return
	}

	if err := s.service.SetPreferredCurrency(r.Context(), userID, req.Currency); err != nil {
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
