package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/input"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger      *zap.Logger
	calculator  *mortgage.Calculator
	store       *cache.ResultStore
	formatter   *format.Formatter
	conf        *config.Configuration
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the web form and the
// calculation API. A nil conf uses the defaults; a nil store disables caching.
func NewHandler(logger *zap.Logger, conf *config.Configuration, store *cache.ResultStore, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}

	formatter, err := conf.Formatter()
	if err != nil {
		logger.Warn("falling back to default locale",
			zap.String("op", "server.NewHandler"),
			zap.Error(err),
		)
		formatter = format.MustFormatter(constants.DefaultLocale, constants.DefaultCurrencyCode)
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		calculator:  mortgage.NewCalculator(logger),
		store:       store,
		formatter:   formatter,
		conf:        conf,
		maxBodySize: conf.MaxBodySizeBytes(),
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Calculation API endpoint
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Field validation without calculating
	mux.HandleFunc("/api/validate", h.handleValidate)

	// Default scenario for populating the form
	mux.HandleFunc("/api/defaults", h.handleDefaults)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type calculateResponse struct {
	output.Document
	Errors   validation.Errors `json:"errors"`
	Cached   bool              `json:"cached"`
	Duration string            `json:"duration"`
}

type validateResponse struct {
	Errors  validation.Errors `json:"errors"`
	Unknown []string          `json:"unknown,omitempty"`
}

type defaultsResponse struct {
	Scenario   mortgage.Scenario `json:"scenario"`
	Fields     map[string]string `json:"fields"`
	ConfigYAML string            `json:"configYaml"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	values, ok := h.decodeFields(w, r, op)
	if !ok {
		return
	}

	errs := validation.ValidateInput(values)
	result, cached := h.store.Calculate(r.Context(), h.calculator, values.Scenario)
	elapsed := time.Since(start)

	report := output.Report{Scenario: values.Scenario, Result: result, Errors: errs}
	response := calculateResponse{
		Document: output.NewDocument(report, h.formatter),
		Errors:   errs,
		Cached:   cached,
		Duration: elapsed.String(),
	}

	h.logger.Info("mortgage computed",
		zap.String("op", op),
		zap.Float64("loanAmount", result.LoanAmount),
		zap.Int("years", len(result.Series)),
		zap.Int("validationErrors", len(errs)),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleValidate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	values, ok := h.decodeFields(w, r, op)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, validateResponse{
		Errors:  validation.ValidateInput(values),
		Unknown: values.Unknown,
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDefaults"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	scenarioConf := config.Configuration{Scenario: h.conf.Scenario}
	yamlBytes, err := scenarioConf.YAML()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Scenario:   h.conf.Scenario,
		Fields:     input.StringsFromScenario(h.conf.Scenario),
		ConfigYAML: string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeFields reads either {"fields": {...}} or a flat object of field
// values. It writes the error response itself and reports false on failure.
func (h *handler) decodeFields(w http.ResponseWriter, r *http.Request, op string) (input.Values, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return input.Values{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return input.Values{}, false
	}

	var payload map[string]interface{}
	if trimmed := bytes.TrimSpace(buf.Bytes()); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
			return input.Values{}, false
		}
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	fields := payload
	if rawFields, ok := payload["fields"]; ok {
		fieldMap, ok := rawFields.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid fields payload: expected object", op)
			return input.Values{}, false
		}
		fields = fieldMap
	}

	values := input.FromMap(fields)
	if len(values.Unknown) > 0 {
		h.logger.Debug("ignoring unknown fields",
			zap.String("op", op),
			zap.Strings("fields", values.Unknown),
		)
	}
	return values, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes before writing the header so that an unencodable
// payload becomes a 500 instead of an empty 200.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"failed to encode response"}`+"\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

// Run serves handler on the configured address until ctx is cancelled, then
// shuts the server down gracefully.
func Run(ctx context.Context, logger *zap.Logger, address string, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if address == "" {
		address = constants.DefaultServerAddress
	}

	srv := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "server.Run"),
			zap.String("address", address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-errCh
	logger.Info("server stopped", zap.String("op", "server.Run"))
	return nil
}
