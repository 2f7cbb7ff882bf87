package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/penshort/roster/internal/handler/dto"
	"github.com/penshort/roster/internal/metrics"
	"github.com/penshort/roster/internal/schema"
)

// SchemaCache stores rendered documents. cache.SchemaCache implements it.
type SchemaCache interface {
	Get(ctx context.Context, version, format string) ([]byte, bool, error)
	Put(ctx context.Context, version, format string, doc []byte) error
}

// SchemaHandler serves the generated OpenAPI document.
type SchemaHandler struct {
	generator *schema.Generator
	version   string
	cache     SchemaCache
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewSchemaHandler creates a SchemaHandler. cache may be nil.
func NewSchemaHandler(generator *schema.Generator, version string, cache SchemaCache, recorder metrics.Recorder, logger *slog.Logger) *SchemaHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SchemaHandler{
		generator: generator,
		version:   version,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
	}
}

// Schema renders the document as JSON, or YAML with ?format=yaml.
//
// GET /api/schema/
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	format, err := schema.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeValidationFailed, "invalid query parameters",
			map[string]string{"format": "Must be one of json, yaml."})
		return
	}

	body, err := h.render(r.Context(), format)
	if err != nil {
		h.logger.Error("failed to render schema",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, dto.CodeInternalError, "An internal error occurred", nil)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *SchemaHandler) render(ctx context.Context, format schema.Format) ([]byte, error) {
	if h.cache != nil {
		body, ok, err := h.cache.Get(ctx, h.version, string(format))
		switch {
		case err != nil:
			h.logger.Warn("schema cache read failed", slog.String("error", err.Error()))
		case ok:
			h.recorder.IncSchemaCacheHit()
			return body, nil
		default:
			h.recorder.IncSchemaCacheMiss()
		}
	}

	start := time.Now()
	doc, err := h.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	body, err := schema.Encode(doc, format)
	if err != nil {
		return nil, err
	}
	h.recorder.ObserveSchemaGeneration(time.Since(start))

	if h.cache != nil {
		if err := h.cache.Put(ctx, h.version, string(format), body); err != nil {
			h.logger.Warn("schema cache write failed", slog.String("error", err.Error()))
		}
	}

	return body, nil
}
