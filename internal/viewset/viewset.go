// Package viewset implements generic CRUD endpoints over a store and a serializer.
package viewset

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/roster/internal/handler/dto"
	"github.com/penshort/roster/internal/metrics"
	"github.com/penshort/roster/internal/repository"
	"github.com/penshort/roster/internal/serializer"
)

// Action names a view set operation.
type Action string

const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

var errTrailingData = errors.New("unexpected data after JSON object")

// LookupParam is the URL parameter carrying the object id on detail routes.
const LookupParam = "id"

// Store is the persistence contract a model view set needs.
type Store[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, obj *T) error
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id string) error
}

// Model is satisfied by pointers to model structs carrying an id.
type Model[T any] interface {
	*T
	GetID() string
}

// ViewSet is what a router registers: a serializer plus a handler per action.
type ViewSet interface {
	Serializer() *serializer.Serializer
	Actions() []Action
	Handler(action Action) http.HandlerFunc
}

// ModelViewSet serves list, create, retrieve, update, partial_update and
// destroy for one model.
type ModelViewSet[T any, PT Model[T]] struct {
	store      Store[T]
	serializer *serializer.Serializer
	logger     *slog.Logger
	recorder   metrics.Recorder
	resource   string
}

// New creates a ModelViewSet. resource labels logs and metrics.
func New[T any, PT Model[T]](resource string, store Store[T], s *serializer.Serializer, logger *slog.Logger, recorder metrics.Recorder) *ModelViewSet[T, PT] {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ModelViewSet[T, PT]{
		store:      store,
		serializer: s,
		logger:     logger,
		recorder:   recorder,
		resource:   resource,
	}
}

// Serializer returns the serializer used for every action.
func (v *ModelViewSet[T, PT]) Serializer() *serializer.Serializer { return v.serializer }

// Actions returns the supported actions in routing order.
func (v *ModelViewSet[T, PT]) Actions() []Action {
	return []Action{ActionList, ActionCreate, ActionRetrieve, ActionUpdate, ActionPartialUpdate, ActionDestroy}
}

// Handler returns the handler for action, or nil when unsupported.
func (v *ModelViewSet[T, PT]) Handler(action Action) http.HandlerFunc {
	switch action {
	case ActionList:
		return v.List
	case ActionCreate:
		return v.Create
	case ActionRetrieve:
		return v.Retrieve
	case ActionUpdate:
		return v.Update
	case ActionPartialUpdate:
		return v.PartialUpdate
	case ActionDestroy:
		return v.Destroy
	default:
		return nil
	}
}

// List handles GET /{prefix}/.
func (v *ModelViewSet[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	objs, err := v.store.List(r.Context())
	if err != nil {
		v.handleError(w, err)
		return
	}

	data, err := v.serializer.RepresentList(objs)
	if err != nil {
		v.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Create handles POST /{prefix}/.
func (v *ModelViewSet[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := v.decode(w, r)
	if !ok {
		return
	}

	obj := PT(new(T))
	if err := v.serializer.Bind(payload, obj, false); err != nil {
		v.handleError(w, err)
		return
	}

	if err := v.store.Create(r.Context(), obj); err != nil {
		v.handleError(w, err)
		return
	}

	v.recorder.IncObjectCreated(v.resource)
	v.logger.Info("object_created", "resource", v.resource, "id", obj.GetID())

	v.respondWith(w, r, obj.GetID(), http.StatusCreated)
}

// Retrieve handles GET /{prefix}/{id}/.
func (v *ModelViewSet[T, PT]) Retrieve(w http.ResponseWriter, r *http.Request) {
	v.respondWith(w, r, chi.URLParam(r, LookupParam), http.StatusOK)
}

// Update handles PUT /{prefix}/{id}/.
func (v *ModelViewSet[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	v.update(w, r, false)
}

// PartialUpdate handles PATCH /{prefix}/{id}/.
func (v *ModelViewSet[T, PT]) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	v.update(w, r, true)
}

// Destroy handles DELETE /{prefix}/{id}/.
func (v *ModelViewSet[T, PT]) Destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, LookupParam)

	if err := v.store.Delete(r.Context(), id); err != nil {
		v.handleError(w, err)
		return
	}

	v.recorder.IncObjectDeleted(v.resource)
	v.logger.Info("object_deleted", "resource", v.resource, "id", id)

	w.WriteHeader(http.StatusNoContent)
}

func (v *ModelViewSet[T, PT]) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id := chi.URLParam(r, LookupParam)

	obj, err := v.store.Get(r.Context(), id)
	if err != nil {
		v.handleError(w, err)
		return
	}

	payload, ok := v.decode(w, r)
	if !ok {
		return
	}

	if err := v.serializer.Bind(payload, PT(obj), partial); err != nil {
		v.handleError(w, err)
		return
	}

	if err := v.store.Update(r.Context(), obj); err != nil {
		v.handleError(w, err)
		return
	}

	v.recorder.IncObjectUpdated(v.resource)
	v.logger.Info("object_updated", "resource", v.resource, "id", id, "partial", partial)

	v.respondWith(w, r, id, http.StatusOK)
}

// respondWith re-reads the object so relations are rendered as stored.
func (v *ModelViewSet[T, PT]) respondWith(w http.ResponseWriter, r *http.Request, id string, status int) {
	obj, err := v.store.Get(r.Context(), id)
	if err != nil {
		v.handleError(w, err)
		return
	}

	data, err := v.serializer.Represent(obj)
	if err != nil {
		v.handleError(w, err)
		return
	}
	writeJSON(w, status, data)
}

func (v *ModelViewSet[T, PT]) decode(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	dec := json.NewDecoder(r.Body)

	var payload map[string]json.RawMessage
	err := dec.Decode(&payload)
	if err == nil {
		// The body must hold exactly one JSON object.
		if _, tokErr := dec.Token(); !errors.Is(tokErr, io.EOF) {
			err = tokErr
			if err == nil {
				err = errTrailingData
			}
		}
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, dto.CodePayloadTooLarge, "Request body too large", nil)
		return nil, false
	case err != nil || payload == nil:
		writeError(w, http.StatusBadRequest, dto.CodeInvalidJSON, "Invalid request body", nil)
		return nil, false
	}
	return payload, true
}

// handleError maps store and serializer errors to HTTP responses.
func (v *ModelViewSet[T, PT]) handleError(w http.ResponseWriter, err error) {
	if verr, ok := serializer.IsValidation(err); ok {
		v.recorder.IncValidationFailed(v.resource)
		writeError(w, http.StatusBadRequest, dto.CodeValidationFailed, "Validation failed", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, dto.CodeNotFound, "Not found", nil)
	case errors.Is(err, repository.ErrRelatedNotFound):
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRelation, "Related object does not exist", nil)
	case errors.Is(err, repository.ErrReadOnly):
		writeError(w, http.StatusMethodNotAllowed, dto.CodeReadOnly, "Resource is read-only", nil)
	default:
		v.logger.Error("internal_error", "resource", v.resource, "error", err)
		writeError(w, http.StatusInternalServerError, dto.CodeInternalError, "An internal error occurred", nil)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
