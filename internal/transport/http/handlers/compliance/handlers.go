package compliancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/compliance"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/platform/storage"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

const (
	requestCreateEndpoint = "compliance.request.create"
	maxRemarksLength      = 1000
	maxLabelLength        = 200
)

type AuditLog interface {
	Record(ctx context.Context, evt audit.Event, before, after any) error
}

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     *compliance.Service
	Files       storage.Resolver
	Perms       middleware.PermissionStore
	Audit       AuditLog
	Idempotency IdempotencyStore
	Metrics     *metrics.Collector
}

func NewHandler(service *compliance.Service, files storage.Resolver, perms middleware.PermissionStore, auditLog AuditLog, idem IdempotencyStore, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Files: files, Perms: perms, Audit: auditLog, Idempotency: idem, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermRequirementsRead, h.Perms)).Get("/compliance", h.handleList)
	r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/compliance/depots", h.handleDepots)
	r.With(middleware.RequirePermission(auth.PermRequirementsRead, h.Perms)).Get("/employees/{employeeID}/compliance", h.handleGetEmployee)
	r.With(middleware.RequirePermission(auth.PermRequirementsValidate, h.Perms)).Post("/employees/{employeeID}/requirements/{key}/validate", h.handleValidate)
	r.With(middleware.RequirePermission(auth.PermRequirementsRequest, h.Perms)).Post("/employees/{employeeID}/requests", h.handleCreateRequest)
}

type entryView struct {
	compliance.Entry
	FileURL string `json:"fileUrl,omitempty"`
}

type evaluationView struct {
	compliance.Evaluation
	Entries []entryView `json:"entries"`
}

type mutationView struct {
	Entry      entryView             `json:"entry"`
	Request    *compliance.HrRequest `json:"request,omitempty"`
	Evaluation evaluationView        `json:"evaluation"`
}

type validateRequest struct {
	Outcome    string `json:"outcome"`
	Remarks    string `json:"remarks"`
	ValidUntil string `json:"validUntil"`
}

type createRequestPayload struct {
	DocumentLabel string `json:"documentLabel"`
	Deadline      string `json:"deadline"`
	Priority      string `json:"priority"`
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, ok := h.loadVisible(w, r, user, chi.URLParam(r, "employeeID"))
	if !ok {
		return
	}

	eval := h.Service.EvaluateEmployee(*emp)
	setVersion(w, eval.Version)
	api.Success(w, h.evaluationView(r.Context(), eval), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "hr role required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := listFilter(r, user)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	evals, err := h.Service.List(r.Context(), filter, false)
	if err != nil {
		h.fail(w, r, err, "compliance_list_failed")
		return
	}
	api.Success(w, evals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepots(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	depots, err := h.Service.DepotCompliance(r.Context(), listFilter(r, user))
	if err != nil {
		h.fail(w, r, err, "depot_compliance_failed")
		return
	}
	api.Success(w, depots, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	key := chi.URLParam(r, "key")

	version, ok := parseVersion(w, r)
	if !ok {
		return
	}
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	var payload validateRequest
	if err := shared.DecodeJSON(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("outcome", payload.Outcome, "is required")
	outcome, known := compliance.ParseOutcome(payload.Outcome)
	if strings.TrimSpace(payload.Outcome) != "" && !known {
		v.Add("outcome", "must be approve or resubmit")
	}
	v.MaxLength("remarks", payload.Remarks, maxRemarksLength)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if _, ok := h.loadVisible(w, r, user, employeeID); !ok {
		return
	}

	result, err := h.Service.Validate(r.Context(), employeeID, key, compliance.Decision{
		Outcome:     outcome,
		Remarks:     payload.Remarks,
		ValidUntil:  payload.ValidUntil,
		ValidatedBy: user.UserID,
	}, version)
	if err != nil {
		h.fail(w, r, err, "validation_failed")
		return
	}

	h.Metrics.Validation(outcome == compliance.OutcomeApprove)
	h.recordAudit(r, user, audit.ActionRequirementValidated, employeeID, result.Entry.Key, result.Before, result.Entry)

	setVersion(w, result.Evaluation.Version)
	api.Success(w, h.mutationView(r.Context(), result), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	version, ok := parseVersion(w, r)
	if !ok {
		return
	}
	raw, ok := readBody(w, r)
	if !ok {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))
	requestHash := middleware.RequestHash(append([]byte(employeeID+"\n"), raw...))
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, requestCreateEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different request", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		}
		if found {
			api.Created(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	var payload createRequestPayload
	if err := shared.DecodeJSON(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("documentLabel", payload.DocumentLabel, "is required")
	v.Required("deadline", payload.Deadline, "is required")
	v.MaxLength("documentLabel", payload.DocumentLabel, maxLabelLength)
	v.Enum("priority", payload.Priority, []string{compliance.PriorityNormal, compliance.PriorityHigh, compliance.PriorityUrgent}, "must be normal, high or urgent")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if _, ok := h.loadVisible(w, r, user, employeeID); !ok {
		return
	}

	result, err := h.Service.AddRequest(r.Context(), employeeID, compliance.RequestInput{
		Label:       payload.DocumentLabel,
		Deadline:    payload.Deadline,
		Priority:    payload.Priority,
		RequestedBy: user.UserID,
	}, version)
	if err != nil {
		h.fail(w, r, err, "request_create_failed")
		return
	}

	h.Metrics.RequestCreated()
	h.recordAudit(r, user, audit.ActionRequestCreated, employeeID, result.Request.ID, nil, result.Request)

	view := h.mutationView(r.Context(), result)
	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(view)
		if err == nil {
			err = h.Idempotency.Save(r.Context(), user.UserID, requestCreateEndpoint, idempotencyKey, requestHash, encoded)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		}
	}

	setVersion(w, result.Evaluation.Version)
	api.Created(w, view, middleware.GetRequestID(r.Context()))
}

// loadVisible fetches the employee and hides it from callers outside its scope.
// Employees see only themselves; depot HR sees only its depot.
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request, user auth.UserContext, employeeID string) (*compliance.Employee, bool) {
	emp, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		h.fail(w, r, err, "employee_lookup_failed")
		return nil, false
	}
	if !visible(user, *emp) {
		h.fail(w, r, compliance.ErrUnknownEmployee, "employee_lookup_failed")
		return nil, false
	}
	return emp, true
}

func visible(user auth.UserContext, emp compliance.Employee) bool {
	switch {
	case user.RoleName == auth.RoleEmployee:
		return emp.ID == user.UserID
	case user.DepotScoped():
		return user.Depot != "" && strings.EqualFold(strings.TrimSpace(emp.Depot), strings.TrimSpace(user.Depot))
	}
	return true
}

func listFilter(r *http.Request, user auth.UserContext) compliance.ListFilter {
	filter := compliance.ListFilter{Depot: strings.TrimSpace(r.URL.Query().Get("depot"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		filter.Category = compliance.ParseCategory(raw)
	}
	if user.DepotScoped() {
		filter.Depot = user.Depot
	}
	return filter
}

func (h *Handler) evaluationView(ctx context.Context, eval compliance.Evaluation) evaluationView {
	view := evaluationView{Evaluation: eval, Entries: make([]entryView, 0, len(eval.Entries))}
	for _, entry := range eval.Entries {
		view.Entries = append(view.Entries, h.entryView(ctx, entry))
	}
	return view
}

func (h *Handler) entryView(ctx context.Context, entry compliance.Entry) entryView {
	view := entryView{Entry: entry}
	if h.Files == nil || entry.FilePath == "" {
		return view
	}
	url, err := h.Files.URL(ctx, entry.FilePath)
	if err != nil {
		slog.Warn("file url resolve failed", "err", err, "key", entry.Key)
		return view
	}
	view.FileURL = url
	return view
}

func (h *Handler) mutationView(ctx context.Context, result compliance.MutationResult) mutationView {
	return mutationView{
		Entry:      h.entryView(ctx, result.Entry),
		Request:    result.Request,
		Evaluation: h.evaluationView(ctx, result.Evaluation),
	}
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, employeeID, subject string, before, after any) {
	if h.Audit == nil {
		return
	}
	evt := audit.Event{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: audit.EntityEmployee,
		EntityID:   employeeID,
		Subject:    subject,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
	}
	if err := h.Audit.Record(r.Context(), evt, before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())
	var fieldErr *compliance.FieldError
	var dupErr *compliance.DuplicateError
	switch {
	case errors.As(err, &fieldErr):
		reason := "is required"
		if errors.Is(err, compliance.ErrInvalidField) {
			reason = "is invalid"
		}
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: fieldErr.Field, Reason: reason}})
	case errors.Is(err, compliance.ErrMissingField), errors.Is(err, compliance.ErrInvalidField):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.As(err, &dupErr):
		h.Metrics.DuplicateRejected()
		api.FailWithDetails(w, http.StatusConflict, "duplicate_requirement", "requirement already exists",
			map[string]string{"label": dupErr.Label, "existing": dupErr.Existing}, requestID)
	case errors.Is(err, compliance.ErrDuplicateRequirement):
		h.Metrics.DuplicateRejected()
		api.Fail(w, http.StatusConflict, "duplicate_requirement", "requirement already exists", requestID)
	case errors.Is(err, compliance.ErrStaleWrite):
		h.Metrics.StaleWrite()
		api.Fail(w, http.StatusConflict, "stale_write", "requirements changed since they were read, reload and retry", requestID)
	case errors.Is(err, compliance.ErrUnknownEmployee):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, compliance.ErrUnknownRequirement):
		api.Fail(w, http.StatusNotFound, "requirement_not_found", "requirement not found", requestID)
	case errors.Is(err, compliance.ErrUnreadableRequirements):
		slog.Warn("mutation blocked on unreadable requirements", "requestId", requestID)
		api.Fail(w, http.StatusUnprocessableEntity, "requirements_unreadable", "stored requirements could not be read, fix the record before editing", requestID)
	case errors.Is(err, compliance.ErrNotValidatable):
		api.Fail(w, http.StatusUnprocessableEntity, "not_validatable", "requirement has nothing new to validate", requestID)
	default:
		slog.Error("compliance request failed", "err", err, "code", fallbackCode, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "internal error", requestID)
	}
}

func parseVersion(w http.ResponseWriter, r *http.Request) (int64, bool) {
	version, err := shared.ParseVersion(r)
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "If-Match", Reason: err.Error()}})
		return 0, false
	}
	return version, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
			return nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return raw, true
}

func setVersion(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}
