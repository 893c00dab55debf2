package reportshandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/compliance"
	"hrportal/internal/domain/reports"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/middleware"
)

type Handler struct {
	Service *compliance.Service
	Perms   middleware.PermissionStore
	Now     func() time.Time
}

func NewHandler(service *compliance.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/compliance.csv", h.handleCSV)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/compliance.pdf", h.handlePDF)
	})
}

// scopedFilter limits depot HR to its own depot regardless of the query.
func scopedFilter(r *http.Request) compliance.ListFilter {
	filter := compliance.ListFilter{Depot: strings.TrimSpace(r.URL.Query().Get("depot"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		filter.Category = compliance.ParseCategory(raw)
	}
	if user, ok := middleware.GetUser(r.Context()); ok && user.DepotScoped() {
		filter.Depot = user.Depot
	}
	return filter
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	evals, err := h.Service.List(r.Context(), scopedFilter(r), false)
	if err != nil {
		slog.Error("compliance summary failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"summary": reports.Summarize(evals),
		"depots":  compliance.ComplianceByDepot(evals),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	evals, err := h.Service.List(r.Context(), scopedFilter(r), false)
	if err != nil {
		slog.Error("compliance csv failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	filename := "compliance-employees.csv"
	if r.URL.Query().Get("view") == "depots" {
		filename = "compliance-depots.csv"
		err = reports.WriteDepotsCSV(&buf, compliance.ComplianceByDepot(evals))
	} else {
		err = reports.WriteEvaluationsCSV(&buf, evals)
	}
	if err != nil {
		slog.Error("compliance csv render failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("compliance csv write failed", "err", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	evals, err := h.Service.List(r.Context(), scopedFilter(r), false)
	if err != nil {
		slog.Error("compliance pdf failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}

	var buf bytes.Buffer
	if err := reports.WritePDF(&buf, evals, compliance.ComplianceByDepot(evals), h.Now()); err != nil {
		slog.Error("compliance pdf render failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=compliance.pdf")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("compliance pdf write failed", "err", err)
	}
}
