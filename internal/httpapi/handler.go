// Package httpapi exposes the fieldgate procedures over REST. Routing and
// per-route auth gating live here; all domain rules live in the services.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/mission"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
	"github.com/seedbotics/fieldgate/internal/domain/session"
	"github.com/seedbotics/fieldgate/internal/domain/telemetry"
	"github.com/seedbotics/fieldgate/internal/identity"
	"github.com/seedbotics/fieldgate/internal/metrics"
	"github.com/seedbotics/fieldgate/internal/middleware"
	"github.com/seedbotics/fieldgate/internal/services/alerts"
	"github.com/seedbotics/fieldgate/internal/services/auth"
	"github.com/seedbotics/fieldgate/internal/services/maintenance"
	"github.com/seedbotics/fieldgate/internal/services/missions"
	"github.com/seedbotics/fieldgate/internal/services/reports"
	"github.com/seedbotics/fieldgate/internal/services/robots"
	"github.com/seedbotics/fieldgate/internal/services/sessions"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// Services bundles the procedure implementations the API fronts.
type Services struct {
	Auth        *auth.Service
	Robots      *robots.Service
	Alerts      *alerts.Service
	Sessions    *sessions.Service
	Missions    *missions.Service
	Maintenance *maintenance.Service
	Reports     *reports.Service
}

type handler struct {
	svc Services
	log *logger.Logger
}

// NewHandler returns the API router. Public routes are register and login;
// everything else under /api requires a resolved identity.
func NewHandler(svc Services, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{svc: svc, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.RequireIdentity)

	protected.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)

	protected.HandleFunc("/robots", h.listRobots).Methods(http.MethodGet)
	protected.HandleFunc("/robots", h.registerRobot).Methods(http.MethodPost)
	protected.HandleFunc("/robots/{id}", h.patchRobot).Methods(http.MethodPatch)
	protected.HandleFunc("/robots/{id}/status", h.robotStatus).Methods(http.MethodGet)
	protected.HandleFunc("/robots/{id}/command", h.robotCommand).Methods(http.MethodPost)
	protected.HandleFunc("/robots/{id}/telemetry", h.robotTelemetry).Methods(http.MethodGet)
	protected.HandleFunc("/robots/{id}/telemetry", h.ingestTelemetry).Methods(http.MethodPost)
	protected.HandleFunc("/robots/{id}/stream", h.robotStream).Methods(http.MethodGet)

	protected.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet)
	protected.HandleFunc("/alerts/{id}/acknowledge", h.acknowledgeAlert).Methods(http.MethodPost)

	protected.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", h.getSession).Methods(http.MethodGet)

	protected.HandleFunc("/missions", h.createMission).Methods(http.MethodPost)
	protected.HandleFunc("/missions", h.listMissions).Methods(http.MethodGet)
	protected.HandleFunc("/missions/{id}", h.getMission).Methods(http.MethodGet)
	protected.HandleFunc("/missions/{id}/cancel", h.cancelMission).Methods(http.MethodPost)

	protected.HandleFunc("/maintenance", h.recordMaintenance).Methods(http.MethodPost)
	protected.HandleFunc("/maintenance", h.listMaintenance).Methods(http.MethodGet)

	protected.HandleFunc("/reports", h.generateReport).Methods(http.MethodPost)
	protected.HandleFunc("/reports", h.listReports).Methods(http.MethodGet)
	protected.HandleFunc("/reports/{id}", h.getReport).Methods(http.MethodGet)
	protected.HandleFunc("/reports/{id}", h.deleteReport).Methods(http.MethodDelete)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Auth ------------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload auth.RegisterInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	creds, err := h.svc.Auth.Register(r.Context(), payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, creds)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	creds, err := h.svc.Auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Auth.Me(r.Context(), callerID(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), callerID(r)); err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Robots ----------------------------------------------------------------------

func (h *handler) listRobots(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Robots.List(r.Context(), callerID(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"robots": list})
}

func (h *handler) registerRobot(w http.ResponseWriter, r *http.Request) {
	var payload robots.RegisterInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	created, err := h.svc.Robots.Register(r.Context(), callerID(r), payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"robot": created})
}

func (h *handler) patchRobot(w http.ResponseWriter, r *http.Request) {
	var patch robot.Patch
	if err := decodeJSON(r.Body, &patch); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	updated, err := h.svc.Robots.Update(r.Context(), callerID(r), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"robot": updated})
}

func (h *handler) robotStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Robots.Status(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) robotCommand(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Command robot.Command  `json:"command"`
		Params  map[string]any `json:"params"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	receipt, err := h.svc.Robots.Command(r.Context(), callerID(r), mux.Vars(r)["id"], payload.Command, payload.Params)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *handler) robotTelemetry(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeErr(w, err)
		return
	}
	page, err := h.svc.Robots.Telemetry(r.Context(), callerID(r), mux.Vars(r)["id"], limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) ingestTelemetry(w http.ResponseWriter, r *http.Request) {
	var reading telemetry.SensorReading
	if err := decodeJSON(r.Body, &reading); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	stored, err := h.svc.Robots.IngestReading(r.Context(), callerID(r), mux.Vars(r)["id"], reading)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"reading": stored})
}

// Alerts ----------------------------------------------------------------------

func (h *handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeErr(w, err)
		return
	}
	unackOnly := r.URL.Query().Get("unacknowledgedOnly") == "true"
	page, err := h.svc.Alerts.List(r.Context(), callerID(r), unackOnly, limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.svc.Alerts.Acknowledge(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// Sessions --------------------------------------------------------------------

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeErr(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.svc.Sessions.List(r.Context(), callerID(r), sessions.Filter{
		RobotID: q.Get("robotId"),
		FarmID:  q.Get("farmId"),
		Status:  session.Status(q.Get("status")),
		Limit:   limit,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Sessions.Get(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// Missions --------------------------------------------------------------------

func (h *handler) createMission(w http.ResponseWriter, r *http.Request) {
	var payload missions.CreateInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	created, err := h.svc.Missions.Create(r.Context(), callerID(r), payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"mission": created})
}

func (h *handler) listMissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.Missions.List(r.Context(), callerID(r), missions.Filter{
		RobotID: q.Get("robotId"),
		Status:  mission.Status(q.Get("status")),
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"missions": list})
}

func (h *handler) getMission(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Missions.Get(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mission": m})
}

func (h *handler) cancelMission(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Missions.Cancel(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mission": m})
}

// Maintenance -----------------------------------------------------------------

func (h *handler) recordMaintenance(w http.ResponseWriter, r *http.Request) {
	var payload maintenance.CreateInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	created, err := h.svc.Maintenance.Record(r.Context(), callerID(r), payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"log": created})
}

func (h *handler) listMaintenance(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.Maintenance.ListByRobot(r.Context(), callerID(r), r.URL.Query().Get("robotId"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

// Reports ---------------------------------------------------------------------

func (h *handler) generateReport(w http.ResponseWriter, r *http.Request) {
	var payload reports.GenerateInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeErr(w, apperr.Validation("invalid request body: "+err.Error()))
		return
	}
	out, err := h.svc.Reports.Generate(r.Context(), callerID(r), payload)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *handler) listReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Reports.List(r.Context(), callerID(r))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Reports.Get(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reports.Delete(r.Context(), callerID(r), mux.Vars(r)["id"]); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers ---------------------------------------------------------------------

// callerID returns the authenticated user id. Protected routes sit behind the
// RequireIdentity gate, so the identity is always present here.
func callerID(r *http.Request) string {
	id, _ := identity.FromContext(r.Context())
	return id.UserID
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeErr maps a service error to the JSON error envelope. Configuration
// details never leave the process; callers get a generic internal failure.
func (h *handler) writeErr(w http.ResponseWriter, err error) {
	svcErr := apperr.GetServiceError(err)
	if svcErr == nil {
		svcErr = apperr.Internal("unexpected error", err)
	}
	if svcErr.Code == apperr.CodeConfiguration || svcErr.Code == apperr.CodeInternal {
		h.log.WithError(err).Error("request failed")
		svcErr = apperr.Internal("internal server error", nil)
	}
	writeJSON(w, svcErr.HTTPStatus, map[string]any{"error": svcErr})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.ValidationField(key, key+" must be a positive integer")
	}
	return n, nil
}
