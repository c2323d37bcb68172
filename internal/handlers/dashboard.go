// Package handlers serves the dashboard state over a JSON HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/telhawk-systems/opsboard/common/httputil"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/aggregate"
	"github.com/telhawk-systems/opsboard/internal/dashboard"
	"github.com/telhawk-systems/opsboard/internal/models"
	"github.com/telhawk-systems/opsboard/internal/poller"
)

type DashboardHandler struct {
	board  *dashboard.Board
	logger *logging.Logger
}

func NewDashboardHandler(board *dashboard.Board, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{board: board, logger: logger.With(logging.Component("api"))}
}

// Health reports liveness along with the stream state.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "opsboard",
		"stream":  h.board.Events.Status().State.String(),
	})
}

// Dashboard returns the full derived view.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.board.View())
}

type overviewResponse struct {
	Overview *models.WorkflowOverview `json:"overview"`
	Cards    []models.MetricCard      `json:"cards"`
	Poller   poller.Status            `json:"poller"`
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	resp := overviewResponse{
		Cards:  h.board.Overview.Cards(),
		Poller: h.board.Overview.Status(),
	}
	if overview, ok := h.board.Overview.Overview(); ok {
		resp.Overview = &overview
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *DashboardHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.AnomaliesResponse{Anomalies: h.board.Anomalies.Anomalies()})
}

type heatmapResponse struct {
	Points   []models.HeatmapDataPoint `json:"points"`
	Grid     []models.HeatmapCell      `json:"grid"`
	MaxCount int                       `json:"maxCount"`
}

func (h *DashboardHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	points := h.board.Anomalies.Heatmap()
	httputil.WriteJSON(w, http.StatusOK, heatmapResponse{
		Points:   points,
		Grid:     aggregate.BuildHeatmapGrid(points),
		MaxCount: aggregate.MaxCount(points),
	})
}

type volumeResponse struct {
	models.WorkflowVolumeResponse
	Total   int                      `json:"total"`
	Max     int                      `json:"max"`
	Options []models.TimeRangeOption `json:"options"`
}

func (h *DashboardHandler) Volume(w http.ResponseWriter, r *http.Request) {
	volume := h.board.VolumeNow()
	httputil.WriteJSON(w, http.StatusOK, volumeResponse{
		WorkflowVolumeResponse: volume,
		Total:                  aggregate.TotalVolume(volume.Volumes),
		Max:                    aggregate.MaxVolume(volume.Volumes),
		Options:                models.TimeRangeOptions,
	})
}

type timeRangeRequest struct {
	Range models.TimeRange `json:"range"`
}

// SetVolumeRange switches the volume window and triggers a timeline refetch.
func (h *DashboardHandler) SetVolumeRange(w http.ResponseWriter, r *http.Request) {
	var req timeRangeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.board.Volume.SetTimeRange(req.Range); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.InfoContext(r.Context(), "volume time range changed", "time_range", req.Range)
	httputil.WriteJSON(w, http.StatusOK, timeRangeRequest{Range: h.board.Volume.TimeRange()})
}

// Events returns the event history, optionally filtered by ?filter=.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	events, err := h.board.Events.Filtered(filter)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidFilter) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to filter events", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
		"paused": h.board.Events.Paused(),
	})
}

func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": h.board.Notifications.List(),
	})
}

func (h *DashboardHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	h.board.Notifications.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
