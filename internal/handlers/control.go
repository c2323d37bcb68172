package handlers

import (
	"net/http"

	"github.com/telhawk-systems/opsboard/common/httputil"
	"github.com/telhawk-systems/opsboard/common/logging"
	"github.com/telhawk-systems/opsboard/internal/models"
)

func (h *DashboardHandler) GetRefresh(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.board.Refresh.Config())
}

// refreshRequest allows partial updates of the refresh control.
type refreshRequest struct {
	AutoRefresh *bool `json:"autoRefresh"`
	Interval    *int  `json:"interval"`
}

// UpdateRefresh applies a new refresh control to every poller at once.
func (h *DashboardHandler) UpdateRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.board.Refresh.Update(func(cfg *models.RefreshConfig) {
		if req.AutoRefresh != nil {
			cfg.AutoRefresh = *req.AutoRefresh
		}
		if req.Interval != nil {
			cfg.Interval = *req.Interval
		}
	})
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.InfoContext(r.Context(), "refresh config updated",
		"auto_refresh", cfg.AutoRefresh,
		"interval_seconds", cfg.Interval,
	)
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

// ManualRefresh fetches every endpoint once.
func (h *DashboardHandler) ManualRefresh(w http.ResponseWriter, r *http.Request) {
	h.board.Refresh.ManualRefresh()
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func (h *DashboardHandler) Stream(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.board.StreamView())
}

func (h *DashboardHandler) PauseStream(w http.ResponseWriter, r *http.Request) {
	h.board.Events.Pause()
	httputil.WriteJSON(w, http.StatusOK, h.board.StreamView())
}

func (h *DashboardHandler) ResumeStream(w http.ResponseWriter, r *http.Request) {
	h.board.Events.Resume()
	httputil.WriteJSON(w, http.StatusOK, h.board.StreamView())
}

// ConnectStream opens the live stream. The connection outlives the request.
func (h *DashboardHandler) ConnectStream(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Events.Connect(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "stream connect failed", logging.Error(err))
		h.board.Notifications.NotifyError(err)
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"stream": h.board.StreamView(),
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.board.StreamView())
}

func (h *DashboardHandler) DisconnectStream(w http.ResponseWriter, r *http.Request) {
	h.board.Events.Disconnect()
	httputil.WriteJSON(w, http.StatusOK, h.board.StreamView())
}
