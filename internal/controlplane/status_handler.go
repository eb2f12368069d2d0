package controlplane

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/version"
)

type StatusHandler struct {
	svc *daemon.SyncService
}

func NewStatusHandler(svc *daemon.SyncService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type StatusResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version"`
	Daemon    daemon.Status `json:"daemon"`
}

// Status returns daemon health, mount state and sync state.
func (h *StatusHandler) Status(c *gin.Context) {
	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Version,
		Daemon:    h.svc.Status(c.Request.Context()),
	})
}
