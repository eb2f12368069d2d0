package controlplane

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/mount"
)

type MountHandler struct {
	svc *daemon.SyncService
}

func NewMountHandler(svc *daemon.SyncService) *MountHandler {
	return &MountHandler{svc: svc}
}

// Mount attaches the configured share.
func (h *MountHandler) Mount(c *gin.Context) {
	if err := h.svc.Mount(c.Request.Context()); err != nil {
		abortMountError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// Unmount detaches the configured share.
func (h *MountHandler) Unmount(c *gin.Context) {
	if err := h.svc.Unmount(c.Request.Context()); err != nil {
		abortMountError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// Probe checks that the server exposes the configured export.
func (h *MountHandler) Probe(c *gin.Context) {
	if err := h.svc.Probe(c.Request.Context()); err != nil {
		abortMountError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

func abortMountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mount.ErrNotConfigured), errors.Is(err, mount.ErrNoPassword):
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
	case errors.Is(err, mount.ErrAuthFailed):
		AbortWithError(c, http.StatusForbidden, ErrCodeMountFailed, err)
	case errors.Is(err, mount.ErrAlreadyMounted), errors.Is(err, mount.ErrNotMounted):
		AbortWithError(c, http.StatusConflict, ErrCodeConflict, err)
	case errors.Is(err, mount.ErrExportMissing):
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
	case errors.Is(err, mount.ErrTimeout):
		AbortWithError(c, http.StatusGatewayTimeout, ErrCodeMountFailed, err)
	default:
		AbortWithError(c, http.StatusInternalServerError, ErrCodeMountFailed, err)
	}
}
