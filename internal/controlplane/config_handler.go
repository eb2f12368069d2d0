package controlplane

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/secrets"
)

type ConfigHandler struct {
	store *config.Store
}

func NewConfigHandler(store *config.Store) *ConfigHandler {
	return &ConfigHandler{store: store}
}

type ExcludeRequest struct {
	Pattern string `json:"pattern" binding:"required"`
}

type ExcludeListResponse struct {
	Patterns []string `json:"patterns"`
}

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ListExcludes returns the configured exclusion patterns.
func (h *ConfigHandler) ListExcludes(c *gin.Context) {
	patterns := h.store.Snapshot().ExcludePatterns
	if patterns == nil {
		patterns = []string{}
	}
	c.PureJSON(http.StatusOK, &ExcludeListResponse{Patterns: patterns})
}

// AddExclude registers a new exclusion pattern.
func (h *ConfigHandler) AddExclude(c *gin.Context) {
	var req ExcludeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if err := h.store.AddExclude(req.Pattern); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// RemoveExclude drops an exclusion pattern.
func (h *ConfigHandler) RemoveExclude(c *gin.Context) {
	var req ExcludeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if err := h.store.RemoveExclude(req.Pattern); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// SetPassword stores the sudo password used for mount operations.
func (h *ConfigHandler) SetPassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if err := h.store.SetPassword(secrets.Encode(req.Password)); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// ClearPassword removes the stored sudo password.
func (h *ConfigHandler) ClearPassword(c *gin.Context) {
	if err := h.store.ClearPassword(); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}
