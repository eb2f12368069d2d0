package controlplane

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/config"
)

type PairsHandler struct {
	store *config.Store
}

func NewPairsHandler(store *config.Store) *PairsHandler {
	return &PairsHandler{store: store}
}

type PairRequest struct {
	Local  string `json:"local" binding:"required"`
	Target string `json:"target" binding:"required"`
}

type PairRef struct {
	Local string `json:"local" binding:"required"`
}

type PairToggle struct {
	Local   string `json:"local" binding:"required"`
	Enabled bool   `json:"enabled"`
}

type PairListResponse struct {
	Pairs []config.FolderPair `json:"pairs"`
}

// List returns the configured folder pairs in sync order.
func (h *PairsHandler) List(c *gin.Context) {
	cfg := h.store.Snapshot()
	pairs := cfg.Folders
	if pairs == nil {
		pairs = []config.FolderPair{}
	}
	c.PureJSON(http.StatusOK, &PairListResponse{Pairs: pairs})
}

// Add appends a new folder pair.
func (h *PairsHandler) Add(c *gin.Context) {
	var req PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	pair, err := h.store.AddPair(req.Local, req.Target)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, pair)
}

// Remove deletes a pair by its local path.
func (h *PairsHandler) Remove(c *gin.Context) {
	var req PairRef
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if err := h.store.RemovePair(req.Local); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

// Toggle enables or disables a pair without removing it.
func (h *PairsHandler) Toggle(c *gin.Context) {
	var req PairToggle
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	if err := h.store.SetPairEnabled(req.Local, req.Enabled); err != nil {
		abortStoreError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

func abortStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, config.ErrPairExists):
		AbortWithError(c, http.StatusConflict, ErrCodeConflict, err)
	case errors.Is(err, config.ErrPairNotFound), errors.Is(err, config.ErrExcludeNotFound):
		AbortWithError(c, http.StatusNotFound, ErrCodeNotFound, err)
	case errors.Is(err, config.ErrLocalMissing), errors.Is(err, config.ErrBadPattern):
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
	default:
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
	}
}
