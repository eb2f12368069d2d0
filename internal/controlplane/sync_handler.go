package controlplane

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/journal"
	"github.com/nfsync/nfsync/internal/syncer"
)

type SyncHandler struct {
	svc  *daemon.SyncService
	jrnl *journal.Journal
}

func NewSyncHandler(svc *daemon.SyncService, jrnl *journal.Journal) *SyncHandler {
	return &SyncHandler{svc: svc, jrnl: jrnl}
}

type SyncStartedResponse struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Now starts a background sync run. 409 while one is active.
func (h *SyncHandler) Now(c *gin.Context) {
	if err := h.svc.RunNow(); err != nil {
		if errors.Is(err, syncer.ErrAlreadyRunning) {
			AbortWithError(c, http.StatusConflict, ErrCodeAlreadyRunning, err)
			return
		}
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		return
	}

	c.PureJSON(http.StatusAccepted, &SyncStartedResponse{
		Code:  CodeOk,
		State: h.svc.State().String(),
	})
}

// Cancel requests the active run to stop. Idempotent.
func (h *SyncHandler) Cancel(c *gin.Context) {
	h.svc.Cancel()
	c.PureJSON(http.StatusOK, &ControlPlaneResponse{Code: CodeOk})
}

type RunListResponse struct {
	Runs []journal.RunRecord `json:"runs"`
}

type RunErrorsResponse struct {
	RunID  string                `json:"run_id"`
	Errors []journal.ErrorRecord `json:"errors"`
}

// Runs returns recent run summaries, newest first.
func (h *SyncHandler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.jrnl.Recent(limit)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		return
	}
	if runs == nil {
		runs = []journal.RunRecord{}
	}
	c.PureJSON(http.StatusOK, &RunListResponse{Runs: runs})
}

// RunErrors returns the failed pairs of one run in processing order.
func (h *SyncHandler) RunErrors(c *gin.Context) {
	runID := c.Param("id")

	errs, err := h.jrnl.Errors(runID)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		return
	}
	if errs == nil {
		errs = []journal.ErrorRecord{}
	}
	c.PureJSON(http.StatusOK, &RunErrorsResponse{RunID: runID, Errors: errs})
}
