package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
	"github.com/campnest/backend/internal/usecase"
)

// SyncService is the batch-runner surface the handlers need.
type SyncService interface {
	Trigger(ctx context.Context, ids []int64, runType string) (*domain.SyncRun, error)
	TriggerPending(ctx context.Context, limit int, runType string) (*domain.SyncRun, error)
	Cancel(runID uuid.UUID) error
	Status(ctx context.Context) (*domain.SyncRun, error)
}

// SyncHistory reads persisted run history.
type SyncHistory interface {
	List(ctx context.Context, f domain.SyncRunFilter) ([]domain.SyncRun, int, error)
}

// ReviewService is the candidate-review surface the handlers need.
type ReviewService interface {
	List(ctx context.Context, f domain.CandidateFilter) ([]domain.ImportCandidate, int, error)
	Detail(ctx context.Context, id int64) (*usecase.CandidateDetail, error)
	Approve(ctx context.Context, id int64, req usecase.ApproveRequest) (int64, error)
	Reject(ctx context.Context, id int64, reviewerID, reason, notes string) error
	BulkApprove(ctx context.Context, ids []int64, reviewerID string) *usecase.BulkApproveResult
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	sync    SyncService
	history SyncHistory
	review  ReviewService
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(sync SyncService, history SyncHistory, review ReviewService, logger *zap.Logger) *Handler {
	return &Handler{sync: sync, history: history, review: review, logger: logger}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "campnest-backend",
	})
}

// TriggerSyncRequest is the body of POST /sync/trigger.
type TriggerSyncRequest struct {
	Type     string `json:"type"`
	MaxItems int    `json:"max_items"`
}

// TriggerSync starts a batch over pending raw places. Returns 202 with the
// run id immediately; 409 while another run is in flight.
func (h *Handler) TriggerSync(c *gin.Context) {
	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Type == "" {
		req.Type = "manual"
	}

	run, err := h.sync.TriggerPending(c.Request.Context(), req.MaxItems, req.Type)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

// SyncStatus reports the in-flight run, or null when idle.
func (h *Handler) SyncStatus(c *gin.Context) {
	run, err := h.sync.Status(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// CancelSyncRequest is the body of POST /sync/cancel.
type CancelSyncRequest struct {
	RunID uuid.UUID `json:"run_id" binding:"required"`
}

// CancelSync asks the in-flight run to stop after its current item.
func (h *Handler) CancelSync(c *gin.Context) {
	var req CancelSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	if err := h.sync.Cancel(req.RunID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// SyncLogs returns paginated run history, optionally filtered by status.
func (h *Handler) SyncLogs(c *gin.Context) {
	var f domain.SyncRunFilter
	if s := c.Query("status"); s != "" {
		status := domain.SyncRunStatus(s)
		f.Status = &status
	}
	f.Limit = intQuery(c, "limit", 20)
	f.Offset = intQuery(c, "offset", 0)

	runs, total, err := h.history.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": total})
}

// ListCandidates returns paginated candidates filtered by status, minimum
// confidence, duplicate flag, and province.
func (h *Handler) ListCandidates(c *gin.Context) {
	var f domain.CandidateFilter
	if s := c.Query("status"); s != "" {
		status := domain.CandidateStatus(s)
		f.Status = &status
	}
	if s := c.Query("min_confidence"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_confidence"})
			return
		}
		f.MinConfidence = &v
	}
	if s := c.Query("is_duplicate"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_duplicate"})
			return
		}
		f.IsDuplicate = &v
	}
	if s := c.Query("province_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid province_id"})
			return
		}
		f.ProvinceID = &v
	}
	f.Limit = intQuery(c, "limit", 20)
	f.Offset = intQuery(c, "offset", 0)

	candidates, total, err := h.review.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "total": total})
}

// CandidateDetail returns the full comparison view for one candidate.
func (h *Handler) CandidateDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.review.Detail(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ApproveCandidateRequest is the body of POST /candidates/:id/approve.
type ApproveCandidateRequest struct {
	Edits    map[string]interface{} `json:"edits"`
	OwnerID  *string                `json:"owner_id"`
	Featured bool                   `json:"featured"`
}

// ApproveCandidate materializes one candidate into a catalog listing.
func (h *Handler) ApproveCandidate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ApproveCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	listingID, err := h.review.Approve(c.Request.Context(), id, usecase.ApproveRequest{
		ReviewerID: reviewerID(c),
		Edits:      req.Edits,
		OwnerID:    req.OwnerID,
		Featured:   req.Featured,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": listingID})
}

// RejectCandidateRequest is the body of POST /candidates/:id/reject.
type RejectCandidateRequest struct {
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

// RejectCandidate marks one candidate rejected.
func (h *Handler) RejectCandidate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RejectCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}

	if err := h.review.Reject(c.Request.Context(), id, reviewerID(c), req.Reason, req.Notes); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// BulkApproveRequest is the body of POST /candidates/bulk-approve.
type BulkApproveRequest struct {
	CandidateIDs []int64 `json:"candidate_ids" binding:"required"`
}

// BulkApprove approves many candidates with their stored data. Partial
// success is normal: the response carries both created listing ids and
// per-item failures, always with status 200.
func (h *Handler) BulkApprove(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.CandidateIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidate_ids is required"})
		return
	}

	result := h.review.BulkApprove(c.Request.Context(), req.CandidateIDs, reviewerID(c))
	c.JSON(http.StatusOK, result)
}

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	RawPlaceIDs []int64 `json:"raw_place_ids"`
	AllPending  bool    `json:"all_pending"`
	MaxItems    int     `json:"max_items"`
}

// Process triggers the pipeline over an explicit raw-place id list, or over
// all pending places capped at the batch maximum. 202/409 like TriggerSync.
func (h *Handler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var (
		run *domain.SyncRun
		err error
	)
	switch {
	case len(req.RawPlaceIDs) > 0:
		if len(req.RawPlaceIDs) > usecase.MaxBatchSize {
			req.RawPlaceIDs = req.RawPlaceIDs[:usecase.MaxBatchSize]
		}
		run, err = h.sync.Trigger(c.Request.Context(), req.RawPlaceIDs, "process")
	case req.AllPending:
		run, err = h.sync.TriggerPending(c.Request.Context(), req.MaxItems, "process")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "raw_place_ids or all_pending is required"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

// respondError maps domain sentinels to HTTP statuses. The already-running
// conflict gets its own code so a UI can show "already running" instead of a
// generic failure.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSyncAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "sync_already_running"})
	case errors.Is(err, domain.ErrSyncNotRunning),
		errors.Is(err, domain.ErrRawPlaceNotFound),
		errors.Is(err, domain.ErrCandidateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCandidateState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// reviewerID identifies the acting admin. Authentication lives in front of
// this service; the gateway forwards the admin identity in a header.
func reviewerID(c *gin.Context) string {
	if id := c.GetHeader("X-Admin-ID"); id != "" {
		return id
	}
	return "admin"
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	s := c.Query(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
