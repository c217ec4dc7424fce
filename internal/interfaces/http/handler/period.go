package handler

import (
	"github.com/gin-gonic/gin"
	appperiod "github.com/northtrade/backend/internal/application/period"
	domainperiod "github.com/northtrade/backend/internal/domain/period"
)

// PeriodHandler exposes semester period lifecycle and lock operations
type PeriodHandler struct {
	BaseHandler
	periodService *appperiod.Service
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(periodService *appperiod.Service) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// RegisterRoutes registers period routes
func (h *PeriodHandler) RegisterRoutes(r *gin.RouterGroup) {
	periods := r.Group("/periods")
	{
		periods.GET("/normalize", h.Normalize)
		periods.GET("/from-date", h.FromDate)
		periods.GET("/current", h.Current)
		periods.GET("/options", h.Options)
		periods.GET("/active", h.Active)
		periods.GET("/closed", h.Closed)
		periods.PUT("/options", h.ReplaceOptions)
		periods.PUT("/active", h.ReplaceActive)
		periods.GET("/:code/range", h.DateRange)
		periods.GET("/:code/status", h.Status)
		periods.POST("/:code/close", h.Close)
		periods.POST("/:code/open", h.Open)
	}

	subjects := r.Group("/subjects")
	{
		subjects.GET("/:kind/:subject_id/locks/:code", h.SubjectLockState)
		subjects.POST("/:kind/:subject_id/locks/:code/close", h.CloseSubject)
		subjects.POST("/:kind/:subject_id/locks/:code/open", h.OpenSubject)
		subjects.POST("/locks/batch", h.BatchLockStates)
	}
}

// Normalize returns the canonical form of a raw semester code, or null
// when the input cannot be parsed.
func (h *PeriodHandler) Normalize(c *gin.Context) {
	var req NormalizePeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "code query parameter is required")
		return
	}

	resp := NormalizedPeriodResponse{Input: req.Code}
	if normalized := h.periodService.NormalizePeriod(req.Code); normalized != "" {
		resp.Period = &normalized
	}
	h.Success(c, resp)
}

// FromDate resolves the semester period containing the given date.
func (h *PeriodHandler) FromDate(c *gin.Context) {
	var req PeriodFromDateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "date query parameter is required")
		return
	}

	resp := NormalizedPeriodResponse{Input: req.Date}
	if period := h.periodService.PeriodFromDate(req.Date); period != "" {
		resp.Period = &period
	}
	h.Success(c, resp)
}

// Current returns the period containing today plus its predecessor.
func (h *PeriodHandler) Current(c *gin.Context) {
	current := h.periodService.CurrentPeriod()
	h.Success(c, CurrentPeriodResponse{
		Current:  current,
		Previous: h.periodService.PreviousPeriod(current),
	})
}

// DateRange returns the calendar bounds of a period.
func (h *PeriodHandler) DateRange(c *gin.Context) {
	var uri PeriodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "period code is required")
		return
	}

	r, err := h.periodService.PeriodDateRange(uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Options returns the configured selectable periods.
func (h *PeriodHandler) Options(c *gin.Context) {
	periods, err := h.periodService.PeriodOptions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PeriodListResponse{Periods: periods})
}

// Active returns the configured active periods. An empty list means all
// periods accept postings.
func (h *PeriodHandler) Active(c *gin.Context) {
	periods, err := h.periodService.ActivePeriods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PeriodListResponse{Periods: periods})
}

// Closed returns the globally closed periods, newest first.
func (h *PeriodHandler) Closed(c *gin.Context) {
	periods, err := h.periodService.GloballyClosedPeriods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PeriodListResponse{Periods: periods})
}

// Status reports whether a period is active and whether it is globally closed.
func (h *PeriodHandler) Status(c *gin.Context) {
	var uri PeriodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "period code is required")
		return
	}

	ctx := c.Request.Context()
	active, err := h.periodService.IsPeriodActive(ctx, uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	closed, err := h.periodService.IsPeriodClosed(ctx, uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PeriodStatusResponse{
		Period: h.periodService.NormalizePeriod(uri.Code),
		Active: active,
		Closed: closed,
	})
}

// Close marks a period as globally closed.
func (h *PeriodHandler) Close(c *gin.Context) {
	var uri PeriodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "period code is required")
		return
	}

	if err := h.periodService.ClosePeriod(c.Request.Context(), uri.Code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Open removes a period from the globally closed list.
func (h *PeriodHandler) Open(c *gin.Context) {
	var uri PeriodURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "period code is required")
		return
	}

	if err := h.periodService.OpenPeriod(c.Request.Context(), uri.Code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReplaceOptions replaces the configured selectable periods.
func (h *PeriodHandler) ReplaceOptions(c *gin.Context) {
	var req ReplacePeriodListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "periods list is required")
		return
	}

	if err := h.periodService.ReplacePeriodOptions(c.Request.Context(), req.Periods); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ReplaceActive replaces the configured active periods.
func (h *PeriodHandler) ReplaceActive(c *gin.Context) {
	var req ReplacePeriodListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "periods list is required")
		return
	}

	if err := h.periodService.ReplaceActivePeriods(c.Request.Context(), req.Periods); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SubjectLockState reports the manual, automatic and combined lock flags
// for one subject in one period.
func (h *PeriodHandler) SubjectLockState(c *gin.Context) {
	var uri SubjectLockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "kind, subject_id and period code are required")
		return
	}

	state, err := h.periodService.SubjectLockState(
		c.Request.Context(), domainperiod.SubjectKind(uri.Kind), uri.SubjectID, uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// CloseSubject manually locks a subject for a period.
func (h *PeriodHandler) CloseSubject(c *gin.Context) {
	var uri SubjectLockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "kind, subject_id and period code are required")
		return
	}

	err := h.periodService.CloseSubjectPeriod(
		c.Request.Context(), domainperiod.SubjectKind(uri.Kind), uri.SubjectID, uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// OpenSubject removes a subject's manual lock for a period.
func (h *PeriodHandler) OpenSubject(c *gin.Context) {
	var uri SubjectLockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "kind, subject_id and period code are required")
		return
	}

	err := h.periodService.OpenSubjectPeriod(
		c.Request.Context(), domainperiod.SubjectKind(uri.Kind), uri.SubjectID, uri.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BatchLockStates reports lock states for many subjects in one period.
// The result matches what per-subject queries would return.
func (h *PeriodHandler) BatchLockStates(c *gin.Context) {
	var req BatchLockStatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "kind, period and subject_ids are required")
		return
	}

	states, err := h.periodService.BatchSubjectLockStates(
		c.Request.Context(), domainperiod.SubjectKind(req.Kind), req.SubjectIDs, req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ordered := make([]appperiod.LockState, 0, len(req.SubjectIDs))
	seen := make(map[int64]struct{}, len(req.SubjectIDs))
	for _, id := range req.SubjectIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, states[id])
	}

	h.Success(c, BatchLockStatesResponse{
		Kind:   req.Kind,
		Period: h.periodService.NormalizePeriod(req.Period),
		States: ordered,
	})
}
