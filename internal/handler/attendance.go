package handler

import (
	"errors"
	"net/http"

	"buzzhire/internal/apierror"
	"buzzhire/internal/dto"
	"buzzhire/internal/middleware"
	"buzzhire/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AttendanceHandler struct{ svc service.AttendanceService }

func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// PunchIn godoc
// @Summary Record an arrival punch at the nearest branch
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PunchRequest true "Current coordinate"
// @Success 201 {object} dto.PunchResponse
// @Failure 400 {object} map[string]interface{}
// @Router /v1/attendance/punch-in [post]
func (h *AttendanceHandler) PunchIn(c *gin.Context) {
	req, ok := bindPunch(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.PunchIn(c.Request.Context(), userID, *req.Latitude, *req.Longitude)
	if err != nil {
		writePunchError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PunchOut godoc
// @Summary Record a departure punch at the nearest branch
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PunchRequest true "Current coordinate"
// @Success 200 {object} dto.PunchResponse
// @Failure 400 {object} map[string]interface{}
// @Router /v1/attendance/punch-out [post]
func (h *AttendanceHandler) PunchOut(c *gin.Context) {
	req, ok := bindPunch(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.PunchOut(c.Request.Context(), userID, *req.Latitude, *req.Longitude)
	if err != nil {
		writePunchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Today godoc
// @Summary Get today's attendance status for the authenticated user
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TodayStatusResponse
// @Router /v1/attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.TodayStatus(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// bindPunch validates the punch coordinate. Missing or malformed coordinates
// are a user error, reported in the domain "failed" envelope rather than the
// generic validation one.
func bindPunch(c *gin.Context) (*dto.PunchRequest, bool) {
	var req dto.PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "failed",
			"message": "latitude & longitude are required",
		})
		return nil, false
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "failed",
			"message": "latitude & longitude out of bounds",
		})
		return nil, false
	}
	return &req, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid user ID"))
		return uuid.Nil, false
	}
	return userID, true
}

// writePunchError maps domain rejections to the 400 envelopes of the punch
// contract; anything else becomes a generic 500 via the error middleware.
func writePunchError(c *gin.Context, err error) {
	var oor *service.OutOfRangeError
	if errors.As(err, &oor) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":         "failed",
			"message":        "You are out of range",
			"nearest_branch": oor.NearestBranch,
			"distance":       service.RoundDistance(oor.Distance),
		})
		return
	}

	var api *service.AlreadyPunchedInError
	if errors.As(err, &api) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "failed",
			"message": "You are already punched in today",
			"data":    service.RecordResponse(api.Record),
		})
		return
	}

	if errors.Is(err, service.ErrNotPunchedIn) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "failed",
			"message": "You have not punched in today",
		})
		return
	}

	_ = c.Error(err)
}
