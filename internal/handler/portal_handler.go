package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shubukan/shubukan-backend/internal/middleware"
	"github.com/shubukan/shubukan-backend/internal/model"
	"github.com/shubukan/shubukan-backend/internal/response"
	"github.com/shubukan/shubukan-backend/internal/service"
	"github.com/shubukan/shubukan-backend/internal/validator"
)

// PortalHandler handles the candidate-facing exam portal: resolving an exam
// identifier into a live paper, submitting answer sheets, and reviewing own
// results.
type PortalHandler struct {
	examService   *service.ExamService
	resultService *service.ResultService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(examService *service.ExamService, resultService *service.ResultService) *PortalHandler {
	return &PortalHandler{examService: examService, resultService: resultService}
}

// Resolve godoc
// POST /api/v1/exams/resolve
// Resolves an exam ID into its current availability. Clients in the waiting
// room poll this endpoint; the response carries the countdown, the live
// paper, or the expired marker.
func (h *PortalHandler) Resolve(c *gin.Context) {
	var req model.ResolveExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	availability, err := h.examService.Resolve(c.Request.Context(), claims, req.ExamID, req.Password, time.Now())
	if err != nil {
		failAccessError(c, err)
		return
	}

	if availability.Status == service.AvailabilityNotFound {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, availability)
}

// Submit godoc
// POST /api/v1/exams/sets/:id/submit
// Grades and records a candidate's answer sheet.
func (h *PortalHandler) Submit(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	result, err := h.resultService.Submit(c.Request.Context(), setID, claims.UserID, req.Selections)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSetNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAlreadyAttempted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		case errors.Is(err, service.ErrMalformedSubmission):
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedSubmission)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// MyResults godoc
// GET /api/v1/student/results
// Lists the calling candidate's own results, newest first.
func (h *PortalHandler) MyResults(c *gin.Context) {
	claims := middleware.GetClaims(c)

	results, err := h.resultService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// failAccessError maps availability and access guard errors to API responses.
func failAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.Is(err, service.ErrNotAllowed):
		response.Fail(c, http.StatusForbidden, response.ErrNotAllowedForExam)
	case errors.Is(err, service.ErrPasswordRequired):
		response.Fail(c, http.StatusUnauthorized, response.ErrPasswordRequired)
	case errors.Is(err, service.ErrPasswordMismatch):
		response.Fail(c, http.StatusForbidden, response.ErrPasswordMismatch)
	case errors.Is(err, service.ErrAlreadyAttempted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
