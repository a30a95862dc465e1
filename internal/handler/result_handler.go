package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shubukan/shubukan-backend/internal/middleware"
	"github.com/shubukan/shubukan-backend/internal/response"
	"github.com/shubukan/shubukan-backend/internal/service"
)

// ResultHandler handles admin and instructor result review endpoints.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListResults godoc
// GET /api/v1/admin/results
// Lists every result, paginated.
func (h *ResultHandler) ListResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.resultService.ListAll(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}

// InstructorResults godoc
// GET /api/v1/instructor/results?date=2006-01-02
// Lists results for sets the instructor may review, optionally for one day.
func (h *ResultHandler) InstructorResults(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		day = &parsed
	}

	results, err := h.resultService.ListForInstructor(c.Request.Context(), claims.InstructorID, day)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// AnswerSheet godoc
// GET /api/v1/instructor/results/:id/sheet
// Shows a candidate's full graded answer sheet once the exam has finished.
func (h *ResultHandler) AnswerSheet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	sheet, err := h.resultService.AnswerSheet(c.Request.Context(), id, claims.InstructorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotFound), errors.Is(err, service.ErrSetNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotAllowed):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrExamUpcoming):
			response.Fail(c, http.StatusConflict, response.ErrExamUpcoming)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sheet": sheet})
}

// QuestionPapers godoc
// GET /api/v1/instructor/exams/papers?from=2006-01-02&to=2006-01-02
// Lists past question papers, answer keys included, for review.
func (h *ResultHandler) QuestionPapers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		// Make the upper bound inclusive of the named day.
		end := parsed.Add(24 * time.Hour)
		to = &end
	}

	papers, err := h.resultService.QuestionPapers(c.Request.Context(), claims.InstructorID, from, to)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"papers": papers})
}
