package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shubukan/shubukan-backend/internal/model"
	"github.com/shubukan/shubukan-backend/internal/response"
	"github.com/shubukan/shubukan-backend/internal/service"
	"github.com/shubukan/shubukan-backend/internal/validator"
)

// ExamHandler handles exam set management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListSets godoc
// GET /api/v1/admin/exams
// Lists all non-deleted exam sets, paginated.
func (h *ExamHandler) ListSets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	sets, pagination, err := h.examService.ListSets(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sets": sets}, pagination)
}

// GetSet godoc
// GET /api/v1/admin/exam-sets/:id
// Retrieves one set with its ordered question references.
func (h *ExamHandler) GetSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	set, err := h.examService.GetSet(c.Request.Context(), id)
	if err != nil {
		failSetError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"set": set})
}

// CreateSet godoc
// POST /api/v1/admin/exams
// Creates the first set of a new exam and returns its shareable exam ID.
func (h *ExamHandler) CreateSet(c *gin.Context) {
	var req model.CreateExamSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.examService.CreateSet(c.Request.Context(), &req)
	if err != nil {
		failSetError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"set": set})
}

// AddSet godoc
// POST /api/v1/admin/exams/:examID/sets
// Adds another set to an existing exam ID.
func (h *ExamHandler) AddSet(c *gin.Context) {
	examID := c.Param("examID")
	if len(examID) != 6 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateExamSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.examService.AddSet(c.Request.Context(), examID, &req)
	if err != nil {
		failSetError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"set": set})
}

// UpdateSet godoc
// PUT /api/v1/admin/exam-sets/:id
// Edits an upcoming set. Started sets are immutable.
func (h *ExamHandler) UpdateSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.examService.UpdateSet(c.Request.Context(), id, &req)
	if err != nil {
		failSetError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"set": set})
}

// DeleteSet godoc
// DELETE /api/v1/admin/exam-sets/:id
// Soft-deletes an upcoming set.
func (h *ExamHandler) DeleteSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.DeleteSet(c.Request.Context(), id); err != nil {
		failSetError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "exam set deleted"})
}

// ListUpcoming godoc
// GET /api/v1/exams/upcoming
// Lists future scheduled sets, optionally filtered by access policy.
func (h *ExamHandler) ListUpcoming(c *gin.Context) {
	policy := model.AccessPolicy(c.Query("policy"))
	switch policy {
	case "", model.AccessInstructorOwned, model.AccessAllInstructors, model.AccessPublic:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	sets, err := h.examService.ListUpcoming(c.Request.Context(), policy)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sets == nil {
		sets = []model.ExamSet{}
	}

	response.Success(c, http.StatusOK, gin.H{"sets": sets})
}

// failSetError maps exam set domain errors to API error responses.
func failSetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSetNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuestionsNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionsNotFound)
	case errors.Is(err, service.ErrScheduleClash):
		response.Fail(c, http.StatusConflict, response.ErrScheduleClash)
	case errors.Is(err, service.ErrDuplicateSetNumber):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateSet)
	case errors.Is(err, service.ErrExamStarted):
		response.Fail(c, http.StatusPreconditionFailed, response.ErrExamStarted)
	case errors.Is(err, service.ErrScheduleRequired), errors.Is(err, service.ErrOwnerRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
