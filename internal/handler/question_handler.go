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

// QuestionHandler handles question bank management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/admin/questions
// Lists questions with their derived usage references, paginated.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	questions, pagination, err := h.questionService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
// Retrieves one question with its usage references.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
// Adds a question to the bank.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Edits a question. Questions used by started exams are locked.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
// Soft-deletes an unreferenced question.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// failQuestionError maps question domain errors to API error responses.
func failQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidOptions):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOptions)
	case errors.Is(err, service.ErrInvalidAnswerIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswerIndex)
	case errors.Is(err, service.ErrQuestionLocked):
		response.Fail(c, http.StatusPreconditionFailed, response.ErrQuestionLocked)
	case errors.Is(err, service.ErrQuestionReferenced):
		response.Fail(c, http.StatusPreconditionFailed, response.ErrQuestionReferenced)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
