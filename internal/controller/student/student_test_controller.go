package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/service"
	"github.com/rs/zerolog/log"
)

type StudentTestController struct {
	attemptService     service.AttemptService
	studentTestService service.StudentTestService
}

func NewStudentTestController(attemptService service.AttemptService, studentTestService service.StudentTestService) *StudentTestController {
	return &StudentTestController{
		attemptService:     attemptService,
		studentTestService: studentTestService,
	}
}

// GetAvailableTests godoc
// @Summary (Student) List available tests
// @Description Lists the placement entry point (while the student's level is undetermined) and the regular tests of enrolled courses, with per-test attempt status.
// @Tags Student - Tests & Attempts
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.AvailableTestsDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 403 {object} dto.ErrorResponse "Not a student account"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /tests [get]
func (c *StudentTestController) GetAvailableTests(ctx *gin.Context) {
	studentID, ok := studentIDFromQuery(ctx)
	if !ok {
		return
	}
	listing, err := c.studentTestService.GetAvailableTests(studentID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, listing)
}

// StartTest godoc
// @Summary (Student) Start or resume a test attempt
// @Description Creates the student's single attempt for the test, or resumes an in-progress one. A student mid-way through another placement test is resumed there instead.
// @Tags Student - Tests & Attempts
// @Produce json
// @Param test_id path int true "Test ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.StartTestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 403 {object} dto.ErrorResponse "Not a student, or level already determined"
// @Failure 404 {object} dto.ErrorResponse "Test or student not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted"
// @Failure 422 {object} dto.ErrorResponse "Test has no questions"
// @Router /tests/{test_id}/start [post]
func (c *StudentTestController) StartTest(ctx *gin.Context) {
	testID, ok := uintParam(ctx, "test_id")
	if !ok {
		return
	}
	studentID, ok := studentIDFromQuery(ctx)
	if !ok {
		return
	}
	resp, err := c.attemptService.StartOrResumeTest(studentID, testID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAnswers godoc
// @Summary (Student) Submit answers for an attempt
// @Description Validates and grades the full answer set, completes the attempt and, for placement tests, returns the routing outcome (next test or finalized level and class placement).
// @Tags Student - Tests & Attempts
// @Accept json
// @Produce json
// @Param result_id path int true "Attempt (TestResult) ID"
// @Param submission body dto.SubmitAnswersDTO true "Student ID and answers"
// @Success 200 {object} dto.SubmitAnswersResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or validation failure"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to a different student"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted"
// @Router /test-results/{result_id}/submit [post]
func (c *StudentTestController) SubmitAnswers(ctx *gin.Context) {
	resultID, ok := uintParam(ctx, "result_id")
	if !ok {
		return
	}
	var req dto.SubmitAnswersDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitAnswers: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	resp, err := c.attemptService.SubmitAnswers(req.StudentID, resultID, req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetResultDetail godoc
// @Summary (Student) Get a scored attempt summary
// @Description Returns the attempt with its per-question answers, correctness flags, auto-gradable maximum and percentage. Owner-only.
// @Tags Student - Tests & Attempts
// @Produce json
// @Param result_id path int true "Attempt (TestResult) ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.TestResultDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to a different student"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /test-results/{result_id} [get]
func (c *StudentTestController) GetResultDetail(ctx *gin.Context) {
	resultID, ok := uintParam(ctx, "result_id")
	if !ok {
		return
	}
	studentID, ok := studentIDFromQuery(ctx)
	if !ok {
		return
	}
	detail, err := c.attemptService.GetResultDetail(studentID, resultID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func uintParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

func studentIDFromQuery(ctx *gin.Context) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Query("student_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid or missing student_id"})
		return 0, false
	}
	return uint(val), true
}

func respondServiceError(ctx *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Validation failed", Fields: ve.Fields})
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrNotOwner), errors.Is(err, service.ErrAlreadyFinalized):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrAlreadySubmitted):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNoQuestions):
		ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("student controller: unexpected service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}
