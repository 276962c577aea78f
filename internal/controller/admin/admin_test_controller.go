package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hsalhab/mustawa/internal/dto"
	"github.com/hsalhab/mustawa/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
}

func NewAdminTestController(adminTestService service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService}
}

// CreateCourse godoc
// @Summary (Admin) Create a course
// @Description Creates a course. At most one course should be flagged as the placement course.
// @Tags Admin - Courses & Classes
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course definition"
// @Success 201 {object} dto.CourseResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /admin/courses [post]
func (c *AdminTestController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateCourse: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	course, err := c.adminTestService.CreateCourse(req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, course)
}

// CreateClass godoc
// @Summary (Admin) Create a class under a course
// @Description Creates a class with a generated class code. The required level must be a known level or "any".
// @Tags Admin - Courses & Classes
// @Accept json
// @Produce json
// @Param class body dto.ClassCreateDTO true "Class definition"
// @Success 201 {object} dto.ClassResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/classes [post]
func (c *AdminTestController) CreateClass(ctx *gin.Context) {
	var req dto.ClassCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateClass: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	class, err := c.adminTestService.CreateClass(req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, class)
}

// CreateTest godoc
// @Summary (Admin) Create a test with its questions
// @Description Creates a test, its questions and their options in one call. Placement tests carry a level and may point at next tests on success and failure.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test body dto.TestCreateDTO true "Test definition"
// @Success 201 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Referenced course or next test not found"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateTest: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	test, err := c.adminTestService.CreateTest(req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, test)
}

// GetAllTests godoc
// @Summary (Admin) List all tests
// @Description Lists every test with its question count.
// @Tags Admin - Tests
// @Produce json
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tests [get]
func (c *AdminTestController) GetAllTests(ctx *gin.Context) {
	tests, err := c.adminTestService.GetAllTests()
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetail godoc
// @Summary (Admin) Get one test with all questions and options
// @Description Returns the full test definition including correct-answer flags. Admin only.
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{test_id} [get]
func (c *AdminTestController) GetTestDetail(ctx *gin.Context) {
	testID, ok := uintParam(ctx, "test_id")
	if !ok {
		return
	}
	test, err := c.adminTestService.GetTestDetail(testID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question from the bank
// @Description Soft-deletes a question and its options. Existing graded answers keep their rows.
// @Tags Admin - Tests
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [delete]
func (c *AdminTestController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := uintParam(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.adminTestService.DeleteQuestion(questionID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func uintParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
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
	default:
		log.Error().Err(err).Msg("admin controller: unexpected service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}
