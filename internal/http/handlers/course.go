package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/services"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type CourseHandler struct {
	catalogService services.CatalogService
}

func NewCourseHandler(catalogService services.CatalogService) *CourseHandler {
	return &CourseHandler{catalogService: catalogService}
}

// GET /courses
func (ch *CourseHandler) ListCourses(c *gin.Context) {
	filter := repos.CourseFilter{
		Level: types.CourseLevel(strings.ToUpper(c.Query("level"))),
		Query: c.Query("q"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
			return
		}
		filter.CategoryID = &id
	}
	if c.Query("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}
	courses, err := ch.catalogService.ListPublishedCourses(c.Request.Context(), filter)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /courses/:id
// The param doubles as a slug so public links stay readable.
func (ch *CourseHandler) GetCourse(c *gin.Context) {
	raw := c.Param("id")
	var course *types.Course
	var err error
	if id, parseErr := uuid.Parse(raw); parseErr == nil {
		course, err = ch.catalogService.GetCourseByID(c.Request.Context(), id)
	} else {
		course, err = ch.catalogService.GetCourseBySlug(c.Request.Context(), raw)
	}
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /teacher/courses
func (ch *CourseHandler) ListOwnCourses(c *gin.Context) {
	courses, err := ch.catalogService.ListOwnCourses(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// POST /courses
func (ch *CourseHandler) CreateCourse(c *gin.Context) {
	var req struct {
		Title              string  `json:"title"`
		Description        string  `json:"description"`
		CategoryID         *string `json:"category_id"`
		Level              string  `json:"level"`
		Price              float64 `json:"price"`
		DurationHours      int     `json:"duration_hours"`
		MaxStudents        *int    `json:"max_students"`
		Prerequisites      string  `json:"prerequisites"`
		LearningObjectives string  `json:"learning_objectives"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := services.CreateCourseInput{
		Title:              req.Title,
		Description:        req.Description,
		Level:              types.CourseLevel(strings.ToUpper(req.Level)),
		Price:              req.Price,
		DurationHours:      req.DurationHours,
		MaxStudents:        req.MaxStudents,
		Prerequisites:      req.Prerequisites,
		LearningObjectives: req.LearningObjectives,
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
			return
		}
		in.CategoryID = &id
	}
	course, err := ch.catalogService.CreateCourse(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// PATCH /courses/:id
func (ch *CourseHandler) UpdateCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req struct {
		Title              *string  `json:"title"`
		Description        *string  `json:"description"`
		CategoryID         *string  `json:"category_id"`
		Level              *string  `json:"level"`
		ThumbnailURL       *string  `json:"thumbnail_url"`
		Price              *float64 `json:"price"`
		DurationHours      *int     `json:"duration_hours"`
		MaxStudents        *int     `json:"max_students"`
		Prerequisites      *string  `json:"prerequisites"`
		LearningObjectives *string  `json:"learning_objectives"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := services.UpdateCourseInput{
		Title:              req.Title,
		Description:        req.Description,
		ThumbnailURL:       req.ThumbnailURL,
		Price:              req.Price,
		DurationHours:      req.DurationHours,
		MaxStudents:        req.MaxStudents,
		Prerequisites:      req.Prerequisites,
		LearningObjectives: req.LearningObjectives,
	}
	if req.CategoryID != nil {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_category_id", err)
			return
		}
		in.CategoryID = &catID
	}
	if req.Level != nil {
		level := types.CourseLevel(strings.ToUpper(*req.Level))
		in.Level = &level
	}
	course, err := ch.catalogService.UpdateCourse(c.Request.Context(), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /courses/:id/publish
func (ch *CourseHandler) PublishCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := ch.catalogService.PublishCourse(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /courses/:id/archive
func (ch *CourseHandler) ArchiveCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	course, err := ch.catalogService.ArchiveCourse(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /categories
func (ch *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := ch.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": categories})
}

// POST /categories
func (ch *CourseHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	category := types.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := ch.catalogService.CreateCategory(c.Request.Context(), &category); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": category})
}
