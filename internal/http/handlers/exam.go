package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/services"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type ExamHandler struct {
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// GET /courses/:id/exams
func (xh *ExamHandler) ListCourseExams(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	exams, err := xh.examService.ListCourseExams(c.Request.Context(), courseID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exams": exams})
}

// POST /courses/:id/exams
func (xh *ExamHandler) CreateExam(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req struct {
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		ExamType        string     `json:"exam_type"`
		DurationMinutes int        `json:"duration_minutes"`
		TotalMarks      int        `json:"total_marks"`
		PassingMarks    int        `json:"passing_marks"`
		MaxAttempts     *int       `json:"max_attempts"`
		IsRequired      *bool      `json:"is_required"`
		StartDate       *time.Time `json:"start_date"`
		EndDate         *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	exam, err := xh.examService.CreateExam(c.Request.Context(), services.CreateExamInput{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		ExamType:        types.ExamType(strings.ToUpper(req.ExamType)),
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      req.TotalMarks,
		PassingMarks:    req.PassingMarks,
		MaxAttempts:     req.MaxAttempts,
		IsRequired:      req.IsRequired,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"exam": exam})
}

// POST /exams/:id/publish
func (xh *ExamHandler) PublishExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_exam_id", err)
		return
	}
	exam, err := xh.examService.PublishExam(c.Request.Context(), examID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exam": exam})
}

// POST /exams/:id/questions
func (xh *ExamHandler) AddQuestions(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_exam_id", err)
		return
	}
	var req struct {
		Questions []struct {
			Text          string `json:"text"`
			Type          string `json:"type"`
			Marks         int    `json:"marks"`
			CorrectAnswer string `json:"correct_answer"`
			Explanation   string `json:"explanation"`
			Options       []struct {
				Identifier string `json:"identifier"`
				Text       string `json:"text"`
			} `json:"options"`
		} `json:"questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := make([]services.CreateQuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		qi := services.CreateQuestionInput{
			Text:          q.Text,
			Type:          types.QuestionType(strings.ToUpper(q.Type)),
			Marks:         q.Marks,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		for _, opt := range q.Options {
			qi.Options = append(qi.Options, services.CreateAnswerInput{
				Identifier: opt.Identifier,
				Text:       opt.Text,
			})
		}
		in = append(in, qi)
	}
	questions, err := xh.examService.AddQuestions(c.Request.Context(), examID, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"questions": questions})
}

// GET /exams/:id/questions
func (xh *ExamHandler) ListExamQuestions(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_exam_id", err)
		return
	}
	questions, err := xh.examService.ListExamQuestions(c.Request.Context(), examID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": questions})
}

// POST /exams/:id/attempts
func (xh *ExamHandler) StartAttempt(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_exam_id", err)
		return
	}
	result, err := xh.examService.StartAttempt(c.Request.Context(), examID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"result": result})
}

// POST /attempts/:id/submit
func (xh *ExamHandler) SubmitAttempt(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_attempt_id", err)
		return
	}
	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	answers := make(map[uuid.UUID]string, len(req.Answers))
	for raw, v := range req.Answers {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
			return
		}
		answers[id] = v
	}
	result, err := xh.examService.SubmitAndGrade(c.Request.Context(), resultID, answers)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// GET /exams/:id/results
func (xh *ExamHandler) ListMyResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_exam_id", err)
		return
	}
	results, err := xh.examService.ListMyResults(c.Request.Context(), examID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}
