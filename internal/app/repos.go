package app

import (
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	Category        repos.CategoryRepo
	Course          repos.CourseRepo
	Content         repos.ContentRepo
	Enrollment      repos.EnrollmentRepo
	Progress        repos.ProgressRepo
	ContentProgress repos.ContentProgressRepo
	Exam            repos.ExamRepo
	Question        repos.QuestionRepo
	Answer          repos.AnswerRepo
	ExamResult      repos.ExamResultRepo
	Certificate     repos.CertificateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		Category:        repos.NewCategoryRepo(db, log),
		Course:          repos.NewCourseRepo(db, log),
		Content:         repos.NewContentRepo(db, log),
		Enrollment:      repos.NewEnrollmentRepo(db, log),
		Progress:        repos.NewProgressRepo(db, log),
		ContentProgress: repos.NewContentProgressRepo(db, log),
		Exam:            repos.NewExamRepo(db, log),
		Question:        repos.NewQuestionRepo(db, log),
		Answer:          repos.NewAnswerRepo(db, log),
		ExamResult:      repos.NewExamResultRepo(db, log),
		Certificate:     repos.NewCertificateRepo(db, log),
	}
}
