package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillforge/skillforge-backend/internal/db"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	userRepo            repos.UserRepo
	userTokenRepo       repos.UserTokenRepo
	categoryRepo        repos.CategoryRepo
	courseRepo          repos.CourseRepo
	contentRepo         repos.ContentRepo
	enrollmentRepo      repos.EnrollmentRepo
	progressRepo        repos.ProgressRepo
	contentProgressRepo repos.ContentProgressRepo
	examRepo            repos.ExamRepo
	questionRepo        repos.QuestionRepo
	answerRepo          repos.AnswerRepo
	examResultRepo      repos.ExamResultRepo
	certificateRepo     repos.CertificateRepo

	catalog     CatalogService
	content     ContentService
	enrollment  EnrollmentService
	progress    ProgressService
	exam        ExamService
	certificate CertificateService
	dashboard   DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named in-memory database keeps every pooled connection on the same
	// store while isolating tests from each other.
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	env := &testEnv{
		db:                  gdb,
		log:                 log,
		userRepo:            repos.NewUserRepo(gdb, log),
		userTokenRepo:       repos.NewUserTokenRepo(gdb, log),
		categoryRepo:        repos.NewCategoryRepo(gdb, log),
		courseRepo:          repos.NewCourseRepo(gdb, log),
		contentRepo:         repos.NewContentRepo(gdb, log),
		enrollmentRepo:      repos.NewEnrollmentRepo(gdb, log),
		progressRepo:        repos.NewProgressRepo(gdb, log),
		contentProgressRepo: repos.NewContentProgressRepo(gdb, log),
		examRepo:            repos.NewExamRepo(gdb, log),
		questionRepo:        repos.NewQuestionRepo(gdb, log),
		answerRepo:          repos.NewAnswerRepo(gdb, log),
		examResultRepo:      repos.NewExamResultRepo(gdb, log),
		certificateRepo:     repos.NewCertificateRepo(gdb, log),
	}

	env.catalog = NewCatalogService(gdb, log, env.categoryRepo, env.courseRepo)
	env.content = NewContentService(gdb, log, env.courseRepo, env.contentRepo)
	env.enrollment = NewEnrollmentService(gdb, log, env.courseRepo, env.enrollmentRepo, env.contentRepo,
		env.progressRepo, env.contentProgressRepo, env.examRepo, env.examResultRepo)
	env.progress = NewProgressService(gdb, log, env.contentRepo, env.enrollmentRepo, env.progressRepo,
		env.contentProgressRepo, env.enrollment)
	env.exam = NewExamService(gdb, log, env.courseRepo, env.enrollmentRepo, env.examRepo, env.questionRepo,
		env.answerRepo, env.examResultRepo, env.enrollment)
	env.certificate = NewCertificateService(gdb, log, env.userRepo, env.courseRepo, env.enrollmentRepo,
		env.certificateRepo, nil, nil)
	env.dashboard = NewDashboardService(gdb, log, env.enrollmentRepo, env.certificateRepo, env.examResultRepo)

	return env
}

func (e *testEnv) seedUser(t *testing.T, role types.Role) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		Password:  "hashed-password",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	if _, err := e.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedPublishedCourse(t *testing.T, teacher *types.User) *types.Course {
	t.Helper()
	ctx := asUser(teacher)
	course, err := e.catalog.CreateCourse(ctx, CreateCourseInput{
		Title: "Course " + uuid.New().String()[:8],
	})
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	if _, err := e.catalog.PublishCourse(ctx, course.ID); err != nil {
		t.Fatalf("publish course: %v", err)
	}
	return course
}

func (e *testEnv) seedContent(t *testing.T, teacher *types.User, courseID uuid.UUID, mandatory bool) *types.Content {
	t.Helper()
	content, err := e.content.CreateContent(asUser(teacher), CreateContentInput{
		CourseID:    courseID,
		Title:       "Lesson " + uuid.New().String()[:8],
		IsMandatory: &mandatory,
	})
	if err != nil {
		t.Fatalf("seed content: %v", err)
	}
	return content
}

func asUser(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID: u.ID,
		Role:   u.Role,
	})
}
