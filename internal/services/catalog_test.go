package services

import (
	"errors"
	"testing"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Intro to Go", "intro-to-go"},
		{"  Spaced   Out  ", "spaced-out"},
		{"C++ & Systems!", "c-systems"},
		{"already-a-slug", "already-a-slug"},
		{"ÜBER Straße", "über-straße"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCourseSlugsAreUnique(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)

	var slugs []string
	for i := 0; i < 3; i++ {
		course, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{Title: "Intro to Go"})
		if err != nil {
			t.Fatalf("create course %d: %v", i, err)
		}
		slugs = append(slugs, course.Slug)
	}
	if slugs[0] != "intro-to-go" || slugs[1] != "intro-to-go-2" || slugs[2] != "intro-to-go-3" {
		t.Fatalf("unexpected slugs %v", slugs)
	}
}

func TestOnlyTeachersCreateCourses(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedUser(t, types.RoleStudent)

	if _, err := env.catalog.CreateCourse(asUser(student), CreateCourseInput{Title: "Nope"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestPublishStampsPublishedAtOnce(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)

	course, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{Title: "Lifecycle"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.Status != types.CourseDraft {
		t.Fatalf("new course should be DRAFT, got %s", course.Status)
	}

	published, err := env.catalog.PublishCourse(asUser(teacher), course.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != types.CoursePublished || published.PublishedAt == nil {
		t.Fatal("expected PUBLISHED with timestamp")
	}
	stamp := *published.PublishedAt

	archived, err := env.catalog.ArchiveCourse(asUser(teacher), course.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != types.CourseArchived {
		t.Fatalf("expected ARCHIVED, got %s", archived.Status)
	}

	republished, err := env.catalog.PublishCourse(asUser(teacher), course.ID)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !republished.PublishedAt.Equal(stamp) {
		t.Fatal("republishing must keep the original PublishedAt")
	}
}

func TestUpdateCourseKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)

	course, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{Title: "Original Title"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "Renamed Title"
	newPrice := 49.99
	updated, err := env.catalog.UpdateCourse(asUser(teacher), course.ID, UpdateCourseInput{
		Title: &newTitle,
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed Title" || updated.Price != 49.99 {
		t.Fatalf("update did not apply: %+v", updated)
	}
	if updated.Slug != course.Slug {
		t.Fatalf("slug must stay %q, got %q", course.Slug, updated.Slug)
	}

	bad := -1.0
	if _, err := env.catalog.UpdateCourse(asUser(teacher), course.ID, UpdateCourseInput{Price: &bad}); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
}

func TestPublishRejectsOtherTeachers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, types.RoleTeacher)
	rival := env.seedUser(t, types.RoleTeacher)

	course, err := env.catalog.CreateCourse(asUser(owner), CreateCourseInput{Title: "Mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.catalog.PublishCourse(asUser(rival), course.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestPublicListingOnlyShowsPublished(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.seedUser(t, types.RoleTeacher)

	env.seedPublishedCourse(t, teacher)
	if _, err := env.catalog.CreateCourse(asUser(teacher), CreateCourseInput{Title: "Hidden draft"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	courses, err := env.catalog.ListPublishedCourses(asUser(teacher), repos.CourseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, c := range courses {
		if c.Status != types.CoursePublished {
			t.Fatalf("draft leaked into public listing: %s", c.Title)
		}
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 published course, got %d", len(courses))
	}
}
