package query

import (
	"context"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

// Простые in-memory стабы: очереди только читают, синхронизация не нужна.

type stubUserRepo struct {
	users []*user.User
}

func (r *stubUserRepo) Create(context.Context, *user.User) error { return nil }
func (r *stubUserRepo) Update(context.Context, *user.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubUserRepo) GetAll(context.Context) ([]*user.User, error) { return r.users, nil }

func (r *stubUserRepo) GetByInternshipAndRole(_ context.Context, internshipID string, role user.Role) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.users {
		if u.InternshipID == internshipID && u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubTaskRepo struct {
	tasks []*lesson.Task

	// internshipOf резолвит стажировку занятия для GetByInternship.
	internshipOf map[string]string
}

func (r *stubTaskRepo) Create(context.Context, *lesson.Task) error { return nil }
func (r *stubTaskRepo) Update(context.Context, *lesson.Task) error { return nil }

func (r *stubTaskRepo) GetByID(_ context.Context, id string) (*lesson.Task, error) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrTaskNotFound
}

func (r *stubTaskRepo) GetByName(_ context.Context, name string) (*lesson.Task, error) {
	for _, t := range r.tasks {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, shared.ErrTaskNotFound
}

func (r *stubTaskRepo) GetAll(context.Context) ([]*lesson.Task, error) { return r.tasks, nil }

func (r *stubTaskRepo) GetPublished(_ context.Context, asOf time.Time) ([]*lesson.Task, error) {
	var out []*lesson.Task
	for _, t := range r.tasks {
		if t.IsPublished(asOf) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) GetUnpublishedByLesson(_ context.Context, lessonID string) ([]*lesson.Task, error) {
	var out []*lesson.Task
	for _, t := range r.tasks {
		if t.LessonID == lessonID && t.PublishDate == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) GetByInternship(_ context.Context, internshipID string) ([]*lesson.Task, error) {
	var out []*lesson.Task
	for _, t := range r.tasks {
		if r.internshipOf[t.LessonID] == internshipID {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubSolutionRepo struct {
	solutions []*solution.Solution
}

func (r *stubSolutionRepo) Create(context.Context, *solution.Solution) error     { return nil }
func (r *stubSolutionRepo) Update(context.Context, *solution.Solution) error     { return nil }
func (r *stubSolutionRepo) ArchiveByUser(context.Context, string) error          { return nil }
func (r *stubSolutionRepo) GetAll(context.Context) ([]*solution.Solution, error) { return r.solutions, nil }

func (r *stubSolutionRepo) GetByID(_ context.Context, id string) (*solution.Solution, error) {
	for _, s := range r.solutions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.ErrSolutionNotFound
}

func (r *stubSolutionRepo) GetByRepositoryURL(_ context.Context, repositoryURL string) (*solution.Solution, error) {
	for _, s := range r.solutions {
		if s.RepositoryURL == repositoryURL {
			return s, nil
		}
	}
	return nil, shared.ErrSolutionNotFound
}

func (r *stubSolutionRepo) GetByStatus(_ context.Context, status solution.Status) ([]*solution.Solution, error) {
	var out []*solution.Solution
	for _, s := range r.solutions {
		if !s.IsArchived && s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSolutionRepo) GetByTask(_ context.Context, taskID string) ([]*solution.Solution, error) {
	var out []*solution.Solution
	for _, s := range r.solutions {
		if !s.IsArchived && s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSolutionRepo) GetByUser(_ context.Context, userID string) ([]*solution.Solution, error) {
	var out []*solution.Solution
	for _, s := range r.solutions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSolutionRepo) GetByUserAndTasks(_ context.Context, userID string, taskIDs []string) ([]*solution.Solution, error) {
	wanted := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		wanted[id] = true
	}
	var out []*solution.Solution
	for _, s := range r.solutions {
		if s.UserID == userID && wanted[s.TaskID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubLessonRepo struct {
	lessons []*lesson.Lesson
}

func (r *stubLessonRepo) Create(context.Context, *lesson.Lesson) error { return nil }
func (r *stubLessonRepo) Update(context.Context, *lesson.Lesson) error { return nil }

func (r *stubLessonRepo) GetByID(_ context.Context, id string) (*lesson.Lesson, error) {
	for _, l := range r.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func (r *stubLessonRepo) GetAll(context.Context) ([]*lesson.Lesson, error) { return r.lessons, nil }

func (r *stubLessonRepo) GetPublishedByInternship(_ context.Context, internshipID string) ([]*lesson.Lesson, error) {
	var out []*lesson.Lesson
	for _, l := range r.lessons {
		if l.InternshipID == internshipID && l.IsPublished {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubInternshipRepo struct {
	internships []*internship.Internship
}

func (r *stubInternshipRepo) Create(context.Context, *internship.Internship) error { return nil }
func (r *stubInternshipRepo) Update(context.Context, *internship.Internship) error { return nil }

func (r *stubInternshipRepo) GetByID(_ context.Context, id string) (*internship.Internship, error) {
	for _, i := range r.internships {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, shared.ErrInternshipNotFound
}

func (r *stubInternshipRepo) GetAll(context.Context) ([]*internship.Internship, error) {
	return r.internships, nil
}

func (r *stubInternshipRepo) GetByStatus(_ context.Context, status internship.Status) ([]*internship.Internship, error) {
	var out []*internship.Internship
	for _, i := range r.internships {
		if i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}
