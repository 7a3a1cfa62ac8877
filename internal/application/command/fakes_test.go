package command

import (
	"context"
	"sync"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/provisioning"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

// In-memory реализации репозиториев для тестов хендлеров.
// Потокобезопасны: форк-оркестратор ходит в них из нескольких горутин.

// ─────────────────────────────────────────────────────────────────────────────
// internship.Repository / internship.ApplicationRepository
// ─────────────────────────────────────────────────────────────────────────────

type fakeInternshipRepo struct {
	mu    sync.Mutex
	items map[string]*internship.Internship
}

func newFakeInternshipRepo() *fakeInternshipRepo {
	return &fakeInternshipRepo{items: make(map[string]*internship.Internship)}
}

func (r *fakeInternshipRepo) Create(_ context.Context, i *internship.Internship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.items[i.ID] = &cp
	return nil
}

func (r *fakeInternshipRepo) GetByID(_ context.Context, id string) (*internship.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, shared.ErrInternshipNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *fakeInternshipRepo) Update(_ context.Context, i *internship.Internship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[i.ID]; !ok {
		return shared.ErrInternshipNotFound
	}
	cp := *i
	r.items[i.ID] = &cp
	return nil
}

func (r *fakeInternshipRepo) GetAll(_ context.Context) ([]*internship.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*internship.Internship, 0, len(r.items))
	for _, i := range r.items {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInternshipRepo) GetByStatus(ctx context.Context, status internship.Status) ([]*internship.Internship, error) {
	all, _ := r.GetAll(ctx)
	var out []*internship.Internship
	for _, i := range all {
		if i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeApplicationRepo struct {
	mu    sync.Mutex
	items map[string]*internship.Application

	createErr error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: make(map[string]*internship.Application)}
}

func (r *fakeApplicationRepo) Create(_ context.Context, a *internship.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.items {
		if existing.PhoneNumber == a.PhoneNumber && existing.InternshipID == a.InternshipID {
			return shared.ErrApplicationExists
		}
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id string) (*internship.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) GetByPhoneAndInternship(_ context.Context, phone, internshipID string) (*internship.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.PhoneNumber == phone && a.InternshipID == internshipID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) Update(_ context.Context, a *internship.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return shared.ErrApplicationNotFound
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetAll(_ context.Context) ([]*internship.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*internship.Application, 0, len(r.items))
	for _, a := range r.items {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeApplicationRepo) GetByStatus(ctx context.Context, status internship.ApplicationStatus) ([]*internship.Application, error) {
	all, _ := r.GetAll(ctx)
	var out []*internship.Application
	for _, a := range all {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// lesson.Repository / lesson.TaskRepository
// ─────────────────────────────────────────────────────────────────────────────

type fakeLessonRepo struct {
	mu    sync.Mutex
	items map[string]*lesson.Lesson
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{items: make(map[string]*lesson.Lesson)}
}

func (r *fakeLessonRepo) Create(_ context.Context, l *lesson.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.items[l.ID] = &cp
	return nil
}

func (r *fakeLessonRepo) GetByID(_ context.Context, id string) (*lesson.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return nil, shared.ErrLessonNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLessonRepo) Update(_ context.Context, l *lesson.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[l.ID]; !ok {
		return shared.ErrLessonNotFound
	}
	cp := *l
	r.items[l.ID] = &cp
	return nil
}

func (r *fakeLessonRepo) GetAll(_ context.Context) ([]*lesson.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*lesson.Lesson, 0, len(r.items))
	for _, l := range r.items {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLessonRepo) GetPublishedByInternship(ctx context.Context, internshipID string) ([]*lesson.Lesson, error) {
	all, _ := r.GetAll(ctx)
	var out []*lesson.Lesson
	for _, l := range all {
		if l.InternshipID == internshipID && l.IsPublished {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	items map[string]*lesson.Task
	order []string

	// lessonInternship резолвит internship занятия для GetByInternship.
	lessonInternship map[string]string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		items:            make(map[string]*lesson.Task),
		lessonInternship: make(map[string]string),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *lesson.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Name == t.Name {
			return shared.ErrAlreadyExists
		}
	}
	cp := *t
	r.items[t.ID] = &cp
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*lesson.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, shared.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) GetByName(_ context.Context, name string) (*lesson.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, shared.ErrTaskNotFound
}

func (r *fakeTaskRepo) Update(_ context.Context, t *lesson.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return shared.ErrTaskNotFound
	}
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetAll(_ context.Context) ([]*lesson.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*lesson.Task, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.items[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTaskRepo) GetPublished(ctx context.Context, asOf time.Time) ([]*lesson.Task, error) {
	all, _ := r.GetAll(ctx)
	var out []*lesson.Task
	for _, t := range all {
		if t.IsPublished(asOf) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetUnpublishedByLesson(ctx context.Context, lessonID string) ([]*lesson.Task, error) {
	all, _ := r.GetAll(ctx)
	var out []*lesson.Task
	for _, t := range all {
		if t.LessonID == lessonID && t.PublishDate == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetByInternship(ctx context.Context, internshipID string) ([]*lesson.Task, error) {
	all, _ := r.GetAll(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lesson.Task
	for _, t := range all {
		if r.lessonInternship[t.LessonID] == internshipID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// user.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Username == u.Username || existing.Email == u.Email {
			return shared.ErrUserExists
		}
	}
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return shared.ErrUserNotFound
	}
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetAll(_ context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0, len(r.items))
	for _, u := range r.items {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) GetByInternshipAndRole(ctx context.Context, internshipID string, role user.Role) ([]*user.User, error) {
	all, _ := r.GetAll(ctx)
	var out []*user.User
	for _, u := range all {
		if u.InternshipID == internshipID && u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// solution.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeSolutionRepo struct {
	mu    sync.Mutex
	items map[string]*solution.Solution

	// failFirstCreate имитирует проигранную гонку: первый Create
	// возвращает ErrSolutionExists, как сделал бы уникальный индекс.
	failFirstCreate bool
	winner          *solution.Solution
}

func newFakeSolutionRepo() *fakeSolutionRepo {
	return &fakeSolutionRepo{items: make(map[string]*solution.Solution)}
}

func (r *fakeSolutionRepo) Create(_ context.Context, s *solution.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFirstCreate {
		r.failFirstCreate = false
		if r.winner != nil {
			cp := *r.winner
			r.items[cp.ID] = &cp
		}
		return shared.ErrSolutionExists
	}
	for _, existing := range r.items {
		if existing.RepositoryURL == s.RepositoryURL {
			return shared.ErrSolutionExists
		}
	}
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *fakeSolutionRepo) GetByID(_ context.Context, id string) (*solution.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, shared.ErrSolutionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSolutionRepo) GetByRepositoryURL(_ context.Context, repositoryURL string) (*solution.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.RepositoryURL == repositoryURL {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.ErrSolutionNotFound
}

func (r *fakeSolutionRepo) Update(_ context.Context, s *solution.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return shared.ErrSolutionNotFound
	}
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *fakeSolutionRepo) GetAll(_ context.Context) ([]*solution.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*solution.Solution, 0, len(r.items))
	for _, s := range r.items {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSolutionRepo) GetByStatus(ctx context.Context, status solution.Status) ([]*solution.Solution, error) {
	all, _ := r.GetAll(ctx)
	var out []*solution.Solution
	for _, s := range all {
		if !s.IsArchived && s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) GetByTask(ctx context.Context, taskID string) ([]*solution.Solution, error) {
	all, _ := r.GetAll(ctx)
	var out []*solution.Solution
	for _, s := range all {
		if !s.IsArchived && s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) GetByUser(ctx context.Context, userID string) ([]*solution.Solution, error) {
	all, _ := r.GetAll(ctx)
	var out []*solution.Solution
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) GetByUserAndTasks(ctx context.Context, userID string, taskIDs []string) ([]*solution.Solution, error) {
	byTask := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		byTask[id] = true
	}
	all, _ := r.GetAll(ctx)
	var out []*solution.Solution
	for _, s := range all {
		if s.UserID == userID && byTask[s.TaskID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) ArchiveByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.UserID == userID {
			s.IsArchived = true
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// provisioning.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeForkRepo struct {
	mu    sync.Mutex
	items map[string]*provisioning.PendingFork
}

func newFakeForkRepo() *fakeForkRepo {
	return &fakeForkRepo{items: make(map[string]*provisioning.PendingFork)}
}

func (r *fakeForkRepo) Create(_ context.Context, p *provisioning.PendingFork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.TaskID == p.TaskID && existing.UserID == p.UserID {
			return shared.ErrAlreadyExists
		}
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeForkRepo) Update(_ context.Context, p *provisioning.PendingFork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeForkRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeForkRepo) GetPending(_ context.Context, limit int) ([]*provisioning.PendingFork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*provisioning.PendingFork, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeForkRepo) GetByTaskAndUser(_ context.Context, taskID, userID string) (*provisioning.PendingFork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.TaskID == taskID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeForkRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// ─────────────────────────────────────────────────────────────────────────────
// ProvisioningClient / PasswordHasher
// ─────────────────────────────────────────────────────────────────────────────

type fakeProvisioner struct {
	mu sync.Mutex

	forkCalls     []string // namespaces, в которые форкали
	blockedUsers  []string
	createdUsers  []string
	forkErrFor    map[string]error // namespace -> ошибка
	forkVerdicts  map[int64]bool
	createAccErr  error
	blockErr      error
	createRepoErr error

	nextRepoID int64
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		forkErrFor:   make(map[string]error),
		forkVerdicts: make(map[int64]bool),
		nextRepoID:   100,
	}
}

func (p *fakeProvisioner) CreateRepository(_ context.Context, name, _ string) (*RepositoryData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createRepoErr != nil {
		return nil, p.createRepoErr
	}
	p.nextRepoID++
	return &RepositoryData{
		ID:            p.nextRepoID,
		Name:          name,
		FullPath:      "internship/" + name,
		WebURL:        "https://gitlab.example.com/internship/" + name,
		DefaultBranch: "main",
	}, nil
}

func (p *fakeProvisioner) ForkRepository(_ context.Context, repositoryID int64, namespace string) (*RepositoryData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.forkErrFor[namespace]; ok && err != nil {
		return nil, err
	}
	p.forkCalls = append(p.forkCalls, namespace)
	return &RepositoryData{
		ID:         repositoryID + 1000,
		FullPath:   namespace + "/task",
		WebURL:     "https://gitlab.example.com/" + namespace + "/task",
		IsFork:     true,
		UpstreamID: repositoryID,
	}, nil
}

func (p *fakeProvisioner) IsForkedRepository(_ context.Context, repositoryID int64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.forkVerdicts[repositoryID], nil
}

func (p *fakeProvisioner) CreateAccount(_ context.Context, username, name, email, _ string) (*AccountData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createAccErr != nil {
		return nil, p.createAccErr
	}
	p.createdUsers = append(p.createdUsers, username)
	return &AccountData{
		ID:       int64(len(p.createdUsers)),
		Username: username,
		Name:     name,
		Email:    email,
	}, nil
}

func (p *fakeProvisioner) BlockAccount(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blockErr != nil {
		return p.blockErr
	}
	p.blockedUsers = append(p.blockedUsers, username)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return shared.ErrInvalidInput
}
