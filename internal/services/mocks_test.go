package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/flowitec/gogrow/internal/models"
)

// mockUserRepository is a mock implementation of the user repository interfaces
type mockUserRepository struct {
	users     map[models.UserID]*models.User
	createErr error
	getErr    error
	updateErr error
	count     int
	created   []*models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[models.UserID]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id models.UserID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	list := []models.User{}
	for _, u := range m.users {
		list = append(list, *u)
	}
	return list, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id models.UserID, firstName, lastName string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.users[id].FirstName = firstName
	m.users[id].LastName = lastName
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id models.UserID, role models.Role) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.users[id].Role = role
	return nil
}

func (m *mockUserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	return m.count, m.getErr
}

// mockTokenIssuer is a mock implementation of TokenIssuer
type mockTokenIssuer struct {
	err error
}

func (m *mockTokenIssuer) GenerateAccessToken(userID, role string) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return "token-" + userID + "-" + role, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), nil
}

// mockProgressRepository is a mock implementation of the progress repository interfaces
type mockProgressRepository struct {
	mu sync.Mutex

	tally       *models.LessonTally
	recordErr   error
	recordCalls int
	ensureErr   error
	ensured     []models.CourseID

	progress *models.Progress
	getErr   error

	completedCount int
	total          int
	countErr       error

	markErr          error
	marked           int
	markedAt         time.Time
	completedLessons map[models.CourseID][]models.LessonID

	candidates     []models.CompletionCandidate
	candidatesErr  error
	candidateCalls int
	learners       []models.LearnerProgress
}

func (m *mockProgressRepository) Ensure(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.ensured = append(m.ensured, courseID)
	return nil
}

func (m *mockProgressRepository) RecordLesson(ctx context.Context, userID models.UserID, ref models.LessonRef, at time.Time) (*models.LessonTally, error) {
	m.recordCalls++
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return m.tally, nil
}

func (m *mockProgressRepository) CountCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, int, error) {
	if m.countErr != nil {
		return 0, 0, m.countErr
	}
	return m.completedCount, m.total, nil
}

func (m *mockProgressRepository) Get(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.progress == nil {
		return nil, models.ErrProgressNotFound
	}
	copied := *m.progress
	return &copied, nil
}

func (m *mockProgressRepository) CompletedLessonsByUser(ctx context.Context, userID models.UserID) (map[models.CourseID][]models.LessonID, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.completedLessons, nil
}

func (m *mockProgressRepository) MarkCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.marked++
	m.markedAt = at
	return nil
}

// ListCompletionCandidates pages like the SQL query: ordered by (user, course), after the cursor, up to limit
func (m *mockProgressRepository) ListCompletionCandidates(ctx context.Context, after models.CompletionCandidate, limit int) ([]models.CompletionCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidateCalls++
	if m.candidatesErr != nil {
		return nil, m.candidatesErr
	}

	sorted := slices.Clone(m.candidates)
	slices.SortFunc(sorted, compareCandidates)

	page := []models.CompletionCandidate{}
	for _, c := range sorted {
		if compareCandidates(c, after) <= 0 {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, c)
	}
	return page, nil
}

func compareCandidates(a, b models.CompletionCandidate) int {
	if c := strings.Compare(string(a.UserID), string(b.UserID)); c != 0 {
		return c
	}
	return strings.Compare(string(a.CourseID), string(b.CourseID))
}

func (m *mockProgressRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error) {
	return m.learners, m.getErr
}

// mockLessonRepository is a mock implementation of the lesson repository interfaces
type mockLessonRepository struct {
	refs    map[models.LessonID]*models.LessonRef
	lessons map[models.LessonID]*models.Lesson
	err     error
	created []*models.Lesson
	updated []*models.Lesson
	deleted []models.LessonID
}

func (m *mockLessonRepository) GetRef(ctx context.Context, id models.LessonID) (*models.LessonRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	ref, ok := m.refs[id]
	if !ok {
		return nil, models.ErrLessonNotFound
	}
	return ref, nil
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id models.LessonID) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.lessons[id]
	if !ok {
		return nil, models.ErrLessonNotFound
	}
	copied := *l
	return &copied, nil
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, lesson)
	return nil
}

func (m *mockLessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, lesson)
	return nil
}

func (m *mockLessonRepository) Delete(ctx context.Context, id models.LessonID) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockLessonRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := []models.Lesson{}
	for id, ref := range m.refs {
		if ref.CourseID == courseID {
			list = append(list, *m.lessons[id])
		}
	}
	return list, nil
}

// mockQuizAttemptRepository is a mock implementation of the quiz attempt repository interfaces
type mockQuizAttemptRepository struct {
	createErr error
	attempts  []*models.QuizAttempt
	scores    map[models.QuizID]models.QuizScore
	scoresErr error
	unpassed   int
	unpassedBy map[models.UserID]int
	countErr   error
}

func (m *mockQuizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *mockQuizAttemptRepository) LatestScores(ctx context.Context, userID models.UserID, courseID models.CourseID) (map[models.QuizID]models.QuizScore, error) {
	if m.scoresErr != nil {
		return nil, m.scoresErr
	}
	if m.scores == nil {
		return map[models.QuizID]models.QuizScore{}, nil
	}
	return m.scores, nil
}

func (m *mockQuizAttemptRepository) CountUnpassedQuizzes(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, error) {
	if n, ok := m.unpassedBy[userID]; ok {
		return n, m.countErr
	}
	return m.unpassed, m.countErr
}

type certificateKey struct {
	userID   models.UserID
	courseID models.CourseID
}

// mockCertificateRepository keeps one certificate per (user, course), like the unique key in storage
type mockCertificateRepository struct {
	mu        sync.Mutex
	byPair    map[certificateKey]*models.Certificate
	createErr error
	inserts   int
	count     int

	notified      map[models.CertificateID]time.Time
	markErr       error
	pending       []models.PendingNotification
	unnotifiedErr error
}

func newMockCertificateRepository(certs ...*models.Certificate) *mockCertificateRepository {
	m := &mockCertificateRepository{
		byPair:   make(map[certificateKey]*models.Certificate),
		notified: make(map[models.CertificateID]time.Time),
	}
	for _, c := range certs {
		m.byPair[certificateKey{c.UserID, c.CourseID}] = c
	}
	return m
}

func (m *mockCertificateRepository) CreateIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, false, m.createErr
	}
	key := certificateKey{cert.UserID, cert.CourseID}
	if existing, ok := m.byPair[key]; ok {
		return existing, false, nil
	}
	m.byPair[key] = cert
	m.inserts++
	return cert, true, nil
}

func (m *mockCertificateRepository) GetByID(ctx context.Context, id models.CertificateID) (*models.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPair {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrCertificateNotFound
}

func (m *mockCertificateRepository) GetByUserAndCourse(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byPair[certificateKey{userID, courseID}]; ok {
		return c, nil
	}
	return nil, models.ErrCertificateNotFound
}

func (m *mockCertificateRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.Certificate{}
	for _, c := range m.byPair {
		if c.UserID == userID {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (m *mockCertificateRepository) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

func (m *mockCertificateRepository) MarkNotified(ctx context.Context, id models.CertificateID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	if _, ok := m.notified[id]; !ok {
		m.notified[id] = at
	}
	return nil
}

func (m *mockCertificateRepository) isNotified(id models.CertificateID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notified[id]
	return ok
}

// ListUnnotified pages the pending list like the SQL query: ordered by ID, after the cursor, up to limit
func (m *mockCertificateRepository) ListUnnotified(ctx context.Context, issuedBefore time.Time, after models.CertificateID, limit int) ([]models.PendingNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unnotifiedErr != nil {
		return nil, m.unnotifiedErr
	}

	sorted := slices.Clone(m.pending)
	slices.SortFunc(sorted, func(a, b models.PendingNotification) int {
		return strings.Compare(string(a.Certificate.ID), string(b.Certificate.ID))
	})

	page := []models.PendingNotification{}
	for _, p := range sorted {
		if _, ok := m.notified[p.Certificate.ID]; ok {
			continue
		}
		if p.Certificate.IssuedAt.After(issuedBefore) || p.Certificate.ID <= after {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, p)
	}
	return page, nil
}

// mockCourseRepository is a mock implementation of the course repository interfaces
type mockCourseRepository struct {
	courses   map[models.CourseID]*models.Course
	err       error
	listCalls []bool
	created   []*models.Course
	updated   []*models.Course
	deleted   []models.CourseID
	count     int
}

func newMockCourseRepository(courses ...*models.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: make(map[models.CourseID]*models.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id models.CourseID) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, models.ErrCourseNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCourseRepository) List(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	m.listCalls = append(m.listCalls, publishedOnly)
	if m.err != nil {
		return nil, m.err
	}
	list := []models.Course{}
	for _, c := range m.courses {
		if publishedOnly && !c.IsPublished {
			continue
		}
		list = append(list, *c)
	}
	return list, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, course)
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, course)
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id models.CourseID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.courses[id]; !ok {
		return models.ErrCourseNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCourseRepository) Count(ctx context.Context) (int, error) {
	return m.count, m.err
}

// mockModuleRepository is a mock implementation of the module repository interfaces
type mockModuleRepository struct {
	modules map[models.ModuleID]*models.Module
	err     error
	created []*models.Module
	deleted []models.ModuleID
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id models.ModuleID) (*models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	mod, ok := m.modules[id]
	if !ok {
		return nil, models.ErrModuleNotFound
	}
	copied := *mod
	return &copied, nil
}

func (m *mockModuleRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := []models.Module{}
	for _, mod := range m.modules {
		if mod.CourseID == courseID {
			list = append(list, *mod)
		}
	}
	return list, nil
}

func (m *mockModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, module)
	return nil
}

func (m *mockModuleRepository) Update(ctx context.Context, module *models.Module) error {
	return m.err
}

func (m *mockModuleRepository) Delete(ctx context.Context, id models.ModuleID) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// mockQuizRepository is a mock implementation of the quiz repository interfaces
type mockQuizRepository struct {
	quizzes map[models.QuizID]*models.Quiz
	err     error
	created []*models.Quiz
	updated []*models.Quiz
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id models.QuizID) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quizzes[id]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	copied := *q
	return &copied, nil
}

func (m *mockQuizRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	list := []models.Quiz{}
	for _, q := range m.quizzes {
		if q.CourseID == courseID {
			list = append(list, *q)
		}
	}
	return list, nil
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, quiz)
	return nil
}

func (m *mockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, quiz)
	return nil
}

func (m *mockQuizRepository) Delete(ctx context.Context, id models.QuizID) error {
	return m.err
}

// mockEnrollmentRepository is a mock implementation of the enrollment repository interfaces
type mockEnrollmentRepository struct {
	enrolled map[certificateKey]bool
	err      error
	courses  []models.EnrolledCourse
	count    int
}

func newMockEnrollmentRepository() *mockEnrollmentRepository {
	return &mockEnrollmentRepository{enrolled: make(map[certificateKey]bool)}
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := certificateKey{userID, courseID}
	if m.enrolled[key] {
		return false, nil
	}
	m.enrolled[key] = true
	return true, nil
}

func (m *mockEnrollmentRepository) Exists(ctx context.Context, userID models.UserID, courseID models.CourseID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enrolled[certificateKey{userID, courseID}], nil
}

func (m *mockEnrollmentRepository) ListCourses(ctx context.Context, userID models.UserID) ([]models.EnrolledCourse, error) {
	return m.courses, m.err
}

func (m *mockEnrollmentRepository) Count(ctx context.Context) (int, error) {
	return m.count, m.err
}

// mockCertificateIssuer is a mock implementation of CertificateIssuer
type mockCertificateIssuer struct {
	cert  *models.Certificate
	err   error
	calls int
}

func (m *mockCertificateIssuer) IssueIfEligible(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error) {
	m.calls++
	return m.cert, m.err
}

// mockNotifier is a mock implementation of CertificateNotifier
type mockNotifier struct {
	mu     sync.Mutex
	err    error
	sent   []*models.Certificate
	emails []string
}

func (m *mockNotifier) CertificateIssued(ctx context.Context, cert *models.Certificate, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, cert)
	m.emails = append(m.emails, email)
	return m.err
}

// mockRenderer is a mock implementation of CertificateRenderer
type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(cert *models.Certificate) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("png:" + cert.CertificateNumber), nil
}

// mockCache is an in-memory CourseTreeCache
type mockCache struct {
	trees       map[models.CourseID]*models.CourseTree
	getErr      error
	setErr      error
	sets        int
	invalidated []models.CourseID
}

func newMockCache() *mockCache {
	return &mockCache{trees: make(map[models.CourseID]*models.CourseTree)}
}

func (m *mockCache) Get(ctx context.Context, id models.CourseID) (*models.CourseTree, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.trees[id], nil
}

func (m *mockCache) Set(ctx context.Context, tree *models.CourseTree) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.trees[tree.ID] = tree
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, id models.CourseID) error {
	m.invalidated = append(m.invalidated, id)
	delete(m.trees, id)
	return nil
}

// mockProgressReader is a mock implementation of CourseProgressReader
type mockProgressReader struct {
	progress *models.Progress
	err      error
}

func (m *mockProgressReader) GetCourseProgress(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error) {
	return m.progress, m.err
}
