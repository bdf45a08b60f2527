package services

import (
	"context"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// CourseReader reads courses
type CourseReader interface {
	// Method GetByID retrieves a course by ID.
	//
	// If the course does not exist, models.ErrCourseNotFound is returned.
	GetByID(ctx context.Context, id models.CourseID) (*models.Course, error)
	// Method List returns courses ordered by creation time, drafts excluded when publishedOnly is set.
	List(ctx context.Context, publishedOnly bool) ([]models.Course, error)
}

// ModuleLister lists the modules of a course in display order
type ModuleLister interface {
	ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Module, error)
}

// LessonLister lists the lessons of a course ordered by module then lesson order
type LessonLister interface {
	ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Lesson, error)
}

// QuizLister lists the quizzes of a course with their questions
type QuizLister interface {
	ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Quiz, error)
}

// CourseTreeCache caches assembled course trees
type CourseTreeCache interface {
	// Method Get returns a cached tree, or nil without error on a miss.
	Get(ctx context.Context, id models.CourseID) (*models.CourseTree, error)
	// Method Set stores a tree.
	Set(ctx context.Context, tree *models.CourseTree) error
	// Method Invalidate drops a cached tree.
	Invalidate(ctx context.Context, id models.CourseID) error
}

// courseTreeLoader assembles course trees from storage, going through the cache.
// Cache failures are logged and never fail a read.
type courseTreeLoader struct {
	courseRepo CourseReader
	moduleRepo ModuleLister
	lessonRepo LessonLister
	quizRepo   QuizLister
	cache      CourseTreeCache
	logger     *zap.Logger
}

func (l *courseTreeLoader) load(ctx context.Context, id models.CourseID) (*models.CourseTree, error) {
	cached, err := l.cache.Get(ctx, id)
	if err != nil {
		l.logger.Warn("course cache read failed", zap.String("course_id", string(id)), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	tree, err := l.build(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, tree); err != nil {
		l.logger.Warn("course cache write failed", zap.String("course_id", string(id)), zap.Error(err))
	}

	return tree, nil
}

func (l *courseTreeLoader) build(ctx context.Context, id models.CourseID) (*models.CourseTree, error) {
	course, err := l.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	modules, err := l.moduleRepo.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := l.lessonRepo.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	quizzes, err := l.quizRepo.ListByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	tree := &models.CourseTree{Course: *course, Modules: make([]models.ModuleTree, len(modules))}
	index := make(map[models.ModuleID]int, len(modules))
	for i, m := range modules {
		tree.Modules[i] = models.ModuleTree{Module: m, Lessons: []models.Lesson{}, Quizzes: []models.Quiz{}}
		index[m.ID] = i
	}
	for _, lesson := range lessons {
		if i, ok := index[lesson.ModuleID]; ok {
			tree.Modules[i].Lessons = append(tree.Modules[i].Lessons, lesson)
		}
	}
	for _, quiz := range quizzes {
		if i, ok := index[quiz.ModuleID]; ok {
			tree.Modules[i].Quizzes = append(tree.Modules[i].Quizzes, quiz)
		}
	}

	return tree, nil
}
