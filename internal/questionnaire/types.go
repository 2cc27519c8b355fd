package questionnaire

import (
	"context"
	"fmt"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/grade"
)

// Category is a named group of questions. Rank is its 0-based position in
// the order the backend returned, assigned once when the catalog loads.
type Category struct {
	ID   int64
	Name string
	Rank int
}

// Question belongs to exactly one category.
type Question struct {
	ID         int64
	Text       string
	CategoryID int64
}

// Answer is a respondent's grade for a question.
type Answer struct {
	Grade    grade.Grade
	IfForced bool
}

// AnsweredQuestion is a question together with its answer, if any.
type AnsweredQuestion struct {
	Question
	Answer *Answer
}

// Entry is an answered question as read by the submission controller.
type Entry struct {
	QuestionID int64
	Answer     Answer
}

// CategorySource fetches the category list.
type CategorySource interface {
	Categories(ctx context.Context) ([]api.Category, error)
}

// QuestionSource fetches the questions of one category.
type QuestionSource interface {
	Questions(ctx context.Context, categoryID int64) ([]api.Question, error)
}

// Backend is everything the questionnaire needs from the server.
type Backend interface {
	CategorySource
	QuestionSource
}

// GradeKey is the durable-store key holding a question's grade label.
func GradeKey(questionID int64) string {
	return fmt.Sprintf("%d-grade", questionID)
}
