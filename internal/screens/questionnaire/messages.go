package questionnaire

import (
	qn "github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/submission"
)

// categoriesLoadedMsg is sent when the category list fetch finishes.
type categoriesLoadedMsg struct {
	Err error
}

// questionsLoadedMsg is sent when a category's questions are available.
type questionsLoadedMsg struct {
	CategoryID int64
	Questions  []qn.AnsweredQuestion
	Err        error
}

// answerSavedMsg is sent after an answer change has been applied.
type answerSavedMsg struct {
	QuestionID int64
	Err        error
}

// submitDoneMsg is sent when the submission request returns.
type submitDoneMsg struct {
	Outcome submission.Outcome
	Err     error
}
