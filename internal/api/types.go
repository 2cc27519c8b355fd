package api

// Category is a question category as returned by GET /question_categories.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Question is a question as returned by GET /questions.
type Question struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	CategoryID int64  `json:"category_id"`
}

// SubmitAnswer is one graded question inside a SubmitRequest.
// IfForced is only ever set to a pointer to true; a nil pointer keeps the
// key out of the payload so "not forced" is never sent as false.
type SubmitAnswer struct {
	QuestionID int64 `json:"question_id"`
	Answer     int   `json:"answer"`
	IfForced   *bool `json:"if_forced,omitempty"`
}

// SubmitRequest is the body of POST /results.
type SubmitRequest struct {
	Answers   []SubmitAnswer `json:"answers"`
	PartnerID *string        `json:"partner_id,omitempty"`
}

// MatchAnswer is one respondent's answer inside a Match.
type MatchAnswer struct {
	Answer   int  `json:"answer"`
	IfForced bool `json:"if_forced"`
}

// Match pairs both respondents' answers for a question.
type Match struct {
	QuestionID int64       `json:"question_id"`
	AnswerA    MatchAnswer `json:"answer_a"`
	AnswerB    MatchAnswer `json:"answer_b"`
}

// MatchGroup holds every match sharing the same minimum grade.
type MatchGroup struct {
	MinAnswer int     `json:"min_answer"`
	Matches   []Match `json:"matches"`
}

// SubmitResult is returned by POST /results and GET /results/{id}.
type SubmitResult struct {
	ID             string       `json:"id"`
	MatchingResult []MatchGroup `json:"matching_result,omitempty"`
}

// Matched reports whether the partner has submitted and matches are available.
func (r *SubmitResult) Matched() bool {
	return r != nil && len(r.MatchingResult) > 0
}

// Forced returns the pointer value used for SubmitAnswer.IfForced.
func Forced(ifForced bool) *bool {
	if !ifForced {
		return nil
	}
	t := true
	return &t
}
