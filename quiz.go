package coursechat

import "fmt"

// QuestionState is the progress of one quiz question.
type QuestionState int

const (
	QuestionOpen      QuestionState = iota // Awaiting a checked answer.
	QuestionCorrect                        // Answered correctly; locked.
	QuestionIncorrect                      // Answered wrongly; TryAgain reopens it.
)

// QuizItem is a question together with the user's progress on it.
type QuizItem struct {
	Question
	Selected string
	State    QuestionState
}

// Quiz holds the revision questions of a course.
type Quiz struct {
	CourseID string
	Items    []QuizItem
}

// NewQuiz returns an empty quiz for courseID.
func NewQuiz(courseID string, questions ...Question) *Quiz {
	q := &Quiz{CourseID: courseID}
	q.Replace(questions)
	return q
}

// Visible reports whether there are questions to show.
func (q *Quiz) Visible() bool { return len(q.Items) > 0 }

// Questions returns the questions without progress.
func (q *Quiz) Questions() []Question {
	out := make([]Question, len(q.Items))
	for i, it := range q.Items {
		out[i] = it.Question
	}
	return out
}

// Replace swaps in a freshly generated question set. Progress on the old
// set is discarded.
func (q *Quiz) Replace(questions []Question) {
	q.Items = make([]QuizItem, len(questions))
	for i, qu := range questions {
		q.Items[i] = QuizItem{Question: qu}
	}
}

// Reset removes all questions.
func (q *Quiz) Reset() { q.Items = nil }

// Select chooses option key for question i.
func (q *Quiz) Select(i int, key string) error {
	it, err := q.item(i)
	if err != nil {
		return err
	}
	if it.State != QuestionOpen {
		return fmt.Errorf("question %d is already checked: %w", i+1, ErrValidation)
	}
	if _, ok := it.Options[key]; !ok {
		return fmt.Errorf("question %d has no option %q: %w", i+1, key, ErrValidation)
	}
	it.Selected = key
	return nil
}

// Check grades the selected option of question i and returns the answer to
// report. A correct answer locks the question.
func (q *Quiz) Check(i int) (Answer, error) {
	it, err := q.item(i)
	if err != nil {
		return Answer{}, err
	}
	if it.State != QuestionOpen {
		return Answer{}, fmt.Errorf("question %d is already checked: %w", i+1, ErrValidation)
	}
	if it.Selected == "" {
		return Answer{}, fmt.Errorf("question %d: %w", i+1, ErrNoSelection)
	}
	correct := it.Selected == it.Correct
	if correct {
		it.State = QuestionCorrect
	} else {
		it.State = QuestionIncorrect
	}
	return Answer{
		CourseID:      q.CourseID,
		QuestionIndex: i,
		Selected:      it.Selected,
		Correct:       correct,
	}, nil
}

// TryAgain clears a wrong answer so question i can be answered again.
func (q *Quiz) TryAgain(i int) error {
	it, err := q.item(i)
	if err != nil {
		return err
	}
	if it.State != QuestionIncorrect {
		return fmt.Errorf("question %d has no wrong answer to retry: %w", i+1, ErrValidation)
	}
	it.Selected = ""
	it.State = QuestionOpen
	return nil
}

func (q *Quiz) item(i int) (*QuizItem, error) {
	if i < 0 || i >= len(q.Items) {
		return nil, fmt.Errorf("index %d of %d: %w", i, len(q.Items), ErrQuestionNotFound)
	}
	return &q.Items[i], nil
}
