// Package flask implements [coursechat.Client] for the course tutor's Flask
// server.
//
// The server authenticates with a signed session cookie set by the login
// form, so every Client carries a cookie jar. Answers arrive as a chunked
// body of "data:" records which the Client hands back unparsed as a
// [coursechat.Handle].
package flask

const (
	defaultBaseURL = "http://localhost:5000"

	loginPath            = "/login"
	coursesPath          = "/courses"
	sendMessagePath      = "/api/send_message"
	clearChatPath        = "/api/clear_chat"
	generateRevisionPath = "/api/generate_revision"
	recordAnswerPath     = "/api/record_answer"
)

type sendMessageRequest struct {
	Message  string `json:"message"`
	CourseID string `json:"course_id"`
}

type courseRequest struct {
	CourseID string `json:"course_id"`
}

type recordAnswerRequest struct {
	CourseID       string `json:"course_id"`
	QuestionIndex  int    `json:"question_index"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// apiResult is the envelope of the non-streaming endpoints. Failures carry
// only Error.
type apiResult struct {
	Success           bool          `json:"success"`
	Message           string        `json:"message"`
	Error             string        `json:"error"`
	RevisionQuestions []apiQuestion `json:"revision_questions"`
}

type apiQuestion struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Correct  string            `json:"correct"`
}
