package session

// SessionPhase represents the current phase of the session.
type SessionPhase int

const (
	PhaseIdle           SessionPhase = iota // Working set is empty
	PhaseAwaitingAnswer                     // Question shown, not yet answered
	PhaseFeedback                           // Answer submitted, correct answer revealed
	PhaseCompleted                          // Cursor ran past the last question
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseFeedback:
		return "feedback"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// Outcome is the result of a submitted answer.
type Outcome struct {
	// QuestionIndex is the question's position in the bank.
	QuestionIndex int

	Chosen        string
	Correct       bool
	CorrectAnswer string
	Explanation   string

	// Graduated is set when a correct answer in mistake review removed the
	// question from the mistake book.
	Graduated bool
}

// Stats is a read-only view of the running totals, for display.
type Stats struct {
	Position int // 1-based position of the current question, Total when completed
	Total    int
	Score    int
	Answered int
	Accuracy float64 // percent, 0-100
	Mistakes int
}
