package coursechat

// RevisionSchedule decides after how many questions revision questions are
// regenerated: first after Every questions, then every Every-Overlap more.
type RevisionSchedule struct {
	Every   int
	Overlap int
}

// DefaultRevisionSchedule matches the tutor server's defaults.
func DefaultRevisionSchedule() RevisionSchedule {
	return RevisionSchedule{Every: 5, Overlap: 2}
}

// Next returns the question count at which the next revision happens.
func (r RevisionSchedule) Next(count int) int {
	if count <= r.Every {
		return r.Every
	}
	step := r.Every - r.Overlap
	if step < 1 {
		step = 1
	}
	// Ceiling division of (count - Every) by step.
	idx := (count - r.Every + step - 1) / step
	return r.Every + step*idx
}

// Progress is the question counter shown next to the chat.
type Progress struct {
	QuestionCount  int
	NextRevisionAt int
}

// NewProgress returns the progress of a course with no questions asked.
func NewProgress(r RevisionSchedule) Progress {
	return Progress{NextRevisionAt: r.Next(0)}
}

// Apply takes the counters reported at the end of an answer. Off-topic
// answers carry no counters and leave the progress unchanged.
func (p *Progress) Apply(e EventEnd) {
	if e.Irrelevant {
		return
	}
	if e.QuestionCount != nil {
		p.QuestionCount = *e.QuestionCount
	}
	if e.NextRevisionAt != nil {
		p.NextRevisionAt = *e.NextRevisionAt
	}
}

// Reset restores the counters after the chat is cleared.
func (p *Progress) Reset(r RevisionSchedule) {
	*p = NewProgress(r)
}
