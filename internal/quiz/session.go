package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateEnded      State = "ended"
)

var (
	ErrNotStarted     = errors.New("quiz not started")
	ErrAlreadyStarted = errors.New("quiz already started")
	ErrEnded          = errors.New("quiz already ended")
	ErrClosed         = errors.New("session closed")
	ErrBadQuestion    = errors.New("question index out of range")
	ErrBadOption      = errors.New("option index out of range")
	ErrNotLast        = errors.New("submit is only valid on the last question")
)

// CompletionFunc is invoked exactly once when a session ends, with the final
// summary. It runs on its own goroutine and must not call back into the
// session's mutating methods.
type CompletionFunc func(s *Session, sum Summary)

// Session owns one quiz run: NotStarted -> InProgress -> Ended, Ended being
// terminal. All state transitions happen under one mutex; timer ticks arriving
// after End or Close are no-ops.
type Session struct {
	ID     string
	UserID string
	Config Config
	Data   Data

	mu        sync.Mutex
	state     State
	closed    bool
	current   int
	answers   []map[int]struct{} // question index -> selected option set
	remaining int                // global seconds left (timed mode)
	qRemain   int                // seconds left on the active question
	results   []Result
	summary   Summary
	startedAt time.Time
	endedAt   time.Time
	attemptID string

	onComplete CompletionFunc
	cancel     context.CancelFunc
}

func NewSession(id, userID string, cfg Config, data Data, onComplete CompletionFunc) *Session {
	answers := make([]map[int]struct{}, len(data.Questions))
	for i := range answers {
		answers[i] = map[int]struct{}{}
	}
	return &Session{
		ID:         id,
		UserID:     userID,
		Config:     cfg,
		Data:       data,
		state:      StateNotStarted,
		answers:    answers,
		onComplete: onComplete,
	}
}

// perQuestionSeconds is the fixed budget for every question. It is recomputed
// identically on each question change; leftover time never carries over.
func (s *Session) perQuestionSeconds() int {
	n := len(s.Data.Questions)
	if n == 0 {
		return 0
	}
	return s.Config.DurationMinutes * 60 / n
}

// Start moves the session to InProgress and, when any timer is configured,
// hooks it to clock. A nil clock leaves the session tick-driven by the caller.
func (s *Session) Start(clock Clock) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	switch s.state {
	case StateInProgress:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case StateEnded:
		s.mu.Unlock()
		return ErrEnded
	}
	s.state = StateInProgress
	s.startedAt = time.Now()
	s.remaining = s.Config.DurationMinutes * 60
	s.qRemain = s.perQuestionSeconds()
	needTicks := s.Config.TimeMode == TimeModeTimed || s.Config.TimerPerQuestion
	var ctx context.Context
	if needTicks && clock != nil {
		ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.mu.Unlock()

	if ctx != nil {
		go clock.Run(ctx, s.Tick)
	}
	return nil
}

// Tick consumes one logical second. Global countdown hitting zero ends the
// quiz; the per-question countdown hitting zero advances to the next question,
// or ends the quiz on the last one.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateInProgress {
		return // stale tick after teardown
	}
	if s.Config.TimeMode == TimeModeTimed {
		s.remaining--
		if s.remaining <= 0 {
			s.endLocked()
			return
		}
	}
	if s.Config.TimerPerQuestion {
		s.qRemain--
		if s.qRemain <= 0 {
			if s.current >= len(s.Data.Questions)-1 {
				s.endLocked()
				return
			}
			s.current++
			s.qRemain = s.perQuestionSeconds()
		}
	}
}

// Select records an answer for question q. Single-answer types replace the
// selection; multiple-correct toggles membership.
func (s *Session) Select(q, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if q < 0 || q >= len(s.Data.Questions) {
		return ErrBadQuestion
	}
	if option < 0 || option >= len(s.Data.Questions[q].Options) {
		return ErrBadOption
	}
	if s.Config.Type == TypeMulti {
		if _, ok := s.answers[q][option]; ok {
			delete(s.answers[q], option)
		} else {
			s.answers[q][option] = struct{}{}
		}
		return nil
	}
	s.answers[q] = map[int]struct{}{option: {}}
	return nil
}

// Clear empties question q's selection.
func (s *Session) Clear(q int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if q < 0 || q >= len(s.Data.Questions) {
		return ErrBadQuestion
	}
	s.answers[q] = map[int]struct{}{}
	return nil
}

// Next advances to the following question, or ends the quiz from the last one.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if s.current >= len(s.Data.Questions)-1 {
		s.endLocked()
		return nil
	}
	s.current++
	s.qRemain = s.perQuestionSeconds()
	return nil
}

// Previous steps back one question. Answers are never reset by navigation.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
		s.qRemain = s.perQuestionSeconds()
	}
	return nil
}

// Goto jumps to question q directly.
func (s *Session) Goto(q int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if q < 0 || q >= len(s.Data.Questions) {
		return ErrBadQuestion
	}
	if q != s.current {
		s.current = q
		s.qRemain = s.perQuestionSeconds()
	}
	return nil
}

// Submit ends the quiz. Only valid while on the final question; timers end the
// quiz through their own paths.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inProgressLocked(); err != nil {
		return err
	}
	if s.current != len(s.Data.Questions)-1 {
		return ErrNotLast
	}
	s.endLocked()
	return nil
}

// Close tears the session down: timers are cancelled and every later tick or
// mutation is a no-op. Closing does not score an unfinished quiz.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) inProgressLocked() error {
	if s.closed {
		return ErrClosed
	}
	switch s.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateEnded:
		return ErrEnded
	}
	return nil
}

// endLocked scores every question, freezes the summary, and fires the
// completion notification exactly once. Caller holds s.mu.
func (s *Session) endLocked() {
	s.results = make([]Result, len(s.Data.Questions))
	for i, q := range s.Data.Questions {
		s.results[i] = Score(q, setToSorted(s.answers[i]), s.Config.NegativeMarking)
	}
	s.summary = Summarize(s.results, len(s.Data.Questions))
	s.state = StateEnded
	s.endedAt = time.Now()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.onComplete != nil {
		cb, sum := s.onComplete, s.summary
		s.onComplete = nil
		go cb(s, sum)
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selected returns question q's selection in ascending option order.
func (s *Session) Selected(q int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q < 0 || q >= len(s.answers) {
		return nil
	}
	return setToSorted(s.answers[q])
}

// Answers returns every question's selection, indexed by question.
func (s *Session) Answers() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]int, len(s.answers))
	for i, set := range s.answers {
		out[i] = setToSorted(set)
	}
	return out
}

// Results returns the per-question outcomes and summary of an ended session.
func (s *Session) Results() ([]Result, Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEnded {
		return nil, Summary{}, ErrNotStarted
	}
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out, s.summary, nil
}

// SetAttemptID stores the attempt record id the finished quiz was filed under.
func (s *Session) SetAttemptID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptID = id
}

func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// View is the client-facing snapshot of a session. Correct answers and
// explanations are stripped while the quiz is running (they come back through
// Results once the session has ended).
type View struct {
	ID                string     `json:"id"`
	Topic             string     `json:"topic"`
	State             State      `json:"state"`
	Config            Config     `json:"config"`
	Questions         []Question `json:"questions"`
	Current           int        `json:"current_question"`
	Answers           [][]int    `json:"answers"`
	RemainingSeconds  int        `json:"remaining_seconds,omitempty"`
	QuestionSeconds   int        `json:"question_seconds,omitempty"`
	PerQuestionBudget int        `json:"per_question_budget,omitempty"`
	AttemptID         string     `json:"quiz_attempt_id,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:      s.ID,
		Topic:   s.Data.Topic,
		State:   s.state,
		Config:  s.Config,
		Current: s.current,
	}
	v.Questions = make([]Question, len(s.Data.Questions))
	for i, q := range s.Data.Questions {
		if s.state != StateEnded {
			q.Correct = nil
			q.Explanation = ""
		}
		v.Questions[i] = q
	}
	v.Answers = make([][]int, len(s.answers))
	for i, set := range s.answers {
		v.Answers[i] = setToSorted(set)
	}
	if s.state == StateInProgress {
		if s.Config.TimeMode == TimeModeTimed {
			v.RemainingSeconds = s.remaining
		}
		if s.Config.TimerPerQuestion {
			v.QuestionSeconds = s.qRemain
			v.PerQuestionBudget = s.perQuestionSeconds()
		}
	}
	v.AttemptID = s.attemptID
	return v
}

func setToSorted(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
