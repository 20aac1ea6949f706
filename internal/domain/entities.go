package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrInternal        = errors.New("internal error")
)

// AnswerType enumerates how a candidate delivered an answer.
const (
	AnswerTypeText  = "text"
	AnswerTypeVoice = "voice"
	AnswerTypeVideo = "video"
)

// Dialogue modes.
const (
	ModeJudge           = "judge"
	ModeLiveInterviewer = "live_interviewer"
)

// Question categories recognized by the question bank and dialogue engine.
const (
	CategoryHR         = "HR"
	CategoryTechnical  = "Technical"
	CategoryBehavioral = "Behavioral"
	CategoryCoding     = "Coding"
)

// SessionStatus enumerates the lifecycle of a mock-interview session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// AnswerSubmission is the candidate's answer to one question.
// Immutable once AnsweredAt is set.
type AnswerSubmission struct {
	Transcript            string    `json:"transcript"`
	RawText               string    `json:"raw_text"`
	DurationSec           int       `json:"duration_sec"`
	FacialExpressionScore int       `json:"facial_expression_score"` // 0-100, meaningful for video answers
	ConfidenceSelfRating  int       `json:"confidence_self_rating"`  // 0-10, 0 means not provided
	AnswerType            string    `json:"answer_type"`
	AnsweredAt            time.Time `json:"answered_at"`
}

// MetricScoreSet holds per-metric integer scores clamped to [0,100].
// Clarity mirrors Communication and Relevance mirrors TechnicalAccuracy;
// the mirrors exist for display and are set during fusion.
type MetricScoreSet struct {
	Confidence        int `json:"confidence"`
	Communication     int `json:"communication"`
	Clarity           int `json:"clarity"`
	Grammar           int `json:"grammar"`
	TechnicalAccuracy int `json:"technical_accuracy"`
	Relevance         int `json:"relevance"`
	SpeakingSpeed     int `json:"speaking_speed"`
	FacialExpression  int `json:"facial_expression"`
	Overall           int `json:"overall"`
}

// ProviderOutcome is one provider's best-effort partial score report.
// Nil metric pointers mean the provider did not report that metric.
type ProviderOutcome struct {
	Source            string
	Confidence        *int
	Communication     *int
	Grammar           *int
	TechnicalAccuracy *int
	SpeakingSpeed     *int
	FacialExpression  *int
	FeedbackTips      []string
	Improvements      []string
	RelevanceNotes    string
}

// HasAnyMetric reports whether the outcome carries at least one metric.
func (o ProviderOutcome) HasAnyMetric() bool {
	return o.Confidence != nil || o.Communication != nil || o.Grammar != nil ||
		o.TechnicalAccuracy != nil || o.SpeakingSpeed != nil || o.FacialExpression != nil
}

// EvaluationResult is the fused evaluation of one answer.
// Once attached to a question it is never recomputed.
type EvaluationResult struct {
	Scores           MetricScoreSet `json:"scores"`
	SpeakingSpeedWpm int            `json:"speaking_speed_wpm"`
	FeedbackTips     []string       `json:"feedback_tips"`
	Improvements     []string       `json:"improvements"`
	RelevanceNotes   string         `json:"relevance_notes"`
	Transcript       string         `json:"transcript"`
	Sources          []string       `json:"sources"`
	CreatedAt        time.Time      `json:"created_at"`
}

// QuestionRecord is a question-bank entry.
type QuestionRecord struct {
	ID       string   `yaml:"id" json:"id"`
	Category string   `yaml:"category" json:"category"`
	Prompt   string   `yaml:"prompt" json:"prompt"`
	Tags     []string `yaml:"tags" json:"tags"`
}

// SessionQuestion is one question inside a session, optionally answered and
// evaluated.
type SessionQuestion struct {
	Question   QuestionRecord    `json:"question"`
	Submission *AnswerSubmission `json:"submission,omitempty"`
	Evaluation *EvaluationResult `json:"evaluation,omitempty"`
}

// Answered reports whether the question carries an evaluated answer.
func (q SessionQuestion) Answered() bool { return q.Submission != nil && q.Evaluation != nil }

// Session is one mock-interview run.
// Version supports optimistic concurrency in the store: two answer
// submissions, or a submission racing a completion, must not silently
// overwrite each other.
type Session struct {
	ID                 string                 `json:"id"`
	Mode               string                 `json:"mode"`
	Category           string                 `json:"category"`
	TargetRole         string                 `json:"target_role"`
	CompanySimulation  string                 `json:"company_simulation"`
	JobDescriptionText string                 `json:"job_description_text"`
	Status             SessionStatus          `json:"status"`
	Questions          []SessionQuestion      `json:"questions"`
	Summary            *SessionMetricsSummary `json:"summary,omitempty"`
	Version            int                    `json:"version"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// CurrentQuestion returns the first unanswered question, or the last one when
// all are answered.
func (s Session) CurrentQuestion() (SessionQuestion, bool) {
	if len(s.Questions) == 0 {
		return SessionQuestion{}, false
	}
	for _, q := range s.Questions {
		if !q.Answered() {
			return q, true
		}
	}
	return s.Questions[len(s.Questions)-1], true
}

// LastAnswered returns the most recently answered question, if any.
func (s Session) LastAnswered() (SessionQuestion, bool) {
	for i := len(s.Questions) - 1; i >= 0; i-- {
		if s.Questions[i].Answered() {
			return s.Questions[i], true
		}
	}
	return SessionQuestion{}, false
}

// DialogueTurn is one exchange entry in a dialogue history.
type DialogueTurn struct {
	Role string `json:"role"` // "candidate", "judge" or "interviewer"
	Text string `json:"text"`
}

// MaxDialogueHistory caps DialogueContext history length.
const MaxDialogueHistory = 10

// DialogueContext is the snapshot the conversational engine replies against.
// History holds at most MaxDialogueHistory turns, oldest evicted first.
type DialogueContext struct {
	Mode            string
	Session         Session
	CurrentQuestion QuestionRecord
	CurrentAnswer   *SessionQuestion // nil until the current question is answered
	History         []DialogueTurn
}

// AppendTurn appends a turn, evicting the oldest when the cap is exceeded.
func (d *DialogueContext) AppendTurn(role, text string) {
	d.History = append(d.History, DialogueTurn{Role: role, Text: text})
	if n := len(d.History); n > MaxDialogueHistory {
		d.History = d.History[n-MaxDialogueHistory:]
	}
}

// SessionMetricsSummary is the session-level reduction computed at completion.
// JobFitScore 0 means "not computed"; it may be backfilled later.
type SessionMetricsSummary struct {
	Averages       MetricScoreSet `json:"averages"`
	Strengths      []string       `json:"strengths"`
	Improvements   []string       `json:"improvements"`
	Recommendation string         `json:"recommendation"`
	JobFitScore    int            `json:"job_fit_score"`
	AnsweredCount  int            `json:"answered_count"`
}

// EvalInput is the provider-facing view of an answer to score.
type EvalInput struct {
	Transcript     string
	QuestionPrompt string
	Category       string
	TargetRole     string
	Tags           []string
	DurationSec    int
}

// Provider is the single capability interface every external AI/NLP endpoint
// is adapted to. The fan-out iterates an ordered Provider slice, so adding or
// removing a provider is a wiring change, not new branching.
type Provider interface {
	Name() string
	// Evaluate returns a partial score set, or an error on any failure.
	// Callers treat errors as "this provider is unavailable".
	Evaluate(ctx Context, in EvalInput) (*ProviderOutcome, error)
	// GenerateText returns raw generated text for an instruction/prompt pair.
	GenerateText(ctx Context, instruction, prompt string, temperature float64, maxTokens int) (string, error)
}

// QuestionBank samples questions, category-matched first and broadened when
// the primary sample comes up short.
type QuestionBank interface {
	Sample(ctx Context, categories []string, count int) ([]QuestionRecord, error)
}

// SessionRepository persists sessions. Update must enforce the stored
// Version and return ErrConflict on a stale write.
type SessionRepository interface {
	Create(ctx Context, s Session) (string, error)
	Get(ctx Context, id string) (Session, error)
	Update(ctx Context, s Session) error
}

// KVStore is a TTL-scoped key-value collaborator for ephemeral state such as
// dialogue history.
type KVStore interface {
	Get(ctx Context, key string) (string, bool, error)
	Set(ctx Context, key, value string, ttl time.Duration) error
}

// TrainingRecord is the stable-shaped record handed to the downstream
// fine-tuning collaborator after an evaluation completes.
type TrainingRecord struct {
	SessionID  string           `json:"session_id"`
	QuestionID string           `json:"question_id"`
	Category   string           `json:"category"`
	Prompt     string           `json:"prompt"`
	Transcript string           `json:"transcript"`
	Result     EvaluationResult `json:"result"`
}

// TrainingSink publishes completed evaluation records. Best-effort: callers
// log and continue on error.
type TrainingSink interface {
	PublishEvaluation(ctx Context, rec TrainingRecord) error
}

// Context is an alias to context.Context so usecases and adapters share one
// signature style without importing std context everywhere.
type Context = context.Context
