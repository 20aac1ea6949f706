package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Sessions   usecase.SessionService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, sessions usecase.SessionService, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Sessions: sessions, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

type createSessionRequest struct {
	Mode               string `json:"mode" validate:"required,oneof=judge live_interviewer"`
	Category           string `json:"category" validate:"omitempty,oneof=HR Technical Behavioral Coding"`
	TargetRole         string `json:"target_role" validate:"omitempty,max=120"`
	CompanySimulation  string `json:"company_simulation" validate:"omitempty,max=120"`
	JobDescriptionText string `json:"job_description_text" validate:"omitempty,max=20000"`
	QuestionCount      int    `json:"question_count" validate:"omitempty,min=1,max=10"`
}

// CreateSessionHandler starts a new mock-interview session.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		sess, err := s.Sessions.CreateSession(r.Context(), usecase.CreateSessionInput{
			Mode:               req.Mode,
			Category:           req.Category,
			TargetRole:         textx.SanitizeText(req.TargetRole),
			CompanySimulation:  textx.SanitizeText(req.CompanySimulation),
			JobDescriptionText: textx.SanitizeText(req.JobDescriptionText),
			QuestionCount:      req.QuestionCount,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// GetSessionHandler returns the full session snapshot.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := s.Sessions.GetSession(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type submitAnswerRequest struct {
	QuestionID            string `json:"question_id" validate:"omitempty,max=64"`
	Transcript            string `json:"transcript" validate:"omitempty,max=50000"`
	RawText               string `json:"raw_text" validate:"omitempty,max=50000"`
	DurationSec           int    `json:"duration_sec" validate:"omitempty,min=0,max=7200"`
	FacialExpressionScore int    `json:"facial_expression_score" validate:"omitempty,min=0,max=100"`
	ConfidenceSelfRating  int    `json:"confidence_self_rating" validate:"omitempty,min=0,max=10"`
	AnswerType            string `json:"answer_type" validate:"omitempty,oneof=text voice video"`
}

type submitAnswerResponse struct {
	QuestionID string                  `json:"question_id"`
	Evaluation domain.EvaluationResult `json:"evaluation"`
	FollowUp   string                  `json:"follow_up"`
}

// SubmitAnswerHandler evaluates one answer and persists the result.
func (s *Server) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req submitAnswerRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if req.AnswerType == "" {
			req.AnswerType = domain.AnswerTypeText
		}
		res, err := s.Sessions.SubmitAnswer(r.Context(), id, req.QuestionID, domain.AnswerSubmission{
			Transcript:            req.Transcript,
			RawText:               req.RawText,
			DurationSec:           req.DurationSec,
			FacialExpressionScore: req.FacialExpressionScore,
			ConfidenceSelfRating:  req.ConfidenceSelfRating,
			AnswerType:            req.AnswerType,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, submitAnswerResponse{
			QuestionID: res.QuestionID,
			Evaluation: res.Evaluation,
			FollowUp:   res.FollowUp,
		})
	}
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler resolves one conversational message against the session.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req chatRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		reply, err := s.Sessions.Chat(r.Context(), id, req.Message)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
	}
}

// CompleteSessionHandler aggregates the session and returns the summary.
func (s *Server) CompleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		summary, err := s.Sessions.Complete(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// HealthzHandler is the liveness probe.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type readinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// ReadyzHandler probes external collaborators.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := []readinessCheck{}
		allOK := true
		run := func(name string, fn func(ctx context.Context) error) {
			c := readinessCheck{Name: name, OK: true}
			if fn != nil {
				if err := fn(r.Context()); err != nil {
					c.OK = false
					c.Details = err.Error()
					allOK = false
				}
			}
			checks = append(checks, c)
		}
		run("db", s.DBCheck)
		run("redis", s.RedisCheck)
		status := http.StatusOK
		if !allOK {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"ready": allOK, "checks": checks})
	}
}
