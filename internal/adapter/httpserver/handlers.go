// Package httpserver contains the JSON API handlers and middleware.
//
// Handlers decode and validate requests, call the interview generators and
// encode their results. Generators never fail on service errors, so the only
// error responses come from malformed input.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	"github.com/ParthivReddyY/ai-interviewer/internal/usecase"
)

var (
	errUnsupportedMedia = errors.New("unsupported media type")
	errNotAcceptable    = errors.New("not acceptable")
)

const maxMultipartMemory = 1 << 20

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Questions  usecase.QuestionService
	Evaluation usecase.EvaluationService
	Summary    usecase.SummaryService
	Resume     usecase.ResumeService
	// Credentials is the number of configured completion credentials, reported by /readyz.
	Credentials int
	RedisCheck  func(ctx context.Context) error
}

// NewServer constructs a Server with all generators wired.
func NewServer(cfg config.Config, questions usecase.QuestionService, evaluation usecase.EvaluationService, summary usecase.SummaryService, resume usecase.ResumeService, credentials int, redisCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:         cfg,
		Questions:   questions,
		Evaluation:  evaluation,
		Summary:     summary,
		Resume:      resume,
		Credentials: credentials,
		RedisCheck:  redisCheck,
	}
}

type questionsRequest struct {
	CandidateName string                `json:"candidateName" validate:"max=200"`
	ResumeText    string                `json:"resumeText" validate:"max=200000"`
	ResumeProfile *domain.ResumeProfile `json:"resumeProfile"`
}

type evaluationRequest struct {
	Questions []domain.Question `json:"questions" validate:"required,min=1,max=50,dive"`
	Answers   []domain.Answer   `json:"answers" validate:"required,min=1,max=50,dive"`
}

type quickRequest struct {
	Question domain.Question `json:"question"`
	Answer   domain.Answer   `json:"answer"`
}

type summaryRequest struct {
	Answers    []domain.Answer `json:"answers" validate:"max=50,dive"`
	FinalScore float64         `json:"finalScore" validate:"gte=0,lte=10"`
}

type resumeRequest struct {
	Text string `json:"text" validate:"required,max=200000"`
}

// acceptsJSON writes 406 and returns false when the client refuses JSON.
func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || strings.Contains(a, "*/*") || strings.Contains(a, "application/json") {
		return true
	}
	writeError(w, r, errNotAcceptable, map[string]string{"accept": a})
	return false
}

// QuestionsHandler generates an interview question set.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req questionsRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		qs := s.Questions.GenerateQuestions(r.Context(), req.CandidateName, req.ResumeText, req.ResumeProfile)
		writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
	}
}

// EvaluateHandler scores a full answer set.
func (s *Server) EvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req evaluationRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		res, err := s.Evaluation.EvaluateAnswers(r.Context(), req.Questions, req.Answers)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// QuickEvaluateHandler scores a single answer on the low-latency path.
func (s *Server) QuickEvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req quickRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, s.Evaluation.QuickEvaluate(r.Context(), req.Question, req.Answer))
	}
}

// SummaryHandler writes the interview summary.
func (s *Server) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req summaryRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"summary": s.Summary.GenerateSummary(r.Context(), req.Answers, req.FinalScore)})
	}
}

// ParseResumeHandler accepts resume text as JSON {"text": ...} or as a
// plain-text multipart "file" and returns the parsed profile.
func (s *Server) ParseResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var text string
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			var ok bool
			if text, ok = readResumeFile(w, r); !ok {
				return
			}
		} else {
			var req resumeRequest
			if !decodeAndValidate(w, r, &req) {
				return
			}
			text = req.Text
		}
		writeJSON(w, http.StatusOK, s.Resume.ParseResumeText(r.Context(), text))
	}
}

func readResumeFile(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, err, map[string]int64{"max_bytes": maxErr.Limit})
			return "", false
		}
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return "", false
	}
	f, h, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
		return "", false
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: file read: %v", domain.ErrInvalidArgument, err), nil)
		return "", false
	}
	mt := mimetype.Detect(data)
	if !isPlainText(mt) {
		writeError(w, r, fmt.Errorf("%w: resume must be plain text", errUnsupportedMedia),
			map[string]string{"mime": mt.String(), "filename": h.Filename})
		return "", false
	}
	return string(data), true
}

// isPlainText reports whether mt is text/plain or a text format derived from it.
func isPlainText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports Redis reachability and whether completion credentials
// are configured. Missing credentials do not fail readiness since every
// generator has a fallback.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		llm := check{Name: "llm", OK: true, Details: fmt.Sprintf("%d credentials", s.Credentials)}
		if s.Credentials == 0 {
			llm.Details = "no credentials configured, serving fallback results"
		}
		checks = append(checks, llm)

		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
