package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ahrav/exam-grader/internal/domain"
	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
	"github.com/ahrav/exam-grader/internal/questionbank"
)

// GradeRequest is the body of POST /v1/grade. Either QuestionID or Question
// must be set; QuestionID wins when both are.
type GradeRequest struct {
	QuestionID     string           `json:"questionId,omitempty"`
	Question       *domain.Question `json:"question,omitempty"`
	Answer         string           `json:"answer"`
	Provider       string           `json:"provider,omitempty"`
	Model          string           `json:"model,omitempty"`
	ElapsedSeconds float64          `json:"elapsedSeconds,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Booklist       string           `json:"booklist,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var body GradeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, llmerrors.KindValidation, "invalid JSON body: "+err.Error())
		return
	}

	req, err := s.resolve(body)
	if err != nil {
		if errors.Is(err, questionbank.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, llmerrors.KindValidation, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, llmerrors.KindValidation, err.Error())
		return
	}
	req.Credential = credentialFrom(r)

	grade, err := s.grader.Grade(r.Context(), req)
	if err != nil {
		kind := llmerrors.KindOf(err)
		writeError(w, statusFor(kind), kind, llmerrors.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, grade)
}

// resolve turns the wire body into a GradingRequest, pulling the question and
// its snippets from the bank when a questionId is given. Explicit notes and
// booklist text in the body take precedence over bank snippets.
func (s *Server) resolve(body GradeRequest) (domain.GradingRequest, error) {
	req := domain.GradingRequest{
		Answer:         body.Answer,
		Provider:       body.Provider,
		Model:          body.Model,
		ElapsedSeconds: body.ElapsedSeconds,
		Notes:          body.Notes,
		Booklist:       body.Booklist,
	}

	switch {
	case body.QuestionID != "":
		if s.bank == nil {
			return req, errors.New("questionId given but no question bank is configured")
		}
		q, err := s.bank.Question(body.QuestionID)
		if err != nil {
			return req, err
		}
		req.Question = q
	case body.Question != nil:
		req.Question = *body.Question
	default:
		return req, errors.New("one of questionId or question is required")
	}

	if s.bank != nil && req.Question.HeadingKey != "" {
		snip := s.bank.Snippets(req.Question.HeadingKey)
		if req.Notes == "" {
			req.Notes = snip.Notes
		}
		if req.Booklist == "" {
			req.Booklist = snip.Booklist
		}
	}
	return req, nil
}

func (s *Server) handleListQuestions(w http.ResponseWriter, _ *http.Request) {
	if s.bank == nil {
		writeJSON(w, http.StatusOK, map[string]any{"questions": []domain.Question{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": s.bank.Questions()})
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.bank == nil {
		writeError(w, http.StatusNotFound, llmerrors.KindValidation, "no question bank is configured")
		return
	}
	q, err := s.bank.Question(id)
	if err != nil {
		writeError(w, http.StatusNotFound, llmerrors.KindValidation, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// credentialFrom reads the caller's key from CredentialHeader, falling back
// to a bearer Authorization header.
func credentialFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(CredentialHeader)); v != "" {
		return v
	}
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
