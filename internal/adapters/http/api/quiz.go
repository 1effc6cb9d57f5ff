package api

import (
	"net/http"

	"github.com/achievehub/achievehub/internal/domain/scoring"
)

type submitQuizRequest struct {
	StudentID string           `json:"studentId" validate:"omitempty,max=64"`
	SkillID   string           `json:"skillId" validate:"required"`
	Answers   []scoring.Answer `json:"answers" validate:"required,min=1,dive"`
	StartedAt string           `json:"startedAt"`
}

func (s *Server) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.quiz_questions"
	studentID, err := actingStudent(r, op, r.URL.Query().Get("studentId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.deps.QuizQuestions(r.Context(), r.PathValue("skillId"), studentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, set)
}

func (s *Server) handleQuizEligibility(w http.ResponseWriter, r *http.Request) {
	const op = "api.quiz_eligibility"
	studentID, err := actingStudent(r, op, r.URL.Query().Get("studentId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.CheckQuizEligibility(r.Context(), studentID, r.PathValue("skillId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	const op = "api.quiz_submit"
	var req submitQuizRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.SubmitQuiz(r.Context(), studentID, req.SkillID, req.Answers, req.StartedAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}
