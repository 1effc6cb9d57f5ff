package api

import (
	"net/http"
	"strconv"
)

// studentPath resolves the {studentId} path value against the caller.
func (s *Server) studentPath(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id, err := actingStudent(r, op, r.PathValue("studentId"))
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return id, true
}

func (s *Server) handleStudentInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.studentPath(w, r, "api.student_info")
	if !ok {
		return
	}
	info, err := s.deps.StudentInfo(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, info)
}

func (s *Server) handleStudentActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := s.studentPath(w, r, "api.student_activities")
	if !ok {
		return
	}
	list, err := s.deps.StudentActivities(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleStudentSkills(w http.ResponseWriter, r *http.Request) {
	id, ok := s.studentPath(w, r, "api.student_skills")
	if !ok {
		return
	}
	list, err := s.deps.StudentSkills(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.studentPath(w, r, "api.skill_summary")
	if !ok {
		return
	}
	sum, err := s.deps.Summarize(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sum)
}

func (s *Server) handleAdvisorStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.AdvisorStudents(r.Context(), r.PathValue("advisorId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleAllSkills(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.AllSkills(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleRequiredSkills(w http.ResponseWriter, r *http.Request) {
	const op = "api.required_skills"
	level, err := strconv.Atoi(r.PathValue("yearLevel"))
	if err != nil {
		s.writeError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	list, err := s.deps.RequiredSkills(r.Context(), level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}
