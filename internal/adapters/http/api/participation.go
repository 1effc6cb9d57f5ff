package api

import (
	"net/http"

	"github.com/achievehub/achievehub/internal/domain/model"
)

type studentRequest struct {
	StudentID string `json:"studentId" validate:"omitempty,max=64"`
}

type verifyQRRequest struct {
	StudentID string `json:"studentId" validate:"omitempty,max=64"`
	Code      string `json:"code" validate:"required"`
}

type verifyGeoRequest struct {
	StudentID string   `json:"studentId" validate:"omitempty,max=64"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type assessmentRequest struct {
	StudentID string        `json:"studentId" validate:"omitempty,max=64"`
	Ratings   model.Ratings `json:"ratings"`
	Comments  string        `json:"comments" validate:"max=2000"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var req studentRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Register(r.Context(), studentID, r.PathValue("activityId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (s *Server) handleVerifyQR(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_qr"
	var req verifyQRRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.ConfirmAttendance(r.Context(), studentID, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleVerifyGeo(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_geo"
	var req verifyGeoRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.ConfirmAttendanceGeo(r.Context(), studentID, r.PathValue("activityId"), *req.Latitude, *req.Longitude)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.assessment"
	var req assessmentRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.deps.SubmitSurvey(r.Context(), studentID, r.PathValue("activityId"), req.Ratings, req.Comments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	const op = "api.certificate"
	var req studentRequest
	if err := s.decode(r, op, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	studentID, err := actingStudent(r, op, req.StudentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cert, err := s.deps.IssueCertificate(r.Context(), studentID, r.PathValue("activityId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if cert.Existing {
		status = http.StatusOK
	}
	writeData(w, status, cert)
}
