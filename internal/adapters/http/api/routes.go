package api

import (
	"context"
	"net/http"
)

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	health := NewHealthHandler()
	mux.HandleFunc("GET /healthz", MetricsMiddleware(health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", health.HandleMetrics)

	route := func(pattern, endpoint string, audience access, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(s.authenticate(h, audience), endpoint))
	}

	route("POST /auth/login", "login", public, s.handleLogin)
	route("POST /uploads/presign", "upload_presign", staff, s.handlePresign)

	route("GET /activities", "activities_list", public, s.handleListActivities)
	route("POST /activities", "activities_create", staff, s.handleCreateActivity)
	route("GET /activities/{activityId}", "activity_detail", public, s.handleActivityDetail)
	route("PATCH /activities/{activityId}", "activity_update", staff, s.handleUpdateActivity)
	route("GET /activities/{activityId}/participants", "activity_participants", staff, s.handleParticipants)

	route("POST /activities/{activityId}/register", "register", member, s.handleRegister)
	route("POST /activities/verify-qr", "verify_qr", member, s.handleVerifyQR)
	route("POST /activities/{activityId}/verify-geo", "verify_geo", member, s.handleVerifyGeo)
	route("POST /activities/{activityId}/assessment", "assessment", member, s.handleAssessment)
	route("POST /activities/{activityId}/certificate", "certificate", member, s.handleCertificate)

	route("GET /students/{studentId}", "student_info", member, s.handleStudentInfo)
	route("GET /students/{studentId}/activities", "student_activities", member, s.handleStudentActivities)
	route("GET /students/{studentId}/skills", "student_skills", member, s.handleStudentSkills)
	route("GET /students/{studentId}/skills/summary", "skill_summary", member, s.handleSummary)
	route("GET /advisors/{advisorId}/students", "advisor_students", staff, s.handleAdvisorStudents)

	route("GET /skills", "skills", public, s.handleAllSkills)
	route("GET /skills/required/{yearLevel}", "required_skills", public, s.handleRequiredSkills)

	route("GET /quiz/questions/{skillId}", "quiz_questions", member, s.handleQuizQuestions)
	route("GET /quiz/eligibility/{skillId}", "quiz_eligibility", member, s.handleQuizEligibility)
	route("POST /quiz/submit", "quiz_submit", member, s.handleSubmitQuiz)
}
