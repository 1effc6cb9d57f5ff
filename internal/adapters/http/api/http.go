// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/http/swagger"
	"github.com/achievehub/achievehub/internal/adapters/upload"
	service "github.com/achievehub/achievehub/internal/app"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/internal/domain/scoring"
	"github.com/achievehub/achievehub/internal/domain/types"
	"github.com/achievehub/achievehub/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	Login(ctx context.Context, userID, password string) (service.Session, error)
	PresignUpload(ctx context.Context, fileName, fileType string) (upload.Result, error)

	CreateActivity(ctx context.Context, in service.ActivityInput) (model.Activity, error)
	UpdateActivity(ctx context.Context, activityID string, patch service.ActivityPatch) (model.Activity, error)
	ListActivities(ctx context.Context, f service.ActivityFilter) ([]model.Activity, error)
	ActivityDetail(ctx context.Context, activityID string) (service.ActivityDetail, error)
	ActivityParticipants(ctx context.Context, activityID string) (service.ParticipantList, error)

	Register(ctx context.Context, studentID, activityID string) (service.RegisterResult, error)
	ConfirmAttendance(ctx context.Context, studentID, code string) (service.ConfirmResult, error)
	ConfirmAttendanceGeo(ctx context.Context, studentID, activityID string, lat, lon float64) (service.ConfirmResult, error)
	SubmitSurvey(ctx context.Context, studentID, activityID string, ratings model.Ratings, comments string) (model.Participation, error)
	IssueCertificate(ctx context.Context, studentID, activityID string) (service.CertificateResult, error)

	StudentInfo(ctx context.Context, studentID string) (service.StudentProfile, error)
	StudentActivities(ctx context.Context, studentID string) ([]service.StudentActivity, error)
	StudentSkills(ctx context.Context, studentID string) ([]service.StudentSkill, error)
	Summarize(ctx context.Context, studentID string) (types.SkillSummary, error)
	AdvisorStudents(ctx context.Context, advisorID string) ([]service.AdvisorStudent, error)
	AllSkills(ctx context.Context) ([]model.Skill, error)
	RequiredSkills(ctx context.Context, yearLevel int) ([]model.Skill, error)

	QuizQuestions(ctx context.Context, skillID, studentID string) (service.QuizSet, error)
	CheckQuizEligibility(ctx context.Context, studentID, skillID string) (types.QuizEligibility, error)
	SubmitQuiz(ctx context.Context, studentID, skillID string, answers []scoring.Answer, startedAt string) (types.QuizResult, error)
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps        Dependencies
	tokens      TokenVerifier
	requireAuth bool
	corsOrigin  string
	validate    *validator.Validate
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTokenVerifier enables bearer token checks. When required is false a
// valid token is still honoured but anonymous calls are let through.
func WithTokenVerifier(v TokenVerifier, required bool) Option {
	return func(s *Server) {
		s.tokens = v
		s.requireAuth = required && v != nil
	}
}

// WithCORSOrigin sets Access-Control-Allow-Origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:       deps,
		corsOrigin: "*",
		validate:   newValidator(),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handler returns the complete HTTP handler: API routes, docs and CORS.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	s.Register(ctx, mux)
	return s.CORS(mux)
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	status := statusOf(e)
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("op", e.Op),
			logger.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Code: e.Code, Message: msg, Details: e.Details})
}

// decode reads a JSON body into dst and validates its struct tags.
func (s *Server) decode(r *http.Request, op string, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, fmt.Errorf("%w: request body is empty", ErrBadRequest))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return s.check(op, dst)
}

// check validates struct tags and reports the first failing field.
func (s *Server) check(op string, v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return WrapKind(op, ErrBadRequest, err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	e := errs.E(op, errs.Validation, errs.CodeInvalidInput,
		fmt.Sprintf("%s failed the %q rule", field, fe.Tag())).
		With("field", field).
		With("rule", fe.Tag())
	if fe.Param() != "" {
		e.With("param", fe.Param())
	}
	return e
}
