package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/http/api"
	"github.com/achievehub/achievehub/internal/adapters/repository"
	service "github.com/achievehub/achievehub/internal/app"
	"github.com/achievehub/achievehub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type harness struct {
	now     time.Time
	store   *repository.MemoryStore
	tokens  *auth.TokenIssuer
	handler http.Handler
}

type reply struct {
	Code    int             `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	ErrCode string          `json:"code"`
	Message string          `json:"message"`
	Details map[string]any  `json:"details"`
}

func newHarness(requireAuth bool) *harness {
	h := &harness{store: repository.NewMemoryStore()}
	h.now = time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return h.now }

	var err error
	h.tokens, err = auth.NewTokenIssuer("test-secret", auth.WithClock(clock))
	if err != nil {
		panic(err)
	}
	svc := service.New(
		service.WithStore(h.store),
		service.WithClock(clock),
		service.WithTokenIssuer(h.tokens),
	)
	srv := api.NewServer(svc, api.WithTokenVerifier(h.tokens, requireAuth), api.WithCORSOrigin("https://app.example"))
	h.handler = srv.Handler(context.Background())

	ctx := context.Background()
	mustPut := func(table repository.Table, rec any) {
		if err := repository.PutRecord(ctx, h.store, table, rec); err != nil {
			panic(err)
		}
	}
	mustPut(repository.Activities, model.Activity{
		ActivityID:    "A1",
		Name:          "Data Workshop",
		StartDateTime: "2025-01-10T09:00:00Z",
		EndDateTime:   "2025-01-10T12:00:00Z",
		QRCode:        "QR-A1",
	})
	mustPut(repository.Students, model.Student{StudentID: "6601001", Name: "Somchai", YearLevel: 2})
	mustPut(repository.Students, model.Student{StudentID: "6601002", Name: "Suda", YearLevel: 2})
	mustPut(repository.Skills, model.Skill{SkillID: "SK1", Name: "SQL", IsRequired: true, YearLevel: 2})
	hash, err := auth.HashPassword("pw")
	if err != nil {
		panic(err)
	}
	mustPut(repository.Users, model.User{UserID: "u1", Role: api.RoleStudent, StudentID: "6601001", PasswordHash: hash})
	return h
}

func (h *harness) token(role, studentID string) string {
	tok, _, err := h.tokens.Issue("u-"+role, role, studentID)
	if err != nil {
		panic(err)
	}
	return tok
}

func (h *harness) do(method, path, body, token string) reply {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	out := reply{Code: w.Code}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			panic(err)
		}
	}
	return out
}

func TestParticipationRoutes(t *testing.T) {
	Convey("Given the API without mandatory auth", t, func() {
		h := newHarness(false)

		Convey("The lifecycle maps onto status codes", func() {
			r := h.do("POST", "/activities/A1/register", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusCreated)
			So(r.Success, ShouldBeTrue)

			r = h.do("POST", "/activities/A1/register", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusConflict)
			So(r.Success, ShouldBeFalse)
			So(r.ErrCode, ShouldEqual, "AlreadyRegistered")

			r = h.do("POST", "/activities/verify-qr", `{"studentId":"6601001","code":"QR-A1"}`, "")
			So(r.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(r.ErrCode, ShouldEqual, "TooEarly")
			So(r.Details, ShouldContainKey, "minutesRemaining")

			h.now = time.Date(2025, 1, 10, 8, 40, 0, 0, time.UTC)
			r = h.do("POST", "/activities/verify-qr", `{"studentId":"6601001","code":"QR-A1"}`, "")
			So(r.Code, ShouldEqual, http.StatusOK)

			r = h.do("POST", "/activities/verify-qr", `{"studentId":"6601001","code":"QR-A1"}`, "")
			So(r.Code, ShouldEqual, http.StatusConflict)
			So(r.ErrCode, ShouldEqual, "AlreadyConfirmed")

			ratings := `"ratings":{"overall_satisfaction":5,"content_quality":5,"instructor_quality":5,"organization":5,"recommendation":5}`
			r = h.do("POST", "/activities/A1/assessment", `{"studentId":"6601001",`+ratings+`}`, "")
			So(r.Code, ShouldEqual, http.StatusOK)

			r = h.do("POST", "/activities/A1/certificate", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusCreated)
			var first model.Certificate
			So(json.Unmarshal(r.Data, &first), ShouldBeNil)

			r = h.do("POST", "/activities/A1/certificate", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusOK)
			var second model.Certificate
			So(json.Unmarshal(r.Data, &second), ShouldBeNil)
			So(second.CertificateID, ShouldEqual, first.CertificateID)
		})

		Convey("Bad input is a 400 naming the field", func() {
			r := h.do("POST", "/activities/verify-qr", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)
			So(r.ErrCode, ShouldEqual, "InvalidInput")
			So(r.Details["field"], ShouldEqual, "code")

			r = h.do("POST", "/activities/A1/register", `{not json`, "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)

			r = h.do("POST", "/activities/A1/register", "", "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)

			r = h.do("POST", "/activities/A1/verify-geo", `{"studentId":"6601001","latitude":120,"longitude":100}`, "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)
			So(r.Details["field"], ShouldEqual, "latitude")

			r = h.do("POST", "/quiz/submit", `{"studentId":"6601001","skillId":"SK1","answers":[{"selectedAnswer":"A"}]}`, "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)
			So(r.Details["field"], ShouldEqual, "answers[0].questionId")

			r = h.do("GET", "/skills/required/two", "", "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Unknown records are 404s with stable codes", func() {
			r := h.do("POST", "/activities/NOPE/register", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusNotFound)
			So(r.ErrCode, ShouldEqual, "ActivityNotFound")

			r = h.do("GET", "/students/0000000", "", "")
			So(r.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Read routes return data", func() {
			r := h.do("GET", "/activities", "", "")
			So(r.Code, ShouldEqual, http.StatusOK)
			var list []model.Activity
			So(json.Unmarshal(r.Data, &list), ShouldBeNil)
			So(list, ShouldHaveLength, 1)

			r = h.do("GET", "/activities?includePast=maybe", "", "")
			So(r.Code, ShouldEqual, http.StatusBadRequest)

			r = h.do("GET", "/students/6601001/skills/summary", "", "")
			So(r.Code, ShouldEqual, http.StatusOK)
			So(string(r.Data), ShouldContainSubstring, `"totalRequiredSkills":1`)

			r = h.do("GET", "/skills/required/2", "", "")
			So(r.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestAuthRoutes(t *testing.T) {
	Convey("Given the API with mandatory auth", t, func() {
		h := newHarness(true)

		Convey("Login issues a usable token", func() {
			r := h.do("POST", "/auth/login", `{"userId":"u1","password":"pw"}`, "")
			So(r.Code, ShouldEqual, http.StatusOK)
			var sess struct {
				Token string `json:"token"`
			}
			So(json.Unmarshal(r.Data, &sess), ShouldBeNil)
			So(sess.Token, ShouldNotBeEmpty)

			r = h.do("POST", "/activities/A1/register", `{}`, sess.Token)
			So(r.Code, ShouldEqual, http.StatusCreated)
			So(string(r.Data), ShouldContainSubstring, `"studentId":"6601001"`)
		})

		Convey("Bad credentials are 401", func() {
			r := h.do("POST", "/auth/login", `{"userId":"u1","password":"wrong"}`, "")
			So(r.Code, ShouldEqual, http.StatusUnauthorized)
			So(r.ErrCode, ShouldEqual, "BadCredentials")
		})

		Convey("Protected routes need a valid token", func() {
			r := h.do("POST", "/activities/A1/register", `{"studentId":"6601001"}`, "")
			So(r.Code, ShouldEqual, http.StatusUnauthorized)

			r = h.do("POST", "/activities/A1/register", `{"studentId":"6601001"}`, "garbage")
			So(r.Code, ShouldEqual, http.StatusUnauthorized)
			So(r.ErrCode, ShouldEqual, "InvalidToken")

			r = h.do("GET", "/activities", "", "")
			So(r.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Students act only for themselves", func() {
			tok := h.token(api.RoleStudent, "6601001")
			r := h.do("POST", "/activities/A1/register", `{"studentId":"6601002"}`, tok)
			So(r.Code, ShouldEqual, http.StatusForbidden)

			r = h.do("GET", "/students/6601002", "", tok)
			So(r.Code, ShouldEqual, http.StatusForbidden)

			r = h.do("GET", "/activities/A1/participants", "", tok)
			So(r.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("Staff may act for any student", func() {
			tok := h.token(api.RoleTeacher, "")
			r := h.do("POST", "/activities/A1/register", `{"studentId":"6601002"}`, tok)
			So(r.Code, ShouldEqual, http.StatusCreated)

			r = h.do("GET", "/activities/A1/participants", "", tok)
			So(r.Code, ShouldEqual, http.StatusOK)
			So(string(r.Data), ShouldContainSubstring, `"totalRegistered":1`)
		})
	})
}

func TestInfrastructureRoutes(t *testing.T) {
	Convey("Given the API handler", t, func() {
		h := newHarness(false)

		Convey("Preflight probes get 204 with CORS headers", func() {
			req := httptest.NewRequest(http.MethodOptions, "/activities/A1/register", http.NoBody)
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example")
			So(w.Header().Get("Access-Control-Allow-Headers"), ShouldContainSubstring, "Authorization")
		})

		Convey("Health and metrics respond", func() {
			r := h.do("GET", "/healthz", "", "")
			So(r.Code, ShouldEqual, http.StatusOK)
			So(r.Success, ShouldBeTrue)

			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "achievehub_tracker_http_requests_total")
		})

		Convey("API docs are mounted", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
