package bootstrap_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/bootstrap"
	"github.com/achievehub/achievehub/internal/config"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a memory-store configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.UploadBucket = ""

		Convey("Build wires a serving handler", func() {
			app, err := bootstrap.Build(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			So(app.Service, ShouldNotBeNil)
			So(app.Tokens, ShouldBeNil)
			So(app.Store, ShouldHaveSameTypeAs, &repository.MemoryStore{})

			rec := httptest.NewRecorder()
			app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("A JWT secret enables login against seeded users", func() {
			cfg.JWTSecret = "test-secret"
			app, err := bootstrap.Build(ctx, cfg, nil)
			So(err, ShouldBeNil)
			So(app.Tokens, ShouldNotBeNil)

			hash, err := auth.HashPassword("pw")
			So(err, ShouldBeNil)
			So(repository.PutRecord(ctx, app.Store, repository.Users, model.User{
				UserID: "t1", Role: "teacher", PasswordHash: hash,
			}), ShouldBeNil)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"userId":"t1","password":"pw"}`))
			app.Handler.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"token"`)
		})

		Convey("Invalid configuration is rejected", func() {
			cfg.RequireAuth = true
			_, err := bootstrap.Build(ctx, cfg, nil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
