package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/achievehub/achievehub/internal/domain/errs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Given classified errors", t, func() {
		cause := errors.New("connection reset")

		Convey("Kinds and causes are reachable through errors.Is", func() {
			err := errs.Wrap("service.Register", errs.Store, errs.CodeStoreFailure, cause)
			So(errors.Is(err, errs.Store), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, errs.NotFound), ShouldBeFalse)
			So(err.Error(), ShouldEqual, "service.Register: store error: connection reset")
		})

		Convey("With chains details onto the same error", func() {
			err := errs.E("service.Confirm", errs.Timing, errs.CodeTooEarly, "too early").
				With("minutesUntilOpen", 5).
				With("activityId", "A1")
			So(err.Details, ShouldResemble, map[string]any{"minutesUntilOpen": 5, "activityId": "A1"})
			So(err.Error(), ShouldEqual, "service.Confirm: too early")
		})

		Convey("As finds an error through fmt wrapping", func() {
			inner := errs.E("service.Survey", errs.StateConflict, errs.CodeAlreadySurveyed, "already surveyed")
			wrapped := fmt.Errorf("handler: %w", inner)
			So(errs.As(wrapped), ShouldEqual, inner)
			So(errs.CodeOf(wrapped), ShouldEqual, errs.CodeAlreadySurveyed)
		})

		Convey("As classifies foreign errors as unexpected", func() {
			e := errs.As(cause)
			So(e.Kind, ShouldEqual, errs.Unexpected)
			So(e.Code, ShouldEqual, errs.CodeInternal)
			So(errors.Is(e, cause), ShouldBeTrue)
		})

		Convey("Nil stays nil", func() {
			So(errs.As(nil), ShouldBeNil)
			So(errs.CodeOf(nil), ShouldEqual, "")
		})

		Convey("StoreFailure carries the store code", func() {
			err := errs.StoreFailure("service.Summarize", cause)
			So(errs.CodeOf(err), ShouldEqual, errs.CodeStoreFailure)
			So(errors.Is(err, errs.Store), ShouldBeTrue)
		})
	})
}
