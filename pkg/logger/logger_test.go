package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := InitWithOptions(Options{Format: "xml"})

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Format: "json", Output: &buf}), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields through a named logger", func() {
			Named("eligibility").With(String("studentId", "6601")).
				Info(ctx, "registered", Bool("confirmed", false), Error(errors.New("boom")))

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then every field is rendered", func() {
				So(line["msg"], ShouldEqual, "registered")
				So(line["component"], ShouldEqual, "eligibility")
				So(line["studentId"], ShouldEqual, "6601")
				So(line["confirmed"], ShouldEqual, false)
				So(line["error"], ShouldEqual, "boom")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")

			Convey("Then info lines are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Reset(func() { _ = SetLevelString("info") })
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Nop never panics", t, func() {
		So(func() { Nop().Named("x").Error(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
