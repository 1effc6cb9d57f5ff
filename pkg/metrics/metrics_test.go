package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"stage": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.registrations.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "test_unit_")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording lifecycle metrics", func() {
			before := testutil.ToFloat64(globalManager.quizAttempts.WithLabelValues("passed"))
			RecordQuizAttempt(true)
			RecordQuizAttempt(false)

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.quizAttempts.WithLabelValues("passed")), ShouldEqual, before+1)
			})
		})

		Convey("When recording every helper", func() {
			So(func() {
				RecordRegistration("ok")
				RecordConfirmation("qr", "ok")
				RecordSurvey("ok")
				RecordCertificate("issued")
				RecordCompletedSkillWrite()
				RecordAssessmentWriteFailure()
				RecordHTTPRequest("register", "POST", "200")
				RecordHTTPRequestDuration("register", "POST", "200", 4)
				RecordStoreOperation("Activities", "get", 2)
				RecordStoreError("Activities", "get")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("register", "POST", "client_error")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
