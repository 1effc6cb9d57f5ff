package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	service "github.com/achievehub/achievehub/internal/app"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fixture struct {
	ctx   context.Context
	store repository.Store
	mem   *repository.MemoryStore
	now   time.Time
	seq   int
	svc   *service.Service
}

func newFixture(opts ...service.Option) *fixture {
	mem := repository.NewMemoryStore()
	return newFixtureOn(mem, mem, opts...)
}

func newFixtureOn(mem *repository.MemoryStore, store repository.Store, opts ...service.Option) *fixture {
	f := &fixture{ctx: context.Background(), store: store, mem: mem}
	base := []service.Option{
		service.WithStore(store),
		service.WithClock(func() time.Time { return f.now }),
		service.WithIDGenerator(func() string {
			f.seq++
			return fmt.Sprintf("%07d-0000", f.seq)
		}),
		service.WithShuffle(func(int, func(i, j int)) {}),
	}
	f.svc = service.New(append(base, opts...)...)
	return f
}

func (f *fixture) at(ts string) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	f.now = t
}

func (f *fixture) put(table repository.Table, rec any) {
	if err := repository.PutRecord(f.ctx, f.mem, table, rec); err != nil {
		panic(err)
	}
}

func (f *fixture) participation(studentID, activityID string) model.Participation {
	key, err := repository.Key(repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		panic(err)
	}
	p, found, err := repository.GetRecord[model.Participation](f.ctx, f.mem, repository.ActivityParticipations, key)
	if err != nil || !found {
		panic(fmt.Sprintf("participation %s/%s: found=%v err=%v", studentID, activityID, found, err))
	}
	return p
}

func allFives() model.Ratings {
	return model.Ratings{OverallSatisfaction: 5, ContentQuality: 5, InstructorQuality: 5, Organization: 5, Recommendation: 5}
}

func seedActivity(f *fixture) {
	f.put(repository.Activities, model.Activity{
		ActivityID:    "A1",
		Name:          "Data Workshop",
		StartDateTime: "2025-01-10T09:00:00Z",
		EndDateTime:   "2025-01-10T12:00:00Z",
		QRCode:        "QR-A1",
		LocationID:    "L1",
	})
	f.put(repository.Students, model.Student{StudentID: "6601001", Name: "Somchai", YearLevel: 2, AdvisorID: "T1"})
	f.put(repository.Students, model.Student{StudentID: "6601002", Name: "Suda", YearLevel: 2, AdvisorID: "T1"})
	f.put(repository.Locations, model.Location{LocationID: "L1", LocationName: "Hall", Latitude: 13.7563, Longitude: 100.5018, RadiusMeters: 100})
}

func hasCode(err error, kind *errs.Kind, code string) bool {
	return errors.Is(err, kind) && errs.CodeOf(err) == code
}

func TestParticipationLifecycle(t *testing.T) {
	Convey("Given a workshop starting 2025-01-10 09:00Z", t, func() {
		f := newFixture()
		seedActivity(f)

		Convey("The full lifecycle runs register, confirm, survey, certificate", func() {
			f.at("2025-01-09T00:00:00Z")
			reg, err := f.svc.Register(f.ctx, "6601001", "A1")
			So(err, ShouldBeNil)
			So(reg.ActivityName, ShouldEqual, "Data Workshop")
			So(reg.Participation.IsConfirmed, ShouldBeFalse)
			So(reg.Participation.SurveyCompleted, ShouldBeFalse)
			So(reg.Participation.RegisteredAt, ShouldEqual, "2025-01-09T07:00:00+07:00")

			f.at("2025-01-10T08:40:00Z")
			conf, err := f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
			So(err, ShouldBeNil)
			So(conf.ActivityID, ShouldEqual, "A1")
			So(conf.Participation.IsConfirmed, ShouldBeTrue)
			So(conf.Participation.ConfirmedAt, ShouldEqual, "2025-01-10T15:40:00+07:00")
			So(conf.Participation.ConfirmMethod, ShouldEqual, model.ConfirmQR)

			_, err = f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
			So(hasCode(err, errs.StateConflict, errs.CodeAlreadyConfirmed), ShouldBeTrue)

			p, err := f.svc.SubmitSurvey(f.ctx, "6601001", "A1", allFives(), "great")
			So(err, ShouldBeNil)
			So(p.SurveyCompleted, ShouldBeTrue)
			So(f.mem.Len(repository.Assessments), ShouldEqual, 1)

			_, err = f.svc.SubmitSurvey(f.ctx, "6601001", "A1", allFives(), "")
			So(hasCode(err, errs.StateConflict, errs.CodeAlreadySurveyed), ShouldBeTrue)

			first, err := f.svc.IssueCertificate(f.ctx, "6601001", "A1")
			So(err, ShouldBeNil)
			So(first.Existing, ShouldBeFalse)
			So(first.Status, ShouldEqual, model.CertificateIssued)
			So(first.StudentName, ShouldEqual, "Somchai")
			So(first.ActivityName, ShouldEqual, "Data Workshop")

			second, err := f.svc.IssueCertificate(f.ctx, "6601001", "A1")
			So(err, ShouldBeNil)
			So(second.Existing, ShouldBeTrue)
			So(second.CertificateID, ShouldEqual, first.CertificateID)
			So(second.IssuedAt, ShouldEqual, first.IssuedAt)
			So(f.mem.Len(repository.Certificates), ShouldEqual, 1)
			So(f.participation("6601001", "A1").CertificateClaimed, ShouldBeTrue)
		})

		Convey("Registering twice is AlreadyRegistered", func() {
			f.at("2025-01-09T00:00:00Z")
			_, err := f.svc.Register(f.ctx, "6601001", "A1")
			So(err, ShouldBeNil)
			_, err = f.svc.Register(f.ctx, "6601001", "A1")
			So(hasCode(err, errs.StateConflict, errs.CodeAlreadyRegistered), ShouldBeTrue)
		})

		Convey("Registration closes once the activity starts", func() {
			f.at("2025-01-10T09:00:00Z")
			_, err := f.svc.Register(f.ctx, "6601001", "A1")
			So(hasCode(err, errs.Timing, errs.CodeActivityPast), ShouldBeTrue)
		})

		Convey("Unknown activities and students are NotFound", func() {
			f.at("2025-01-09T00:00:00Z")
			_, err := f.svc.Register(f.ctx, "6601001", "NOPE")
			So(hasCode(err, errs.NotFound, errs.CodeActivityNotFound), ShouldBeTrue)
			_, err = f.svc.Register(f.ctx, "0000000", "A1")
			So(hasCode(err, errs.NotFound, errs.CodeStudentNotFound), ShouldBeTrue)
		})

		Convey("Blank ids are validation errors", func() {
			_, err := f.svc.Register(f.ctx, " ", "A1")
			So(hasCode(err, errs.Validation, errs.CodeInvalidInput), ShouldBeTrue)
		})
	})
}

func TestConfirmWindow(t *testing.T) {
	Convey("Given two registered students", t, func() {
		f := newFixture()
		seedActivity(f)
		f.at("2025-01-09T00:00:00Z")
		_, err := f.svc.Register(f.ctx, "6601001", "A1")
		So(err, ShouldBeNil)
		_, err = f.svc.Register(f.ctx, "6601002", "A1")
		So(err, ShouldBeNil)

		Convey("One second before the window opens is TooEarly", func() {
			f.at("2025-01-10T08:29:59Z")
			_, err := f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
			So(hasCode(err, errs.Timing, errs.CodeTooEarly), ShouldBeTrue)
			So(errs.As(err).Details["minutesRemaining"], ShouldEqual, 1)
			So(f.participation("6601001", "A1").IsConfirmed, ShouldBeFalse)
		})

		Convey("Both window edges are inclusive", func() {
			f.at("2025-01-10T08:30:00Z")
			_, err := f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
			So(err, ShouldBeNil)

			f.at("2025-01-10T09:30:00Z")
			_, err = f.svc.ConfirmAttendance(f.ctx, "6601002", "QR-A1")
			So(err, ShouldBeNil)
		})

		Convey("One second after the window closes is TooLate", func() {
			f.at("2025-01-10T09:30:01Z")
			_, err := f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
			So(hasCode(err, errs.Timing, errs.CodeTooLate), ShouldBeTrue)
		})

		Convey("A wider configured window is honoured", func() {
			wide := newFixtureOn(f.mem, f.mem, service.WithConfirmWindow(time.Hour))
			wide.at("2025-01-10T08:10:00Z")
			_, err := wide.svc.ConfirmAttendance(wide.ctx, "6601001", "QR-A1")
			So(err, ShouldBeNil)
		})

		Convey("Unknown codes and unregistered students are rejected", func() {
			f.at("2025-01-10T09:00:00Z")
			_, err := f.svc.ConfirmAttendance(f.ctx, "6601001", "WRONG")
			So(hasCode(err, errs.NotFound, errs.CodeCodeNotFound), ShouldBeTrue)

			f.put(repository.Students, model.Student{StudentID: "6601003", Name: "Late"})
			_, err = f.svc.ConfirmAttendance(f.ctx, "6601003", "QR-A1")
			So(hasCode(err, errs.StateConflict, errs.CodeNotRegistered), ShouldBeTrue)
		})
	})
}

func TestGeoConfirmation(t *testing.T) {
	Convey("Given a registered student and a geofenced venue", t, func() {
		f := newFixture()
		seedActivity(f)
		f.at("2025-01-09T00:00:00Z")
		_, err := f.svc.Register(f.ctx, "6601001", "A1")
		So(err, ShouldBeNil)
		f.at("2025-01-10T09:05:00Z")

		Convey("A position outside the radius is OutOfRange", func() {
			_, err := f.svc.ConfirmAttendanceGeo(f.ctx, "6601001", "A1", 13.7663, 100.5018)
			So(hasCode(err, errs.Forbidden, errs.CodeOutOfRange), ShouldBeTrue)
			So(f.participation("6601001", "A1").IsConfirmed, ShouldBeFalse)
		})

		Convey("A position inside the radius confirms with coordinates", func() {
			res, err := f.svc.ConfirmAttendanceGeo(f.ctx, "6601001", "A1", 13.7564, 100.5019)
			So(err, ShouldBeNil)
			So(res.Participation.ConfirmMethod, ShouldEqual, model.ConfirmGeo)
			So(res.Participation.ConfirmLat, ShouldAlmostEqual, 13.7564)

			_, err = f.svc.ConfirmAttendanceGeo(f.ctx, "6601001", "A1", 13.7564, 100.5019)
			So(hasCode(err, errs.StateConflict, errs.CodeAlreadyConfirmed), ShouldBeTrue)
		})

		Convey("Invalid coordinates are validation errors", func() {
			_, err := f.svc.ConfirmAttendanceGeo(f.ctx, "6601001", "A1", 91, 0)
			So(errors.Is(err, errs.Validation), ShouldBeTrue)
		})
	})
}

type failingAssessments struct {
	repository.Store
}

func (s failingAssessments) Put(ctx context.Context, table repository.Table, item repository.Item, opts ...repository.PutOption) error {
	if table == repository.Assessments {
		return errors.New("throughput exceeded")
	}
	return s.Store.Put(ctx, table, item, opts...)
}

func TestSurveyAndCertificate(t *testing.T) {
	Convey("Given a confirmed participation", t, func() {
		mem := repository.NewMemoryStore()
		f := newFixtureOn(mem, failingAssessments{Store: mem})
		seedActivity(f)
		f.at("2025-01-09T00:00:00Z")
		_, err := f.svc.Register(f.ctx, "6601001", "A1")
		So(err, ShouldBeNil)
		_, err = f.svc.Register(f.ctx, "6601002", "A1")
		So(err, ShouldBeNil)
		f.at("2025-01-10T09:00:00Z")
		_, err = f.svc.ConfirmAttendance(f.ctx, "6601001", "QR-A1")
		So(err, ShouldBeNil)

		Convey("A lost assessment write does not fail the survey", func() {
			p, err := f.svc.SubmitSurvey(f.ctx, "6601001", "A1", allFives(), "")
			So(err, ShouldBeNil)
			So(p.SurveyCompleted, ShouldBeTrue)
			So(mem.Len(repository.Assessments), ShouldEqual, 0)
		})

		Convey("Ratings outside 1..5 are InvalidRating", func() {
			r := allFives()
			r.Organization = 6
			_, err := f.svc.SubmitSurvey(f.ctx, "6601001", "A1", r, "")
			So(hasCode(err, errs.Validation, errs.CodeInvalidRating), ShouldBeTrue)
			So(errs.As(err).Details["field"], ShouldEqual, "organization")

			r = allFives()
			r.Recommendation = 0
			_, err = f.svc.SubmitSurvey(f.ctx, "6601001", "A1", r, "")
			So(hasCode(err, errs.Validation, errs.CodeInvalidRating), ShouldBeTrue)
		})

		Convey("An unconfirmed student cannot survey or claim", func() {
			_, err := f.svc.SubmitSurvey(f.ctx, "6601002", "A1", allFives(), "")
			So(hasCode(err, errs.StateConflict, errs.CodeNotConfirmed), ShouldBeTrue)

			_, err = f.svc.IssueCertificate(f.ctx, "6601002", "A1")
			So(hasCode(err, errs.StateConflict, errs.CodeNotConfirmed), ShouldBeTrue)
		})

		Convey("A certificate needs the survey first", func() {
			_, err := f.svc.IssueCertificate(f.ctx, "6601001", "A1")
			So(hasCode(err, errs.StateConflict, errs.CodeSurveyIncomplete), ShouldBeTrue)
			So(mem.Len(repository.Certificates), ShouldEqual, 0)
		})

		Convey("A certificate without a participation is NotFound", func() {
			_, err := f.svc.IssueCertificate(f.ctx, "6601009", "A1")
			So(hasCode(err, errs.NotFound, errs.CodeNotRegistered), ShouldBeTrue)
		})

		Convey("Surveying without registering is NotRegistered", func() {
			_, err := f.svc.SubmitSurvey(f.ctx, "6601009", "A1", allFives(), "")
			So(hasCode(err, errs.StateConflict, errs.CodeNotRegistered), ShouldBeTrue)
		})
	})
}
