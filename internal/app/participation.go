package service

import (
	"context"
	"errors"
	"strings"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/eligibility"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/pkg/logger"
	"github.com/achievehub/achievehub/pkg/metrics"
)

// RegisterResult is returned by Register.
type RegisterResult struct {
	Participation model.Participation `json:"participation"`
	ActivityName  string              `json:"activityName"`
}

// ConfirmResult is returned by the attendance confirmations.
type ConfirmResult struct {
	Participation model.Participation `json:"participation"`
	ActivityID    string              `json:"activityId"`
	ActivityName  string              `json:"activityName"`
}

// CertificateResult is returned by IssueCertificate.
type CertificateResult struct {
	model.Certificate
	StudentName  string `json:"studentName,omitempty"`
	ActivityName string `json:"activityName,omitempty"`
	EndDateTime  string `json:"endDateTime,omitempty"`
	Existing     bool   `json:"existing"`
}

func activityNotFound(op string) *errs.Error {
	return errs.E(op, errs.NotFound, errs.CodeActivityNotFound, "activity not found")
}

func studentNotFound(op string) *errs.Error {
	return errs.E(op, errs.NotFound, errs.CodeStudentNotFound, "student not found")
}

// Register creates a participation for a future activity.
func (s *Service) Register(ctx context.Context, studentID, activityID string) (res RegisterResult, err error) {
	const op = "service.Register"
	defer func() { metrics.RecordRegistration(outcome(err)) }()

	if studentID, err = required(op, "studentId", studentID); err != nil {
		return res, err
	}
	if activityID, err = required(op, "activityId", activityID); err != nil {
		return res, err
	}

	activity, err := load[model.Activity](ctx, s, op, repository.Activities, activityNotFound(op), activityID)
	if err != nil {
		return res, err
	}
	if _, err := load[model.Student](ctx, s, op, repository.Students, studentNotFound(op), studentID); err != nil {
		return res, err
	}

	existing, err := find[model.Participation](ctx, s, op, repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		return res, err
	}
	if existing != nil {
		return res, alreadyRegistered(op)
	}

	start, err := s.parseTime(op, "startDateTime", activity.StartDateTime)
	if err != nil {
		return res, err
	}
	if err := eligibility.CheckRegistrationOpen(start, s.now()); err != nil {
		return res, err
	}

	now := s.stamp()
	p := model.Participation{
		StudentID:       studentID,
		ActivityID:      activityID,
		ParticipationID: s.newID(),
		RegisteredAt:    now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = repository.PutRecord(ctx, s.store, repository.ActivityParticipations, p, repository.IfNotExists())
	if errors.Is(err, repository.ErrAlreadyExists) {
		return res, alreadyRegistered(op)
	}
	if err != nil {
		return res, errs.StoreFailure(op, err)
	}

	s.logger.Info(ctx, "student registered",
		logger.String("studentId", studentID),
		logger.String("activityId", activityID))
	return RegisterResult{Participation: p, ActivityName: activity.Name}, nil
}

func alreadyRegistered(op string) *errs.Error {
	return errs.E(op, errs.StateConflict, errs.CodeAlreadyRegistered, "student is already registered for this activity")
}

// ConfirmAttendance confirms attendance with the activity's QR code.
func (s *Service) ConfirmAttendance(ctx context.Context, studentID, code string) (res ConfirmResult, err error) {
	const op = "service.ConfirmAttendance"
	defer func() { metrics.RecordConfirmation(model.ConfirmQR, outcome(err)) }()

	if studentID, err = required(op, "studentId", studentID); err != nil {
		return res, err
	}
	if code, err = required(op, "code", code); err != nil {
		return res, err
	}

	matches, err := repository.ScanRecords[model.Activity](ctx, s.store, repository.Activities, repository.Eq("qrCode", code))
	if err != nil {
		return res, errs.StoreFailure(op, err)
	}
	if len(matches) == 0 {
		return res, errs.E(op, errs.NotFound, errs.CodeCodeNotFound, "no activity matches this code")
	}
	activity := matches[0]

	p, err := s.confirm(ctx, op, studentID, activity, map[string]any{"confirmMethod": model.ConfirmQR})
	if err != nil {
		return res, err
	}
	return ConfirmResult{Participation: p, ActivityID: activity.ActivityID, ActivityName: activity.Name}, nil
}

// ConfirmAttendanceGeo confirms attendance from a position inside the
// activity location's geofence, within the same time window as QR codes.
func (s *Service) ConfirmAttendanceGeo(ctx context.Context, studentID, activityID string, lat, lon float64) (res ConfirmResult, err error) {
	const op = "service.ConfirmAttendanceGeo"
	defer func() { metrics.RecordConfirmation(model.ConfirmGeo, outcome(err)) }()

	if studentID, err = required(op, "studentId", studentID); err != nil {
		return res, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return res, errs.E(op, errs.Validation, errs.CodeInvalidInput, "latitude or longitude out of range")
	}

	activity, err := load[model.Activity](ctx, s, op, repository.Activities, activityNotFound(op), activityID)
	if err != nil {
		return res, err
	}
	if activity.LocationID == "" {
		return res, errs.E(op, errs.Validation, errs.CodeInvalidInput, "activity has no geolocated venue")
	}
	loc, err := load[model.Location](ctx, s, op, repository.Locations,
		errs.E(op, errs.NotFound, errs.CodeNotFound, "activity location not found"), activity.LocationID)
	if err != nil {
		return res, err
	}

	// State checks precede the geofence so a repeat scan reports AlreadyConfirmed.
	p, err := find[model.Participation](ctx, s, op, repository.ActivityParticipations, studentID, activity.ActivityID)
	if err != nil {
		return res, err
	}
	if err := eligibility.CanConfirm(p); err != nil {
		return res, err
	}
	if err := eligibility.CheckWithinRadius(loc, lat, lon, s.geoRadiusMeters); err != nil {
		return res, err
	}

	updated, err := s.confirm(ctx, op, studentID, activity, map[string]any{
		"confirmMethod": model.ConfirmGeo,
		"confirmLat":    lat,
		"confirmLon":    lon,
	})
	if err != nil {
		return res, err
	}
	return ConfirmResult{Participation: updated, ActivityID: activity.ActivityID, ActivityName: activity.Name}, nil
}

// confirm runs the registration, state and window checks and flips
// isConfirmed with a compare-and-swap.
func (s *Service) confirm(ctx context.Context, op, studentID string, activity model.Activity, extra map[string]any) (model.Participation, error) {
	p, err := find[model.Participation](ctx, s, op, repository.ActivityParticipations, studentID, activity.ActivityID)
	if err != nil {
		return model.Participation{}, err
	}
	if err := eligibility.CanConfirm(p); err != nil {
		return model.Participation{}, err
	}

	start, err := s.parseTime(op, "startDateTime", activity.StartDateTime)
	if err != nil {
		return model.Participation{}, err
	}
	if err := eligibility.CheckConfirmWindow(start, s.now(), s.confirmWindow); err != nil {
		return model.Participation{}, err
	}

	now := s.stamp()
	changes := map[string]any{"isConfirmed": true, "confirmedAt": now, "updatedAt": now}
	for k, v := range extra {
		changes[k] = v
	}
	key, err := s.key(op, repository.ActivityParticipations, studentID, activity.ActivityID)
	if err != nil {
		return model.Participation{}, err
	}
	updated, err := repository.UpdateRecord[model.Participation](ctx, s.store, repository.ActivityParticipations, key,
		changes, repository.Eq("isConfirmed", false))
	switch {
	case isCondition(err):
		return model.Participation{}, errs.E(op, errs.StateConflict, errs.CodeAlreadyConfirmed, "attendance already confirmed")
	case errors.Is(err, repository.ErrNotFound):
		return model.Participation{}, errs.E(op, errs.StateConflict, errs.CodeNotRegistered, "student is not registered for this activity")
	case err != nil:
		return model.Participation{}, errs.StoreFailure(op, err)
	}

	s.logger.Info(ctx, "attendance confirmed",
		logger.String("studentId", studentID),
		logger.String("activityId", activity.ActivityID),
		logger.Any("method", extra["confirmMethod"]))
	return updated, nil
}

// SubmitSurvey records survey ratings and marks the survey completed. The
// assessment record is best-effort; losing it does not fail the request.
func (s *Service) SubmitSurvey(ctx context.Context, studentID, activityID string, ratings model.Ratings, comments string) (res model.Participation, err error) {
	const op = "service.SubmitSurvey"
	defer func() { metrics.RecordSurvey(outcome(err)) }()

	if studentID, err = required(op, "studentId", studentID); err != nil {
		return res, err
	}
	if activityID, err = required(op, "activityId", activityID); err != nil {
		return res, err
	}
	if err := eligibility.ValidateRatings(ratings); err != nil {
		return res, err
	}

	p, err := find[model.Participation](ctx, s, op, repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		return res, err
	}
	if err := eligibility.CanSurvey(p); err != nil {
		return res, err
	}

	now := s.stamp()
	assessment := model.Assessment{
		AssessmentID: s.newID(),
		StudentID:    studentID,
		ActivityID:   activityID,
		Ratings:      ratings,
		AverageScore: eligibility.AverageRating(ratings),
		Comments:     strings.TrimSpace(comments),
		SubmittedAt:  now,
	}
	if err := repository.PutRecord(ctx, s.store, repository.Assessments, assessment); err != nil {
		metrics.RecordAssessmentWriteFailure()
		s.logger.Warn(ctx, "assessment not stored",
			logger.String("studentId", studentID),
			logger.String("activityId", activityID),
			logger.Error(err))
	}

	key, err := s.key(op, repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		return res, err
	}
	updated, err := repository.UpdateRecord[model.Participation](ctx, s.store, repository.ActivityParticipations, key,
		map[string]any{"surveyCompleted": true, "surveyCompletedAt": now, "updatedAt": now},
		repository.Eq("isConfirmed", true), repository.Eq("surveyCompleted", false))
	switch {
	case isCondition(err):
		return res, errs.E(op, errs.StateConflict, errs.CodeAlreadySurveyed, "survey already submitted")
	case errors.Is(err, repository.ErrNotFound):
		return res, errs.E(op, errs.StateConflict, errs.CodeNotRegistered, "student is not registered for this activity")
	case err != nil:
		return res, errs.StoreFailure(op, err)
	}
	return updated, nil
}

// IssueCertificate issues the certificate for a completed participation.
// Repeated calls return the first certificate unchanged.
func (s *Service) IssueCertificate(ctx context.Context, studentID, activityID string) (res CertificateResult, err error) {
	const op = "service.IssueCertificate"
	defer func() {
		switch {
		case err != nil:
			metrics.RecordCertificate("rejected")
		case res.Existing:
			metrics.RecordCertificate("existing")
		default:
			metrics.RecordCertificate("issued")
		}
	}()

	if studentID, err = required(op, "studentId", studentID); err != nil {
		return res, err
	}
	if activityID, err = required(op, "activityId", activityID); err != nil {
		return res, err
	}

	p, err := find[model.Participation](ctx, s, op, repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		return res, err
	}
	if err := eligibility.CanCertify(p); err != nil {
		return res, err
	}

	cert, err := find[model.Certificate](ctx, s, op, repository.Certificates, studentID, activityID)
	if err != nil {
		return res, err
	}
	existing := cert != nil
	if !existing {
		fresh := model.Certificate{
			StudentID:     studentID,
			ActivityID:    activityID,
			CertificateID: s.newID(),
			IssuedAt:      s.stamp(),
			Status:        model.CertificateIssued,
		}
		err := repository.PutRecord(ctx, s.store, repository.Certificates, fresh, repository.IfNotExists())
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			// Lost a race with a concurrent request; the stored one wins.
			cert, err = find[model.Certificate](ctx, s, op, repository.Certificates, studentID, activityID)
			if err != nil {
				return res, err
			}
			if cert == nil {
				return res, errs.E(op, errs.Unexpected, errs.CodeInternal, "certificate vanished after conflict")
			}
			existing = true
		case err != nil:
			return res, errs.StoreFailure(op, err)
		default:
			cert = &fresh
		}
	}

	if !p.CertificateClaimed {
		if err := s.markClaimed(ctx, op, studentID, activityID, cert.IssuedAt); err != nil {
			return res, err
		}
	}

	res = CertificateResult{Certificate: *cert, Existing: existing}
	if student, err := find[model.Student](ctx, s, op, repository.Students, studentID); err != nil {
		return res, err
	} else if student != nil {
		res.StudentName = student.Name
	}
	if activity, err := find[model.Activity](ctx, s, op, repository.Activities, activityID); err != nil {
		return res, err
	} else if activity != nil {
		res.ActivityName = activity.Name
		res.EndDateTime = activity.EndDateTime
	}

	if !existing {
		s.logger.Info(ctx, "certificate issued",
			logger.String("studentId", studentID),
			logger.String("activityId", activityID),
			logger.String("certificateId", cert.CertificateID))
	}
	return res, nil
}

func (s *Service) markClaimed(ctx context.Context, op, studentID, activityID, at string) error {
	key, err := s.key(op, repository.ActivityParticipations, studentID, activityID)
	if err != nil {
		return err
	}
	_, err = s.store.Update(ctx, repository.ActivityParticipations, key,
		map[string]any{"certificateClaimed": true, "certificateClaimedAt": at, "updatedAt": s.stamp()},
		repository.Ne("certificateClaimed", true), repository.Eq("surveyCompleted", true))
	if err != nil && !isCondition(err) {
		return errs.StoreFailure(op, err)
	}
	return nil
}

// outcome labels a result for metrics: ok or the error code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return errs.CodeOf(err)
}
