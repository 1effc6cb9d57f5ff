// Package eligibility holds the pure participation rules: the registration
// cut-off, the attendance confirmation window, flag ordering, survey rating
// bounds and the geofence check.
//
// Every rule takes the current time explicitly; nothing here reads a clock or
// a store.
package eligibility

import (
	"math"
	"time"

	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
)

// DefaultConfirmWindow is the half-width of the attendance window.
const DefaultConfirmWindow = 30 * time.Minute

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

const earthRadiusMeters = 6371000.0

// CheckRegistrationOpen fails with ActivityPast unless start is strictly after now.
func CheckRegistrationOpen(start, now time.Time) error {
	if !start.After(now) {
		return errs.E("eligibility.CheckRegistrationOpen", errs.Timing, errs.CodeActivityPast,
			"activity has already started or ended")
	}
	return nil
}

// CheckConfirmWindow enforces now within [start-window, start+window], both
// ends inclusive. A TooEarly error carries the whole minutes until the window
// opens, rounded up.
func CheckConfirmWindow(start, now time.Time, window time.Duration) error {
	const op = "eligibility.CheckConfirmWindow"
	opens := start.Add(-window)
	closes := start.Add(window)

	if now.Before(opens) {
		wait := opens.Sub(now)
		minutes := int(math.Ceil(wait.Minutes()))
		return errs.E(op, errs.Timing, errs.CodeTooEarly, "confirmation window has not opened yet").
			With("minutesRemaining", minutes).
			With("opensAt", opens.Format(time.RFC3339))
	}
	if now.After(closes) {
		return errs.E(op, errs.Timing, errs.CodeTooLate, "confirmation window has closed").
			With("closedAt", closes.Format(time.RFC3339))
	}
	return nil
}

// CanConfirm checks the Registered -> Confirmed transition.
func CanConfirm(p *model.Participation) error {
	const op = "eligibility.CanConfirm"
	if p == nil {
		return errs.E(op, errs.StateConflict, errs.CodeNotRegistered, "student is not registered for this activity")
	}
	if p.IsConfirmed {
		return errs.E(op, errs.StateConflict, errs.CodeAlreadyConfirmed, "attendance already confirmed")
	}
	return nil
}

// CanSurvey checks the Confirmed -> SurveyCompleted transition.
func CanSurvey(p *model.Participation) error {
	const op = "eligibility.CanSurvey"
	switch {
	case p == nil:
		return errs.E(op, errs.StateConflict, errs.CodeNotRegistered, "student is not registered for this activity")
	case !p.IsConfirmed:
		return errs.E(op, errs.StateConflict, errs.CodeNotConfirmed, "attendance has not been confirmed")
	case p.SurveyCompleted:
		return errs.E(op, errs.StateConflict, errs.CodeAlreadySurveyed, "survey already submitted")
	}
	return nil
}

// CanCertify checks the prerequisites of certificate issuance. A missing
// participation is NotFound.
func CanCertify(p *model.Participation) error {
	const op = "eligibility.CanCertify"
	switch {
	case p == nil:
		return errs.E(op, errs.NotFound, errs.CodeNotRegistered, "no participation found for this activity")
	case !p.IsConfirmed:
		return errs.E(op, errs.StateConflict, errs.CodeNotConfirmed, "attendance has not been confirmed")
	case !p.SurveyCompleted:
		return errs.E(op, errs.StateConflict, errs.CodeSurveyIncomplete, "survey has not been completed")
	}
	return nil
}

// ValidateRatings requires every dimension within [MinRating, MaxRating].
// A missing dimension decodes as zero and is rejected the same way.
func ValidateRatings(r model.Ratings) error {
	dims := []struct {
		name  string
		value int
	}{
		{"overall_satisfaction", r.OverallSatisfaction},
		{"content_quality", r.ContentQuality},
		{"instructor_quality", r.InstructorQuality},
		{"organization", r.Organization},
		{"recommendation", r.Recommendation},
	}
	for _, d := range dims {
		if d.value < MinRating || d.value > MaxRating {
			return errs.E("eligibility.ValidateRatings", errs.Validation, errs.CodeInvalidRating,
				"ratings must be integers between 1 and 5").
				With("field", d.name).
				With("value", d.value)
		}
	}
	return nil
}

// AverageRating is the mean of the five dimensions.
func AverageRating(r model.Ratings) float64 {
	sum := r.OverallSatisfaction + r.ContentQuality + r.InstructorQuality + r.Organization + r.Recommendation
	return float64(sum) / 5
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// CheckWithinRadius fails with OutOfRange when the point lies outside the
// location's geofence. defaultRadius applies when the location sets none.
func CheckWithinRadius(loc model.Location, lat, lon, defaultRadius float64) error {
	radius := loc.RadiusMeters
	if radius <= 0 {
		radius = defaultRadius
	}
	d := DistanceMeters(loc.Latitude, loc.Longitude, lat, lon)
	if d > radius {
		return errs.E("eligibility.CheckWithinRadius", errs.Forbidden, errs.CodeOutOfRange,
			"position is outside the activity location").
			With("distanceMeters", math.Round(d)).
			With("radiusMeters", radius)
	}
	return nil
}
