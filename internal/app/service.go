// Package service implements the activity and skill tracking operations
// behind the HTTP API: participation lifecycle, quizzes, progress and the
// activity catalog.
//
// Every operation is a straight read -> rule -> conditional write sequence
// against the injected record store. The service holds no per-request state.
package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/adapters/upload"
	"github.com/achievehub/achievehub/internal/domain/eligibility"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/scoring"
	"github.com/achievehub/achievehub/pkg/logger"
	"github.com/google/uuid"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, role, studentID string) (string, time.Time, error)
}

// Presigner issues direct upload URLs.
type Presigner interface {
	Presign(ctx context.Context, fileName, fileType string) (upload.Result, error)
}

// Service implements the API dependencies.
type Service struct {
	store   repository.Store
	grader  *scoring.Grader
	tokens  TokenIssuer
	uploads Presigner

	now     func() time.Time
	newID   func() string
	shuffle func(n int, swap func(i, j int))
	loc     *time.Location

	confirmWindow     time.Duration
	geoRadiusMeters   float64
	quizRequired      int
	quizQuestionCount int
	quizTimeLimit     int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the fixed zone used for stamps and naive activity times.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithShuffle overrides the question sampler's shuffle.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) {
		if shuffle != nil {
			s.shuffle = shuffle
		}
	}
}

// WithConfirmWindow sets the attendance window half-width.
func WithConfirmWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.confirmWindow = d
		}
	}
}

// WithGeoRadius sets the default geofence radius in meters.
func WithGeoRadius(meters float64) Option {
	return func(s *Service) {
		if meters > 0 {
			s.geoRadiusMeters = meters
		}
	}
}

// WithQuizPassScore sets the pass threshold for skills that declare none.
func WithQuizPassScore(score int) Option {
	return func(s *Service) {
		s.grader = scoring.NewGrader(scoring.WithDefaultPassScore(score))
	}
}

// WithQuizRequiredActivities sets the confirmed activities needed to unlock a quiz.
func WithQuizRequiredActivities(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.quizRequired = n
		}
	}
}

// WithQuizQuestionCount caps the questions served per quiz.
func WithQuizQuestionCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.quizQuestionCount = n
		}
	}
}

// WithQuizTimeLimit sets the advertised quiz time limit in minutes.
func WithQuizTimeLimit(minutes int) Option {
	return func(s *Service) {
		if minutes > 0 {
			s.quizTimeLimit = minutes
		}
	}
}

// WithTokenIssuer enables login.
func WithTokenIssuer(t TokenIssuer) Option {
	return func(s *Service) {
		if t != nil {
			s.tokens = t
		}
	}
}

// WithPresigner enables upload URLs.
func WithPresigner(p Presigner) Option {
	return func(s *Service) {
		if p != nil {
			s.uploads = p
		}
	}
}

// New constructs a Service. Without WithStore it runs on an empty in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		grader:            scoring.NewGrader(),
		now:               time.Now,
		newID:             uuid.NewString,
		shuffle:           rand.Shuffle,
		loc:               time.FixedZone("UTC+7", 7*60*60),
		confirmWindow:     eligibility.DefaultConfirmWindow,
		geoRadiusMeters:   100,
		quizRequired:      3,
		quizQuestionCount: 10,
		quizTimeLimit:     15,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Store exposes the record store, used by the seeding command.
func (s *Service) Store() repository.Store { return s.store }

// stamp renders the current time in the configured zone.
func (s *Service) stamp() string {
	return eligibility.FormatTime(s.now(), s.loc)
}

func (s *Service) parseTime(op, field, raw string) (time.Time, error) {
	t, err := eligibility.ParseTime(raw, s.loc)
	if err != nil {
		return time.Time{}, errs.Wrap(op, errs.Validation, errs.CodeInvalidInput, err).With("field", field)
	}
	return t, nil
}

func (s *Service) key(op string, table repository.Table, partition string, sort ...string) (repository.Item, error) {
	k, err := repository.Key(table, partition, sort...)
	if err != nil {
		return nil, errs.Wrap(op, errs.Validation, errs.CodeInvalidInput, err)
	}
	return k, nil
}

// load fetches one record. A missing record is reported with notFound.
func load[T any](ctx context.Context, s *Service, op string, table repository.Table, notFound *errs.Error, partition string, sort ...string) (T, error) {
	var zero T
	key, err := s.key(op, table, partition, sort...)
	if err != nil {
		return zero, err
	}
	rec, found, err := repository.GetRecord[T](ctx, s.store, table, key)
	if err != nil {
		return zero, errs.StoreFailure(op, err)
	}
	if !found {
		if notFound == nil {
			return zero, errs.E(op, errs.NotFound, errs.CodeNotFound, "record not found")
		}
		return zero, notFound
	}
	return rec, nil
}

// find fetches one record and reports whether it exists.
func find[T any](ctx context.Context, s *Service, op string, table repository.Table, partition string, sort ...string) (*T, error) {
	key, err := s.key(op, table, partition, sort...)
	if err != nil {
		return nil, err
	}
	rec, found, err := repository.GetRecord[T](ctx, s.store, table, key)
	if err != nil {
		return nil, errs.StoreFailure(op, err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func required(op, field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errs.E(op, errs.Validation, errs.CodeInvalidInput, field+" is required").With("field", field)
	}
	return v, nil
}

func isCondition(err error) bool {
	return errors.Is(err, repository.ErrConditionFailed)
}
