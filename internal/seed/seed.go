// Package seed loads catalog fixtures (skills, PLOs, locations, activities,
// students, quiz questions and users) into a record store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/pkg/logger"
	"go.yaml.in/yaml/v3"
)

// User is a fixture account. Password is hashed before it is stored.
type User struct {
	model.User
	Password string `json:"password"`
}

// Fixture is the decoded seed document. Keys use the same camelCase names
// as the JSON API.
type Fixture struct {
	Skills        []model.Skill        `json:"skills"`
	PLOs          []model.PLO          `json:"plos"`
	Locations     []model.Location     `json:"locations"`
	Activities    []model.Activity     `json:"activities"`
	Students      []model.Student      `json:"students"`
	QuizQuestions []model.QuizQuestion `json:"quizQuestions"`
	Users         []User               `json:"users"`
}

// Counts reports the records written per table.
type Counts map[repository.Table]int

// Decode reads a YAML fixture. The document is normalized through JSON so
// the model's json tags name the fields.
func Decode(r io.Reader) (Fixture, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return Fixture{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return f, nil
}

// Apply writes every fixture record, overwriting existing ones.
func Apply(ctx context.Context, store repository.Store, f Fixture, log logger.Logger) (Counts, error) {
	if log == nil {
		log = logger.Nop()
	}
	counts := Counts{}
	var err error
	if counts[repository.Skills], err = putAll(ctx, store, repository.Skills, f.Skills); err != nil {
		return counts, err
	}
	if counts[repository.PLOs], err = putAll(ctx, store, repository.PLOs, f.PLOs); err != nil {
		return counts, err
	}
	if counts[repository.Locations], err = putAll(ctx, store, repository.Locations, f.Locations); err != nil {
		return counts, err
	}
	if counts[repository.Activities], err = putAll(ctx, store, repository.Activities, f.Activities); err != nil {
		return counts, err
	}
	if counts[repository.Students], err = putAll(ctx, store, repository.Students, f.Students); err != nil {
		return counts, err
	}
	if counts[repository.QuizQuestions], err = putAll(ctx, store, repository.QuizQuestions, f.QuizQuestions); err != nil {
		return counts, err
	}

	users := make([]model.User, 0, len(f.Users))
	for _, u := range f.Users {
		if u.Password == "" {
			return counts, fmt.Errorf("%w: user %q", ErrMissingPassword, u.UserID)
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return counts, err
		}
		u.User.PasswordHash = hash
		users = append(users, u.User)
	}
	if counts[repository.Users], err = putAll(ctx, store, repository.Users, users); err != nil {
		return counts, err
	}

	for table, n := range counts {
		log.Info(ctx, "seeded table", logger.String("table", string(table)), logger.Int("records", n))
	}
	return counts, nil
}

func putAll[T any](ctx context.Context, store repository.Store, table repository.Table, recs []T) (int, error) {
	for i, rec := range recs {
		if err := repository.PutRecord(ctx, store, table, rec); err != nil {
			return i, fmt.Errorf("%w: %s[%d]: %w", ErrWrite, table, i, err)
		}
	}
	return len(recs), nil
}
