// Package repository defines the record store used by the service and its
// DynamoDB and in-memory implementations.
//
// Records travel as attribute-value maps; attributevalue is the one
// serialization layer between Go structs and the store.
package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is one stored record.
type Item = map[string]types.AttributeValue

// Table names a logical table.
type Table string

// Tables.
const (
	Activities             Table = "Activities"
	Students               Table = "Students"
	Skills                 Table = "Skills"
	PLOs                   Table = "PLOs"
	ActivityParticipations Table = "ActivityParticipations"
	CompletedSkills        Table = "CompletedSkills"
	Certificates           Table = "Certificates"
	Assessments            Table = "Assessments"
	QuizQuestions          Table = "QuizQuestions"
	QuizAttempts           Table = "QuizAttempts"
	Users                  Table = "Users"
	Locations              Table = "Locations"
)

// Schema is the key layout of a table. SortKey is empty for single-key tables.
type Schema struct {
	PartitionKey string
	SortKey      string
}

var schemas = map[Table]Schema{
	Activities:             {PartitionKey: "activityId"},
	Students:               {PartitionKey: "studentId"},
	Skills:                 {PartitionKey: "skillId"},
	PLOs:                   {PartitionKey: "plo"},
	ActivityParticipations: {PartitionKey: "studentId", SortKey: "activityId"},
	CompletedSkills:        {PartitionKey: "studentId", SortKey: "skillId"},
	Certificates:           {PartitionKey: "studentId", SortKey: "activityId"},
	Assessments:            {PartitionKey: "assessmentId"},
	QuizQuestions:          {PartitionKey: "questionId"},
	QuizAttempts:           {PartitionKey: "attemptId"},
	Users:                  {PartitionKey: "userId"},
	Locations:              {PartitionKey: "locationId"},
}

// AllTables lists every table in a stable order.
func AllTables() []Table {
	return []Table{
		Activities, Students, Skills, PLOs, ActivityParticipations, CompletedSkills,
		Certificates, Assessments, QuizQuestions, QuizAttempts, Users, Locations,
	}
}

// SchemaOf returns the key layout of t.
func SchemaOf(t Table) (Schema, error) {
	s, ok := schemas[t]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownTable, t)
	}
	return s, nil
}

// Key builds the primary key of a record in t. Composite tables need both
// the partition and the sort value.
func Key(t Table, partition string, sort ...string) (Item, error) {
	s, err := SchemaOf(t)
	if err != nil {
		return nil, err
	}
	if partition == "" {
		return nil, fmt.Errorf("%w: %s.%s is empty", ErrInvalidKey, t, s.PartitionKey)
	}
	key := Item{s.PartitionKey: &types.AttributeValueMemberS{Value: partition}}
	if s.SortKey == "" {
		if len(sort) > 0 {
			return nil, fmt.Errorf("%w: %s has no sort key", ErrInvalidKey, t)
		}
		return key, nil
	}
	if len(sort) != 1 || sort[0] == "" {
		return nil, fmt.Errorf("%w: %s.%s is required", ErrInvalidKey, t, s.SortKey)
	}
	key[s.SortKey] = &types.AttributeValueMemberS{Value: sort[0]}
	return key, nil
}

// Store is the key-value table service. Every call is a single round trip
// and errors are returned as-is, never retried.
type Store interface {
	// Get returns the record under key or ErrNotFound.
	Get(ctx context.Context, table Table, key Item) (Item, error)
	// Put writes a record. With IfNotExists it fails with ErrAlreadyExists
	// when a record with the same key is present.
	Put(ctx context.Context, table Table, item Item, opts ...PutOption) error
	// Update sets attributes on an existing record when every condition
	// holds and returns the new record. It fails with ErrNotFound for a
	// missing record and ErrConditionFailed when a condition does not hold.
	Update(ctx context.Context, table Table, key Item, changes map[string]any, conds ...Condition) (Item, error)
	// Query returns every record of a partition ordered by sort key.
	Query(ctx context.Context, table Table, partition string) ([]Item, error)
	// Scan returns every record matching all filters. Linear in table size.
	Scan(ctx context.Context, table Table, filters ...Condition) ([]Item, error)
}

// PutOption adjusts a Put.
type PutOption func(*putOptions)

type putOptions struct {
	ifNotExists bool
}

// IfNotExists makes the put conditional on the key being absent.
func IfNotExists() PutOption {
	return func(o *putOptions) { o.ifNotExists = true }
}

func collectPutOptions(opts []PutOption) putOptions {
	var o putOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// keyOf extracts the primary key attributes of item.
func keyOf(t Table, item Item) (Item, error) {
	s, err := SchemaOf(t)
	if err != nil {
		return nil, err
	}
	key := Item{}
	for _, name := range []string{s.PartitionKey, s.SortKey} {
		if name == "" {
			continue
		}
		v, ok := item[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s missing", ErrInvalidKey, t, name)
		}
		key[name] = v
	}
	return key, nil
}

// marshalValue converts a Go value to an attribute value.
func marshalValue(v any) (types.AttributeValue, error) {
	if av, ok := v.(types.AttributeValue); ok {
		return av, nil
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return av, nil
}
