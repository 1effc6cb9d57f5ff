package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// GetRecord loads and decodes one record. found is false when the key is absent.
func GetRecord[T any](ctx context.Context, s Store, table Table, key Item) (rec T, found bool, err error) {
	item, err := s.Get(ctx, table, key)
	if errors.Is(err, ErrNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	if err := Decode(item, &rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// PutRecord encodes and writes one record.
func PutRecord[T any](ctx context.Context, s Store, table Table, rec T, opts ...PutOption) error {
	item, err := Encode(rec)
	if err != nil {
		return err
	}
	return s.Put(ctx, table, item, opts...)
}

// UpdateRecord applies changes under conditions and decodes the new record.
func UpdateRecord[T any](ctx context.Context, s Store, table Table, key Item, changes map[string]any, conds ...Condition) (rec T, err error) {
	item, err := s.Update(ctx, table, key, changes, conds...)
	if err != nil {
		return rec, err
	}
	err = Decode(item, &rec)
	return rec, err
}

// QueryRecords decodes every record of a partition.
func QueryRecords[T any](ctx context.Context, s Store, table Table, partition string) ([]T, error) {
	items, err := s.Query(ctx, table, partition)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](items)
}

// ScanRecords decodes every record matching filters.
func ScanRecords[T any](ctx context.Context, s Store, table Table, filters ...Condition) ([]T, error) {
	items, err := s.Scan(ctx, table, filters...)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](items)
}

// Encode converts a record struct to an item.
func Encode(v any) (Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return item, nil
}

// Decode converts an item into a record struct.
func Decode(item Item, out any) error {
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func decodeAll[T any](items []Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var rec T
		if err := Decode(item, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
