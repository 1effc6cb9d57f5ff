package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/achievehub/achievehub/pkg/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore is the production Store backed by DynamoDB tables.
type DynamoStore struct {
	client DynamoAPI
	opts   options
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore wraps a DynamoDB client.
func NewDynamoStore(client DynamoAPI, opts ...Option) *DynamoStore {
	return &DynamoStore{client: client, opts: collectOptions(opts)}
}

// Get implements Store.
func (d *DynamoStore) Get(ctx context.Context, table Table, key Item) (item Item, err error) {
	name := d.opts.physical(table)
	defer d.track(name, "get", time.Now(), &err)

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(name),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrBackend, name, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return out.Item, nil
}

// Put implements Store.
func (d *DynamoStore) Put(ctx context.Context, table Table, item Item, opts ...PutOption) (err error) {
	name := d.opts.physical(table)
	defer d.track(name, "put", time.Now(), &err)

	s, err := SchemaOf(table)
	if err != nil {
		return err
	}
	in := &dynamodb.PutItemInput{TableName: aws.String(name), Item: item}
	if collectPutOptions(opts).ifNotExists {
		expr, err := expression.NewBuilder().
			WithCondition(expression.Name(s.PartitionKey).AttributeNotExists()).
			Build()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
		in.ConditionExpression = expr.Condition()
		in.ExpressionAttributeNames = expr.Names()
	}

	if _, err := d.client.PutItem(ctx, in); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("%w: put %s: %w", ErrBackend, name, err)
	}
	return nil
}

// Update implements Store. The record must exist; a failed guard is told
// apart from a missing record by the old image DynamoDB returns.
func (d *DynamoStore) Update(ctx context.Context, table Table, key Item, changes map[string]any, conds ...Condition) (item Item, err error) {
	name := d.opts.physical(table)
	defer d.track(name, "update", time.Now(), &err)

	s, err := SchemaOf(table)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: empty update", ErrEncode)
	}

	var upd expression.UpdateBuilder
	for attr, v := range changes {
		if _, isKey := key[attr]; isKey {
			return nil, fmt.Errorf("%w: cannot update key attribute %s", ErrInvalidKey, attr)
		}
		upd = upd.Set(expression.Name(attr), expression.Value(v))
	}
	guard := append([]Condition{Exists(s.PartitionKey)}, conds...)
	cond, _ := combine(guard)

	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(name),
		Key:                                 key,
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if len(ccf.Item) == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("%w: update %s: %w", ErrBackend, name, err)
	}
	return out.Attributes, nil
}

// Query implements Store, following pagination to the end of the partition.
func (d *DynamoStore) Query(ctx context.Context, table Table, partition string) (items []Item, err error) {
	name := d.opts.physical(table)
	defer d.track(name, "query", time.Now(), &err)

	s, err := SchemaOf(table)
	if err != nil {
		return nil, err
	}
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(s.PartitionKey).Equal(expression.Value(partition))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	p := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:                 aws.String(name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: query %s: %w", ErrBackend, name, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// Scan implements Store, following pagination over the whole table.
func (d *DynamoStore) Scan(ctx context.Context, table Table, filters ...Condition) (items []Item, err error) {
	name := d.opts.physical(table)
	defer d.track(name, "scan", time.Now(), &err)

	if _, err := SchemaOf(table); err != nil {
		return nil, err
	}
	in := &dynamodb.ScanInput{TableName: aws.String(name)}
	if cond, ok := combine(filters); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		in.FilterExpression = expr.Filter()
		in.ExpressionAttributeNames = expr.Names()
		in.ExpressionAttributeValues = expr.Values()
	}

	p := dynamodb.NewScanPaginator(d.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", ErrBackend, name, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (d *DynamoStore) track(table, op string, start time.Time, errp *error) {
	observe(table, op, start)
	if err := *errp; err != nil && errors.Is(err, ErrBackend) {
		metrics.RecordStoreError(table, op)
	}
}
