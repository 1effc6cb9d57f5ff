package repository

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type condOp int

const (
	opEq condOp = iota
	opNe
	opLt
	opGt
	opExists
	opNotExists
	opContains
)

// Condition is a predicate on one attribute, used both as a scan filter and
// as a write guard. Values are plain Go values.
type Condition struct {
	attr  string
	op    condOp
	value any
}

// Eq holds when attr equals v.
func Eq(attr string, v any) Condition { return Condition{attr: attr, op: opEq, value: v} }

// Ne holds when attr is absent or differs from v.
func Ne(attr string, v any) Condition { return Condition{attr: attr, op: opNe, value: v} }

// Lt holds when attr is present and less than v.
func Lt(attr string, v any) Condition { return Condition{attr: attr, op: opLt, value: v} }

// Gt holds when attr is present and greater than v.
func Gt(attr string, v any) Condition { return Condition{attr: attr, op: opGt, value: v} }

// Exists holds when attr is present.
func Exists(attr string) Condition { return Condition{attr: attr, op: opExists} }

// NotExists holds when attr is absent.
func NotExists(attr string) Condition { return Condition{attr: attr, op: opNotExists} }

// Contains holds when the list or set attr has element v, or the string attr has substring v.
func Contains(attr string, v string) Condition {
	return Condition{attr: attr, op: opContains, value: v}
}

func (c Condition) String() string {
	names := [...]string{"=", "<>", "<", ">", "exists", "not_exists", "contains"}
	return fmt.Sprintf("%s %s %v", c.attr, names[c.op], c.value)
}

// builder renders the condition for the DynamoDB expression package.
func (c Condition) builder() expression.ConditionBuilder {
	name := expression.Name(c.attr)
	switch c.op {
	case opNe:
		return name.NotEqual(expression.Value(c.value))
	case opLt:
		return name.LessThan(expression.Value(c.value))
	case opGt:
		return name.GreaterThan(expression.Value(c.value))
	case opExists:
		return name.AttributeExists()
	case opNotExists:
		return name.AttributeNotExists()
	case opContains:
		s, _ := c.value.(string)
		return name.Contains(s)
	default:
		return name.Equal(expression.Value(c.value))
	}
}

// combine ANDs conditions into one builder. ok is false for an empty list.
func combine(conds []Condition) (expression.ConditionBuilder, bool) {
	if len(conds) == 0 {
		return expression.ConditionBuilder{}, false
	}
	b := conds[0].builder()
	if len(conds) == 1 {
		return b, true
	}
	rest := make([]expression.ConditionBuilder, 0, len(conds)-1)
	for _, c := range conds[1:] {
		rest = append(rest, c.builder())
	}
	return b.And(rest[0], rest[1:]...), true
}

// matches evaluates the condition against item with DynamoDB semantics.
func (c Condition) matches(item Item) (bool, error) {
	got, present := item[c.attr]
	switch c.op {
	case opExists:
		return present, nil
	case opNotExists:
		return !present, nil
	}

	want, err := marshalValue(c.value)
	if err != nil {
		return false, err
	}

	switch c.op {
	case opEq:
		return present && equalValues(got, want), nil
	case opNe:
		return !present || !equalValues(got, want), nil
	case opLt, opGt:
		if !present {
			return false, nil
		}
		cmp, ok := compareValues(got, want)
		if !ok {
			return false, nil
		}
		if c.op == opLt {
			return cmp < 0, nil
		}
		return cmp > 0, nil
	case opContains:
		return present && containsValue(got, want), nil
	}
	return false, fmt.Errorf("%w: unsupported condition %s", ErrEncode, c)
}

func matchAll(item Item, conds []Condition) (bool, error) {
	for _, c := range conds {
		ok, err := c.matches(item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func equalValues(a, b types.AttributeValue) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two scalars of the same type. Numbers compare numerically.
func compareValues(a, b types.AttributeValue) (int, bool) {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		x, err1 := strconv.ParseFloat(av.Value, 64)
		y, err2 := strconv.ParseFloat(bv.Value, 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		if !ok || av.Value != bv.Value {
			return 1, ok
		}
		return 0, true
	}
	return 0, false
}

func containsValue(container, elem types.AttributeValue) bool {
	switch cv := container.(type) {
	case *types.AttributeValueMemberS:
		s, ok := elem.(*types.AttributeValueMemberS)
		return ok && strings.Contains(cv.Value, s.Value)
	case *types.AttributeValueMemberSS:
		s, ok := elem.(*types.AttributeValueMemberS)
		if !ok {
			return false
		}
		for _, v := range cv.Value {
			if v == s.Value {
				return true
			}
		}
	case *types.AttributeValueMemberL:
		for _, v := range cv.Value {
			if equalValues(v, elem) {
				return true
			}
		}
	}
	return false
}
