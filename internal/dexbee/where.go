package dexbee

import (
	"fmt"
	"strings"
)

// Condition is an opaque query predicate built by the exported constructors.
// Conditions pass through the sandbox unmodified: user code receives the
// constructors as bindings and hands the results back to Table.Where.
type Condition struct {
	op       string // "eq", "gt", "and", "or"
	field    string
	value    any
	children []Condition
}

// Eq matches records whose field equals value.
func Eq(field string, value any) Condition {
	return Condition{op: "eq", field: field, value: value}
}

// Gt matches records whose field is greater than value.
func Gt(field string, value any) Condition {
	return Condition{op: "gt", field: field, value: value}
}

// And matches records satisfying every child condition.
func And(conds ...Condition) Condition {
	return Condition{op: "and", children: conds}
}

// Or matches records satisfying at least one child condition.
func Or(conds ...Condition) Condition {
	return Condition{op: "or", children: conds}
}

// compile renders the condition as a parameterized SQL clause against the
// table's schema. Declared columns compare natively; anything else reaches
// into the document blob.
func (c Condition) compile(schema TableSchema) (string, []any, error) {
	switch c.op {
	case "eq":
		return c.comparison(schema, "=")
	case "gt":
		return c.comparison(schema, ">")
	case "and":
		return c.composite(schema, " AND ")
	case "or":
		return c.composite(schema, " OR ")
	case "":
		return "", nil, fmt.Errorf("empty condition; use one of the exported constructors")
	default:
		return "", nil, fmt.Errorf("unknown condition %q", c.op)
	}
}

func (c Condition) comparison(schema TableSchema, operator string) (string, []any, error) {
	if !identifierRe.MatchString(c.field) {
		return "", nil, fmt.Errorf("invalid field name %q", c.field)
	}
	if _, ok := schema.column(c.field); ok {
		return fmt.Sprintf("%s %s ?", c.field, operator), []any{c.value}, nil
	}
	// Undeclared fields live in the document blob.
	return fmt.Sprintf("json_extract(%s, '$.%s') %s ?", docColumn, c.field, operator),
		[]any{c.value}, nil
}

func (c Condition) composite(schema TableSchema, joiner string) (string, []any, error) {
	if len(c.children) == 0 {
		return "", nil, fmt.Errorf("composite condition requires at least one child")
	}
	clauses := make([]string, 0, len(c.children))
	var args []any
	for _, child := range c.children {
		clause, vals, err := child.compile(schema)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, vals...)
	}
	return "(" + strings.Join(clauses, joiner) + ")", args, nil
}
