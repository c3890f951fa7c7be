package filter

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Sqlizer возвращает условие WHERE для всего набора.
func (c Criteria) Sqlizer() sq.Sqlizer {
	and := make(sq.And, 0, len(c))
	for _, cond := range c {
		and = append(and, cond.Sqlizer())
	}
	return and
}

// Sqlizer переводит одно условие в выражение squirrel.
func (c Condition) Sqlizer() sq.Sqlizer {
	col := c.Field.Column
	var first any
	if len(c.Values) > 0 {
		first = c.Values[0]
	}

	switch c.Operator {
	case OpEquals:
		return sq.Eq{col: first}
	case OpNotEquals:
		return sq.NotEq{col: first}
	case OpIn:
		return sq.Eq{col: c.Values}
	case OpNotIn:
		return sq.NotEq{col: c.Values}
	case OpSpecified:
		if specified, _ := first.(bool); specified {
			return sq.NotEq{col: nil}
		}
		return sq.Eq{col: nil}
	case OpContains:
		return sq.Like{col: likePattern(first)}
	case OpDoesNotContain:
		return sq.NotLike{col: likePattern(first)}
	case OpGreaterThan:
		return sq.Gt{col: first}
	case OpGreaterThanOrEqual:
		return sq.GtOrEq{col: first}
	case OpLessThan:
		return sq.Lt{col: first}
	case OpLessThanOrEqual:
		return sq.LtOrEq{col: first}
	}
	return sq.Expr("1=0")
}

func likePattern(v any) string {
	s, _ := v.(string)
	return "%" + likeEscaper.Replace(s) + "%"
}
