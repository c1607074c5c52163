package querybuilder

import (
	"strconv"
	"strings"
)

// Condition renders one predicate of a WHERE clause, consuming positional
// arguments as it goes.
type Condition interface {
	appendSQL(w *sqlWriter)
}

type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

func (w *sqlWriter) write(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

// expr copies sql, binding each '?' to the next value.
func (w *sqlWriter) expr(sql string, values []any) {
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.buf.WriteByte(sql[i])
	}
}

func (w *sqlWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.write(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.write(" AND ")
		}
		c.appendSQL(w)
	}
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

// ILike matches column case-insensitively against %needle%. LIKE wildcards in
// needle are escaped.
func ILike(column, needle string) Condition {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(needle)
	return compareCondition{column: column, op: "ILIKE", value: "%" + escaped + "%"}
}

func (c compareCondition) appendSQL(w *sqlWriter) {
	w.write(c.column, " ", c.op, " ")
	w.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) appendSQL(w *sqlWriter) {
	if len(c.values) == 0 {
		w.write("1=0")
		return
	}
	w.write(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.write(", ")
		}
		w.bind(v)
	}
	w.write(")")
}

type nullCondition struct {
	column string
	not    bool
}

func IsNull(column string) Condition {
	return nullCondition{column: column}
}

func IsNotNull(column string) Condition {
	return nullCondition{column: column, not: true}
}

func (c nullCondition) appendSQL(w *sqlWriter) {
	if c.not {
		w.write(c.column, " IS NOT NULL")
		return
	}
	w.write(c.column, " IS NULL")
}

type exprCondition struct {
	sql  string
	args []any
}

// Expr embeds raw SQL; each '?' is bound to the matching arg.
func Expr(sql string, args ...any) Condition {
	return exprCondition{sql: sql, args: args}
}

func (c exprCondition) appendSQL(w *sqlWriter) {
	w.expr(c.sql, c.args)
}
