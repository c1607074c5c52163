package querybuilder

import (
	"fmt"
	"strings"
)

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row; call repeatedly for multi-row inserts.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflictUpdate sets an upsert suffix that overwrites every non-key column
// with the incoming value.
func (b *InsertBuilder) OnConflictUpdate(keys ...string) *InsertBuilder {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	sets := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		if _, isKey := keySet[col]; isKey {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}

	target := "ON CONFLICT (" + strings.Join(keys, ", ") + ")"
	if len(sets) == 0 {
		b.suffix = target + " DO NOTHING"
		return b
	}
	b.suffix = target + " DO UPDATE SET " + strings.Join(sets, ", ")
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w sqlWriter
	w.args = make([]any, 0, len(b.rows)*len(b.columns))
	w.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.write(", ")
		}
		w.write("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.write(", ")
			}
			w.bind(value)
		}
		w.write(")")
	}
	if b.suffix != "" {
		w.write(" ", b.suffix)
	}

	return w.buf.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without conditions is not allowed")
	}

	var w sqlWriter
	w.write("DELETE FROM ", b.table)
	w.where(b.where)
	return w.buf.String(), w.args, nil
}
