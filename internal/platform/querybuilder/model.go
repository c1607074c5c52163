package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModels builds one multi-row INSERT from a slice of structs tagged
// with `db`. Column order follows the struct field order of the first row.
func InsertModels[T any](table string, rows []T, conflictKeys ...string) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("insert %s: no rows", table)
	}

	b := InsertInto(table)
	for i, row := range rows {
		cols, vals, err := columnsAndValues(row)
		if err != nil {
			return "", nil, fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
		if i == 0 {
			b.Columns(cols...)
		}
		b.Values(vals...)
	}
	if len(conflictKeys) > 0 {
		b.OnConflictUpdate(conflictKeys...)
	}
	return b.ToSQL()
}

func columnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		if strings.Contains(field.Tag.Get("insert"), "skip") {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
