package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// UpsertModels builds a multi-row INSERT ... ON CONFLICT DO UPDATE from
// structs tagged with `db`. Every non-conflict column is updated.
func UpsertModels[T any](table string, conflict []string, models []T) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("upsert into %s needs at least one row", table)
	}

	builder := InsertInto(table).OnConflict(conflict...).DoUpdate()
	for idx, model := range models {
		cols, vals, err := columnsAndValuesFromModel(model)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", idx, err)
		}
		if idx == 0 {
			builder.Columns(cols...)
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

// UpsertModel is UpsertModels for one row.
func UpsertModel(table string, conflict []string, model any) (string, []any, error) {
	return UpsertModels(table, conflict, []any{model})
}

// Columns returns the db column names of a tagged struct, in field order.
func Columns(model any) []string {
	cols, _, err := columnsAndValuesFromModel(model)
	if err != nil {
		return nil
	}
	return cols
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := strings.TrimSpace(field.Tag.Get("db"))
		if tag == "" || tag == "-" {
			continue
		}
		col := strings.TrimSpace(strings.Split(tag, ",")[0])
		if col == "" || col == "-" {
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
