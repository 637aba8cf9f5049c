package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel starts an insert whose columns and values come from the `db`
// tags of model's exported fields, in declaration order.
func InsertModel(table string, model any) (*InsertBuilder, error) {
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	return InsertInto(table).Columns(cols...).Values(vals...), nil
}

// Columns lists the `db` tag names of model's exported fields.
func Columns(model any) []string {
	cols, _, err := columnsAndValuesFromModel(model)
	if err != nil {
		return nil
	}
	return cols
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
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
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
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
