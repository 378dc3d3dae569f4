package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names from the "db" tags of T,
// following embedded structs. Call it once when a store is built.
//
//	columns := ExtractDBColumns[views.View]()
//	// ["id", "user_id", "report_id", "name", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	return meta.columns()
}

// fieldInfo describes one tagged or embedded struct field.
type fieldInfo struct {
	index    int
	column   string
	embedded *typeMetadata
}

type typeMetadata struct {
	fields []fieldInfo
}

func (m *typeMetadata) columns() []string {
	var cols []string
	for _, f := range m.fields {
		if f.embedded != nil {
			cols = append(cols, f.embedded.columns()...)
			continue
		}
		cols = append(cols, f.column)
	}
	return cols
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

// metadataFor returns the cached field layout of t.
func metadataFor(t reflect.Type) *typeMetadata {
	if t == nil {
		return &typeMetadata{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				meta.fields = append(meta.fields, fieldInfo{index: i, embedded: metadataFor(field.Type)})
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, column: tag})
		}
	}

	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

// StructToMap converts a struct to a column map using its "db" tags.
// Columns listed in omit are left out.
func StructToMap(v any, omit ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	fill(res, rv, metadataFor(rv.Type()))
	for _, col := range omit {
		delete(res, col)
	}
	return res
}

func fill(res map[string]any, rv reflect.Value, meta *typeMetadata) {
	for _, f := range meta.fields {
		fv := rv.Field(f.index)
		if f.embedded != nil {
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			fill(res, fv, f.embedded)
			continue
		}
		res[f.column] = fv.Interface()
	}
}
