package scanner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

type Queryer interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// type-safe scanner for pgx.Rows
//
// # example
//
//	type reminderRow struct {
//		ReminderId string
//		Content    string
//	}
//
//	func all(ctx context.Context, conn scanner.Queryer) ([]reminderRow, error) {
//		return scanner.New[reminderRow]().QueryAll(
//			ctx, conn, `select "reminder_id", "content" from "reminder"`,
//		)
//	}
//
// # mapping rule
//
// columns are mapped into
//
//  1. field with tag `sql:"column_name"`
//  2. or, field named as same as the column name
//  3. or, field which has a name in CamelCase version of column name.
//
// Nullable columns should be mapped into pointer fields.
//
// When T is a primitive type, time.Time or []byte,
// the query should have just one column.
type Scanner[T any] interface {
	// scan all rows in pgx.Rows and convert to []T
	ScanAll(pgx.Rows) ([]T, error)

	// scan all rows in response of query.
	QueryAll(context.Context, Queryer, string, ...interface{}) ([]T, error)
}

type scanner[T any] struct {
	mapByTag       map[string]string
	mapByFieldName map[string]string
}

func New[T any]() Scanner[T] {
	tval := reflect.TypeOf(*new(T))

	if tval.AssignableTo(reflect.TypeOf(time.Time{})) || tval.AssignableTo(reflect.TypeOf([]byte{})) {
		return singleColumnScanner[T]{}
	}
	if tval.Kind() != reflect.Struct {
		return singleColumnScanner[T]{}
	}

	mapByTag := map[string]string{}
	mapByFieldName := map[string]string{}
	for i := 0; i < tval.NumField(); i++ {
		f := tval.Field(i)
		mapByFieldName[f.Name] = f.Name
		if tag, ok := f.Tag.Lookup("sql"); ok {
			mapByTag[tag] = f.Name
		}
	}

	return &scanner[T]{mapByTag: mapByTag, mapByFieldName: mapByFieldName}
}

func camel(s string) string {
	b := &strings.Builder{}
	for _, ss := range strings.Split(s, "_") {
		if len(ss) == 0 {
			b.WriteString("_")
			continue
		}
		b.WriteString(strings.ToUpper(ss[0:1]))
		b.WriteString(ss[1:])
	}
	return b.String()
}

func (s *scanner[T]) fieldFor(col string) (string, bool) {
	if f, ok := s.mapByTag[col]; ok {
		return f, true
	}
	if f, ok := s.mapByFieldName[col]; ok {
		return f, true
	}
	f, ok := s.mapByFieldName[camel(col)]
	return f, ok
}

func (s *scanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	cols := rows.FieldDescriptions()
	fields := make([]string, 0, len(cols))
	for _, fd := range cols {
		col := string(fd.Name)
		f, ok := s.fieldFor(col)
		if !ok {
			return nil, fmt.Errorf(
				`field for column "%s" is not found in type "%T"`, col, *new(T),
			)
		}
		fields = append(fields, f)
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		re := reflect.ValueOf(elem).Elem()

		dest := make([]interface{}, len(fields))
		for nth, f := range fields {
			dest[nth] = re.FieldByName(f).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *scanner[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

type singleColumnScanner[T any] struct{}

func (singleColumnScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	cols := rows.FieldDescriptions()
	if len(cols) != 1 {
		return nil, fmt.Errorf(`too much columns for %T: %d`, *new(T), len(cols))
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		if err := rows.Scan(elem); err != nil {
			return nil, fmt.Errorf(
				`column "%s" (type: %s) can not be scanned into %T: %w`,
				cols[0].Name, typeName(cols[0].DataTypeOID), *elem, err,
			)
		}
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s singleColumnScanner[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

var connInfo = pgtype.NewConnInfo()

func typeName(oid uint32) string {
	if dt, ok := connInfo.DataTypeForOID(oid); ok {
		return dt.Name
	}
	return fmt.Sprintf("undefined oid(%d)", oid)
}
