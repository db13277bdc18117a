// Package duck is a DuckDB-backed record store that consumes filter
// snapshots: it compiles them to parameterized WHERE clauses and serves
// counts and pages of matching records.
package duck

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"sift/compile"
	nt "sift/entity"
)

// Duck wraps an in-memory duckdb holding one table of records, with one
// typed column per schema field.
type Duck struct {
	db       *sql.DB
	logger   nt.Logger
	schema   nt.Schema
	columns  map[string]string
	fields   []string
	where    compile.Clause
	hasWhere bool
	filename string
}

// New opens an in-memory duckdb and creates the records table. The columns
// map names a backend column per schema field.
func New(lgr nt.Logger, schema nt.Schema, columns map[string]string) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = &Duck{
		db:      db,
		logger:  lgr,
		schema:  schema,
		columns: columns,
		fields:  orderedFields(columns),
	}

	err = dk.createTable()
	return
}

// Close closes the database.
func (dk *Duck) Close() {
	dk.db.Close()
}

// Name returns the name of the loaded file.
func (dk *Duck) Name() string {
	return dk.filename
}

// Load reads an NDJSON file into the records table, promoting schema
// fields into their typed columns and keeping the raw line.
func (dk *Duck) Load(path string) (err error) {

	file, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", path)
		return
	}
	defer file.Close()
	dk.filename = path

	insert := dk.insertStatement()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lineNum++

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			// skip malformed lines
			continue
		}

		args := []any{lineNum, line}
		for _, field := range dk.fields {
			args = append(args, convert(record[field], dk.schema.KindOf(field)))
		}

		_, err = dk.db.Exec(insert, args...)
		if err != nil {
			err = errors.Wrapf(err, "failed to insert line %d", lineNum)
			return
		}
	}

	err = errors.Wrapf(scanner.Err(), "failed to scan %s", path)
	return
}

// SetView compiles a filter snapshot into the store's WHERE clause.
// A nil or fully-unhandled filter matches everything.
func (dk *Duck) SetView(root *nt.Group) (err error) {

	dk.hasWhere = false
	dk.where = compile.Clause{}
	if root == nil {
		return nil
	}

	cpl := compile.Compiler{
		Schema:  dk.schema,
		Columns: dk.columns,
		Backend: &compile.SQL{},
	}

	pred, ok := cpl.Compile(root)
	if !ok {
		return nil
	}

	cls, isClause := pred.(compile.Clause)
	if !isClause {
		return errors.Errorf("expected a sql clause, got %T", pred)
	}

	dk.where = cls
	dk.hasWhere = true
	return nil
}

// GetView returns the queryable fields and the filtered record count.
func (dk *Duck) GetView() (fields []nt.Field, count int, err error) {

	for _, field := range dk.fields {
		fields = append(fields, nt.Field{
			Name: dk.columns[field],
			Type: columnType(dk.schema.KindOf(field)),
		})
	}

	where, args := dk.whereClause()
	query := fmt.Sprintf("SELECT COUNT(*) FROM records %s", where)

	err = dk.db.QueryRow(query, args...).Scan(&count)
	err = errors.Wrapf(err, "failed to count records")
	return
}

// GetPage returns a page of filtered records in id order.
func (dk *Duck) GetPage(offset, size int) (lines []nt.Line, err error) {

	where, args := dk.whereClause()
	query := fmt.Sprintf("SELECT * FROM records %s ORDER BY id LIMIT %d OFFSET %d", where, size, offset)

	rows, err := dk.db.Query(query, args...)
	if err != nil {
		err = errors.Wrapf(err, "failed to query records")
		return
	}
	defer rows.Close()

	count, err := columnCount(rows)
	if err != nil {
		return
	}

	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, count)
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		values := make([]nt.Value, count)
		for i, val := range vals {
			values[i] = nt.Value{Raw: val}
		}

		lines = append(lines, nt.Line{
			Id:     values[0].String(),
			Values: values,
		})
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating rows")
	return
}

func (dk *Duck) whereClause() (string, []any) {

	if !dk.hasWhere {
		return "", nil
	}
	return "WHERE " + dk.where.Text, dk.where.Args
}

func (dk *Duck) createTable() (err error) {

	cols := []string{"id INTEGER PRIMARY KEY", "raw VARCHAR"}
	for _, field := range dk.fields {
		cols = append(cols, fmt.Sprintf("%s %s", dk.columns[field], columnType(dk.schema.KindOf(field))))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS records (%s)", strings.Join(cols, ", "))

	_, err = dk.db.Exec(query)
	err = errors.Wrapf(err, "failed to create records table")
	return
}

func (dk *Duck) insertStatement() string {

	cols := []string{"id", "raw"}
	marks := []string{"?", "?"}
	for _, field := range dk.fields {
		cols = append(cols, dk.columns[field])
		marks = append(marks, "?")
	}

	return fmt.Sprintf("INSERT INTO records (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// orderedFields keeps column order deterministic across runs.
func orderedFields(columns map[string]string) []string {

	fields := make([]string, 0, len(columns))
	for field := range columns {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func columnType(knd nt.Kind) string {

	switch knd {
	case nt.KindNumber:
		return "DOUBLE"
	case nt.KindBoolean:
		return "BOOLEAN"
	case nt.KindDate:
		return "TIMESTAMP"
	}
	return "VARCHAR"
}

// convert coerces a decoded json value to its column type, or nil when it
// does not fit.
func convert(val any, knd nt.Kind) any {

	if val == nil {
		return nil
	}

	switch knd {
	case nt.KindNumber:
		num, ok := val.(float64)
		if !ok {
			return nil
		}
		return num
	case nt.KindBoolean:
		b, ok := val.(bool)
		if !ok {
			return nil
		}
		return b
	case nt.KindDate:
		str, ok := val.(string)
		if !ok {
			return nil
		}
		ts, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil
		}
		return ts
	}

	return fmt.Sprintf("%v", val)
}

func columnCount(rows *sql.Rows) (int, error) {

	cols, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get cols from query rows")
	}
	return len(cols), nil
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {

	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}
