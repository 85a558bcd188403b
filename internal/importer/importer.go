// Package importer loads student records from delimited text files into
// the record store. Header columns may carry either localized or English
// labels, and rows with unparseable grades are skipped rather than
// failing the whole import.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/models"
	"github.com/atinyakov/GradeBook/internal/service"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// defaultBatchSize is how many parsed rows are committed per transaction.
const defaultBatchSize = 1000

// logical column names, in the order fields appear in models.Student.
const (
	colSurname = "surname"
	colName    = "name"
	colFaculty = "faculty"
	colCourse  = "course"
	colGrade   = "grade"
)

// columnAliases maps each logical column to the header labels accepted
// for it. Resolution happens once per import, against the header row.
var columnAliases = map[string][]string{
	colSurname: {"Фамилия", "surname"},
	colName:    {"Имя", "name"},
	colFaculty: {"Факультет", "faculty"},
	colCourse:  {"Курс", "course"},
	colGrade:   {"Оценка", "grade"},
}

// BatchInserter is the slice of the student repository the importer needs.
type BatchInserter interface {
	// InsertBatch stores the given students inside one transaction.
	InsertBatch(ctx context.Context, students []models.Student) error
}

// Importer parses tabular files and feeds them to the record store in
// batches. A crash mid-import leaves already-committed batches persisted;
// the import is deliberately not transactional end-to-end.
type Importer struct {
	repo      BatchInserter
	log       *zap.Logger
	batchSize int
}

// New constructs an Importer writing through the given repository.
func New(repo BatchInserter, log *zap.Logger) *Importer {
	return &Importer{repo: repo, log: log, batchSize: defaultBatchSize}
}

// decoderFor maps an encoding hint to a text decoder. The empty hint
// means UTF-8; a leading byte order mark is tolerated either way.
func decoderFor(hint string) (*encoding.Decoder, error) {
	switch strings.ToLower(hint) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "koi8-r":
		return charmap.KOI8R.NewDecoder(), nil
	default:
		return nil, &apperr.ValidationError{Field: "encoding", Reason: fmt.Sprintf("unsupported hint %q", hint)}
	}
}

// resolveColumns maps each logical column to its index in the header.
// If any logical column has none of its aliases present, the returned
// error is an *apperr.SchemaError listing every missing column together
// with its accepted aliases.
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	colmap := make(map[string]int, len(columnAliases))
	missing := make(map[string][]string)
	for col, aliases := range columnAliases {
		found := false
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				colmap[col] = i
				found = true
				break
			}
		}
		if !found {
			missing[col] = aliases
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.SchemaError{Missing: missing}
	}
	return colmap, nil
}

// LoadCSV reads the file at path, decoded per the encoding hint, and
// inserts its rows into the record store in batches. It returns the
// number of rows actually inserted.
//
// A missing file fails with apperr.ErrNotFound before any parsing.
// A header missing a required column fails with *apperr.SchemaError
// before any insert. Data rows whose grade cell does not parse as an
// integer in range are skipped and counted in the log, not stored.
func (im *Importer) LoadCSV(ctx context.Context, path, encodingHint string) (int, error) {
	dec, err := decoderFor(encodingHint)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", apperr.ErrNotFound, path)
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(dec.Reader(f))
	// Malformed rows are tolerated per-row rather than failing the file.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	colmap, err := resolveColumns(header)
	if err != nil {
		return 0, err
	}

	inserted := 0
	skipped := 0
	batch := make([]models.Student, 0, im.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.repo.InsertBatch(ctx, batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return inserted, fmt.Errorf("read row: %w", err)
		}

		s, ok := parseRow(row, colmap)
		if !ok {
			skipped++
			continue
		}

		batch = append(batch, s)
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, err
	}

	im.log.Info("csv import finished",
		zap.String("path", path),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
	)
	return inserted, nil
}

// parseRow builds a student from one data row. It reports false for rows
// too short to address every mapped column and for rows whose grade does
// not parse as an integer within the allowed range.
func parseRow(row []string, colmap map[string]int) (models.Student, bool) {
	for _, i := range colmap {
		if i >= len(row) {
			return models.Student{}, false
		}
	}

	grade, err := strconv.Atoi(strings.TrimSpace(row[colmap[colGrade]]))
	if err != nil || grade < service.GradeMin || grade > service.GradeMax {
		return models.Student{}, false
	}

	return models.Student{
		Surname: strings.TrimSpace(row[colmap[colSurname]]),
		Name:    strings.TrimSpace(row[colmap[colName]]),
		Faculty: strings.TrimSpace(row[colmap[colFaculty]]),
		Course:  strings.TrimSpace(row[colmap[colCourse]]),
		Grade:   grade,
	}, true
}
