package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/GradeBook/internal/apperr"
	"github.com/atinyakov/GradeBook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// fakeBatchInserter records every batch it receives.
type fakeBatchInserter struct {
	batches  [][]models.Student
	inserted []models.Student
	err      error
	failFrom int // fail batches with index >= failFrom; -1 never fails
}

func newFakeBatchInserter() *fakeBatchInserter {
	return &fakeBatchInserter{failFrom: -1}
}

func (f *fakeBatchInserter) InsertBatch(ctx context.Context, students []models.Student) error {
	if f.failFrom >= 0 && len(f.batches) >= f.failFrom {
		return f.err
	}
	batch := make([]models.Student, len(students))
	copy(batch, students)
	f.batches = append(f.batches, batch)
	f.inserted = append(f.inserted, batch...)
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV_CyrillicHeaders(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "Фамилия,Имя,Факультет,Курс,Оценка\n"+
		"Иванов,Иван,ФизФак,Матан,85\n"+
		"Петров,Петр,ФизФак,Матан,70\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	require.Len(t, repo.inserted, 2)
	assert.Equal(t, models.Student{Surname: "Иванов", Name: "Иван", Faculty: "ФизФак", Course: "Матан", Grade: 85}, repo.inserted[0])
}

func TestLoadCSV_EnglishAndMixedHeaders(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	// Each logical column accepts either its localized or English label.
	path := writeCSV(t, "surname,Имя,faculty,Курс,grade\n"+
		"Smith,John,Physics,Calculus,90\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, "Smith", repo.inserted[0].Surname)
	assert.Equal(t, "John", repo.inserted[0].Name)
}

func TestLoadCSV_BadGradeRowsSkipped(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "Фамилия,Имя,Факультет,Курс,Оценка\n"+
		"Иванов,Иван,ФизФак,Матан,85\n"+
		"Петров,Петр,ФизФак,Матан,abc\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted, "the non-integer grade row must be skipped")
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "Иванов", repo.inserted[0].Surname)
}

func TestLoadCSV_OutOfRangeGradeSkipped(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "surname,name,faculty,course,grade\n"+
		"A,B,F,C,101\n"+
		"D,E,F,C,-1\n"+
		"G,H,F,C,100\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 100, repo.inserted[0].Grade)
}

func TestLoadCSV_FieldsTrimmed(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "surname,name,faculty,course,grade\n"+
		"  Иванов ,\tИван , ФизФак,Матан ,  85 \n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	s := repo.inserted[0]
	assert.Equal(t, "Иванов", s.Surname)
	assert.Equal(t, "Иван", s.Name)
	assert.Equal(t, "ФизФак", s.Faculty)
	assert.Equal(t, "Матан", s.Course)
	assert.Equal(t, 85, s.Grade)
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "Фамилия,Имя,Факультет,Курс\n"+
		"Иванов,Иван,ФизФак,Матан\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	var sErr *apperr.SchemaError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, 0, inserted, "no rows may be inserted on a schema failure")
	assert.Empty(t, repo.inserted)

	// The failure names the missing logical column and its aliases.
	require.Contains(t, sErr.Missing, "grade")
	assert.ElementsMatch(t, []string{"Оценка", "grade"}, sErr.Missing["grade"])
	assert.Contains(t, sErr.Error(), "grade")
	assert.Contains(t, sErr.Error(), "Оценка")
}

func TestLoadCSV_MissingFile(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	_, err := im.LoadCSV(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, repo.batches)
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	inserted, err := im.LoadCSV(context.Background(), writeCSV(t, ""), "")
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestLoadCSV_UTF8BOM(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "\xef\xbb\xbfФамилия,Имя,Факультет,Курс,Оценка\n"+
		"Иванов,Иван,ФизФак,Матан,85\n")

	inserted, err := im.LoadCSV(context.Background(), path, "utf-8-sig")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestLoadCSV_Windows1251(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	utf8Content := "Фамилия,Имя,Факультет,Курс,Оценка\nИванов,Иван,ФизФак,Матан,85\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(utf8Content)
	require.NoError(t, err)
	path := writeCSV(t, encoded)

	inserted, err := im.LoadCSV(context.Background(), path, "windows-1251")
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	assert.Equal(t, "Иванов", repo.inserted[0].Surname)
}

func TestLoadCSV_UnknownEncodingHint(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "surname,name,faculty,course,grade\n")
	_, err := im.LoadCSV(context.Background(), path, "ebcdic")
	var vErr *apperr.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "encoding", vErr.Field)
}

func TestLoadCSV_Batching(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())
	im.batchSize = 2

	path := writeCSV(t, "surname,name,faculty,course,grade\n"+
		"A,A,F,C,1\nB,B,F,C,2\nC,C,F,C,3\nD,D,F,C,4\nE,E,F,C,5\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)
	require.Len(t, repo.batches, 3)
	assert.Len(t, repo.batches[0], 2)
	assert.Len(t, repo.batches[1], 2)
	assert.Len(t, repo.batches[2], 1)
}

func TestLoadCSV_CommittedBatchesSurviveFailure(t *testing.T) {
	repo := newFakeBatchInserter()
	repo.failFrom = 1
	repo.err = errors.New("connection lost")
	im := New(repo, zap.NewNop())
	im.batchSize = 2

	path := writeCSV(t, "surname,name,faculty,course,grade\n"+
		"A,A,F,C,1\nB,B,F,C,2\nC,C,F,C,3\nD,D,F,C,4\n")

	// The import is not transactional end-to-end: the first committed
	// batch stays persisted and is reflected in the count.
	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.Error(t, err)
	assert.Equal(t, 2, inserted)
	require.Len(t, repo.batches, 1)
}

func TestLoadCSV_ShortRowsSkipped(t *testing.T) {
	repo := newFakeBatchInserter()
	im := New(repo, zap.NewNop())

	path := writeCSV(t, "surname,name,faculty,course,grade\n"+
		"A,B\n"+
		"C,D,F,Course,55\n")

	inserted, err := im.LoadCSV(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, "C", repo.inserted[0].Surname)
}
