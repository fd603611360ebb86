package storage

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GradeConsolidator/internal/domain"
)

func sampleTable() domain.Table {
	return domain.Table{Records: []domain.Record{
		{Group: "Turma A", Subject: "Matemática", StudentName: "João Silva", Score1: 8, Score2: 7, FinalScore: 7.5},
		{Group: "Turma A", Subject: "Matemática", StudentName: "Ana, a \"Bia\"", Score1: 4, Score2: 5, FinalScore: 4.5},
	}}
}

func TestCSVTableSaveWritesBOMAndHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output", "relatorio_consolidado.csv")
	store := NewCSVTable(path, nil)

	require.NoError(t, store.Save(context.Background(), sampleTable()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, utf8BOM))

	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "group,subject,studentName,score1,score2,finalScore", lines[0])
	assert.Equal(t, "Turma A,Matemática,João Silva,8,7,7.5", lines[1])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestCSVTableRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewCSVTable(filepath.Join(t.TempDir(), "table.csv"), nil)
	require.NoError(t, store.Save(context.Background(), sampleTable()))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), loaded)
}

func TestCSVTableSaveOverwrites(t *testing.T) {
	t.Parallel()

	store := NewCSVTable(filepath.Join(t.TempDir(), "table.csv"), nil)
	require.NoError(t, store.Save(context.Background(), sampleTable()))

	smaller := domain.Table{Records: sampleTable().Records[:1]}
	require.NoError(t, store.Save(context.Background(), smaller))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestCSVTableLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewCSVTable(filepath.Join(t.TempDir(), "absent.csv"), nil).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadCSVRejectsForeignTables(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("Curso,Disciplina,Aluno,AV1,AV2,MediaFinal\n"))
	require.Error(t, err)

	_, err = ReadCSV(strings.NewReader("group,subject,studentName,score1,score2,finalScore\nA,B,C,x,1,1\n"))
	require.Error(t, err)

	_, err = ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestWriteCSVWithoutBOM(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, false))
	assert.Equal(t, "group,subject,studentName,score1,score2,finalScore\n", buf.String())
}
