package labels

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/logging"
	"GradeConsolidator/internal/testkit"
)

var labelsCfg = config.LabelsConfig{CodeLanguage: "python", Assignment: "REPORT_MAP"}

const projectDoc = "# Projeto\n\nMapa de turmas:\n\n" +
	"```bash\nREPORT_MAP = {\"turma\": {\"X\": \"wrong block\"}}\n```\n\n" +
	"```python\n" +
	"import os\n" +
	"# REPORT_MAP = {\"turma\": {}}\n" +
	"REPORT_MAP = {\n" +
	"    \"turma\": {\n" +
	"        \"TUR01\": \"Turma A\",  # manhã\n" +
	"        'TUR02': 'Turma {B}',\n" +
	"    },\n" +
	"    \"disciplina\": {\n" +
	"        \"MAT\": \"Matemática #1\",\n" +
	"    },\n" +
	"}\n" +
	"OTHER = {\"turma\": {\"TUR01\": \"overwritten\"}}\n" +
	"```\n"

func TestParseDocument(t *testing.T) {
	t.Parallel()

	m, err := ParseDocument([]byte(projectDoc), "python", "REPORT_MAP")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"TUR01": "Turma A", "TUR02": "Turma {B}"}, m.Groups)
	assert.Equal(t, map[string]string{"MAT": "Matemática #1"}, m.Subjects)
	assert.Equal(t, "Turma A", m.Group("TUR01"))
	assert.Equal(t, "XXX", m.Group("XXX"))
}

func TestParseDocumentFailures(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"no block":        "# nothing here\n",
		"no assignment":   "```python\nOTHER = {}\n```\n",
		"comparison only": "```python\nif REPORT_MAP == {}:\n    pass\n```\n",
		"unbalanced":      "```python\nREPORT_MAP = {\"turma\": {\"A\": \"B\"}\n```\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDocument([]byte(doc), "python", "REPORT_MAP")
			require.Error(t, err)
		})
	}
}

func TestExtractLiteral(t *testing.T) {
	t.Parallel()

	lit, err := extractLiteral("MY_REPORT_MAP = {'a': 1}\nREPORT_MAP={\n 'k': \"v}\\\"\", # c\n}\nx = {}", "REPORT_MAP")
	require.NoError(t, err)
	assert.Equal(t, "{  \"k\": \"v}\\\"\"}", lit)
}

func TestParseDocumentEscapedQuotes(t *testing.T) {
	t.Parallel()

	doc := "```python\nREPORT_MAP = {\n" +
		"    'turma': {'T1': 'Sala D\\'Agua', 'T2': 'Turma B', 'T3': 'Diz \"oi\"'},\n" +
		"    \"disciplina\": {\"MAT\": \"C\\u00e1lculo \\\"I\\\"\", \"FIS\": \"F\\\\sica\", 'QUI': \"Qu\\'imica\"},\n" +
		"}\n```\n"

	m, err := ParseDocument([]byte(doc), "python", "REPORT_MAP")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"T1": "Sala D'Agua", "T2": "Turma B", "T3": `Diz "oi"`}, m.Groups)
	assert.Equal(t, map[string]string{"MAT": `Cálculo "I"`, "FIS": `F\sica`, "QUI": "Qu'imica"}, m.Subjects)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	m, err := ParseYAML([]byte("turma:\n  TUR01: Turma A\n"))
	require.NoError(t, err)

	assert.Equal(t, "Turma A", m.Group("TUR01"))
	assert.NotNil(t, m.Subjects)
	assert.Equal(t, "MAT", m.Subject("MAT"))
}

func TestFileResolverDegradesToEmptyMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "projeto.md")
	testkit.WriteFile(t, broken, []byte("```python\nREPORT_MAP = {\n```\n"))

	for _, path := range []string{"", filepath.Join(dir, "absent.md"), broken} {
		m := NewFileResolver(path, labelsCfg, logging.Discard()).Resolve(context.Background())
		assert.Empty(t, m.Groups, path)
		assert.Empty(t, m.Subjects, path)
		assert.Equal(t, "TUR01", m.Group("TUR01"))
	}
}

func TestFileResolverReadsBothFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "projeto.md")
	yml := filepath.Join(dir, "labels.yml")
	testkit.WriteFile(t, doc, []byte(projectDoc))
	testkit.WriteFile(t, yml, []byte("disciplina:\n  MAT: Matemática\n"))

	fromDoc := NewFileResolver(doc, labelsCfg, logging.Discard()).Resolve(context.Background())
	assert.Equal(t, "Turma A", fromDoc.Group("TUR01"))

	fromYAML := NewFileResolver(yml, labelsCfg, nil).Resolve(context.Background())
	assert.Equal(t, "Matemática", fromYAML.Subject("MAT"))
}
