package labels

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
)

// FileResolver builds a LabelMap from a YAML file or a legacy Markdown document.
type FileResolver struct {
	path       string
	language   string
	assignment string
	logger     *slog.Logger
}

var _ ports.LabelResolver = (*FileResolver)(nil)

// NewFileResolver wires the label source path with the document scraping rules.
func NewFileResolver(path string, cfg config.LabelsConfig, logger *slog.Logger) *FileResolver {
	return &FileResolver{
		path:       path,
		language:   cfg.CodeLanguage,
		assignment: cfg.Assignment,
		logger:     logger,
	}
}

// Resolve never fails: any problem is logged and yields an identity mapping.
func (r *FileResolver) Resolve(ctx context.Context) domain.LabelMap {
	if r.path == "" {
		return domain.EmptyLabelMap()
	}

	m, err := r.load(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("label source unusable, codes will be shown as-is", "path", r.path, "error", err)
		}
		return domain.EmptyLabelMap()
	}

	if r.logger != nil {
		r.logger.Debug("labels loaded", "path", r.path, "groups", len(m.Groups), "subjects", len(m.Subjects))
	}
	return m
}

func (r *FileResolver) load(ctx context.Context) (domain.LabelMap, error) {
	if err := ctx.Err(); err != nil {
		return domain.LabelMap{}, err
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return domain.LabelMap{}, fmt.Errorf("read labels: %w", err)
	}

	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yaml", ".yml":
		return ParseYAML(raw)
	default:
		return ParseDocument(raw, r.language, r.assignment)
	}
}

// ParseYAML decodes a dedicated label file with "turma" and "disciplina" maps.
func ParseYAML(raw []byte) (domain.LabelMap, error) {
	var m domain.LabelMap
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return domain.LabelMap{}, fmt.Errorf("parse labels: %w", err)
	}
	return withDefaults(m), nil
}

// ParseDocument extracts "<assignment> = {...}" from the first fenced code
// block tagged with language and decodes the literal.
func ParseDocument(doc []byte, language, assignment string) (domain.LabelMap, error) {
	code, ok := fencedBlock(doc, language)
	if !ok {
		return domain.LabelMap{}, fmt.Errorf("no %q code block found", language)
	}

	literal, err := extractLiteral(string(code), assignment)
	if err != nil {
		return domain.LabelMap{}, err
	}

	var m domain.LabelMap
	if err := yaml.Unmarshal([]byte(literal), &m); err != nil {
		return domain.LabelMap{}, fmt.Errorf("parse %s literal: %w", assignment, err)
	}
	return withDefaults(m), nil
}

func withDefaults(m domain.LabelMap) domain.LabelMap {
	if m.Groups == nil {
		m.Groups = map[string]string{}
	}
	if m.Subjects == nil {
		m.Subjects = map[string]string{}
	}
	return m
}
