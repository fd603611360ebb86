package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "GRADES_CONFIG"
	envPrefix     = "GRADES"
)

// Config holds high-level settings required across the application.
// Environment overrides are read only from GRADES_<SECTION>_<FIELD>, e.g.
// GRADES_PATHS_INPUT_DIR; leaf fields carry no envconfig tag so envconfig
// never falls back to an unprefixed variable.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Columns   ColumnsConfig   `yaml:"columns" envconfig:"COLUMNS"`
	Labels    LabelsConfig    `yaml:"labels" envconfig:"LABELS"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig locates inputs and outputs on disk.
type PathsConfig struct {
	InputDir   string `yaml:"inputDir" split_words:"true" validate:"required"`
	LabelFile  string `yaml:"labelFile" split_words:"true"`
	OutputFile string `yaml:"outputFile" split_words:"true" validate:"required"`
	ReportDir  string `yaml:"reportDir" split_words:"true" validate:"required"`
}

// IngestConfig tunes source file discovery.
type IngestConfig struct {
	// FileSuffix is removed from the file stem before splitting it into codes.
	FileSuffix string `yaml:"fileSuffix" split_words:"true"`
}

// ColumnsConfig holds the header patterns used to locate source columns.
type ColumnsConfig struct {
	FirstName  string `yaml:"firstName" split_words:"true" validate:"required"`
	LastName   string `yaml:"lastName" split_words:"true" validate:"required"`
	Score1     string `yaml:"score1" validate:"required"`
	Score2     string `yaml:"score2" validate:"required"`
	FinalScore string `yaml:"finalScore" split_words:"true" validate:"required"`
	// ScoreExclude disqualifies score1/score2 candidates (e.g. running totals).
	ScoreExclude string `yaml:"scoreExclude" split_words:"true"`
}

// LabelsConfig describes how the legacy annotation document is scraped.
type LabelsConfig struct {
	CodeLanguage string `yaml:"codeLanguage" split_words:"true"`
	Assignment   string `yaml:"assignment"`
}

// DashboardConfig configures the HTTP dashboard.
type DashboardConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	RefreshInterval time.Duration `yaml:"refreshInterval" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Load reads YAML configuration (path argument, else GRADES_CONFIG), then applies
// .env and GRADES_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required fields and enumerations.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Paths.InputDir, override.Paths.InputDir)
	mergeString(&base.Paths.LabelFile, override.Paths.LabelFile)
	mergeString(&base.Paths.OutputFile, override.Paths.OutputFile)
	mergeString(&base.Paths.ReportDir, override.Paths.ReportDir)

	mergeString(&base.Ingest.FileSuffix, override.Ingest.FileSuffix)

	mergeString(&base.Columns.FirstName, override.Columns.FirstName)
	mergeString(&base.Columns.LastName, override.Columns.LastName)
	mergeString(&base.Columns.Score1, override.Columns.Score1)
	mergeString(&base.Columns.Score2, override.Columns.Score2)
	mergeString(&base.Columns.FinalScore, override.Columns.FinalScore)
	mergeString(&base.Columns.ScoreExclude, override.Columns.ScoreExclude)

	mergeString(&base.Labels.CodeLanguage, override.Labels.CodeLanguage)
	mergeString(&base.Labels.Assignment, override.Labels.Assignment)

	mergeString(&base.Dashboard.Addr, override.Dashboard.Addr)
	if override.Dashboard.RefreshInterval > 0 {
		base.Dashboard.RefreshInterval = override.Dashboard.RefreshInterval
	}
	if override.Dashboard.ShutdownTimeout > 0 {
		base.Dashboard.ShutdownTimeout = override.Dashboard.ShutdownTimeout
	}

	mergeString(&base.Logging.Level, override.Logging.Level)
	mergeString(&base.Logging.Format, override.Logging.Format)

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Default returns the built-in configuration used when no file is supplied.
func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			InputDir:   "inputs_ods",
			LabelFile:  "projeto.md",
			OutputFile: "output/relatorio_consolidado.csv",
			ReportDir:  "output",
		},
		Ingest: IngestConfig{FileSuffix: " Notas"},
		Columns: ColumnsConfig{
			FirstName:    "Nome",
			LastName:     "Sobrenome",
			Score1:       "AVALIAÇÃO 01",
			Score2:       "AVALIAÇÃO 02",
			FinalScore:   "Média da Disciplina",
			ScoreExclude: "total",
		},
		Labels: LabelsConfig{CodeLanguage: "python", Assignment: "REPORT_MAP"},
		Dashboard: DashboardConfig{
			Addr:            ":8501",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
