package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Sampling holds the paths of the sampling table and plan configuration
// files
type Sampling struct {
	TablePath string
	PlansPath string
}

// Flags returns CLI flags for Sampling configuration
func (s *Sampling) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sampling-table",
			Usage:       "Path to the sampling reference table YAML file",
			Category:    "Sampling",
			Sources:     cli.EnvVars("LOTGATE_SAMPLING_TABLE"),
			Destination: &s.TablePath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "plans",
			Usage:       "Path to the inspection plans YAML file",
			Category:    "Sampling",
			Sources:     cli.EnvVars("LOTGATE_PLANS"),
			Destination: &s.PlansPath,
			Required:    true,
		},
	}
}

// Configure loads and validates both configuration files
func (s *Sampling) Configure() (*model.SamplingTable, *model.PlanConfig, error) {
	table, err := LoadSamplingTableFromFile(s.TablePath)
	if err != nil {
		return nil, nil, err
	}

	plans, err := LoadPlansFromFile(s.PlansPath)
	if err != nil {
		return nil, nil, err
	}

	return table, plans, nil
}

// LogValue returns structured log value
func (s Sampling) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("table", s.TablePath),
		slog.String("plans", s.PlansPath),
	)
}

type samplingTableFile struct {
	Rows []model.SamplingRow `yaml:"rows"`
}

// LoadSamplingTableFromFile loads and validates the sampling reference
// table from a YAML file
func LoadSamplingTableFromFile(path string) (*model.SamplingTable, error) {
	if path == "" {
		return nil, goerr.New("sampling table file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "sampling table file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read sampling table file",
			goerr.V("path", path))
	}

	var file samplingTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse sampling table YAML",
			goerr.V("path", path))
	}

	table, err := model.NewSamplingTable(file.Rows)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid sampling table",
			goerr.V("path", path))
	}

	return table, nil
}

// LoadPlansFromFile loads and validates inspection plans from a YAML
// file
func LoadPlansFromFile(path string) (*model.PlanConfig, error) {
	if path == "" {
		return nil, goerr.New("plans file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "plans file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read plans file",
			goerr.V("path", path))
	}

	var plans model.PlanConfig
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return nil, goerr.Wrap(err, "failed to parse plans YAML",
			goerr.V("path", path))
	}

	if err := plans.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid plan configuration",
			goerr.V("path", path))
	}

	return &plans, nil
}
