package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/qassure-lab/lotgate/pkg/cli/config"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSamplingTableFromFile(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		path := writeFile(t, "table.yml", `
rows:
  - lotLow: 1
    lotHigh: 90
    sampleSize: 8
    levelI: {acc: 0, rej: 1}
    levelII: {acc: 1, rej: 2}
    levelIII: {acc: 2, rej: 3}
  - lotLow: 91
    lotHigh: 280
    sampleSize: 20
    levelI: {acc: 1, rej: 2}
    levelII: {acc: 2, rej: 3}
    levelIII: {acc: 3, rej: 4}
`)
		table, err := config.LoadSamplingTableFromFile(path)
		gt.NoError(t, err)

		low, high := table.Domain()
		gt.Equal(t, 1, low)
		gt.Equal(t, 280, high)
	})

	t.Run("gap in lot ranges fails", func(t *testing.T) {
		path := writeFile(t, "table.yml", `
rows:
  - lotLow: 1
    lotHigh: 90
    sampleSize: 8
    levelI: {acc: 0, rej: 1}
    levelII: {acc: 1, rej: 2}
    levelIII: {acc: 2, rej: 3}
  - lotLow: 100
    lotHigh: 280
    sampleSize: 20
    levelI: {acc: 1, rej: 2}
    levelII: {acc: 2, rej: 3}
    levelIII: {acc: 3, rej: 4}
`)
		_, err := config.LoadSamplingTableFromFile(path)
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadSamplingTableFromFile(filepath.Join(t.TempDir(), "missing.yml"))
		gt.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		path := writeFile(t, "table.yml", "rows: [not a row")
		_, err := config.LoadSamplingTableFromFile(path)
		gt.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := config.LoadSamplingTableFromFile("")
		gt.Error(t, err)
	})
}

func TestLoadPlansFromFile(t *testing.T) {
	t.Run("valid plans", func(t *testing.T) {
		path := writeFile(t, "plans.yml", `
plans:
  - id: plan-std
    name: Standard
    aqlCritical: 0
    aqlMajor: 1.0
    aqlMinor: 2.5
  - id: plan-strict
    name: Strict
    aqlMajor: 0.65
    aqlMinor: 1.0
    overrides:
      major: {acc: 1, rej: 2}
`)
		plans, err := config.LoadPlansFromFile(path)
		gt.NoError(t, err)
		gt.Equal(t, 2, len(plans.Plans))

		strict := plans.FindPlanByID("plan-strict")
		gt.V(t, strict).NotNil()
		gt.Equal(t, 1, len(strict.Overrides))
	})

	t.Run("duplicate IDs fail", func(t *testing.T) {
		path := writeFile(t, "plans.yml", `
plans:
  - id: plan-std
    aqlMajor: 1.0
  - id: plan-std
    aqlMajor: 2.5
`)
		_, err := config.LoadPlansFromFile(path)
		gt.Error(t, err)
	})

	t.Run("empty plan list fails", func(t *testing.T) {
		path := writeFile(t, "plans.yml", "plans: []")
		_, err := config.LoadPlansFromFile(path)
		gt.Error(t, err)
	})
}
