package model

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
)

// AcceptancePair holds the acceptance and rejection numbers for one
// inspection level of a sampling row
type AcceptancePair struct {
	Acc int `yaml:"acc" json:"acc"`
	Rej int `yaml:"rej" json:"rej"`
}

// Validate validates the acceptance pair
func (p AcceptancePair) Validate() error {
	if p.Acc < 0 {
		return goerr.Wrap(ErrConfiguration, "acceptance number must not be negative",
			goerr.V("acc", p.Acc))
	}
	if p.Rej < p.Acc+1 {
		return goerr.Wrap(ErrConfiguration, "rejection number must be at least acceptance number + 1",
			goerr.V("acc", p.Acc),
			goerr.V("rej", p.Rej))
	}
	return nil
}

// SamplingRow is one immutable row of the sampling reference table. The
// lot size range is a closed interval [LotLow, LotHigh].
type SamplingRow struct {
	LotLow     int            `yaml:"lotLow" json:"lotLow"`
	LotHigh    int            `yaml:"lotHigh" json:"lotHigh"`
	SampleSize int            `yaml:"sampleSize" json:"sampleSize"`
	LevelI     AcceptancePair `yaml:"levelI" json:"levelI"`
	LevelII    AcceptancePair `yaml:"levelII" json:"levelII"`
	LevelIII   AcceptancePair `yaml:"levelIII" json:"levelIII"`
}

// Validate validates a single sampling row
func (r SamplingRow) Validate() error {
	if r.LotLow < 1 {
		return goerr.Wrap(ErrConfiguration, "lot range lower bound must be positive",
			goerr.V("lotLow", r.LotLow))
	}
	if r.LotHigh < r.LotLow {
		return goerr.Wrap(ErrConfiguration, "lot range upper bound below lower bound",
			goerr.V("lotLow", r.LotLow),
			goerr.V("lotHigh", r.LotHigh))
	}
	if r.SampleSize < 1 {
		return goerr.Wrap(ErrConfiguration, "sample size must be positive",
			goerr.V("sampleSize", r.SampleSize))
	}
	for _, level := range []types.InspectionLevel{types.LevelI, types.LevelII, types.LevelIII} {
		pair, err := r.PairFor(level)
		if err != nil {
			return err
		}
		if err := pair.Validate(); err != nil {
			return goerr.Wrap(err, "invalid acceptance pair",
				goerr.V("level", level),
				goerr.V("lotLow", r.LotLow))
		}
	}
	return nil
}

// Contains checks if the lot size falls within the row's range
func (r SamplingRow) Contains(lotSize int) bool {
	return lotSize >= r.LotLow && lotSize <= r.LotHigh
}

// PairFor returns the acceptance pair for the given inspection level
func (r SamplingRow) PairFor(level types.InspectionLevel) (AcceptancePair, error) {
	switch level {
	case types.LevelI:
		return r.LevelI, nil
	case types.LevelII:
		return r.LevelII, nil
	case types.LevelIII:
		return r.LevelIII, nil
	default:
		return AcceptancePair{}, goerr.New("invalid inspection level", goerr.V("level", level))
	}
}

// SamplingTable is the validated, immutable sampling reference table.
// Rows are ordered, non-overlapping and gap-free over the supported lot
// size domain.
type SamplingTable struct {
	rows []SamplingRow
}

// NewSamplingTable validates the rows and constructs a table. Gaps,
// overlaps or unordered rows are configuration defects and fail here.
func NewSamplingTable(rows []SamplingRow) (*SamplingTable, error) {
	if len(rows) == 0 {
		return nil, goerr.Wrap(ErrConfiguration, "sampling table has no rows")
	}

	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid sampling row", goerr.V("index", i))
		}
		if i == 0 {
			continue
		}
		prev := rows[i-1]
		if row.LotLow <= prev.LotHigh {
			return nil, goerr.Wrap(ErrConfiguration, "sampling rows overlap or are unordered",
				goerr.V("index", i),
				goerr.V("prevHigh", prev.LotHigh),
				goerr.V("lotLow", row.LotLow))
		}
		if row.LotLow != prev.LotHigh+1 {
			return nil, goerr.Wrap(ErrConfiguration, "gap between sampling rows",
				goerr.V("index", i),
				goerr.V("prevHigh", prev.LotHigh),
				goerr.V("lotLow", row.LotLow))
		}
	}

	copied := make([]SamplingRow, len(rows))
	copy(copied, rows)
	return &SamplingTable{rows: copied}, nil
}

// Resolve returns the sampling row covering the given lot size. The
// lookup is deterministic: validation guarantees exactly one matching
// row for any in-domain lot size.
func (t *SamplingTable) Resolve(lotSize int, level types.InspectionLevel) (SamplingRow, error) {
	if !level.IsValid() {
		return SamplingRow{}, goerr.New("invalid inspection level", goerr.V("level", level))
	}
	if lotSize < 1 {
		return SamplingRow{}, goerr.Wrap(ErrOutOfRange, "lot size must be positive",
			goerr.V("lotSize", lotSize))
	}

	idx := sort.Search(len(t.rows), func(i int) bool {
		return t.rows[i].LotHigh >= lotSize
	})
	if idx >= len(t.rows) || !t.rows[idx].Contains(lotSize) {
		return SamplingRow{}, goerr.Wrap(ErrOutOfRange, "no sampling row covers lot size",
			goerr.V("lotSize", lotSize),
			goerr.V("tableLow", t.rows[0].LotLow),
			goerr.V("tableHigh", t.rows[len(t.rows)-1].LotHigh))
	}
	return t.rows[idx], nil
}

// Rows returns a copy of the table rows
func (t *SamplingTable) Rows() []SamplingRow {
	rows := make([]SamplingRow, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Domain returns the inclusive lot size bounds covered by the table
func (t *SamplingTable) Domain() (low, high int) {
	return t.rows[0].LotLow, t.rows[len(t.rows)-1].LotHigh
}
