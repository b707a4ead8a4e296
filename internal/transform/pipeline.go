package transform

import (
	"fmt"

	"zipcaster/internal/codec"
	"zipcaster/internal/domain"
	"zipcaster/internal/splatnet"
)

// Engine runs the whole normalization for one mode fetch. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	assembler *Assembler
}

func NewEngine(assembler *Assembler) *Engine {
	return &Engine{assembler: assembler}
}

type Result struct {
	// Records are in detail order.
	Records []domain.BattleRecord
	// Failures are *GroupError, *RecordError or an overview decode error.
	Failures []error
	// Warnings never prevent a record from being produced.
	Warnings []error
}

// Transform normalizes the details of one mode and attaches the series
// metadata rebuilt from overview. An empty overview yields records without
// series metadata.
func (e *Engine) Transform(overview []byte, details [][]byte) Result {
	var res Result

	meta := map[string]domain.ModeMetadata{}
	if len(overview) > 0 {
		ov, err := splatnet.ParseOverview(overview)
		if err != nil {
			res.Failures = append(res.Failures, fmt.Errorf("failed to parse overview: %w", err))
		} else {
			var groupErrs []error
			meta, groupErrs = ReconstructOverview(ov)
			res.Failures = append(res.Failures, groupErrs...)
		}
	}

	for i, raw := range details {
		d, err := splatnet.ParseDetail(raw)
		if err != nil {
			res.Failures = append(res.Failures, &RecordError{Index: i, Err: err})
			continue
		}

		rec, warnings, err := e.assembler.Assemble(d)
		if err != nil {
			res.Failures = append(res.Failures, &RecordError{Index: i, BattleID: battleID(d), Err: err})
			continue
		}
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, &RecordError{Index: i, BattleID: rec.ID, Err: w})
		}

		rec = Merge(rec, meta)
		if err := rec.Validate(); err != nil {
			res.Failures = append(res.Failures, &RecordError{Index: i, BattleID: rec.ID, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func battleID(d *splatnet.Detail) string {
	id, err := codec.DecodeID(d.ID, codec.PrefixBattle)
	if err != nil {
		return ""
	}
	return id
}
