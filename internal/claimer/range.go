package claimer

import (
	"fmt"

	"predictionBot/internal/model"
)

// EpochRange is an inclusive range of rounds.
type EpochRange struct {
	From model.Epoch
	To   model.Epoch
}

// SplitRange splits [from, to] into batches of batchSize epochs.
func SplitRange(from, to model.Epoch, batchSize uint64) ([]EpochRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to.Cmp(from) < 0 {
		return nil, fmt.Errorf("to epoch must be >= from epoch")
	}

	ranges := make([]EpochRange, 0)
	start := from
	for start.Cmp(to) <= 0 {
		end := start.Add(batchSize - 1)
		if end.Cmp(to) > 0 {
			end = to
		}
		ranges = append(ranges, EpochRange{From: start, To: end})
		start = end.Add(1)
	}
	return ranges, nil
}

// Epochs lists every epoch in r.
func (r EpochRange) Epochs() []model.Epoch {
	var out []model.Epoch
	for e := r.From; e.Cmp(r.To) <= 0; e = e.Add(1) {
		out = append(out, e)
	}
	return out
}

// Key identifies the range in checkpoints.
func (r EpochRange) Key() string {
	return r.From.String() + "-" + r.To.String()
}
