package claimer

import (
	"fmt"
	"testing"

	"predictionBot/internal/model"
)

func rangesString(ranges []EpochRange) string {
	out := ""
	for _, r := range ranges {
		out += fmt.Sprintf("[%s,%s]", r.From, r.To)
	}
	return out
}

func TestSplitRange(t *testing.T) {
	got, err := SplitRange(model.NewEpoch(100), model.NewEpoch(105), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "[100,101][102,103][104,105]"; rangesString(got) != want {
		t.Fatalf("ranges mismatch: %s != %s", rangesString(got), want)
	}
}

func TestSplitRangeSingle(t *testing.T) {
	got, err := SplitRange(model.NewEpoch(5), model.NewEpoch(5), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "[5,5]"; rangesString(got) != want {
		t.Fatalf("ranges mismatch: %s != %s", rangesString(got), want)
	}
	if epochs := got[0].Epochs(); len(epochs) != 1 || epochs[0].String() != "5" {
		t.Fatalf("unexpected epochs: %v", epochs)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(model.NewEpoch(10), model.NewEpoch(9), 1); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	if _, err := SplitRange(model.NewEpoch(1), model.NewEpoch(10), 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
