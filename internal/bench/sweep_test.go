package bench

import (
	"context"
	"reflect"
	"testing"

	sentsplit "github.com/jamesainslie/go-sentsplit"
)

func TestSweepRange(t *testing.T) {
	if got, want := SweepRange(5, 9, 2), []int{5, 7, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("SweepRange() = %v, want %v", got, want)
	}
	if got, want := SweepRange(1, 3, 0), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("SweepRange() with zero step = %v, want %v", got, want)
	}
	if got := SweepRange(9, 5, 1); got != nil {
		t.Errorf("SweepRange() inverted = %v, want nil", got)
	}
}

func TestSweep(t *testing.T) {
	docs := []*Document{goldDocument()}

	newSeg := func(mincut int) (*sentsplit.Segmenter, error) {
		return sentsplit.New("en", append(testOptions(), sentsplit.WithMincut(mincut))...)
	}

	results, err := Sweep(context.Background(), docs, newSeg, DefaultConfig(), []int{13, 7})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// "Hello world." is 12 characters, so mincut 13 merges it into the next sentence.
	if results[0].Mincut != 7 || results[0].Metrics.Recall != 1 {
		t.Errorf("best = %+v, want mincut 7 with full recall", results[0])
	}
	if results[1].Mincut != 13 || results[1].Metrics.Recall != 0.5 {
		t.Errorf("worst = %+v, want mincut 13 with half recall", results[1])
	}
}
