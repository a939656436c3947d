package transfer

import (
	"context"
	"iter"
)

// RunBatch returns a lazy sequence running the Pipeline over items, one Result per item, in input
// order. An item runs only when the consumer asks for its result and a failed item does not stop
// the following ones.
//
// The sequence is not resumable by itself: ranging over it again runs every item again from the
// Prior it was given. To resume, build a new batch from the returned states.
func (p *Pipeline) RunBatch(ctx context.Context, items []BatchItem) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for _, item := range items {
			if !yield(p.Execute(ctx, item)) {
				return
			}
		}
	}
}

// Collect drains a batch sequence into a slice.
func Collect(seq iter.Seq[Result]) []Result {
	var results []Result
	for res := range seq {
		results = append(results, res)
	}

	return results
}
