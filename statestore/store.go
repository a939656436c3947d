// Package statestore persists the TransferState returned by each run, so that the next run of the
// same transfer resumes from it.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// ErrInvalidKey is returned when storing a state under an empty key.
var ErrInvalidKey = errors.New("statestore: empty key")

// Entry is a stored state and its key.
type Entry struct {
	Key   string                 `yaml:"key" json:"key"`
	State transfer.TransferState `yaml:"state" json:"state"`
}

// Store reads and writes the states of transfers by key.
//
// Implementations are safe for concurrent use. Get reports whether a state is stored for the key,
// a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (transfer.TransferState, bool, error)
	Put(ctx context.Context, key string, state transfer.TransferState) error
	// List returns every stored entry sorted by key.
	List(ctx context.Context) ([]Entry, error)
}

// Key identifies the transfer of spec. Two specs moving the same buckets under the same task name
// share their state.
func Key(spec transfer.TransferSpec) string {
	return strings.Join([]string{spec.Source, spec.Destination, spec.Name}, "/")
}

// Prior returns the batch items of specs, each resuming from the state stored for it.
func Prior(ctx context.Context, store Store, specs []transfer.TransferSpec) ([]transfer.BatchItem, error) {
	items := make([]transfer.BatchItem, 0, len(specs))
	for _, spec := range specs {
		state, _, err := store.Get(ctx, Key(spec))
		if err != nil {
			return nil, fmt.Errorf("failed to load state of %s: %w", spec.Name, err)
		}
		items = append(items, transfer.BatchItem{Spec: spec, Prior: state})
	}

	return items, nil
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
}
