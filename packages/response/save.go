package response

import (
	"errors"

	"github.com/abdul-hamid-achik/hitcall/packages/core/dotpath"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

// SaveEntry stores the selection's result at Target, a dotted path into
// the data accumulator.
type SaveEntry struct {
	Target    string
	Selection Selection
}

// SaveSpec lists save entries in authored order.
type SaveSpec []SaveEntry

// ErrNilData is returned by Save when there is no accumulator to write to.
var ErrNilData = errors.New("save: data accumulator is nil")

// Save writes every selection of spec into data, in order. Unmatched
// selections are written as null. data is modified in place, and only when
// every selection succeeds.
func Save(spec SaveSpec, rec *Record, data *value.Object) error {
	if data == nil {
		return ErrNilData
	}

	tree := rec.Tree()
	values := make([]any, len(spec))
	for i, e := range spec {
		v, err := selectFrom(tree, e.Selection)
		if err != nil {
			return err
		}
		values[i] = v
	}

	for i, e := range spec {
		dotpath.Set(data, e.Target, value.Clone(values[i]))
	}
	return nil
}
