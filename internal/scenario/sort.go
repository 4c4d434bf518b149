package scenario

import (
	"fmt"
	"slices"

	"github.com/calvinalkan/perfagg/internal/metadata"
)

// SortFields lists the metadata fields of a [SortKey], most significant first.
var SortFields = [...]string{
	metadata.FieldOEMCarsInitial,
	metadata.FieldPartsPerCar,
	metadata.FieldOEMPlants,
	metadata.FieldSupplierPlants,
	metadata.FieldSupplierFleetManagers,
	metadata.FieldOEMContractDefs,
	metadata.FieldSupplierContractDefs,
}

// SortKey orders scenarios by increasing system scale. Each element is the
// integer value of the matching [SortFields] entry, or 0 when absent.
type SortKey [len(SortFields)]int

// Compare returns -1, 0 or +1 comparing k and other field by field.
func (k SortKey) Compare(other SortKey) int {
	for i := range k {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}

	return 0
}

// KeyOf computes the sort key of s.
func KeyOf(s *Scenario) (SortKey, error) {
	var key SortKey

	for i, field := range SortFields {
		v, err := s.Metadata.IntOrZero(field)
		if err != nil {
			return SortKey{}, fmt.Errorf("scenario %s: %w", s.Name, err)
		}

		key[i] = v
	}

	return key, nil
}

// Sort returns scenarios ordered ascending by [SortKey]. Equal keys keep
// their input order. The input slice is not modified.
func Sort(scenarios []Scenario) ([]Scenario, error) {
	type keyed struct {
		key SortKey
		sc  Scenario
	}

	items := make([]keyed, len(scenarios))

	for i := range scenarios {
		key, err := KeyOf(&scenarios[i])
		if err != nil {
			return nil, err
		}

		items[i] = keyed{key: key, sc: scenarios[i]}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})

	out := make([]Scenario, len(items))
	for i, it := range items {
		out[i] = it.sc
	}

	return out, nil
}
