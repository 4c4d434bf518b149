// Package metadata parses the key=value parameter files written next to each
// performance-test run.
//
// Supported form:
//
//	OEM_PLANTS = 2
//	OEM_CARS_INITIAL=100
//
//	# Supplier
//	SUPPLIER_PLANTS = 3
//	SUPPLIER_FLEET_MANAGERS = 1
//
// Lines starting with '#' open a named section; key=value lines that follow
// belong to it until the next marker. Lines before the first marker live in
// the top-level section, whose name is empty. Blank lines are ignored.
//
// Values are kept as trimmed strings. Callers ask for the type they need
// through [Metadata.Int], [Metadata.Float] or [Metadata.String] and receive
// [ErrMissingField] or [ErrNotNumeric] instead of a guessed value.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Well-known parameter names written by the test harness.
const (
	FieldProcessName           = "PROCESS_NAME"
	FieldOEMPlants             = "OEM_PLANTS"
	FieldOEMCarsInitial        = "OEM_CARS_INITIAL"
	FieldPartsPerCar           = "PARTS_PER_CAR"
	FieldCarsPerInterval       = "CARS_PRODUCED_PER_INTERVALL"
	FieldSupplierPlants        = "SUPPLIER_PLANTS"
	FieldSupplierFleetManagers = "SUPPLIER_FLEET_MANAGERS"
	FieldOEMContractDefs       = "ADDITIONAL_CONTRACT_DEFINITIONS_OEM"
	FieldSupplierContractDefs  = "ADDITIONAL_CONTRACT_DEFINITIONS_SUPPLIER"
)

// Error variables for parsing and field access.
var (
	ErrFormat       = errors.New("malformed metadata")
	ErrMissingField = errors.New("missing metadata field")
	ErrNotNumeric   = errors.New("metadata field is not numeric")
)

// Entry is a single key=value pair.
type Entry struct {
	Key   string
	Value string
}

// Section is a named group of entries. The top-level section has an empty name.
type Section struct {
	Name    string
	Entries []Entry
}

// Metadata holds parsed sections in file order. The zero value is an empty
// mapping. Metadata is not modified after parsing.
type Metadata struct {
	sections []Section
}

// Sections returns the non-empty sections in file order, top-level first.
func (m *Metadata) Sections() []Section {
	out := make([]Section, 0, len(m.sections))

	for _, s := range m.sections {
		if len(s.Entries) == 0 {
			continue
		}

		out = append(out, s)
	}

	return out
}

// Lookup returns the raw value for name. The top-level section is searched
// first, then named sections in file order.
func (m *Metadata) Lookup(name string) (string, bool) {
	for _, s := range m.sections {
		for _, e := range s.Entries {
			if e.Key == name {
				return e.Value, true
			}
		}
	}

	return "", false
}

// String returns the value of name or [ErrMissingField].
func (m *Metadata) String(name string) (string, error) {
	v, ok := m.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	return v, nil
}

// Int returns the value of name as an integer.
func (m *Metadata) Int(name string) (int, error) {
	v, ok := m.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	return toInt(name, v)
}

// IntOrZero is [Metadata.Int] with an absent field reported as 0. A present
// but malformed value is still an error.
func (m *Metadata) IntOrZero(name string) (int, error) {
	v, ok := m.Lookup(name)
	if !ok {
		return 0, nil
	}

	return toInt(name, v)
}

// Float returns the value of name as a float64.
func (m *Metadata) Float(name string) (float64, error) {
	v, ok := m.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}

	f, err := cast.ToFloat64E(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrNotNumeric, name, v)
	}

	return f, nil
}

// ToMap flattens the metadata into section -> key -> value.
func (m *Metadata) ToMap() map[string]map[string]string {
	out := make(map[string]map[string]string, len(m.sections))

	for _, s := range m.sections {
		if len(s.Entries) == 0 {
			continue
		}

		inner, ok := out[s.Name]
		if !ok {
			inner = make(map[string]string, len(s.Entries))
			out[s.Name] = inner
		}

		for _, e := range s.Entries {
			inner[e.Key] = e.Value
		}
	}

	return out
}

// toInt parses a decimal count. cast accepts "1.0", but it parses with base
// auto-detection, so prefixes, underscores and leading zeros are handled here.
func toInt(name, raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("%w: %s (empty)", ErrNotNumeric, name)
	}

	sign := ""
	if v[0] == '-' || v[0] == '+' {
		sign, v = v[:1], v[1:]
	}

	if v == "" || strings.Trim(v, "0123456789.") != "" {
		return 0, fmt.Errorf("%w: %s=%q", ErrNotNumeric, name, raw)
	}

	v = strings.TrimLeft(v, "0")
	if v == "" || strings.HasPrefix(v, ".") {
		v = "0" + v
	}

	n, err := cast.ToIntE(sign + v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrNotNumeric, name, raw)
	}

	return n, nil
}
