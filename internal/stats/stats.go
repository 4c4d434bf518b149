// Package stats loads the per-operation statistics exported by the JMeter
// HTML dashboard (dashboard/statistics.json).
//
// The document is a JSON object keyed by operation (transaction) name. Each
// value is an object of measurements:
//
//	{
//	  "Initiate Transfer": {
//	    "transaction": "Initiate Transfer",
//	    "sampleCount": 120,
//	    "meanResTime": 81.4,
//	    "medianResTime": 77
//	  }
//	}
//
// Numeric members become metrics, string members become attributes, and
// every other member type is ignored. A metric that is not present is
// absent, not zero.
package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cast"

	"github.com/calvinalkan/perfagg/internal/fs"
)

// Well-known metric names.
const (
	MetricMedianResTime = "medianResTime"
	MetricMeanResTime   = "meanResTime"
	MetricSampleCount   = "sampleCount"
)

// ErrFormat reports a statistics document that is not a mapping of mappings.
var ErrFormat = errors.New("malformed statistics")

// Record holds the measurements for one operation.
type Record struct {
	Metrics    map[string]float64
	Attributes map[string]string
}

// Metric returns the named metric.
func (r Record) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]

	return v, ok
}

// Statistics maps operation names to their [Record].
type Statistics map[string]Record

// Load reads and parses the statistics file at path.
func Load(fsys fs.FS, path string) (Statistics, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statistics: %w", err)
	}

	st, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return st, nil
}

// Parse decodes a statistics document.
func Parse(data []byte) (Statistics, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]json.RawMessage

	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrFormat)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after top-level object", ErrFormat)
	}

	st := make(Statistics, len(raw))

	for op, msg := range raw {
		rec, err := parseRecord(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: operation %q: %w", ErrFormat, op, err)
		}

		st[op] = rec
	}

	return st, nil
}

func parseRecord(msg json.RawMessage) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	var fields map[string]any

	if err := dec.Decode(&fields); err != nil {
		return Record{}, errors.New("value is not an object")
	}

	if fields == nil {
		return Record{}, errors.New("value is not an object")
	}

	rec := Record{
		Metrics:    make(map[string]float64, len(fields)),
		Attributes: make(map[string]string),
	}

	for name, v := range fields {
		switch val := v.(type) {
		case json.Number:
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return Record{}, fmt.Errorf("metric %q: %w", name, err)
			}

			rec.Metrics[name] = f
		case string:
			rec.Attributes[name] = val
		}
	}

	return rec, nil
}

// Operations returns the operation names in lexical order.
func (s Statistics) Operations() []string {
	return slices.Sorted(maps.Keys(s))
}

// Metric returns metric for operation op.
func (s Statistics) Metric(op, metric string) (float64, bool) {
	rec, ok := s[op]
	if !ok {
		return 0, false
	}

	return rec.Metric(metric)
}

// Project returns a copy narrowed to the given metrics. Operations missing
// any of them are dropped. Attributes are not carried over.
func (s Statistics) Project(fields ...string) Statistics {
	out := make(Statistics, len(s))

	for op, rec := range s {
		metrics := make(map[string]float64, len(fields))
		complete := true

		for _, f := range fields {
			v, ok := rec.Metrics[f]
			if !ok {
				complete = false

				break
			}

			metrics[f] = v
		}

		if !complete {
			continue
		}

		out[op] = Record{Metrics: metrics, Attributes: map[string]string{}}
	}

	return out
}
