// Package sdt provides reading of Becker & Hickl SPC-Image SDT files.
//
// SDT is the binary container produced by Becker & Hickl TCSPC
// (time-correlated single-photon counting) acquisition hardware. Each
// pixel of a FLIM image holds a histogram of photon arrival times; the
// file stores those histograms bin-interleaved, with image rows padded to
// 4-byte boundaries. This package decodes the header into acquisition
// geometry and extracts image planes either per lifetime bin or as
// bin-summed intensity images.
package sdt

import "errors"

// Decode errors
var (
	// ErrBadHeader is returned when the stream does not begin with a valid
	// SDT header, or is truncated before the declared header regions end.
	ErrBadHeader = errors.New("sdt: not a valid SDT file")

	// ErrInvalidPlane is returned when a plane index is outside the range
	// of planes declared by the file geometry and read mode.
	ErrInvalidPlane = errors.New("sdt: plane index out of range")

	// ErrInvalidRegion is returned when a crop rectangle falls outside the
	// plane bounds.
	ErrInvalidRegion = errors.New("sdt: region outside plane bounds")

	// ErrShortBuffer is returned when the caller-supplied output buffer is
	// too small for the requested region.
	ErrShortBuffer = errors.New("sdt: output buffer too small")

	// ErrClosed is returned when reading from a closed file.
	ErrClosed = errors.New("sdt: file is closed")
)

// BytesPerSample is the size of one pixel sample. SDT histogram data is
// always unsigned 16-bit.
const BytesPerSample = 2

// DimensionOrder is the logical ordering of the decoded pixel stream.
// T covers timepoints times lifetime bins in bin-resolved mode, or
// timepoints alone in intensity mode.
const DimensionOrder = "XYZTC"

// Modulo axis constants reported for the lifetime sub-axis.
const (
	ModuloTypeLifetime = "lifetime"
	ModuloParentType   = "spectra"
	ModuloDescription  = "TCSPC"
	ModuloUnit         = "ps"
)

// ModuloT describes the sub-structure of the T axis. In bin-resolved mode
// the T axis encodes lifetime histogram bins rather than independent
// timepoints; Step is the calibrated bin width in picoseconds.
type ModuloT struct {
	Type            string
	TypeDescription string
	ParentType      string
	Unit            string
	Start           float64
	Step            float64
	End             float64
}

// Metadata is an ordered store of scalar key/value pairs populated while
// opening a file. It is the sink for observational header values (time
// bin count, channel count, time base) and never influences decoding.
type Metadata struct {
	keys   []string
	values map[string]interface{}
}

// NewMetadata creates an empty metadata store.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]interface{})}
}

// Set records a key/value pair, preserving first-insertion order.
func (m *Metadata) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Metadata) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of stored pairs.
func (m *Metadata) Len() int {
	return len(m.keys)
}
