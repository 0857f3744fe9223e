// Package sdtmeta provides typed accessors for the metadata recorded when
// an SDT file is opened.
//
// The sdt package stores observational header values as scalar key/value
// pairs; this package offers a discoverable API over the well-known keys
// without bloating the core sdt.File type.
//
// Example usage:
//
//	f, _ := sdt.OpenFile("cells.sdt")
//	bins, _ := sdtmeta.TimeBins(f.Metadata())
//	base, _ := sdtmeta.TimeBase(f.Metadata())
//	fmt.Printf("%d bins over %.1f ns\n", bins, base)
package sdtmeta

import (
	"github.com/mrjoshuak/go-sdt/sdt"
)

// Well-known metadata keys.
const (
	KeyTimeBins        = "time bins"
	KeyChannels        = "channels"
	KeyTimeBase        = "time base"
	KeyRevision        = "revision"
	KeyModuleSerial    = "module serial number"
	KeyAcquisitionDate = "acquisition date"
	KeyAcquisitionTime = "acquisition time"
	KeyMeasurementMode = "measurement mode"
)

// TimeBins returns the lifetime histogram bin count.
func TimeBins(m *sdt.Metadata) (int, bool) {
	return getInt(m, KeyTimeBins)
}

// Channels returns the spectral channel count.
func Channels(m *sdt.Metadata) (int, bool) {
	return getInt(m, KeyChannels)
}

// TimeBase returns the full-scale histogram duration in nanoseconds.
func TimeBase(m *sdt.Metadata) (float64, bool) {
	return getFloat(m, KeyTimeBase)
}

// Revision returns the file format revision.
func Revision(m *sdt.Metadata) (int, bool) {
	return getInt(m, KeyRevision)
}

// MeasurementMode returns the instrument measurement mode code.
func MeasurementMode(m *sdt.Metadata) (int, bool) {
	return getInt(m, KeyMeasurementMode)
}

// ModuleSerial returns the acquisition module serial number, or the empty
// string if not recorded.
func ModuleSerial(m *sdt.Metadata) string {
	return getString(m, KeyModuleSerial)
}

// AcquisitionDate returns the acquisition date text, or the empty string
// if not recorded.
func AcquisitionDate(m *sdt.Metadata) string {
	return getString(m, KeyAcquisitionDate)
}

// AcquisitionTime returns the acquisition time-of-day text, or the empty
// string if not recorded.
func AcquisitionTime(m *sdt.Metadata) string {
	return getString(m, KeyAcquisitionTime)
}

func getInt(m *sdt.Metadata, key string) (int, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	if i, ok := v.(int); ok {
		return i, true
	}
	return 0, false
}

func getFloat(m *sdt.Metadata, key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	if f, ok := v.(float64); ok {
		return f, true
	}
	return 0, false
}

func getString(m *sdt.Metadata, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
