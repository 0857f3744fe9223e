package sdt

import (
	"strconv"
	"strings"
)

// Setup block parameter names used as fallbacks when the measurement
// description stores zero scan dimensions.
const (
	spImgX   = "SP_IMG_X"
	spImgY   = "SP_IMG_Y"
	spAdcRE  = "SP_ADC_RE"
	spScanRX = "SP_SCAN_RX"
)

// parseSetup extracts parameters from the ASCII portion of the setup
// block. Lines have the form
//
//	#SP [SP_IMG_X,I,256]
//
// where the bracketed triple is name, type tag and value. The parser is
// deliberately tolerant: lines that do not match are skipped, and the
// binary portion that follows the ASCII region is ignored.
func parseSetup(data []byte) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		open := strings.IndexByte(line, '[')
		close := strings.IndexByte(line, ']')
		if open < 0 || close <= open {
			continue
		}
		parts := strings.SplitN(line[open+1:close], ",", 3)
		if len(parts) != 3 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[2])
		if name == "" {
			continue
		}
		values[name] = value
	}
	return values
}

// setupInt looks up an integer setup parameter.
func setupInt(values map[string]string, key string) (int, bool) {
	s, ok := values[key]
	if !ok {
		return 0, false
	}
	// Some writers store integer parameters with a decimal point.
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
