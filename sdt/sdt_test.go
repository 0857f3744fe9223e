package sdt

import (
	"bytes"
	"testing"

	"github.com/mrjoshuak/go-sdt/internal/sdttest"
)

// testFileConfig describes a synthetic SDT file. The builder itself
// lives in internal/sdttest so other packages can reuse it.
type testFileConfig = sdttest.Config

// binValue is the deterministic per-bin pixel value used by synthetic
// files: tests reconstruct expected planes from the same formula.
func binValue(channel, x, y, bin int) uint16 {
	return sdttest.BinValue(channel, x, y, bin)
}

// buildSDT assembles a complete synthetic SDT file.
func buildSDT(t *testing.T, cfg testFileConfig) []byte {
	t.Helper()
	return sdttest.Build(t, cfg)
}

// openSDT builds and opens a synthetic file.
func openSDT(t *testing.T, cfg testFileConfig, opts ...Option) *File {
	t.Helper()
	f, err := Open(bytes.NewReader(buildSDT(t, cfg)), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
