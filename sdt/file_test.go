package sdt

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionReporting(t *testing.T) {
	f := openSDT(t, testFileConfig{
		Width: 32, Height: 16, Channels: 2, Bins: 64,
		TacR: 5e-8, TacG: 1,
	})

	assert.Equal(t, 32, f.SizeX())
	assert.Equal(t, 16, f.SizeY())
	assert.Equal(t, 1, f.SizeZ())
	assert.Equal(t, 64, f.SizeT())
	assert.Equal(t, 2, f.SizeC())
	assert.Equal(t, 128, f.Planes())
	assert.Equal(t, "XYZTC", DimensionOrder)
	assert.False(t, f.Intensity())
}

func TestMetadataContents(t *testing.T) {
	f := openSDT(t, testFileConfig{
		Width: 8, Height: 8, Channels: 2, Bins: 16,
		TacR: 5e-8, TacG: 1,
	})

	m := f.Metadata()

	bins, ok := m.Get("time bins")
	require.True(t, ok)
	assert.Equal(t, 16, bins)

	channels, ok := m.Get("channels")
	require.True(t, ok)
	assert.Equal(t, 2, channels)

	base, ok := m.Get("time base")
	require.True(t, ok)
	assert.InDelta(t, 50.0, base.(float64), 1e-6)

	serial, ok := m.Get("module serial number")
	require.True(t, ok)
	assert.Equal(t, "SPC-150", serial)

	// Insertion order is preserved and starts with the decode-relevant
	// values.
	keys := m.Keys()
	require.GreaterOrEqual(t, len(keys), 3)
	assert.Equal(t, []string{"time bins", "channels", "time base"}, keys[:3])
}

func TestModuloTBinResolved(t *testing.T) {
	// Time base: 1e9 * 5e-8 / 1 = 50 ns; in picoseconds 50000; spread
	// over 64 bins the step is 781.25 ps.
	f := openSDT(t, testFileConfig{
		Width: 8, Height: 8, Channels: 1, Bins: 64,
		TacR: 5e-8, TacG: 1,
	})

	m := f.ModuloT()
	assert.Equal(t, ModuloTypeLifetime, m.Type)
	assert.Equal(t, ModuloParentType, m.ParentType)
	assert.Equal(t, ModuloDescription, m.TypeDescription)
	assert.Equal(t, ModuloUnit, m.Unit)
	assert.Zero(t, m.Start)
	assert.InDelta(t, 781.25, m.Step, 1e-9)
	assert.InDelta(t, 781.25*63, m.End, 1e-6)
}

func TestModuloTStepFormula(t *testing.T) {
	// Unit numerator over a 1e9 denominator with 256 bins: the per-bin
	// step reduces to 1e9*1000/1e9/256 ps exactly.
	g := Geometry{TacR: 1, TacG: 1e9, TimeBins: 256}
	step := g.TimeBase() * 1000 / float64(g.TimeBins)
	assert.InDelta(t, 1e9*1000/1e9/256, step, 1e-12)
	assert.InDelta(t, 3.90625, step, 1e-12)
}

func TestModuloTIntensity(t *testing.T) {
	f := openSDT(t, testFileConfig{
		Width: 8, Height: 8, Channels: 1, Bins: 64,
		TacR: 5e-8, TacG: 1,
	}, WithIntensity())

	m := f.ModuloT()
	assert.Equal(t, ModuloParentType, m.ParentType)
	assert.Empty(t, m.Type)
	assert.Zero(t, m.Step)
}

func TestSetupValues(t *testing.T) {
	f := openSDT(t, testFileConfig{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
		Setup: "#SP [SP_IMG_X,I,4]\n#DI [DI_SCALE,F,1.000000]\n",
	})

	values := f.SetupValues()
	assert.Equal(t, "4", values["SP_IMG_X"])
	assert.Equal(t, "1.000000", values["DI_SCALE"])

	// The returned map is a copy.
	values["SP_IMG_X"] = "clobbered"
	again := f.SetupValues()
	assert.Equal(t, "4", again["SP_IMG_X"])
}

func TestSetupValuesAbsent(t *testing.T) {
	f := openSDT(t, testFileConfig{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})
	assert.Nil(t, f.SetupValues())
}

func TestOpenFile(t *testing.T) {
	raw := buildSDT(t, testFileConfig{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})
	path := filepath.Join(t.TempDir(), "acq.sdt")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, f.SizeX())
	require.NoError(t, f.Close())

	// Close is idempotent.
	require.NoError(t, f.Close())
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.sdt"))
	require.Error(t, err)
}

func TestIndependentSessions(t *testing.T) {
	raw := buildSDT(t, testFileConfig{
		Width: 6, Height: 3, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})

	// Distinct open sessions hold distinct cursors; interleaved reads do
	// not disturb each other.
	a, err := Open(bytes.NewReader(raw))
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(bytes.NewReader(raw), WithIntensity())
	require.NoError(t, err)
	defer b.Close()

	pa1, err := a.ReadPlaneFull(1)
	require.NoError(t, err)
	pb, err := b.ReadPlaneFull(0)
	require.NoError(t, err)
	pa2, err := a.ReadPlaneFull(1)
	require.NoError(t, err)

	assert.Equal(t, pa1, pa2)
	assert.NotEqual(t, pa1, pb)
}

func TestWithLogger(t *testing.T) {
	var logged bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logged, nil))

	openSDT(t, testFileConfig{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	}, WithLogger(logger))

	out := logged.String()
	assert.Contains(t, out, "reading header")
	assert.Contains(t, out, "time_bins")
}
