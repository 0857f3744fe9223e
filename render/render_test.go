package render

import (
	"bytes"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-sdt/internal/sdttest"
	"github.com/mrjoshuak/go-sdt/sdt"
)

func openSDT(t *testing.T, cfg sdttest.Config, opts ...sdt.Option) *sdt.File {
	t.Helper()
	f, err := sdt.Open(bytes.NewReader(sdttest.Build(t, cfg)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func le16(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func TestGray8Scaling(t *testing.T) {
	plane := append(append(le16(0), le16(100)...), le16(200)...)

	img := Gray8(plane, 3, 1, 200)
	assert.Equal(t, uint8(0), img.Pix[0])
	assert.Equal(t, uint8(127), img.Pix[1])
	assert.Equal(t, uint8(255), img.Pix[2])
}

func TestGray8EmptyPlane(t *testing.T) {
	img := Gray8(le16(0), 1, 1, 0)
	assert.Equal(t, uint8(0), img.Pix[0])
}

func TestHeatmapEndpoints(t *testing.T) {
	plane := append(le16(0), le16(300)...)

	img := Heatmap(plane, 2, 1, 300)
	// Zero maps to black, the maximum to white. Alpha is opaque.
	assert.Equal(t, []uint8{0, 0, 0, 0xff}, []uint8(img.Pix[0:4]))
	assert.Equal(t, []uint8{0xff, 0xff, 0xff, 0xff}, []uint8(img.Pix[4:8]))
}

func TestHotRampMonotonic(t *testing.T) {
	prev := -1
	for i := 0; i <= 10; i++ {
		r, g, b := hot(float64(i) / 10)
		sum := int(r) + int(g) + int(b)
		assert.GreaterOrEqual(t, sum, prev, "step %d", i)
		prev = sum
	}
}

func TestWritePNG(t *testing.T) {
	f := openSDT(t, sdttest.Config{
		Width: 5, Height: 3, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, f, 0))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestWritePNGInvalidPlane(t *testing.T) {
	f := openSDT(t, sdttest.Config{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})

	var buf bytes.Buffer
	err := WritePNG(&buf, f, 99)
	assert.ErrorIs(t, err, sdt.ErrInvalidPlane)
	assert.Zero(t, buf.Len())
}

func TestDecayGIF(t *testing.T) {
	f := openSDT(t, sdttest.Config{
		Width: 6, Height: 4, Channels: 2, Bins: 3,
		TacR: 1, TacG: 1,
	})

	var buf bytes.Buffer
	require.NoError(t, DecayGIF(&buf, f, 1, 10))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 3)
	for i, frame := range anim.Image {
		assert.Equal(t, 6, frame.Bounds().Dx(), "frame %d", i)
		assert.Equal(t, 4, frame.Bounds().Dy(), "frame %d", i)
		assert.LessOrEqual(t, len(frame.Palette), 256, "frame %d", i)
	}
	assert.Equal(t, []int{10, 10, 10}, anim.Delay)
}

func TestDecayGIFValidation(t *testing.T) {
	binResolved := openSDT(t, sdttest.Config{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	})
	var buf bytes.Buffer
	assert.Error(t, DecayGIF(&buf, binResolved, 3, 10), "channel out of range")

	intensity := openSDT(t, sdttest.Config{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 1, TacG: 1,
	}, sdt.WithIntensity())
	assert.Error(t, DecayGIF(&buf, intensity, 0, 10), "intensity files have one frame only")
}
