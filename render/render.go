// Package render converts decoded SDT planes into viewable images:
// autoscaled grayscale, false-color heatmaps, PNG previews and animated
// decay GIFs with median-cut palettes.
package render

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/mrjoshuak/go-sdt/sdt"
	"github.com/mrjoshuak/go-sdt/sdtutil"
)

// maxColors is the palette size used for GIF frames.
const maxColors = 256

// Gray8 converts a decoded 16-bit plane to an 8-bit grayscale image,
// scaled so the largest sample maps to white. A max of 0 keeps the
// caller from having to special-case empty planes.
func Gray8(plane []byte, w, h int, max uint16) *image.Gray {
	if max == 0 {
		max = 1
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < w*h && i*2+1 < len(plane); i++ {
		v := binary.LittleEndian.Uint16(plane[i*2:])
		img.Pix[i] = uint8(uint32(v) * 255 / uint32(max))
	}
	return img
}

// Heatmap converts a decoded 16-bit plane to a false-color image using
// a black-red-yellow-white ramp, scaled so the largest sample maps to
// white. FLIM previews conventionally use a hot ramp so that sparse
// photon counts stay visible.
func Heatmap(plane []byte, w, h int, max uint16) *image.RGBA {
	if max == 0 {
		max = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h && i*2+1 < len(plane); i++ {
		v := binary.LittleEndian.Uint16(plane[i*2:])
		r, g, b := hot(float64(v) / float64(max))
		o := i * 4
		img.Pix[o+0] = r
		img.Pix[o+1] = g
		img.Pix[o+2] = b
		img.Pix[o+3] = 0xff
	}
	return img
}

// hot maps t in [0,1] onto the hot color ramp.
func hot(t float64) (r, g, b uint8) {
	return ramp(3 * t), ramp(3*t - 1), ramp(3*t - 2)
}

func ramp(t float64) uint8 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 0xff
	}
	return uint8(t * 255)
}

// WritePNG renders logical plane no as a 16-bit grayscale PNG.
func WritePNG(w io.Writer, f *sdt.File, no int) error {
	img, err := sdtutil.ReadGray16(f, no)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// DecayGIF renders one channel of a bin-resolved file as an animated
// GIF, one frame per time bin. All frames share the channel-wide sample
// maximum so brightness is comparable across the decay. Each frame is
// reduced to a 256-color palette with median-cut quantization. delay is
// the per-frame delay in hundredths of a second.
func DecayGIF(w io.Writer, f *sdt.File, channel, delay int) error {
	if f.Intensity() {
		return fmt.Errorf("render: decay animation needs a bin-resolved file")
	}
	if channel < 0 || channel >= f.SizeC() {
		return fmt.Errorf("render: channel %d of %d", channel, f.SizeC())
	}

	bins := f.TimeBins()
	planes := make([][]byte, bins)
	var max uint16
	for bin := 0; bin < bins; bin++ {
		plane, err := f.ReadPlaneFull(channel*bins + bin)
		if err != nil {
			return err
		}
		planes[bin] = plane
		if m := sdtutil.MaxSample(plane); m > max {
			max = m
		}
	}

	width, height := f.SizeX(), f.SizeY()
	anim := &gif.GIF{
		Image: make([]*image.Paletted, 0, bins),
		Delay: make([]int, 0, bins),
	}
	q := quantize.MedianCutQuantizer{}
	for _, plane := range planes {
		frame := Heatmap(plane, width, height, max)
		pm := image.NewPaletted(frame.Bounds(),
			q.Quantize(make(color.Palette, 0, maxColors), frame))
		draw.Draw(pm, pm.Bounds(), frame, frame.Bounds().Min, draw.Src)
		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}
