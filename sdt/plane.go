package sdt

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-sdt/internal/interleave"
)

// ReadPlane reads the (x, y, w, h) sub-rectangle of logical plane no into
// buf and returns buf. Output is w*h unsigned 16-bit little-endian
// samples, row-major, with no padding bytes.
//
// In bin-resolved mode plane no maps to channel no/timeBins and bin
// no%timeBins, and buf is filled in place with that single bin's value
// per pixel. In intensity mode plane no maps to channel no, and each
// output sample is the 16-bit wrapping sum of all bins of that pixel.
//
// Validation happens before any I/O; a stream that ends before the
// requested bytes surfaces as a wrapped I/O error.
func (f *File) ReadPlane(no int, buf []byte, x, y, w, h int) ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if no < 0 || no >= f.Planes() {
		return nil, fmt.Errorf("%w: plane %d of %d", ErrInvalidPlane, no, f.Planes())
	}
	g := f.geom
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > g.Width || y+h > g.Height {
		return nil, fmt.Errorf("%w: (%d,%d)+%dx%d in %dx%d plane",
			ErrInvalidRegion, x, y, w, h, g.Width, g.Height)
	}
	if len(buf) < w*h*BytesPerSample {
		return nil, fmt.Errorf("%w: need %d bytes, have %d",
			ErrShortBuffer, w*h*BytesPerSample, len(buf))
	}

	channel := no
	timeBin := 0
	if !f.intensity {
		channel = no / g.TimeBins
		timeBin = no % g.TimeBins
	}

	padded := g.PaddedWidth()
	slot := g.TimeBins * BytesPerSample // bytes per pixel slot on disk
	blockSize := int64(g.channelBlockSize())

	// Intensity mode stages every bin of every requested pixel in a
	// full-image buffer so that the summation pass below can address
	// pixels by their absolute coordinates. Bin-resolved mode writes
	// straight into the caller's buffer.
	var staging []byte
	if f.intensity {
		staging = make([]byte, g.Width*g.Height*slot)
	}

	pos := f.dataOffset + int64(channel)*blockSize + int64(y)*int64(padded)*int64(slot)
	if _, err := f.src.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("sdt: seeking plane %d: %w", no, err)
	}

	rowBuf := make([]byte, slot*w)
	leadSkip := int64(x) * int64(slot)
	tailSkip := int64(slot) * int64(padded-x-w)
	for row := 0; row < h; row++ {
		if leadSkip > 0 {
			if _, err := f.src.Seek(leadSkip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("sdt: seeking plane %d row %d: %w", no, row, err)
			}
		}
		if _, err := io.ReadFull(f.src, rowBuf); err != nil {
			return nil, fmt.Errorf("sdt: reading plane %d row %d: %w", no, row, err)
		}
		if f.intensity {
			copy(staging[((y+row)*g.Width+x)*slot:], rowBuf)
		} else {
			out := row * w * BytesPerSample
			interleave.ExtractBin(rowBuf, g.TimeBins, BytesPerSample, timeBin,
				buf[out:out+w*BytesPerSample])
		}
		if tailSkip > 0 && row < h-1 {
			if _, err := f.src.Seek(tailSkip, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("sdt: seeking plane %d row %d: %w", no, row, err)
			}
		}
	}

	if !f.intensity {
		return buf, nil
	}

	// Second pass: collapse the lifetime bins of every pixel in the crop
	// window into one wrapping 16-bit sum, one staged row at a time.
	for row := 0; row < h; row++ {
		src := ((y+row)*g.Width + x) * slot
		interleave.Sum16(staging[src:src+w*slot], g.TimeBins,
			buf[row*w*BytesPerSample:])
	}
	return buf, nil
}

// ReadPlaneFull reads the whole of logical plane no into a new buffer.
func (f *File) ReadPlaneFull(no int) ([]byte, error) {
	g := f.geom
	buf := make([]byte, g.Width*g.Height*BytesPerSample)
	return f.ReadPlane(no, buf, 0, 0, g.Width, g.Height)
}
