package sdt

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/zip"
	"golang.org/x/exp/maps"

	"github.com/mrjoshuak/go-sdt/internal/binio"
)

// Option configures how a file is opened.
type Option func(*options)

type options struct {
	intensity bool
	logger    *slog.Logger
}

// WithIntensity opens the file in intensity mode: the lifetime bins of
// each pixel are summed into a single 16-bit value per channel per
// timepoint. The sum wraps at 65536. The mode is fixed for the life of
// the open file.
func WithIntensity() Option {
	return func(o *options) {
		o.intensity = true
	}
}

// WithLogger sets the logger for informational decode events. Logging is
// observational only and never affects decoding. The default discards
// all records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// File is an open SDT file. It owns the parsed geometry, the read mode
// and the plane data source.
//
// A File is not safe for concurrent plane reads: the underlying stream's
// seek cursor is shared mutable state. Distinct Files are independent.
type File struct {
	header FileHeader
	info   MeasureInfo
	block  BlockHeader
	geom   Geometry
	modulo ModuloT

	intensity bool
	meta      *Metadata
	setup     map[string]string
	logger    *slog.Logger

	src        io.ReadSeeker // histogram data source
	dataOffset int64         // offset of histogram bytes within src
	closer     io.Closer
	closed     bool
}

// OpenFile opens an SDT file from the filesystem. The returned File must
// be closed to release the file handle.
func OpenFile(path string, opts ...Option) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := Open(r, opts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	f.closer = r
	return f, nil
}

// Open reads the SDT header from r and prepares plane reads. The stream
// must be positioned anywhere; Open seeks to the start itself. The stream
// is owned by the returned File until Close.
func Open(r io.ReadSeeker, opts ...Option) (*File, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	f := &File{
		intensity: o.intensity,
		logger:    o.logger,
		meta:      NewMetadata(),
		src:       r,
	}

	f.logger.Info("reading header")
	if err := f.readHeader(r); err != nil {
		return nil, err
	}

	f.logger.Info("populating metadata")
	f.populateMetadata()
	f.modulo = f.buildModuloT()

	return f, nil
}

// readHeader parses the fixed header, measurement description and setup
// regions, resolves the geometry and locates (decompressing if needed)
// the histogram data.
func (f *File) readHeader(r io.ReadSeeker) error {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("sdt: sizing stream: %w", err)
	}

	hdr := make([]byte, fileHeaderSize)
	if err := readAt(r, 0, hdr); err != nil {
		return fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	f.header, err = parseFileHeader(hdr)
	if err != nil {
		return err
	}

	if f.header.NoOfMeasDescBlocks < 1 || f.header.MeasDescBlockOffs <= 0 {
		return fmt.Errorf("%w: no measurement description block", ErrBadHeader)
	}
	mdb := make([]byte, int(f.header.MeasDescBlockLength))
	if err := readAt(r, int64(f.header.MeasDescBlockOffs), mdb); err != nil {
		return fmt.Errorf("%w: reading measurement description: %v", ErrBadHeader, err)
	}
	f.info, err = parseMeasureInfo(mdb)
	if err != nil {
		return err
	}

	var setup map[string]string
	if f.header.SetupOffs > 0 && f.header.SetupLength > 0 {
		raw := make([]byte, int(f.header.SetupLength))
		if err := readAt(r, int64(f.header.SetupOffs), raw); err != nil {
			return fmt.Errorf("%w: reading setup block: %v", ErrBadHeader, err)
		}
		setup = parseSetup(raw)
	}
	f.setup = setup

	bh := make([]byte, blockHeaderSize)
	if err := readAt(r, int64(f.header.DataBlockOffs), bh); err != nil {
		return fmt.Errorf("%w: reading data block header: %v", ErrBadHeader, err)
	}
	f.block, err = parseBlockHeader(bh)
	if err != nil {
		return err
	}

	f.geom = f.deriveGeometry(setup)
	f.dataOffset = int64(f.header.DataBlockOffs) + blockHeaderSize

	if f.block.Zipped() {
		data, err := f.inflateBlock(r, size)
		if err != nil {
			return err
		}
		f.src = bytes.NewReader(data)
		f.dataOffset = 0
	} else {
		f.src = r
		if f.dataOffset > size {
			return fmt.Errorf("%w: data block offset %d beyond end of file (%d bytes)",
				ErrBadHeader, f.dataOffset, size)
		}
	}
	f.geom.DataBlockOffset = f.dataOffset

	return f.geom.validate()
}

// deriveGeometry resolves the acquisition geometry from the measurement
// description, falling back to setup block parameters where the scan
// fields are zero, then to the instrument defaults.
func (f *File) deriveGeometry(setup map[string]string) Geometry {
	g := Geometry{
		Width:      int(f.info.ScanX),
		Height:     int(f.info.ScanY),
		Channels:   int(f.info.ScanRX),
		TimeBins:   int(f.info.AdcRE),
		Timepoints: 1,
		TacR:       float64(f.info.TacR),
		TacG:       int(f.info.TacG),
	}

	if g.Width < 1 {
		if v, ok := setupInt(setup, spImgX); ok && v > 0 {
			g.Width = v
		} else {
			g.Width = 128
		}
	}
	if g.Height < 1 {
		if v, ok := setupInt(setup, spImgY); ok && v > 0 {
			g.Height = v
		} else {
			g.Height = 128
		}
	}
	if g.TimeBins < 1 {
		if v, ok := setupInt(setup, spAdcRE); ok && v > 0 {
			g.TimeBins = v
		}
	}
	if g.Channels < 1 {
		if v, ok := setupInt(setup, spScanRX); ok && v > 0 {
			g.Channels = v
		} else {
			g.Channels = 1
		}
	}
	if g.TacG == 0 {
		g.TacG = 1
	}
	return g
}

// inflateBlock decompresses a zipped data block. The block region holds a
// PKZip archive whose first entry contains the raw histogram bytes.
func (f *File) inflateBlock(r io.ReadSeeker, fileSize int64) ([]byte, error) {
	start := int64(f.header.DataBlockOffs) + blockHeaderSize
	end := fileSize
	if next := int64(f.block.NextBlockOffs); next > start && next <= fileSize {
		end = next
	}
	raw := make([]byte, end-start)
	if err := readAt(r, start, raw); err != nil {
		return nil, fmt.Errorf("sdt: reading zipped data block: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: zipped data block: %v", ErrBadHeader, err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("%w: zipped data block has no entries", ErrBadHeader)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: zipped data block: %v", ErrBadHeader, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: inflating data block: %v", ErrBadHeader, err)
	}
	return data, nil
}

// populateMetadata records the observational header values. The original
// key names are kept for downstream consumers.
func (f *File) populateMetadata() {
	f.meta.Set("time bins", f.geom.TimeBins)
	f.meta.Set("channels", f.geom.Channels)
	f.meta.Set("time base", f.geom.TimeBase())
	f.meta.Set("revision", int(f.header.Revision))
	f.meta.Set("module serial number", f.info.ModSerNo)
	f.meta.Set("acquisition date", f.info.Date)
	f.meta.Set("acquisition time", f.info.Time)
	f.meta.Set("measurement mode", int(f.info.MeasMode))

	f.logger.Info("header parsed",
		"time_bins", f.geom.TimeBins,
		"channels", f.geom.Channels,
		"time_base_ns", f.geom.TimeBase())
}

// buildModuloT constructs the lifetime sub-axis descriptor. In intensity
// mode bins are collapsed, so only the parent axis type is reported.
func (f *File) buildModuloT() ModuloT {
	m := ModuloT{ParentType: ModuloParentType}
	if f.intensity {
		return m
	}
	m.Type = ModuloTypeLifetime
	m.TypeDescription = ModuloDescription
	m.Unit = ModuloUnit
	m.Start = 0

	// Time base rescaled from nanoseconds to picoseconds, spread across
	// the histogram bins.
	m.Step = f.geom.TimeBase() * 1000 / float64(f.geom.TimeBins)
	m.End = m.Step * float64(f.SizeT()-1)
	return m
}

// Close releases the underlying stream and resets the session state.
// Plane reads after Close fail with ErrClosed.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.geom = Geometry{}
	f.src = nil
	if f.closer != nil {
		err := f.closer.Close()
		f.closer = nil
		return err
	}
	return nil
}

// Geometry returns the parsed acquisition geometry.
func (f *File) Geometry() Geometry {
	return f.geom
}

// Header returns the fixed file header.
func (f *File) Header() FileHeader {
	return f.header
}

// Info returns the decoded measurement description fields.
func (f *File) Info() MeasureInfo {
	return f.info
}

// Intensity reports whether the file was opened in intensity mode.
func (f *File) Intensity() bool {
	return f.intensity
}

// TimeBins returns the number of bins in the lifetime histogram.
func (f *File) TimeBins() int {
	return f.geom.TimeBins
}

// ChannelCount returns the number of spectral channels.
func (f *File) ChannelCount() int {
	return f.geom.Channels
}

// Metadata returns the metadata store populated at open time.
func (f *File) Metadata() *Metadata {
	return f.meta
}

// SetupValues returns the parameters parsed from the ASCII setup block,
// or nil when the file carries none. The map is a copy; mutating it does
// not affect the file.
func (f *File) SetupValues() map[string]string {
	return maps.Clone(f.setup)
}

// ModuloT returns the lifetime sub-axis descriptor for the T dimension.
func (f *File) ModuloT() ModuloT {
	return f.modulo
}

// SizeX returns the image width in pixels.
func (f *File) SizeX() int { return f.geom.Width }

// SizeY returns the image height in pixels.
func (f *File) SizeY() int { return f.geom.Height }

// SizeZ returns the focal plane count, always 1 for SDT data.
func (f *File) SizeZ() int { return 1 }

// SizeT returns the logical T extent: timepoints times lifetime bins in
// bin-resolved mode, timepoints alone in intensity mode.
func (f *File) SizeT() int {
	if f.intensity {
		return f.geom.Timepoints
	}
	return f.geom.TimeBins * f.geom.Timepoints
}

// SizeC returns the spectral channel count.
func (f *File) SizeC() int { return f.geom.Channels }

// Planes returns the total number of logical planes.
func (f *File) Planes() int {
	return f.SizeZ() * f.SizeC() * f.SizeT()
}

// readAt seeks to off and fills buf, failing on a short read.
func readAt(r io.ReadSeeker, off int64, buf []byte) error {
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return err
	}
	return binio.NewStreamReader(r).ReadBytesInto(buf)
}
