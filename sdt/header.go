package sdt

import (
	"fmt"

	"github.com/mrjoshuak/go-sdt/internal/binio"
)

// Fixed header layout constants. All multi-byte fields are little-endian
// on disk regardless of host platform.
const (
	fileHeaderSize  = 42
	blockHeaderSize = 22

	// headerValid values stored in the FileHeader.HeaderValid field.
	bhHeaderValid    = 0x5555
	bhHeaderNotValid = 0x1111

	// blockType flag marking a data block stored as a PKZip archive.
	bhBlockZipped = 0x2000
)

// FileHeader is the fixed 42-byte structure at the start of every SDT
// file. Offsets are absolute file positions; lengths are in bytes.
type FileHeader struct {
	Revision            int16
	InfoOffs            int32
	InfoLength          int16
	SetupOffs           int32
	SetupLength         int16
	DataBlockOffs       int32
	NoOfDataBlocks      int16
	DataBlockLength     int32
	MeasDescBlockOffs   int32
	NoOfMeasDescBlocks  int16
	MeasDescBlockLength int16
	HeaderValid         uint16
	Reserved1           uint32
	Reserved2           uint16
	Chksum              uint16
}

// parseFileHeader decodes the fixed file header and verifies the validity
// marker, which doubles as the format signature.
func parseFileHeader(buf []byte) (FileHeader, error) {
	var h FileHeader
	if len(buf) < fileHeaderSize {
		return h, fmt.Errorf("%w: truncated file header", ErrBadHeader)
	}
	r := binio.NewReader(buf)

	// Reads cannot fail past the length check above.
	h.Revision, _ = r.ReadInt16()
	h.InfoOffs, _ = r.ReadInt32()
	h.InfoLength, _ = r.ReadInt16()
	h.SetupOffs, _ = r.ReadInt32()
	h.SetupLength, _ = r.ReadInt16()
	h.DataBlockOffs, _ = r.ReadInt32()
	h.NoOfDataBlocks, _ = r.ReadInt16()
	h.DataBlockLength, _ = r.ReadInt32()
	h.MeasDescBlockOffs, _ = r.ReadInt32()
	h.NoOfMeasDescBlocks, _ = r.ReadInt16()
	h.MeasDescBlockLength, _ = r.ReadInt16()
	h.HeaderValid, _ = r.ReadUint16()
	h.Reserved1, _ = r.ReadUint32()
	h.Reserved2, _ = r.ReadUint16()
	h.Chksum, _ = r.ReadUint16()

	if h.HeaderValid != bhHeaderValid {
		return h, fmt.Errorf("%w: header validity marker %#04x", ErrBadHeader, h.HeaderValid)
	}
	if h.DataBlockOffs < 0 {
		return h, fmt.Errorf("%w: negative data block offset", ErrBadHeader)
	}
	if h.MeasDescBlockLength < 0 {
		return h, fmt.Errorf("%w: negative measurement description block length",
			ErrBadHeader)
	}
	return h, nil
}

// measureInfoSize is the minimum measurement description block length
// covering every field read by parseMeasureInfo.
const measureInfoSize = 189

// MeasureInfo holds the fields of a measurement description block that
// drive decoding, plus the identifying text fields. Analog front-end
// settings (CFD, SYNC levels and so on) are skipped over; they have no
// effect on the pixel data layout.
type MeasureInfo struct {
	Time     string // acquisition time of day, "hh:mm:ss"
	Date     string // acquisition date, "dd:mm:yyyy"
	ModSerNo string // module serial number

	MeasMode  int16
	TacR      float32 // TAC range, time base numerator
	TacG      int16   // TAC gain, time base denominator
	TacOffset float32
	AdcRE     int16 // ADC resolution, lifetime bins per pixel
	PixTime   float32
	ScanX     int32 // image width in pixels
	ScanY     int32 // image height in pixels
	ScanRX    int32 // routing channels in X
	ScanRY    int32 // routing channels in Y
}

// parseMeasureInfo decodes a measurement description block. The block is
// a packed sequence of fixed-width fields; only the geometry-relevant
// subset is retained.
func parseMeasureInfo(buf []byte) (MeasureInfo, error) {
	var m MeasureInfo
	if len(buf) < measureInfoSize {
		return m, fmt.Errorf("%w: measurement description block too short (%d bytes)",
			ErrBadHeader, len(buf))
	}
	r := binio.NewReader(buf)

	// Reads cannot fail past the length check above.
	m.Time, _ = r.ReadStringN(9)
	m.Date, _ = r.ReadStringN(11)
	m.ModSerNo, _ = r.ReadStringN(16)
	m.MeasMode, _ = r.ReadInt16()
	_ = r.Skip(16) // cfd_ll, cfd_lh, cfd_zc, cfd_hf
	_ = r.Skip(4)  // syn_zc
	_ = r.Skip(2)  // syn_fd
	_ = r.Skip(4)  // syn_hf
	m.TacR, _ = r.ReadFloat32()
	m.TacG, _ = r.ReadInt16()
	m.TacOffset, _ = r.ReadFloat32()
	_ = r.Skip(8) // tac_ll, tac_lh
	m.AdcRE, _ = r.ReadInt16()
	_ = r.Skip(2)  // eal_de
	_ = r.Skip(4)  // ncx, ncy
	_ = r.Skip(2)  // page
	_ = r.Skip(8)  // col_t, rep_t
	_ = r.Skip(2)  // stopt
	_ = r.Skip(1)  // overfl
	_ = r.Skip(2)  // use_motor
	_ = r.Skip(2)  // steps
	_ = r.Skip(4)  // offset
	_ = r.Skip(6)  // dither, incr, mem_bank
	_ = r.Skip(16) // mod_type
	_ = r.Skip(4)  // syn_th
	_ = r.Skip(2)  // dead_time_comp
	_ = r.Skip(6)  // polarity_l, polarity_s, polarity_p
	_ = r.Skip(4)  // linediv, accumulate
	_ = r.Skip(16) // flbck_y, flbck_x, bord_u, bord_l
	m.PixTime, _ = r.ReadFloat32()
	_ = r.Skip(4) // pix_clk, trigger
	m.ScanX, _ = r.ReadInt32()
	m.ScanY, _ = r.ReadInt32()
	m.ScanRX, _ = r.ReadInt32()
	m.ScanRY, _ = r.ReadInt32()

	return m, nil
}

// BlockHeader is the 22-byte structure preceding each TCSPC data block.
type BlockHeader struct {
	BlockNo         int16
	DataOffs        int32
	NextBlockOffs   int32
	BlockType       uint16
	MeasDescBlockNo int16
	LBlockNo        uint32
	BlockLength     uint32
}

// Zipped reports whether the block's data is stored as a PKZip archive.
func (b BlockHeader) Zipped() bool {
	return b.BlockType&bhBlockZipped != 0
}

func parseBlockHeader(buf []byte) (BlockHeader, error) {
	var b BlockHeader
	if len(buf) < blockHeaderSize {
		return b, fmt.Errorf("%w: truncated data block header", ErrBadHeader)
	}
	r := binio.NewReader(buf)

	b.BlockNo, _ = r.ReadInt16()
	b.DataOffs, _ = r.ReadInt32()
	b.NextBlockOffs, _ = r.ReadInt32()
	b.BlockType, _ = r.ReadUint16()
	b.MeasDescBlockNo, _ = r.ReadInt16()
	b.LBlockNo, _ = r.ReadUint32()
	b.BlockLength, _ = r.ReadUint32()

	return b, nil
}

// Geometry is the acquisition geometry recovered from the header. It is
// established once at open time and immutable for the life of the file.
type Geometry struct {
	Width      int
	Height     int
	Channels   int
	TimeBins   int
	Timepoints int

	// Time base calibration: TimeBase() = 1e9 * TacR / TacG nanoseconds.
	TacR float64
	TacG int

	// DataBlockOffset is the absolute offset of the raw histogram bytes
	// in the plane data source.
	DataBlockOffset int64
}

// TimeBase returns the full-scale histogram duration in nanoseconds.
func (g Geometry) TimeBase() float64 {
	if g.TacG == 0 {
		return 0
	}
	return 1e9 * g.TacR / float64(g.TacG)
}

// PaddedWidth returns the on-disk row width. Acquisition hardware pads
// rows to 4-byte boundaries; the padding never appears in decoded output.
func (g Geometry) PaddedWidth() int {
	return g.Width + ((4 - g.Width%4) % 4)
}

// channelBlockSize returns the byte size of one channel's contiguous
// on-disk block.
func (g Geometry) channelBlockSize() int {
	return g.PaddedWidth() * g.Height * g.TimeBins * BytesPerSample
}

func (g Geometry) validate() error {
	if g.Width < 1 || g.Height < 1 || g.Channels < 1 || g.TimeBins < 1 || g.Timepoints < 1 {
		return fmt.Errorf("%w: degenerate geometry %dx%d, %d channels, %d bins",
			ErrBadHeader, g.Width, g.Height, g.Channels, g.TimeBins)
	}
	if g.DataBlockOffset < 0 {
		return fmt.Errorf("%w: negative data offset", ErrBadHeader)
	}
	return nil
}
