// Package sdttest builds synthetic SDT files for tests.
//
// The generated files carry a valid fixed header, a measurement
// description block, an optional setup block and one data block whose
// histogram values follow a deterministic per-pixel formula, so tests
// can reconstruct the expected output of any decode path.
package sdttest

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/mrjoshuak/go-sdt/internal/binio"
)

// On-disk layout constants, mirrored from the sdt package.
const (
	fileHeaderSize  = 42
	blockHeaderSize = 22
	measureInfoSize = 189
	headerValid     = 0x5555
	blockZipped     = 0x2000
)

// BinValue is the default deterministic per-bin pixel value.
func BinValue(channel, x, y, bin int) uint16 {
	return uint16(1000*channel + 100*y + 10*x + bin)
}

// Config describes a synthetic SDT file.
type Config struct {
	Width, Height int
	Channels      int
	Bins          int
	TacR          float32
	TacG          int16

	ZeroScan bool   // write zero scan fields to exercise fallbacks
	ZeroADC  bool   // write a zero ADC resolution
	Setup    string // raw setup block text, optional
	Zipped   bool   // store the data block as a PKZip archive

	Value  func(channel, x, y, bin int) uint16 // defaults to BinValue
	NoData bool                                // omit histogram bytes entirely
}

// Histogram renders the on-disk data region: per channel, row-padded to
// 4 bytes, bins interleaved within each pixel slot. Padding pixels carry
// 0xffff so that any leakage into decoded output is caught.
func (cfg Config) Histogram() []byte {
	value := cfg.Value
	if value == nil {
		value = BinValue
	}
	padded := cfg.Width + ((4 - cfg.Width%4) % 4)
	w := binio.NewBufferWriter(cfg.Channels * padded * cfg.Height * cfg.Bins * 2)
	for c := 0; c < cfg.Channels; c++ {
		for y := 0; y < cfg.Height; y++ {
			for x := 0; x < padded; x++ {
				for bin := 0; bin < cfg.Bins; bin++ {
					if x >= cfg.Width {
						w.WriteUint16(0xffff)
					} else {
						w.WriteUint16(value(c, x, y, bin))
					}
				}
			}
		}
	}
	return w.Bytes()
}

// Build assembles a complete synthetic SDT file.
func Build(t testing.TB, cfg Config) []byte {
	t.Helper()

	setupOffs := fileHeaderSize
	measOffs := setupOffs + len(cfg.Setup)
	blockOffs := measOffs + measureInfoSize

	var data []byte
	if !cfg.NoData {
		data = cfg.Histogram()
	}
	blockType := uint16(1)
	if cfg.Zipped {
		blockType |= blockZipped
		var archive bytes.Buffer
		zw := zip.NewWriter(&archive)
		entry, err := zw.Create("data_block")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		data = archive.Bytes()
	}

	w := binio.NewBufferWriter(blockOffs + blockHeaderSize + len(data))

	// Fixed file header.
	w.WriteInt16(15) // revision
	w.WriteInt32(0)  // infoOffs
	w.WriteInt16(0)  // infoLength
	w.WriteInt32(int32(setupOffs))
	w.WriteInt16(int16(len(cfg.Setup)))
	w.WriteInt32(int32(blockOffs))
	w.WriteInt16(1) // noOfDataBlocks
	w.WriteInt32(int32(len(data)))
	w.WriteInt32(int32(measOffs))
	w.WriteInt16(1) // noOfMeasDescBlocks
	w.WriteInt16(measureInfoSize)
	w.WriteUint16(headerValid)
	w.WriteUint32(0) // reserved1
	w.WriteUint16(0) // reserved2
	w.WriteUint16(0) // chksum

	w.WriteBytes([]byte(cfg.Setup))

	// Measurement description block.
	w.WriteStringN("12:34:56", 9)
	w.WriteStringN("01:02:2024", 11)
	w.WriteStringN("SPC-150", 16)
	w.WriteInt16(13) // measMode
	w.WriteZeros(26) // cfd and sync settings
	w.WriteFloat32(cfg.TacR)
	w.WriteInt16(cfg.TacG)
	w.WriteFloat32(0) // tacOffset
	w.WriteZeros(8)   // tac limits
	if cfg.ZeroADC {
		w.WriteInt16(0)
	} else {
		w.WriteInt16(int16(cfg.Bins))
	}
	w.WriteZeros(81)  // unread acquisition settings
	w.WriteFloat32(0) // pixTime
	w.WriteZeros(4)   // pixClk, trigger
	if cfg.ZeroScan {
		w.WriteZeros(16)
	} else {
		w.WriteInt32(int32(cfg.Width))
		w.WriteInt32(int32(cfg.Height))
		w.WriteInt32(int32(cfg.Channels))
		w.WriteInt32(1)
	}

	// Data block header.
	dataStart := blockOffs + blockHeaderSize
	w.WriteInt16(1) // blockNo
	w.WriteInt32(int32(dataStart))
	w.WriteInt32(int32(dataStart + len(data))) // nextBlockOffs
	w.WriteUint16(blockType)
	w.WriteInt16(0)  // measDescBlockNo
	w.WriteUint32(1) // lblockNo
	w.WriteUint32(uint32(len(data)))

	w.WriteBytes(data)
	return w.Bytes()
}
