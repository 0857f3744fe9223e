// Package binio provides little-endian binary decoding and encoding
// utilities for reading and writing SDT file data.
//
// Becker & Hickl SDT files use little-endian byte order for all multi-byte
// values regardless of the host platform. This package provides
// bounds-checked readers over byte slices and streams, and a growing
// buffer writer used to assemble binary regions.
package binio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because the
	// buffer ends before the requested bytes.
	ErrShortBuffer = errors.New("binio: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("binio: negative size")
)

// ByteOrder is the byte order used by SDT files.
var ByteOrder = binary.LittleEndian

// Reader provides little-endian binary reading from a byte slice.
// It maintains a read position and bounds-checks every operation.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if r.pos+n > len(r.data) {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// ReadUint16 reads an unsigned 16-bit integer in little-endian order.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt16 reads a signed 16-bit integer in little-endian order.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit integer in little-endian order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer in little-endian order.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFloat32 reads a 32-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadStringN reads a string of exactly n bytes, stopping at the first
// null byte. All n bytes are consumed regardless of where the null falls.
// SDT fixed-width text fields (acquisition time, date, module serial
// number) are stored this way.
func (r *Reader) ReadStringN(n int) (string, error) {
	if n < 0 {
		return "", ErrNegativeSize
	}
	if r.pos+n > len(r.data) {
		return "", ErrShortBuffer
	}
	end := r.pos + n
	for i := r.pos; i < end; i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = end
			return s, nil
		}
	}
	s := string(r.data[r.pos:end])
	r.pos = end
	return s, nil
}

// BufferWriter provides a growing buffer for writing little-endian binary
// data. It is used to assemble header regions and synthetic SDT files.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the written data. The returned slice is valid until the
// next write operation.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// WriteByte writes a single byte.
func (w *BufferWriter) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *BufferWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteZeros writes n zero bytes.
func (w *BufferWriter) WriteZeros(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// WriteUint16 writes an unsigned 16-bit integer in little-endian order.
func (w *BufferWriter) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

// WriteInt16 writes a signed 16-bit integer in little-endian order.
func (w *BufferWriter) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 writes an unsigned 32-bit integer in little-endian order.
func (w *BufferWriter) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteInt32 writes a signed 32-bit integer in little-endian order.
func (w *BufferWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteFloat32 writes a 32-bit IEEE 754 floating-point number.
func (w *BufferWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteStringN writes a string padded or truncated to exactly n bytes.
// Shorter strings are null-padded.
func (w *BufferWriter) WriteStringN(s string, n int) {
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	copyLen := len(s)
	if copyLen > n {
		copyLen = n
	}
	copy(w.buf[start:], s[:copyLen])
}

// StreamReader reads fixed-size regions from an io.Reader, failing on
// short reads. Header regions located by seeking are filled through it.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader creates a StreamReader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// ReadBytesInto reads exactly len(dst) bytes into the provided slice.
func (r *StreamReader) ReadBytesInto(dst []byte) error {
	_, err := io.ReadFull(r.r, dst)
	return err
}
