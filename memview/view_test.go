package memview_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/memview"
)

// fakeMemory is a minimal, non-volatile stand-in for wazero's api.Memory,
// sufficient to exercise memview.View's bounds-checking and encoding
// logic without a real wasm runtime.
type fakeMemory struct {
	buf []byte
}

func (f *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(f.buf)) {
		return nil, false
	}
	return f.buf[offset : offset+byteCount], true
}

func (f *fakeMemory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(f.buf)) {
		return false
	}
	copy(f.buf[offset:], v)
	return true
}

func (f *fakeMemory) WriteUint32Le(offset uint32, v uint32) bool {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return f.Write(offset, b)
}

func (f *fakeMemory) WriteUint64Le(offset uint32, v uint64) bool {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return f.Write(offset, b)
}

func (f *fakeMemory) WriteByte(offset uint32, v byte) bool {
	return f.Write(offset, []byte{v})
}

func (f *fakeMemory) Size() uint32 {
	return uint32(len(f.buf))
}

func newView(size int) (*memview.View, *fakeMemory) {
	m := &fakeMemory{buf: make([]byte, size)}
	return memview.New(m), m
}

func TestSlice_OutOfRange(t *testing.T) {
	v, _ := newView(16)
	_, err := v.Slice(10, 10)
	require.Error(t, err)
}

func TestReadBytes_CopiesData(t *testing.T) {
	v, m := newView(16)
	m.buf[0] = 0xDE
	m.buf[1] = 0xAD

	got, err := v.ReadBytes(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD}, got)

	got[0] = 0x00
	require.Equal(t, byte(0xDE), m.buf[0], "ReadBytes must not alias the backing memory")
}

func TestReadCString_StopsAtNul(t *testing.T) {
	v, m := newView(64)
	copy(m.buf, "worker\x00garbage")

	s, err := v.ReadCString(0, 32)
	require.NoError(t, err)
	require.Equal(t, "worker", s)
}

func TestReadCString_BadEncoding(t *testing.T) {
	v, m := newView(8)
	m.buf[0] = 0xFF
	m.buf[1] = 0xFE

	_, err := v.ReadCString(0, 8)
	require.Error(t, err)
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	v, _ := newView(16)
	require.NoError(t, v.WriteI64(0, -42))
	require.NoError(t, v.WriteI32(8, 7))
	require.NoError(t, v.WriteU8(12, 0xAB))

	raw, err := v.ReadBytes(0, 16)
	require.NoError(t, err)

	require.Equal(t, int64(-42), int64(binary.LittleEndian.Uint64(raw[0:8])))
	require.Equal(t, int32(7), int32(binary.LittleEndian.Uint32(raw[8:12])))
	require.Equal(t, byte(0xAB), raw[12])
}

func TestReadRecord(t *testing.T) {
	type header struct {
		Period       int64
		TimeCapacity int64
		EntryPoint   int32
		StackSize    uint32
		BasePriority int32
		Deadline     int32
	}

	v, _ := newView(64)
	require.NoError(t, v.WriteI64(0, 10_000_000))
	require.NoError(t, v.WriteI64(8, 1_000_000))
	require.NoError(t, v.WriteI32(16, 3))
	require.NoError(t, v.WriteI32(20, 0x100000))
	require.NoError(t, v.WriteI32(24, 0))
	require.NoError(t, v.WriteI32(28, 0))

	var h header
	require.NoError(t, v.ReadRecord(0, &h))
	require.Equal(t, int64(10_000_000), h.Period)
	require.Equal(t, int64(1_000_000), h.TimeCapacity)
	require.Equal(t, int32(3), h.EntryPoint)
	require.Equal(t, uint32(0x100000), h.StackSize)
}
