package process_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/memview"
	"github.com/arinc653/p1harness/process"
)

type fakeMemory struct{ buf []byte }

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
func (f *fakeMemory) WriteByte(offset uint32, v byte) bool { return f.Write(offset, []byte{v}) }
func (f *fakeMemory) Size() uint32                         { return uint32(len(f.buf)) }

// TestDecodeAttribute decodes a full wire buffer (32-byte header plus
// NUL-terminated name) into the expected fields.
func TestDecodeAttribute(t *testing.T) {
	m := &fakeMemory{buf: make([]byte, 72)}
	v := memview.New(m)

	require.NoError(t, v.WriteI64(0, 10_000_000))
	require.NoError(t, v.WriteI64(8, 1_000_000))
	require.NoError(t, v.WriteI32(16, 3))
	require.NoError(t, v.WriteI32(20, 0x100000))
	require.NoError(t, v.WriteI32(24, 0))
	require.NoError(t, v.WriteI32(28, 0))
	require.NoError(t, v.WriteBytes(32, []byte("worker\x00")))

	a, err := process.DecodeAttribute(v, 0)
	require.NoError(t, err)
	require.Equal(t, process.Attribute{
		Period:       10_000_000,
		TimeCapacity: 1_000_000,
		EntryPoint:   3,
		StackSize:    0x100000,
		BasePriority: 0,
		Deadline:     0,
		Name:         "worker",
	}, a)
}

func TestAttributeValidate(t *testing.T) {
	a := process.Attribute{Name: "ok", StackSize: 4096}
	require.NoError(t, a.Validate())

	a.Name = ""
	require.Error(t, a.Validate())
}
