package abi

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/memview"
	"github.com/arinc653/p1harness/partition"
	"github.com/arinc653/p1harness/process"
	"github.com/arinc653/p1harness/sampling"
)

// fakeMemory is a plain byte slice satisfying memview.Memory, reused
// here so trampolines can be driven without a wazero runtime.
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

// fakeController lets trampolines.go be unit-tested without a real
// PartitionContext; each method records its call and returns
// pre-programmed results.
type fakeController struct {
	createdAttr      process.Attribute
	createPID        int
	createErr        error
	startedPID       int
	startErr         error
	mode             partition.Mode
	modeErr          error
	createdChannel   string
	createdSID       int
	createPortErr    error
	written          []byte
	writeErr         error
	readMsg          sampling.Message
	readValidity     sampling.Validity
	readErr          error
	reportedMsg      string
	raisedCode       int32
	raisedMsg        string
	periodicWaitErr  error
	processNameCalls int
}

func (f *fakeController) CreateProcess(attr process.Attribute) (int, error) {
	f.createdAttr = attr
	return f.createPID, f.createErr
}
func (f *fakeController) Start(pid int) error {
	f.startedPID = pid
	return f.startErr
}
func (f *fakeController) SetPartitionMode(ctx context.Context, mode partition.Mode) error {
	f.mode = mode
	return f.modeErr
}
func (f *fakeController) CreateSamplingPort(name string, maxSize int, direction config.Direction, refresh time.Duration) (int, error) {
	f.createdChannel = name
	return f.createdSID, f.createPortErr
}
func (f *fakeController) WriteSamplingMessage(sid int, data []byte) error {
	f.written = data
	return f.writeErr
}
func (f *fakeController) ReadSamplingMessage(sid int) (sampling.Message, sampling.Validity, error) {
	return f.readMsg, f.readValidity, f.readErr
}
func (f *fakeController) ReportApplicationMessage(ctx context.Context, msg string) {
	f.reportedMsg = msg
}
func (f *fakeController) RaiseApplicationError(ctx context.Context, code int32, msg string) {
	f.raisedCode = code
	f.raisedMsg = msg
}
func (f *fakeController) PeriodicWait() error { return f.periodicWaitErr }
func (f *fakeController) ProcessName(ctx context.Context) string {
	f.processNameCalls++
	return "main"
}

func newView(size int) (*memview.View, *fakeMemory) {
	m := &fakeMemory{buf: make([]byte, size)}
	return memview.New(m), m
}

func TestCreateProcess(t *testing.T) {
	v, m := newView(128)
	require.NoError(t, v.WriteI64(0, 1))
	require.NoError(t, v.WriteI64(8, 1))
	require.NoError(t, v.WriteI32(16, 7))
	require.NoError(t, v.WriteI32(20, 65536))
	require.NoError(t, v.WriteBytes(32, []byte("A\x00")))

	fc := &fakeController{createPID: 3}
	s := NewShim(fc)

	s.createProcess(context.Background(), v, 0, 100, 108)

	require.Equal(t, "A", fc.createdAttr.Name)

	raw, ok := m.Read(100, 8)
	require.True(t, ok)
	require.Equal(t, int64(3), int64(binary.LittleEndian.Uint64(raw)))

	status, ok := m.Read(108, 1)
	require.True(t, ok)
	require.Equal(t, byte(0), status[0])
}

func TestStart(t *testing.T) {
	v, m := newView(16)
	fc := &fakeController{}
	s := NewShim(fc)

	s.start(context.Background(), v, 5, 8)

	require.Equal(t, 5, fc.startedPID)
	status, ok := m.Read(8, 1)
	require.True(t, ok)
	require.Equal(t, byte(0), status[0])
}

func TestCreateSamplingPort(t *testing.T) {
	v, m := newView(64)
	require.NoError(t, v.WriteBytes(0, []byte("ping\x00")))

	fc := &fakeController{createdSID: 2}
	s := NewShim(fc)

	s.createSamplingPort(context.Background(), v, 0, 256, uint32(config.DirectionSource), int64(time.Second), 40, 48)

	require.Equal(t, "ping", fc.createdChannel)
	raw, ok := m.Read(40, 8)
	require.True(t, ok)
	require.Equal(t, int64(2), int64(binary.LittleEndian.Uint64(raw)))
}

func TestWriteSamplingMessage(t *testing.T) {
	v, m := newView(32)
	require.NoError(t, v.WriteBytes(0, []byte{0xDE, 0xAD}))

	fc := &fakeController{}
	s := NewShim(fc)

	s.writeSamplingMessage(context.Background(), v, 1, 0, 2, 16)

	require.Equal(t, []byte{0xDE, 0xAD}, fc.written)
	status, ok := m.Read(16, 1)
	require.True(t, ok)
	require.Equal(t, byte(0), status[0])
}

func TestReadSamplingMessage(t *testing.T) {
	v, m := newView(64)
	fc := &fakeController{
		readMsg:      sampling.Message{Bytes: []byte{0xDE, 0xAD}},
		readValidity: sampling.Valid,
	}
	s := NewShim(fc)

	s.readSamplingMessage(context.Background(), v, 1, 0, 16, 24, 32)

	raw, ok := m.Read(0, 2)
	require.True(t, ok)
	require.Equal(t, []byte{0xDE, 0xAD}, raw)

	lenRaw, ok := m.Read(16, 4)
	require.True(t, ok)
	require.Equal(t, int32(2), int32(binary.LittleEndian.Uint32(lenRaw)))

	validity, ok := m.Read(24, 4)
	require.True(t, ok)
	require.Equal(t, int32(sampling.Valid), int32(binary.LittleEndian.Uint32(validity)))
}

func TestReportApplicationMessage(t *testing.T) {
	v, _ := newView(32)
	require.NoError(t, v.WriteBytes(0, []byte("hello")))

	fc := &fakeController{}
	s := NewShim(fc)

	s.reportApplicationMessage(context.Background(), v, 0, 5, 16)
	require.Equal(t, "hello", fc.reportedMsg)
}

func TestRaiseApplicationError(t *testing.T) {
	v, _ := newView(32)
	require.NoError(t, v.WriteBytes(0, []byte("bad")))

	fc := &fakeController{}
	s := NewShim(fc)

	s.raiseApplicationError(context.Background(), v, 7, 0, 3, 16)
	require.Equal(t, int32(7), fc.raisedCode)
	require.Equal(t, "bad", fc.raisedMsg)
}

// TestLogCallAttributesEveryOperation checks that every host call, not
// just REPORT_APPLICATION_MESSAGE/RAISE_APPLICATION_ERROR, resolves
// and logs the calling process's name before dispatch.
func TestLogCallAttributesEveryOperation(t *testing.T) {
	v, _ := newView(16)
	fc := &fakeController{}
	s := NewShim(fc)

	s.start(context.Background(), v, 0, 8)
	s.periodicWait(context.Background(), v, 0)

	require.Equal(t, 2, fc.processNameCalls)
}

// A wire direction outside {0, 1} never reaches the controller; the
// status byte is still written.
func TestCreateSamplingPort_InvalidDirection(t *testing.T) {
	v, m := newView(64)
	require.NoError(t, v.WriteBytes(0, []byte("ping\x00")))

	fc := &fakeController{createdSID: 2}
	s := NewShim(fc)

	s.createSamplingPort(context.Background(), v, 0, 256, 7, int64(time.Second), 40, 48)

	require.Empty(t, fc.createdChannel)
	status, ok := m.Read(48, 1)
	require.True(t, ok)
	require.Equal(t, byte(0), status[0])
}

func TestPeriodicWait(t *testing.T) {
	v, m := newView(8)
	fc := &fakeController{}
	s := NewShim(fc)

	s.periodicWait(context.Background(), v, 0)
	status, ok := m.Read(0, 1)
	require.True(t, ok)
	require.Equal(t, byte(0), status[0])
}
