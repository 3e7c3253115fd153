package datagram_test

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/datagram"
	"github.com/arinc653/p1harness/internal/apexerr"
)

func mustFreeUDPAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func TestDestination_RecvWouldBlockWhenEmpty(t *testing.T) {
	dst, err := datagram.NewDestination([]string{"127.0.0.1:0"})
	require.NoError(t, err)
	defer dst.Close()

	_, err = dst.Recv(1024)
	require.Error(t, err)
	require.True(t, errors.Is(err, apexerr.ErrWouldBlock))
}

func TestWrongDirectionRejection(t *testing.T) {
	dst, err := datagram.NewDestination([]string{"127.0.0.1:0"})
	require.NoError(t, err)
	defer dst.Close()

	err = dst.Send([]byte("nope"))
	require.Error(t, err)
	require.Equal(t, apexerr.State, apexerr.KindOf(err))

	src, err := datagram.NewSource([]string{"127.0.0.1:9"})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Recv(16)
	require.Error(t, err)
	require.Equal(t, apexerr.State, apexerr.KindOf(err))
}

func TestSendRecvOverLoopback(t *testing.T) {
	// Bind a destination on an OS-assigned loopback port, then point a
	// source at that same address.
	dstConnAddr := mustFreeUDPAddr(t)

	dst, err := datagram.NewDestination([]string{dstConnAddr})
	require.NoError(t, err)
	defer dst.Close()

	src, err := datagram.NewSource([]string{dstConnAddr})
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Send([]byte{0xDE, 0xAD}))

	var (
		got []byte
		gerr error
	)
	for i := 0; i < 50; i++ {
		got, gerr = dst.Recv(64)
		if gerr == nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, gerr)
	require.Equal(t, []byte{0xDE, 0xAD}, got)
}
