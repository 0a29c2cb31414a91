package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripSmallBody(t *testing.T) {
	for _, algo := range []Algo{AlgoGzip, AlgoLZ4, AlgoZstd} {
		body := []byte("small payload, below the compression threshold")
		frame, err := EncodeFrame(body, algo)
		require.NoError(t, err)

		got, err := DecodeFrame(bytes.NewReader(frame))
		require.NoError(t, err)
		require.Equal(t, body, got)
	}
}

func TestFrameRoundTripCompressedBody(t *testing.T) {
	for _, algo := range []Algo{AlgoGzip, AlgoLZ4, AlgoZstd} {
		body := []byte(strings.Repeat("x", CompressionThreshold+1))
		frame, err := EncodeFrame(body, algo)
		require.NoError(t, err)
		require.True(t, frame[0]&0x80 != 0, "compressed bit should be set for a body over threshold")

		got, err := DecodeFrame(bytes.NewReader(frame))
		require.NoError(t, err)
		require.Equal(t, body, got)
	}
}

func TestFrameDecodeInvalidHeaderAlgo(t *testing.T) {
	// compressed bit set, algo field set to a reserved value (7)
	header := []byte{0xF0, 0x00, 0x00, 0x00}
	_, err := DecodeFrame(bytes.NewReader(header))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestFrameDecodeUnexpectedEOF(t *testing.T) {
	_, err := DecodeFrame(bytes.NewReader([]byte{0x00, 0x00}))
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestFrameEncodeRejectsOversizeBody(t *testing.T) {
	big := make([]byte, MaxBodyLen+1)
	_, err := EncodeFrame(big, AlgoZstd)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}
