package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Algo identifies a body compression algorithm. Values match the 3-bit
// ALGO field of the frame header.
type Algo uint8

const (
	AlgoGzip Algo = 0
	AlgoLZ4  Algo = 1
	AlgoZstd Algo = 2
)

const (
	// CompressionThreshold is the body size above which the encoder
	// compresses, chosen to fit a typical MTU.
	CompressionThreshold = 1436
	// MaxBodyLen is the largest body length the 28-bit LEN field can hold.
	MaxBodyLen = (1 << 28) - 1

	compressedBit  = uint32(1) << 31
	algoShift      = 28
	algoMask       = uint32(0x7)
	lenMask        = uint32(MaxBodyLen)
	headerByteSize = 4
)

// Sentinel errors for the frame codec's decode contract.
var (
	ErrUnexpectedEOF   = errors.New("wire: unexpected EOF reading frame")
	ErrInvalidHeader   = errors.New("wire: invalid frame header (reserved algorithm)")
	ErrFrameTooLarge   = errors.New("wire: frame body exceeds maximum length")
	ErrDecompression   = errors.New("wire: decompression failed")
	ErrDeserialization = errors.New("wire: payload deserialization failed")
)

// EncodeFrame compresses body with algo if it exceeds CompressionThreshold,
// and prepends the 4-byte big-endian header. It fails with ErrFrameTooLarge
// if the resulting (possibly compressed) body exceeds the 28-bit LEN field.
func EncodeFrame(body []byte, algo Algo) ([]byte, error) {
	if len(body) > MaxBodyLen {
		return nil, ErrFrameTooLarge
	}

	payload := body
	compressed := false

	if len(body) > CompressionThreshold {
		c, err := compress(body, algo)
		if err != nil {
			return nil, err
		}
		payload = c
		compressed = true
	}

	if len(payload) > MaxBodyLen {
		return nil, ErrFrameTooLarge
	}

	header := uint32(len(payload)) & lenMask
	if compressed {
		header |= compressedBit
		header |= (uint32(algo) & algoMask) << algoShift
	}

	out := make([]byte, headerByteSize+len(payload))
	binary.BigEndian.PutUint32(out[:headerByteSize], header)
	copy(out[headerByteSize:], payload)
	return out, nil
}

// DecodeFrame reads exactly one frame (header + body) from r. It returns
// the raw, decompressed payload.
func DecodeFrame(r io.Reader) ([]byte, error) {
	var headerBytes [headerByteSize]byte
	if _, err := io.ReadFull(r, headerBytes[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}
	header := binary.BigEndian.Uint32(headerBytes[:])

	compressed := header&compressedBit != 0
	algo := Algo((header >> algoShift) & algoMask)
	length := header & lenMask

	if compressed && algo > AlgoZstd {
		return nil, ErrInvalidHeader
	}
	// length was already masked to 28 bits above, so it can never exceed
	// MaxBodyLen on decode; the real ErrFrameTooLarge guard lives in
	// EncodeFrame, where an oversized body is still possible before the
	// header is constructed.

	body := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrUnexpectedEOF
			}
			return nil, err
		}
	}

	if !compressed {
		return body, nil
	}

	plain, err := decompress(body, algo)
	if err != nil {
		return nil, err
	}
	return plain, nil
}

func compress(body []byte, algo Algo) ([]byte, error) {
	switch algo {
	case AlgoGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgoLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgoZstd:
		return zstd.Compress(nil, body)
	default:
		return nil, ErrInvalidHeader
	}
}

func decompress(body []byte, algo Algo) ([]byte, error) {
	switch algo {
	case AlgoGzip:
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
		return out, nil
	case AlgoLZ4:
		r := lz4.NewReader(bytes.NewReader(body))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
		return out, nil
	case AlgoZstd:
		out, err := zstd.Decompress(nil, body)
		if err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
		return out, nil
	default:
		return nil, ErrInvalidHeader
	}
}
