package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"main/internal/schema"
)

var ErrChecksumMismatch = errors.New("journal checksum mismatch")

// Reader decodes journal records sequentially.
type Reader struct {
	r         *bufio.Reader
	headerBuf []byte
	payload   []byte
}

// NewReader wraps an io.Reader with journal decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:         bufio.NewReader(r),
		headerBuf: make([]byte, recordHeaderSize),
	}
}

// Next returns the next record header and payload.
// The payload is only valid until the next call to Next.
func (r *Reader) Next() (schema.EventHeader, []byte, error) {
	var header schema.EventHeader

	n, err := io.ReadFull(r.r, r.headerBuf)
	if err != nil {
		if err == io.EOF && n == 0 {
			return header, nil, io.EOF
		}
		return header, nil, err
	}

	header, payloadLen, err := decodeRecordHeader(r.headerBuf)
	if err != nil {
		return header, nil, err
	}

	if payloadLen > 0 {
		if cap(r.payload) < int(payloadLen) {
			r.payload = make([]byte, payloadLen)
		}
		r.payload = r.payload[:payloadLen]
		if _, err := io.ReadFull(r.r, r.payload); err != nil {
			return header, nil, err
		}
	} else {
		r.payload = r.payload[:0]
	}

	var checksumBuf [recordChecksumSize]byte
	if _, err := io.ReadFull(r.r, checksumBuf[:]); err != nil {
		return header, nil, err
	}

	if expected := binary.LittleEndian.Uint32(checksumBuf[:]); expected != checksum(r.headerBuf, r.payload) {
		return header, nil, ErrChecksumMismatch
	}

	return header, r.payload, nil
}
