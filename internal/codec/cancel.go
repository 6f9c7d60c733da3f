package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const CancelPayloadSize = 16

// EncodeCancel serializes a cancel request into a fixed-size payload.
func EncodeCancel(dst []byte, cancel schema.CancelRequest) []byte {
	if cap(dst) < CancelPayloadSize {
		dst = make([]byte, CancelPayloadSize)
	} else {
		dst = dst[:CancelPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], cancel.OrderID)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(cancel.SymbolID))
	binary.LittleEndian.PutUint32(dst[12:16], 0)

	return dst
}

// DecodeCancel parses a fixed-size cancel payload.
func DecodeCancel(src []byte) (schema.CancelRequest, bool) {
	if len(src) < CancelPayloadSize {
		return schema.CancelRequest{}, false
	}
	return schema.CancelRequest{
		OrderID:  binary.LittleEndian.Uint64(src[0:8]),
		SymbolID: schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
	}, true
}
