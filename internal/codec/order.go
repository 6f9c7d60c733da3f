// Package codec provides fixed-size little-endian payload codecs for the
// event journal.
package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const OrderPayloadSize = 72

// EncodeOrder serializes an order into a fixed-size payload.
func EncodeOrder(dst []byte, order schema.Order) []byte {
	if cap(dst) < OrderPayloadSize {
		dst = make([]byte, OrderPayloadSize)
	} else {
		dst = dst[:OrderPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], order.ID)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(order.SymbolID))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(order.AgentID))
	binary.LittleEndian.PutUint16(dst[16:18], uint16(order.Side))
	binary.LittleEndian.PutUint16(dst[18:20], uint16(order.Kind))
	binary.LittleEndian.PutUint16(dst[20:22], uint16(order.Status))
	binary.LittleEndian.PutUint16(dst[22:24], 0)
	binary.LittleEndian.PutUint64(dst[24:32], uint64(order.Qty))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(order.Price))
	binary.LittleEndian.PutUint64(dst[40:48], uint64(order.FilledQty))
	binary.LittleEndian.PutUint64(dst[48:56], uint64(order.LeavesQty))
	binary.LittleEndian.PutUint64(dst[56:64], uint64(order.CreatedAt))
	binary.LittleEndian.PutUint64(dst[64:72], uint64(order.UpdatedAt))

	return dst
}

// DecodeOrder parses a fixed-size order payload.
func DecodeOrder(src []byte) (schema.Order, bool) {
	if len(src) < OrderPayloadSize {
		return schema.Order{}, false
	}
	return schema.Order{
		ID:        binary.LittleEndian.Uint64(src[0:8]),
		SymbolID:  schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
		AgentID:   schema.AgentID(binary.LittleEndian.Uint32(src[12:16])),
		Side:      schema.Side(binary.LittleEndian.Uint16(src[16:18])),
		Kind:      schema.OrderKind(binary.LittleEndian.Uint16(src[18:20])),
		Status:    schema.OrderStatus(binary.LittleEndian.Uint16(src[20:22])),
		Qty:       schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
		Price:     schema.Price(int64(binary.LittleEndian.Uint64(src[32:40]))),
		FilledQty: schema.Quantity(int64(binary.LittleEndian.Uint64(src[40:48]))),
		LeavesQty: schema.Quantity(int64(binary.LittleEndian.Uint64(src[48:56]))),
		CreatedAt: int64(binary.LittleEndian.Uint64(src[56:64])),
		UpdatedAt: int64(binary.LittleEndian.Uint64(src[64:72])),
	}, true
}
