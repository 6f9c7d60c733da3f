package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const TradePayloadSize = 64

// EncodeTrade serializes a trade into a fixed-size payload.
func EncodeTrade(dst []byte, trade schema.Trade) []byte {
	if cap(dst) < TradePayloadSize {
		dst = make([]byte, TradePayloadSize)
	} else {
		dst = dst[:TradePayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], trade.ID)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(trade.SymbolID))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(trade.BuyAgentID))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(trade.SellAgentID))
	binary.LittleEndian.PutUint32(dst[20:24], 0)
	binary.LittleEndian.PutUint64(dst[24:32], uint64(trade.Price))
	binary.LittleEndian.PutUint64(dst[32:40], uint64(trade.Qty))
	binary.LittleEndian.PutUint64(dst[40:48], trade.BuyOrderID)
	binary.LittleEndian.PutUint64(dst[48:56], trade.SellOrderID)
	binary.LittleEndian.PutUint64(dst[56:64], uint64(trade.TsNano))

	return dst
}

// DecodeTrade parses a fixed-size trade payload.
func DecodeTrade(src []byte) (schema.Trade, bool) {
	if len(src) < TradePayloadSize {
		return schema.Trade{}, false
	}
	return schema.Trade{
		ID:          binary.LittleEndian.Uint64(src[0:8]),
		SymbolID:    schema.SymbolID(binary.LittleEndian.Uint32(src[8:12])),
		BuyAgentID:  schema.AgentID(binary.LittleEndian.Uint32(src[12:16])),
		SellAgentID: schema.AgentID(binary.LittleEndian.Uint32(src[16:20])),
		Price:       schema.Price(int64(binary.LittleEndian.Uint64(src[24:32]))),
		Qty:         schema.Quantity(int64(binary.LittleEndian.Uint64(src[32:40]))),
		BuyOrderID:  binary.LittleEndian.Uint64(src[40:48]),
		SellOrderID: binary.LittleEndian.Uint64(src[48:56]),
		TsNano:      int64(binary.LittleEndian.Uint64(src[56:64])),
	}, true
}
