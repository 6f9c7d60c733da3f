package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const MarketEventPayloadSize = 16

// EncodeMarketEvent serializes a market event into a fixed-size payload.
func EncodeMarketEvent(dst []byte, event schema.MarketEvent) []byte {
	if cap(dst) < MarketEventPayloadSize {
		dst = make([]byte, MarketEventPayloadSize)
	} else {
		dst = dst[:MarketEventPayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(event.Kind))
	binary.LittleEndian.PutUint16(dst[2:4], 0)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(event.SymbolID))
	binary.LittleEndian.PutUint64(dst[8:16], uint64(event.Value))

	return dst
}

// DecodeMarketEvent parses a fixed-size market event payload.
func DecodeMarketEvent(src []byte) (schema.MarketEvent, bool) {
	if len(src) < MarketEventPayloadSize {
		return schema.MarketEvent{}, false
	}
	return schema.MarketEvent{
		Kind:     schema.MarketEventKind(binary.LittleEndian.Uint16(src[0:2])),
		SymbolID: schema.SymbolID(binary.LittleEndian.Uint32(src[4:8])),
		Value:    int64(binary.LittleEndian.Uint64(src[8:16])),
	}, true
}
