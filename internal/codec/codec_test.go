package codec

import (
	"testing"

	"main/internal/schema"
)

func TestOrderRoundTrip(t *testing.T) {
	order := schema.Order{
		ID:        42,
		SymbolID:  7,
		AgentID:   3,
		Side:      schema.SideSell,
		Kind:      schema.OrderKindLimit,
		Status:    schema.OrderStatusPartial,
		Qty:       100,
		Price:     99_950,
		FilledQty: 40,
		LeavesQty: 60,
		CreatedAt: 1_000,
		UpdatedAt: 2_000,
	}

	payload := EncodeOrder(nil, order)
	if len(payload) != OrderPayloadSize {
		t.Fatalf("payload size = %d, want %d", len(payload), OrderPayloadSize)
	}

	decoded, ok := DecodeOrder(payload)
	if !ok {
		t.Fatal("decode failed")
	}
	if decoded != order {
		t.Fatalf("decoded = %+v, want %+v", decoded, order)
	}
}

func TestTradeRoundTrip(t *testing.T) {
	trade := schema.Trade{
		ID:          9,
		SymbolID:    1,
		Price:       100_050,
		Qty:         25,
		BuyOrderID:  11,
		SellOrderID: 12,
		BuyAgentID:  2,
		SellAgentID: 5,
		TsNano:      123_456_789,
	}

	decoded, ok := DecodeTrade(EncodeTrade(nil, trade))
	if !ok {
		t.Fatal("decode failed")
	}
	if decoded != trade {
		t.Fatalf("decoded = %+v, want %+v", decoded, trade)
	}
}

func TestMarketEventRoundTrip(t *testing.T) {
	event := schema.MarketEvent{
		Kind:     schema.MarketEventPriceShock,
		SymbolID: 4,
		Value:    -300,
	}

	decoded, ok := DecodeMarketEvent(EncodeMarketEvent(nil, event))
	if !ok {
		t.Fatal("decode failed")
	}
	if decoded != event {
		t.Fatalf("decoded = %+v, want %+v", decoded, event)
	}
}

func TestCancelRoundTrip(t *testing.T) {
	cancel := schema.CancelRequest{OrderID: 77, SymbolID: 2}

	decoded, ok := DecodeCancel(EncodeCancel(nil, cancel))
	if !ok {
		t.Fatal("decode failed")
	}
	if decoded != cancel {
		t.Fatalf("decoded = %+v, want %+v", decoded, cancel)
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	if _, ok := DecodeOrder(make([]byte, OrderPayloadSize-1)); ok {
		t.Fatal("expected order decode to fail")
	}
	if _, ok := DecodeTrade(make([]byte, TradePayloadSize-1)); ok {
		t.Fatal("expected trade decode to fail")
	}
	if _, ok := DecodeMarketEvent(make([]byte, MarketEventPayloadSize-1)); ok {
		t.Fatal("expected market event decode to fail")
	}
	if _, ok := DecodeCancel(make([]byte, CancelPayloadSize-1)); ok {
		t.Fatal("expected cancel decode to fail")
	}
}

func TestEncodeReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 128)
	payload := EncodeOrder(buf, schema.Order{ID: 1})
	if &payload[0] != &buf[:1][0] {
		t.Fatal("expected encode to reuse the provided buffer")
	}
}
