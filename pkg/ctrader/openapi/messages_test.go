// pkg/ctrader/openapi/messages_test.go
package openapi

import (
	"bytes"
	"testing"
)

func TestApplicationAuthReq_Marshal(t *testing.T) {
	raw, err := ApplicationAuthReq{ClientID: "client-1", ClientSecret: "s3cret"}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	f, pt, err := decodeRequest(raw)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if pt != PayloadTypeApplicationAuthReq {
		t.Errorf("payloadType = %d, want %d", pt, PayloadTypeApplicationAuthReq)
	}
	if got := f.string(2); got != "client-1" {
		t.Errorf("clientId = %q", got)
	}
	if got := f.string(3); got != "s3cret" {
		t.Errorf("clientSecret = %q", got)
	}
}

func TestNewOrderReq_OptionalPrices(t *testing.T) {
	limit := 1.2345
	stop := 1.1000

	tests := []struct {
		name      string
		req       NewOrderReq
		wantLimit bool
		wantStop  bool
	}{
		{
			name: "market order carries no prices",
			req: NewOrderReq{
				AccountID: 7, SymbolID: 1,
				OrderType: OrderTypeMarket, TradeSide: TradeSideBuy, Volume: 100000,
			},
		},
		{
			name: "limit order carries limitPrice only",
			req: NewOrderReq{
				AccountID: 7, SymbolID: 1,
				OrderType: OrderTypeLimit, TradeSide: TradeSideSell, Volume: 100000,
				LimitPrice: &limit,
			},
			wantLimit: true,
		},
		{
			name: "stop order carries stopPrice only",
			req: NewOrderReq{
				AccountID: 7, SymbolID: 1,
				OrderType: OrderTypeStop, TradeSide: TradeSideBuy, Volume: 100000,
				StopPrice: &stop,
			},
			wantStop: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.req.MarshalProto()
			if err != nil {
				t.Fatalf("MarshalProto: %v", err)
			}
			f, pt, err := decodeRequest(raw)
			if err != nil {
				t.Fatalf("decodeRequest: %v", err)
			}
			if pt != PayloadTypeNewOrderReq {
				t.Fatalf("payloadType = %d", pt)
			}
			if _, ok := f.double(7); ok != tt.wantLimit {
				t.Errorf("limitPrice present = %v, want %v", ok, tt.wantLimit)
			}
			if _, ok := f.double(8); ok != tt.wantStop {
				t.Errorf("stopPrice present = %v, want %v", ok, tt.wantStop)
			}
			if v, _ := f.int64(6); v != 100000 {
				t.Errorf("volume = %d", v)
			}
		})
	}
}

func TestSubscribeSpotsReq_RepeatedSymbols(t *testing.T) {
	raw, err := SubscribeSpotsReq{
		AccountID:                42,
		SymbolIDs:                []int64{1, 2, 3},
		SubscribeToSpotTimestamp: true,
	}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	f, pt, err := decodeRequest(raw)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if pt != PayloadTypeSubscribeSpotsReq {
		t.Fatalf("payloadType = %d", pt)
	}
	ids := f.int64s(3)
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("symbolIds = %v", ids)
	}
	if !f.bool(4) {
		t.Error("subscribeToSpotTimestamp not set")
	}
}

func TestGetTrendbarsReq_Marshal(t *testing.T) {
	raw, err := GetTrendbarsReq{
		AccountID:     9,
		FromTimestamp: 1700000000000,
		ToTimestamp:   1700003600000,
		Period:        PeriodM5,
		SymbolID:      22,
		Count:         500,
	}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	f, pt, err := decodeRequest(raw)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if pt != PayloadTypeGetTrendbarsReq {
		t.Fatalf("payloadType = %d", pt)
	}
	if v, _ := f.int64(5); TrendbarPeriod(v) != PeriodM5 {
		t.Errorf("period = %d", v)
	}
	if v, _ := f.int64(7); v != 500 {
		t.Errorf("count = %d", v)
	}
}

func TestSpotEvent_RoundTrip(t *testing.T) {
	bid := uint64(123450)
	in := SpotEvent{AccountID: 42, SymbolID: 1, Bid: &bid, Timestamp: 1700000000000}

	raw, err := in.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	var out SpotEvent
	if err := out.UnmarshalProto(raw); err != nil {
		t.Fatalf("UnmarshalProto: %v", err)
	}
	if out.AccountID != 42 || out.SymbolID != 1 {
		t.Errorf("ids = %d/%d", out.AccountID, out.SymbolID)
	}
	if out.Bid == nil || *out.Bid != bid {
		t.Errorf("bid = %v", out.Bid)
	}
	if out.Ask != nil {
		t.Errorf("ask = %v, want nil", out.Ask)
	}
}

func TestExecutionEvent_RoundTrip(t *testing.T) {
	in := ExecutionEvent{
		AccountID:     42,
		ExecutionType: 3,
		Order:         []byte{0x08, 0x01},
		Position:      []byte{0x10, 0x02},
	}

	raw, err := in.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	var out ExecutionEvent
	if err := out.UnmarshalProto(raw); err != nil {
		t.Fatalf("UnmarshalProto: %v", err)
	}
	if out.ExecutionType != 3 {
		t.Errorf("executionType = %d", out.ExecutionType)
	}
	if !bytes.Equal(out.Order, in.Order) || !bytes.Equal(out.Position, in.Position) {
		t.Errorf("nested payloads mismatch: %x / %x", out.Order, out.Position)
	}
}

func TestErrorRes_RoundTrip(t *testing.T) {
	in := ErrorRes{AccountID: 42, ErrorCode: "CH_ACCESS_TOKEN_INVALID", Description: "token expired"}

	raw, err := in.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	var out ErrorRes
	if err := out.UnmarshalProto(raw); err != nil {
		t.Fatalf("UnmarshalProto: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestPeekPayloadType(t *testing.T) {
	raw, err := AccountAuthReq{AccountID: 1, AccessToken: "tok"}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}
	pt, err := PeekPayloadType(raw)
	if err != nil {
		t.Fatalf("PeekPayloadType: %v", err)
	}
	if pt != PayloadTypeAccountAuthReq {
		t.Errorf("payloadType = %d", pt)
	}

	if _, err := PeekPayloadType([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error on malformed input")
	}
}

func TestPayloadType_String(t *testing.T) {
	if got := PayloadTypeHeartbeatEvent.String(); got != "HEARTBEAT_EVENT" {
		t.Errorf("String() = %q", got)
	}
	if got := PayloadType(9999).String(); got != "PAYLOAD_TYPE_9999" {
		t.Errorf("String() = %q", got)
	}
}
