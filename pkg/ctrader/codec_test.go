// pkg/ctrader/codec_test.go
package ctrader

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
)

func TestBinaryCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec(EncodingProtobuf)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if codec.MessageType() != websocket.BinaryMessage {
		t.Fatalf("MessageType = %d", codec.MessageType())
	}

	payload := openapi.AccountAuthReq{AccountID: 42, AccessToken: "tok"}
	data, err := codec.Encode(payload, "ignored-for-binary")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Заголовок: u16 LE payloadType.
	if got := binary.LittleEndian.Uint16(data); got != uint16(openapi.PayloadTypeAccountAuthReq) {
		t.Errorf("header payloadType = %d; want %d", got, openapi.PayloadTypeAccountAuthReq)
	}

	frame, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.PayloadType != openapi.PayloadTypeAccountAuthReq {
		t.Errorf("frame.PayloadType = %d", frame.PayloadType)
	}
	if pt, err := openapi.PeekPayloadType(frame.Payload); err != nil || pt != openapi.PayloadTypeAccountAuthReq {
		t.Errorf("payload body type = %d, err = %v", pt, err)
	}
}

func TestBinaryCodec_Deterministic(t *testing.T) {
	codec, _ := NewCodec(EncodingProtobuf)
	payload := openapi.SubscribeSpotsReq{AccountID: 7, SymbolIDs: []int64{1, 2}}

	a, err := codec.Encode(payload, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := codec.Encode(payload, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(a) != string(b) {
		t.Error("binary encoding is not deterministic")
	}
}

func TestBinaryCodec_TooShort(t *testing.T) {
	codec, _ := NewCodec(EncodingProtobuf)
	if _, err := codec.Decode([]byte{0x01}); err == nil {
		t.Error("expected error on 1-byte frame")
	}
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec(EncodingJSON)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if codec.MessageType() != websocket.TextMessage {
		t.Fatalf("MessageType = %d", codec.MessageType())
	}

	payload := openapi.ApplicationAuthReq{ClientID: "id", ClientSecret: "secret"}
	data, err := codec.Encode(payload, "msg-123")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("envelope is not valid json: %v", err)
	}
	for _, key := range []string{"clientMsgId", "payloadType", "payload"} {
		if _, ok := env[key]; !ok {
			t.Errorf("envelope missing %q", key)
		}
	}

	frame, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.ClientMsgID != "msg-123" {
		t.Errorf("ClientMsgID = %q", frame.ClientMsgID)
	}
	if frame.PayloadType != openapi.PayloadTypeApplicationAuthReq {
		t.Errorf("PayloadType = %d", frame.PayloadType)
	}

	var body openapi.ApplicationAuthReq
	if err := json.Unmarshal(frame.JSONPayload, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body != payload {
		t.Errorf("payload = %+v; want %+v", body, payload)
	}
}

// Конверт, пришедший от сервера: payloadType — обычное JSON-число (u32).
func TestJSONCodec_DecodeServerEnvelope(t *testing.T) {
	codec, _ := NewCodec(EncodingJSON)
	raw := []byte(`{"clientMsgId":"abc","payloadType":2142,"payload":{"errorCode":"E_AUTH"}}`)

	frame, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.PayloadType != openapi.PayloadTypeErrorRes {
		t.Errorf("PayloadType = %d; want %d", frame.PayloadType, openapi.PayloadTypeErrorRes)
	}
	if frame.ClientMsgID != "abc" {
		t.Errorf("ClientMsgID = %q", frame.ClientMsgID)
	}

	var body openapi.ErrorRes
	if err := json.Unmarshal(frame.JSONPayload, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body.ErrorCode != "E_AUTH" {
		t.Errorf("ErrorCode = %q", body.ErrorCode)
	}
}

func TestJSONCodec_DecodeMalformed(t *testing.T) {
	codec, _ := NewCodec(EncodingJSON)
	if _, err := codec.Decode([]byte("{not json")); err == nil {
		t.Error("expected error on malformed json")
	}
}

func TestNewCodec_UnknownEncoding(t *testing.T) {
	if _, err := NewCodec(Encoding("msgpack")); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		demo bool
		enc  Encoding
		want string
	}{
		{true, EncodingProtobuf, "wss://demo.ctraderapi.com:5035"},
		{true, EncodingJSON, "wss://demo.ctraderapi.com:5036"},
		{false, EncodingProtobuf, "wss://live.ctraderapi.com:5035"},
		{false, EncodingJSON, "wss://live.ctraderapi.com:5036"},
	}
	for _, c := range cases {
		if got := Resolve(c.demo, c.enc); got != c.want {
			t.Errorf("Resolve(%v, %s) = %q; want %q", c.demo, c.enc, got, c.want)
		}
	}
}
