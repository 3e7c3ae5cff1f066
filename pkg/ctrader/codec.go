// pkg/ctrader/codec.go
package ctrader

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
)

// Encoding выбирает формат фреймов на проводе.
type Encoding string

const (
	EncodingProtobuf Encoding = "protobuf"
	EncodingJSON     Encoding = "json"
)

// Frame — один входящий фрейм после разбора кодеком. Для бинарной
// кодировки заполняется Payload (protobuf-байты), для JSON —
// ClientMsgID и JSONPayload.
type Frame struct {
	PayloadType openapi.PayloadType
	ClientMsgID string
	Payload     []byte
	JSONPayload json.RawMessage
}

// Codec сериализует исходящие сообщения и разбирает входящие фреймы.
// Encode детерминирован при фиксированном clientMsgId; Decode —
// обратная операция.
type Codec interface {
	Encode(p openapi.Payload, clientMsgID string) ([]byte, error)
	Decode(data []byte) (Frame, error)
	MessageType() int // websocket.BinaryMessage или websocket.TextMessage
}

// NewCodec возвращает кодек для указанной кодировки.
func NewCodec(enc Encoding) (Codec, error) {
	switch enc {
	case EncodingProtobuf:
		return binaryCodec{}, nil
	case EncodingJSON:
		return jsonCodec{}, nil
	default:
		return nil, fmt.Errorf("ctrader: unknown encoding %q", enc)
	}
}

// -----------------------------------------------------------------------------
// Binary: [u16 LE payloadType][protobuf payload]
// -----------------------------------------------------------------------------

type binaryCodec struct{}

func (binaryCodec) Encode(p openapi.Payload, _ string) ([]byte, error) {
	body, err := p.MarshalProto()
	if err != nil {
		return nil, &EncodeError{PayloadType: p.Type(), Err: err}
	}
	buf := make([]byte, 2, 2+len(body))
	binary.LittleEndian.PutUint16(buf, uint16(p.Type()))
	return append(buf, body...), nil
}

func (binaryCodec) Decode(data []byte) (Frame, error) {
	if len(data) < 2 {
		return Frame{}, fmt.Errorf("ctrader: binary frame too short: %d byte(s)", len(data))
	}
	return Frame{
		PayloadType: openapi.PayloadType(binary.LittleEndian.Uint16(data)),
		Payload:     data[2:],
	}, nil
}

func (binaryCodec) MessageType() int { return websocket.BinaryMessage }

// -----------------------------------------------------------------------------
// JSON: {"clientMsgId": ..., "payloadType": ..., "payload": {...}}
// -----------------------------------------------------------------------------

// В JSON-конверте payloadType объявлен как u32 (в бинарном заголовке
// поле уже u16).
type jsonEnvelope struct {
	ClientMsgID string          `json:"clientMsgId,omitempty"`
	PayloadType uint32          `json:"payloadType"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Encode(p openapi.Payload, clientMsgID string) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, &EncodeError{PayloadType: p.Type(), Err: err}
	}
	data, err := json.Marshal(jsonEnvelope{
		ClientMsgID: clientMsgID,
		PayloadType: uint32(p.Type()),
		Payload:     body,
	})
	if err != nil {
		return nil, &EncodeError{PayloadType: p.Type(), Err: err}
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte) (Frame, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{}, fmt.Errorf("ctrader: json frame: %w", err)
	}
	return Frame{
		PayloadType: openapi.PayloadType(env.PayloadType),
		ClientMsgID: env.ClientMsgID,
		JSONPayload: env.Payload,
	}, nil
}

func (jsonCodec) MessageType() int { return websocket.TextMessage }
