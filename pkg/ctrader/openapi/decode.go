// pkg/ctrader/openapi/decode.go
package openapi

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// fields — разобранное protobuf-сообщение: номер поля -> список значений
// в порядке следования. Varint и fixed64 хранятся как uint64, bytes —
// как срез исходного буфера.
type fields struct {
	varints map[protowire.Number][]uint64
	fixed64 map[protowire.Number][]uint64
	bytes   map[protowire.Number][][]byte
}

func parseFields(data []byte) (*fields, error) {
	f := &fields{
		varints: make(map[protowire.Number][]uint64),
		fixed64: make(map[protowire.Number][]uint64),
		bytes:   make(map[protowire.Number][][]byte),
	}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("consume tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: consume varint: %w", num, protowire.ParseError(n))
			}
			f.varints[num] = append(f.varints[num], v)
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: consume fixed64: %w", num, protowire.ParseError(n))
			}
			f.fixed64[num] = append(f.fixed64[num], v)
			data = data[n:]
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: consume fixed32: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("field %d: consume bytes: %w", num, protowire.ParseError(n))
			}
			f.bytes[num] = append(f.bytes[num], v)
			data = data[n:]
		default:
			return nil, fmt.Errorf("field %d: unsupported wire type %d", num, typ)
		}
	}
	return f, nil
}

func (f *fields) int64(num protowire.Number) (int64, bool) {
	vs, ok := f.varints[num]
	if !ok || len(vs) == 0 {
		return 0, false
	}
	return int64(vs[len(vs)-1]), true
}

func (f *fields) int64s(num protowire.Number) []int64 {
	vs := f.varints[num]
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, int64(v))
	}
	return out
}

func (f *fields) bool(num protowire.Number) bool {
	v, ok := f.int64(num)
	return ok && v != 0
}

func (f *fields) double(num protowire.Number) (float64, bool) {
	vs, ok := f.fixed64[num]
	if !ok || len(vs) == 0 {
		return 0, false
	}
	return math.Float64frombits(vs[len(vs)-1]), true
}

func (f *fields) string(num protowire.Number) string {
	bs, ok := f.bytes[num]
	if !ok || len(bs) == 0 {
		return ""
	}
	return string(bs[len(bs)-1])
}

// PeekPayloadType извлекает payloadType (поле 1) из бинарного сообщения,
// не разбирая остальные поля.
func PeekPayloadType(data []byte) (PayloadType, error) {
	f, err := parseFields(data)
	if err != nil {
		return 0, err
	}
	v, ok := f.int64(1)
	if !ok {
		return 0, fmt.Errorf("message has no payloadType field")
	}
	return PayloadType(v), nil
}

// ErrorRes — ответ брокера об ошибке запроса.
type ErrorRes struct {
	AccountID   int64  `json:"ctidTraderAccountId,omitempty"`
	ErrorCode   string `json:"errorCode"`
	Description string `json:"description,omitempty"`
}

func (ErrorRes) Type() PayloadType { return PayloadTypeErrorRes }

func (m ErrorRes) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeErrorRes))
	if m.AccountID != 0 {
		b = appendInt64(b, 2, m.AccountID)
	}
	b = appendString(b, 3, m.ErrorCode)
	if m.Description != "" {
		b = appendString(b, 4, m.Description)
	}
	return b, nil
}

// UnmarshalProto заполняет m из protobuf wire-формата.
func (m *ErrorRes) UnmarshalProto(data []byte) error {
	f, err := parseFields(data)
	if err != nil {
		return err
	}
	m.AccountID, _ = f.int64(2)
	m.ErrorCode = f.string(3)
	m.Description = f.string(4)
	return nil
}

// SpotEvent — спотовая котировка. Bid/Ask приходят в условных единицах
// цены (масштаб 1e5), отсутствие стороны означает «без изменения».
type SpotEvent struct {
	AccountID int64   `json:"ctidTraderAccountId"`
	SymbolID  int64   `json:"symbolId"`
	Bid       *uint64 `json:"bid,omitempty"`
	Ask       *uint64 `json:"ask,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

func (SpotEvent) Type() PayloadType { return PayloadTypeSpotEvent }

func (m SpotEvent) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeSpotEvent))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.SymbolID)
	if m.Bid != nil {
		b = appendVarint(b, 4, *m.Bid)
	}
	if m.Ask != nil {
		b = appendVarint(b, 5, *m.Ask)
	}
	if m.Timestamp != 0 {
		b = appendInt64(b, 6, m.Timestamp)
	}
	return b, nil
}

func (m *SpotEvent) UnmarshalProto(data []byte) error {
	f, err := parseFields(data)
	if err != nil {
		return err
	}
	m.AccountID, _ = f.int64(2)
	m.SymbolID, _ = f.int64(3)
	if v, ok := f.int64(4); ok {
		u := uint64(v)
		m.Bid = &u
	}
	if v, ok := f.int64(5); ok {
		u := uint64(v)
		m.Ask = &u
	}
	m.Timestamp, _ = f.int64(6)
	return nil
}

// ExecutionEvent — событие исполнения (изменение ордера/позиции/сделки).
// Вложенные order/deal/position остаются неразобранными байтами: клиент
// транслирует их дальше как есть.
type ExecutionEvent struct {
	AccountID     int64  `json:"ctidTraderAccountId"`
	ExecutionType int32  `json:"executionType"`
	Order         []byte `json:"-"`
	Deal          []byte `json:"-"`
	Position      []byte `json:"-"`
}

func (ExecutionEvent) Type() PayloadType { return PayloadTypeExecutionEvent }

func (m ExecutionEvent) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeExecutionEvent))
	b = appendInt64(b, 2, m.AccountID)
	b = appendVarint(b, 3, uint64(m.ExecutionType))
	if len(m.Position) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Position)
	}
	if len(m.Order) > 0 {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Order)
	}
	if len(m.Deal) > 0 {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Deal)
	}
	return b, nil
}

func (m *ExecutionEvent) UnmarshalProto(data []byte) error {
	f, err := parseFields(data)
	if err != nil {
		return err
	}
	m.AccountID, _ = f.int64(2)
	if v, ok := f.int64(3); ok {
		m.ExecutionType = int32(v)
	}
	if bs := f.bytes[4]; len(bs) > 0 {
		m.Position = bs[len(bs)-1]
	}
	if bs := f.bytes[5]; len(bs) > 0 {
		m.Order = bs[len(bs)-1]
	}
	if bs := f.bytes[6]; len(bs) > 0 {
		m.Deal = bs[len(bs)-1]
	}
	return nil
}

// RefreshTokenRes — ответ на обновление access token.
type RefreshTokenRes struct {
	AccessToken string `json:"accessToken"`
}

func (RefreshTokenRes) Type() PayloadType { return PayloadTypeRefreshTokenRes }

func (m RefreshTokenRes) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeRefreshTokenRes))
	b = appendString(b, 2, m.AccessToken)
	return b, nil
}

func (m *RefreshTokenRes) UnmarshalProto(data []byte) error {
	f, err := parseFields(data)
	if err != nil {
		return err
	}
	m.AccessToken = f.string(2)
	return nil
}

// decodeRequest используется тестами для обратного разбора исходящих
// запросов без полного набора сгенерированных типов.
func decodeRequest(data []byte) (*fields, PayloadType, error) {
	f, err := parseFields(data)
	if err != nil {
		return nil, 0, err
	}
	pt, ok := f.int64(1)
	if !ok {
		return nil, 0, fmt.Errorf("message has no payloadType field")
	}
	return f, PayloadType(pt), nil
}
