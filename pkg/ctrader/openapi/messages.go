// pkg/ctrader/openapi/messages.go
package openapi

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Сериализация идёт напрямую через protowire: схемы запросов малы и
// стабильны, полные сгенерированные дескрипторы здесь не нужны.
// Номера полей соответствуют OpenApiMessages.proto; поле 1 во всех
// сообщениях — payloadType.

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if v {
		return appendVarint(b, num, 1)
	}
	return appendVarint(b, num, 0)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// HeartbeatEvent — keep-alive фрейм (в обе стороны).
type HeartbeatEvent struct{}

func (HeartbeatEvent) Type() PayloadType { return PayloadTypeHeartbeatEvent }

func (HeartbeatEvent) MarshalProto() ([]byte, error) {
	return appendVarint(nil, 1, uint64(PayloadTypeHeartbeatEvent)), nil
}

// ApplicationAuthReq авторизует приложение по clientId/clientSecret.
type ApplicationAuthReq struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

func (ApplicationAuthReq) Type() PayloadType { return PayloadTypeApplicationAuthReq }

func (m ApplicationAuthReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeApplicationAuthReq))
	b = appendString(b, 2, m.ClientID)
	b = appendString(b, 3, m.ClientSecret)
	return b, nil
}

// AccountAuthReq делает торговый аккаунт активным для последующих запросов.
type AccountAuthReq struct {
	AccountID   int64  `json:"ctidTraderAccountId"`
	AccessToken string `json:"accessToken"`
}

func (AccountAuthReq) Type() PayloadType { return PayloadTypeAccountAuthReq }

func (m AccountAuthReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeAccountAuthReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendString(b, 3, m.AccessToken)
	return b, nil
}

// RefreshTokenReq обновляет access token по refresh token.
type RefreshTokenReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (RefreshTokenReq) Type() PayloadType { return PayloadTypeRefreshTokenReq }

func (m RefreshTokenReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeRefreshTokenReq))
	b = appendString(b, 2, m.RefreshToken)
	return b, nil
}

// AccountListReq запрашивает список аккаунтов по access token.
type AccountListReq struct {
	AccessToken string `json:"accessToken"`
}

func (AccountListReq) Type() PayloadType { return PayloadTypeAccountListReq }

func (m AccountListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeAccountListReq))
	b = appendString(b, 2, m.AccessToken)
	return b, nil
}

// AccountLogoutReq завершает сессию аккаунта.
type AccountLogoutReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (AccountLogoutReq) Type() PayloadType { return PayloadTypeAccountLogoutReq }

func (m AccountLogoutReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeAccountLogoutReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// AssetListReq запрашивает список активов аккаунта.
type AssetListReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (AssetListReq) Type() PayloadType { return PayloadTypeAssetListReq }

func (m AssetListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeAssetListReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// AssetClassListReq запрашивает классы активов.
type AssetClassListReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (AssetClassListReq) Type() PayloadType { return PayloadTypeAssetClassListReq }

func (m AssetClassListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeAssetClassListReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// SymbolCategoryListReq запрашивает категории символов.
type SymbolCategoryListReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (SymbolCategoryListReq) Type() PayloadType { return PayloadTypeSymbolCategoryReq }

func (m SymbolCategoryListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeSymbolCategoryReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// SymbolsListReq запрашивает список символов аккаунта.
type SymbolsListReq struct {
	AccountID              int64 `json:"ctidTraderAccountId"`
	IncludeArchivedSymbols bool  `json:"includeArchivedSymbols,omitempty"`
}

func (SymbolsListReq) Type() PayloadType { return PayloadTypeSymbolsListReq }

func (m SymbolsListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeSymbolsListReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendBool(b, 3, m.IncludeArchivedSymbols)
	return b, nil
}

// TraderReq запрашивает сведения о трейдере.
type TraderReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (TraderReq) Type() PayloadType { return PayloadTypeTraderReq }

func (m TraderReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeTraderReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// SubscribeSpotsReq подписывает на спотовые котировки символов.
type SubscribeSpotsReq struct {
	AccountID                int64   `json:"ctidTraderAccountId"`
	SymbolIDs                []int64 `json:"symbolId"`
	SubscribeToSpotTimestamp bool    `json:"subscribeToSpotTimestamp,omitempty"`
}

func (SubscribeSpotsReq) Type() PayloadType { return PayloadTypeSubscribeSpotsReq }

func (m SubscribeSpotsReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeSubscribeSpotsReq))
	b = appendInt64(b, 2, m.AccountID)
	for _, id := range m.SymbolIDs {
		b = appendInt64(b, 3, id)
	}
	b = appendBool(b, 4, m.SubscribeToSpotTimestamp)
	return b, nil
}

// UnsubscribeSpotsReq отменяет подписку на спотовые котировки.
type UnsubscribeSpotsReq struct {
	AccountID int64   `json:"ctidTraderAccountId"`
	SymbolIDs []int64 `json:"symbolId"`
}

func (UnsubscribeSpotsReq) Type() PayloadType { return PayloadTypeUnsubscribeSpots }

func (m UnsubscribeSpotsReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeUnsubscribeSpots))
	b = appendInt64(b, 2, m.AccountID)
	for _, id := range m.SymbolIDs {
		b = appendInt64(b, 3, id)
	}
	return b, nil
}

// GetTickDataReq запрашивает тиковые данные символа.
type GetTickDataReq struct {
	AccountID     int64     `json:"ctidTraderAccountId"`
	SymbolID      int64     `json:"symbolId"`
	QuoteType     QuoteType `json:"type"`
	FromTimestamp int64     `json:"fromTimestamp,omitempty"`
	ToTimestamp   int64     `json:"toTimestamp,omitempty"`
}

func (GetTickDataReq) Type() PayloadType { return PayloadTypeGetTickDataReq }

func (m GetTickDataReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeGetTickDataReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.SymbolID)
	b = appendVarint(b, 4, uint64(m.QuoteType))
	if m.FromTimestamp != 0 {
		b = appendInt64(b, 5, m.FromTimestamp)
	}
	if m.ToTimestamp != 0 {
		b = appendInt64(b, 6, m.ToTimestamp)
	}
	return b, nil
}

// GetTrendbarsReq запрашивает исторические трендбары символа.
type GetTrendbarsReq struct {
	AccountID     int64          `json:"ctidTraderAccountId"`
	FromTimestamp int64          `json:"fromTimestamp"`
	ToTimestamp   int64          `json:"toTimestamp"`
	Period        TrendbarPeriod `json:"period"`
	SymbolID      int64          `json:"symbolId"`
	Count         uint32         `json:"count,omitempty"`
}

func (GetTrendbarsReq) Type() PayloadType { return PayloadTypeGetTrendbarsReq }

func (m GetTrendbarsReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeGetTrendbarsReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.FromTimestamp)
	b = appendInt64(b, 4, m.ToTimestamp)
	b = appendVarint(b, 5, uint64(m.Period))
	b = appendInt64(b, 6, m.SymbolID)
	if m.Count > 0 {
		b = appendVarint(b, 7, uint64(m.Count))
	}
	return b, nil
}

// NewOrderReq размещает новый ордер. LimitPrice/StopPrice выставляются
// только для соответствующих типов ордеров.
type NewOrderReq struct {
	AccountID  int64     `json:"ctidTraderAccountId"`
	SymbolID   int64     `json:"symbolId"`
	OrderType  OrderType `json:"orderType"`
	TradeSide  TradeSide `json:"tradeSide"`
	Volume     int64     `json:"volume"`
	LimitPrice *float64  `json:"limitPrice,omitempty"`
	StopPrice  *float64  `json:"stopPrice,omitempty"`
}

func (NewOrderReq) Type() PayloadType { return PayloadTypeNewOrderReq }

func (m NewOrderReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeNewOrderReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.SymbolID)
	b = appendVarint(b, 4, uint64(m.OrderType))
	b = appendVarint(b, 5, uint64(m.TradeSide))
	b = appendInt64(b, 6, m.Volume)
	if m.LimitPrice != nil {
		b = appendDouble(b, 7, *m.LimitPrice)
	}
	if m.StopPrice != nil {
		b = appendDouble(b, 8, *m.StopPrice)
	}
	return b, nil
}

// ReconcileReq запрашивает открытые позиции и отложенные ордера.
type ReconcileReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (ReconcileReq) Type() PayloadType { return PayloadTypeReconcileReq }

func (m ReconcileReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeReconcileReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// ClosePositionReq закрывает позицию (полностью или частично).
type ClosePositionReq struct {
	AccountID  int64 `json:"ctidTraderAccountId"`
	PositionID int64 `json:"positionId"`
	Volume     int64 `json:"volume"`
}

func (ClosePositionReq) Type() PayloadType { return PayloadTypeClosePositionReq }

func (m ClosePositionReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeClosePositionReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.PositionID)
	b = appendInt64(b, 4, m.Volume)
	return b, nil
}

// CancelOrderReq отменяет отложенный ордер.
type CancelOrderReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
	OrderID   int64 `json:"orderId"`
}

func (CancelOrderReq) Type() PayloadType { return PayloadTypeCancelOrderReq }

func (m CancelOrderReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeCancelOrderReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.OrderID)
	return b, nil
}

// DealOffsetListReq запрашивает оффсеты сделки.
type DealOffsetListReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
	DealID    int64 `json:"dealId"`
}

func (DealOffsetListReq) Type() PayloadType { return PayloadTypeDealOffsetListReq }

func (m DealOffsetListReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeDealOffsetListReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.DealID)
	return b, nil
}

// UnrealizedPnLReq запрашивает нереализованный PnL по позициям.
type UnrealizedPnLReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
}

func (UnrealizedPnLReq) Type() PayloadType { return PayloadTypeUnrealizedPnLReq }

func (m UnrealizedPnLReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeUnrealizedPnLReq))
	b = appendInt64(b, 2, m.AccountID)
	return b, nil
}

// OrderDetailsReq запрашивает детали ордера.
type OrderDetailsReq struct {
	AccountID int64 `json:"ctidTraderAccountId"`
	OrderID   int64 `json:"orderId"`
}

func (OrderDetailsReq) Type() PayloadType { return PayloadTypeOrderDetailsReq }

func (m OrderDetailsReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeOrderDetailsReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.OrderID)
	return b, nil
}

// OrderListByPositionReq запрашивает ордера позиции за интервал времени.
type OrderListByPositionReq struct {
	AccountID     int64 `json:"ctidTraderAccountId"`
	PositionID    int64 `json:"positionId"`
	FromTimestamp int64 `json:"fromTimestamp,omitempty"`
	ToTimestamp   int64 `json:"toTimestamp,omitempty"`
}

func (OrderListByPositionReq) Type() PayloadType { return PayloadTypeOrderListByPosReq }

func (m OrderListByPositionReq) MarshalProto() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(PayloadTypeOrderListByPosReq))
	b = appendInt64(b, 2, m.AccountID)
	b = appendInt64(b, 3, m.PositionID)
	if m.FromTimestamp != 0 {
		b = appendInt64(b, 4, m.FromTimestamp)
	}
	if m.ToTimestamp != 0 {
		b = appendInt64(b, 5, m.ToTimestamp)
	}
	return b, nil
}
