// pkg/ctrader/openapi/types.go
package openapi

import "strconv"

// PayloadType идентифицирует схему полезной нагрузки фрейма Open API.
type PayloadType uint16

// Идентификаторы сообщений Open API, используемые этим клиентом.
const (
	PayloadTypeHeartbeatEvent PayloadType = 51

	PayloadTypeApplicationAuthReq PayloadType = 2100
	PayloadTypeApplicationAuthRes PayloadType = 2101
	PayloadTypeAccountAuthReq     PayloadType = 2102
	PayloadTypeAccountAuthRes     PayloadType = 2103
	PayloadTypeNewOrderReq        PayloadType = 2106
	PayloadTypeCancelOrderReq     PayloadType = 2108
	PayloadTypeClosePositionReq   PayloadType = 2111
	PayloadTypeAssetListReq       PayloadType = 2112
	PayloadTypeAssetListRes       PayloadType = 2113
	PayloadTypeSymbolsListReq     PayloadType = 2114
	PayloadTypeSymbolsListRes     PayloadType = 2115
	PayloadTypeTraderReq          PayloadType = 2121
	PayloadTypeTraderRes          PayloadType = 2122
	PayloadTypeReconcileReq       PayloadType = 2124
	PayloadTypeReconcileRes       PayloadType = 2125
	PayloadTypeExecutionEvent     PayloadType = 2126
	PayloadTypeSubscribeSpotsReq  PayloadType = 2127
	PayloadTypeSubscribeSpotsRes  PayloadType = 2128
	PayloadTypeUnsubscribeSpots   PayloadType = 2129
	PayloadTypeSpotEvent          PayloadType = 2131
	PayloadTypeGetTrendbarsReq    PayloadType = 2137
	PayloadTypeGetTrendbarsRes    PayloadType = 2138
	PayloadTypeErrorRes           PayloadType = 2142
	PayloadTypeGetTickDataReq     PayloadType = 2145
	PayloadTypeGetTickDataRes     PayloadType = 2146
	PayloadTypeAccountListReq     PayloadType = 2149
	PayloadTypeAccountListRes     PayloadType = 2150
	PayloadTypeAssetClassListReq  PayloadType = 2153
	PayloadTypeAssetClassListRes  PayloadType = 2154
	PayloadTypeSymbolCategoryReq  PayloadType = 2160
	PayloadTypeAccountLogoutReq   PayloadType = 2162
	PayloadTypeRefreshTokenReq    PayloadType = 2173
	PayloadTypeRefreshTokenRes    PayloadType = 2174
	PayloadTypeOrderDetailsReq    PayloadType = 2181
	PayloadTypeOrderListByPosReq  PayloadType = 2183
	PayloadTypeDealOffsetListReq  PayloadType = 2185
	PayloadTypeUnrealizedPnLReq   PayloadType = 2187
)

var payloadTypeNames = map[PayloadType]string{
	PayloadTypeHeartbeatEvent:     "HEARTBEAT_EVENT",
	PayloadTypeApplicationAuthReq: "APPLICATION_AUTH_REQ",
	PayloadTypeApplicationAuthRes: "APPLICATION_AUTH_RES",
	PayloadTypeAccountAuthReq:     "ACCOUNT_AUTH_REQ",
	PayloadTypeAccountAuthRes:     "ACCOUNT_AUTH_RES",
	PayloadTypeNewOrderReq:        "NEW_ORDER_REQ",
	PayloadTypeCancelOrderReq:     "CANCEL_ORDER_REQ",
	PayloadTypeClosePositionReq:   "CLOSE_POSITION_REQ",
	PayloadTypeAssetListReq:       "ASSET_LIST_REQ",
	PayloadTypeAssetListRes:       "ASSET_LIST_RES",
	PayloadTypeSymbolsListReq:     "SYMBOLS_LIST_REQ",
	PayloadTypeSymbolsListRes:     "SYMBOLS_LIST_RES",
	PayloadTypeTraderReq:          "TRADER_REQ",
	PayloadTypeTraderRes:          "TRADER_RES",
	PayloadTypeReconcileReq:       "RECONCILE_REQ",
	PayloadTypeReconcileRes:       "RECONCILE_RES",
	PayloadTypeExecutionEvent:     "EXECUTION_EVENT",
	PayloadTypeSubscribeSpotsReq:  "SUBSCRIBE_SPOTS_REQ",
	PayloadTypeSubscribeSpotsRes:  "SUBSCRIBE_SPOTS_RES",
	PayloadTypeUnsubscribeSpots:   "UNSUBSCRIBE_SPOTS_REQ",
	PayloadTypeSpotEvent:          "SPOT_EVENT",
	PayloadTypeGetTrendbarsReq:    "GET_TRENDBARS_REQ",
	PayloadTypeGetTrendbarsRes:    "GET_TRENDBARS_RES",
	PayloadTypeErrorRes:           "ERROR_RES",
	PayloadTypeGetTickDataReq:     "GET_TICKDATA_REQ",
	PayloadTypeGetTickDataRes:     "GET_TICKDATA_RES",
	PayloadTypeAccountListReq:     "GET_ACCOUNTS_BY_ACCESS_TOKEN_REQ",
	PayloadTypeAccountListRes:     "GET_ACCOUNTS_BY_ACCESS_TOKEN_RES",
	PayloadTypeAssetClassListReq:  "ASSET_CLASS_LIST_REQ",
	PayloadTypeAssetClassListRes:  "ASSET_CLASS_LIST_RES",
	PayloadTypeSymbolCategoryReq:  "SYMBOL_CATEGORY_REQ",
	PayloadTypeAccountLogoutReq:   "ACCOUNT_LOGOUT_REQ",
	PayloadTypeRefreshTokenReq:    "REFRESH_TOKEN_REQ",
	PayloadTypeRefreshTokenRes:    "REFRESH_TOKEN_RES",
	PayloadTypeOrderDetailsReq:    "ORDER_DETAILS_REQ",
	PayloadTypeOrderListByPosReq:  "ORDER_LIST_BY_POSITION_ID_REQ",
	PayloadTypeDealOffsetListReq:  "DEAL_OFFSET_LIST_REQ",
	PayloadTypeUnrealizedPnLReq:   "GET_POSITION_UNREALIZED_PNL_REQ",
}

// String возвращает символьное имя типа или его числовое значение.
func (p PayloadType) String() string {
	if name, ok := payloadTypeNames[p]; ok {
		return name
	}
	return "PAYLOAD_TYPE_" + strconv.Itoa(int(p))
}

// OrderType — тип ордера.
type OrderType int32

const (
	OrderTypeMarket             OrderType = 1
	OrderTypeLimit              OrderType = 2
	OrderTypeStop               OrderType = 3
	OrderTypeStopLossTakeProfit OrderType = 4
	OrderTypeMarketRange        OrderType = 5
	OrderTypeStopLimit          OrderType = 6
)

// TradeSide — направление сделки.
type TradeSide int32

const (
	TradeSideBuy  TradeSide = 1
	TradeSideSell TradeSide = 2
)

// QuoteType — сторона котировки для тиковых данных.
type QuoteType int32

const (
	QuoteTypeBid QuoteType = 1
	QuoteTypeAsk QuoteType = 2
)

// TrendbarPeriod — период агрегирования трендбаров.
type TrendbarPeriod int32

const (
	PeriodM1  TrendbarPeriod = 1
	PeriodM2  TrendbarPeriod = 2
	PeriodM3  TrendbarPeriod = 3
	PeriodM4  TrendbarPeriod = 4
	PeriodM5  TrendbarPeriod = 5
	PeriodM10 TrendbarPeriod = 6
	PeriodM15 TrendbarPeriod = 7
	PeriodM30 TrendbarPeriod = 8
	PeriodH1  TrendbarPeriod = 9
	PeriodH4  TrendbarPeriod = 10
	PeriodH12 TrendbarPeriod = 11
	PeriodD1  TrendbarPeriod = 12
	PeriodW1  TrendbarPeriod = 13
	PeriodMN1 TrendbarPeriod = 14
)

// Payload — одно логическое сообщение Open API. MarshalProto сериализует
// его в protobuf wire-формат; для JSON-кодека структура сериализуется
// через encoding/json по тегам полей.
type Payload interface {
	Type() PayloadType
	MarshalProto() ([]byte, error)
}
