// pkg/ctrader/requests.go
package ctrader

import (
	"context"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
)

// Каталог запросов Open API. Каждый метод собирает полезную нагрузку,
// кодирует её активным кодеком и отправляет через writer; возвращается
// clientMsgId исходящего фрейма (для корреляции ответа) либо ошибка
// передачи. Ответ брокера сюда не входит.

// SendApplicationAuthRequest авторизует приложение (2100).
func (s *Session) SendApplicationAuthRequest(ctx context.Context, clientID, clientSecret string) (string, error) {
	return s.send(ctx, openapi.ApplicationAuthReq{ClientID: clientID, ClientSecret: clientSecret})
}

// SendAccountAuthRequest авторизует торговый аккаунт (2102).
func (s *Session) SendAccountAuthRequest(ctx context.Context, accountID int64, accessToken string) (string, error) {
	return s.send(ctx, openapi.AccountAuthReq{AccountID: accountID, AccessToken: accessToken})
}

// SendRefreshTokenRequest обновляет access token (2173).
func (s *Session) SendRefreshTokenRequest(ctx context.Context, refreshToken string) (string, error) {
	return s.send(ctx, openapi.RefreshTokenReq{RefreshToken: refreshToken})
}

// SendAccountListRequest запрашивает аккаунты по access token (2149).
func (s *Session) SendAccountListRequest(ctx context.Context, accessToken string) (string, error) {
	return s.send(ctx, openapi.AccountListReq{AccessToken: accessToken})
}

// SendAccountLogoutRequest завершает сессию аккаунта (2162).
func (s *Session) SendAccountLogoutRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.AccountLogoutReq{AccountID: accountID})
}

// SendAssetListRequest запрашивает активы аккаунта (2112).
func (s *Session) SendAssetListRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.AssetListReq{AccountID: accountID})
}

// SendAssetClassListRequest запрашивает классы активов (2153).
func (s *Session) SendAssetClassListRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.AssetClassListReq{AccountID: accountID})
}

// SendSymbolCategoryListRequest запрашивает категории символов (2160).
func (s *Session) SendSymbolCategoryListRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.SymbolCategoryListReq{AccountID: accountID})
}

// SendSymbolsListRequest запрашивает список символов (2114).
func (s *Session) SendSymbolsListRequest(ctx context.Context, accountID int64, includeArchived bool) (string, error) {
	return s.send(ctx, openapi.SymbolsListReq{AccountID: accountID, IncludeArchivedSymbols: includeArchived})
}

// SendTraderRequest запрашивает сведения о трейдере (2121).
func (s *Session) SendTraderRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.TraderReq{AccountID: accountID})
}

// SendSubscribeSpotsRequest подписывает на котировки символов (2127).
func (s *Session) SendSubscribeSpotsRequest(ctx context.Context, accountID int64, symbolIDs []int64, withTimestamp bool) (string, error) {
	return s.send(ctx, openapi.SubscribeSpotsReq{
		AccountID:                accountID,
		SymbolIDs:                symbolIDs,
		SubscribeToSpotTimestamp: withTimestamp,
	})
}

// SendUnsubscribeSpotsRequest отменяет подписку на котировки (2129).
func (s *Session) SendUnsubscribeSpotsRequest(ctx context.Context, accountID int64, symbolIDs []int64) (string, error) {
	return s.send(ctx, openapi.UnsubscribeSpotsReq{AccountID: accountID, SymbolIDs: symbolIDs})
}

// SendGetTickDataRequest запрашивает тиковые данные (2145).
func (s *Session) SendGetTickDataRequest(ctx context.Context, accountID, symbolID int64, quote openapi.QuoteType, from, to int64) (string, error) {
	return s.send(ctx, openapi.GetTickDataReq{
		AccountID:     accountID,
		SymbolID:      symbolID,
		QuoteType:     quote,
		FromTimestamp: from,
		ToTimestamp:   to,
	})
}

// SendGetTrendbarsRequest запрашивает исторические трендбары (2137).
func (s *Session) SendGetTrendbarsRequest(ctx context.Context, req openapi.GetTrendbarsReq) (string, error) {
	return s.send(ctx, req)
}

// SendNewOrderRequest размещает новый ордер (2106).
func (s *Session) SendNewOrderRequest(ctx context.Context, req openapi.NewOrderReq) (string, error) {
	return s.send(ctx, req)
}

// SendReconcileRequest запрашивает открытые позиции и ордера (2124).
func (s *Session) SendReconcileRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.ReconcileReq{AccountID: accountID})
}

// SendClosePositionRequest закрывает позицию (2111).
func (s *Session) SendClosePositionRequest(ctx context.Context, accountID, positionID, volume int64) (string, error) {
	return s.send(ctx, openapi.ClosePositionReq{AccountID: accountID, PositionID: positionID, Volume: volume})
}

// SendCancelOrderRequest отменяет отложенный ордер (2108).
func (s *Session) SendCancelOrderRequest(ctx context.Context, accountID, orderID int64) (string, error) {
	return s.send(ctx, openapi.CancelOrderReq{AccountID: accountID, OrderID: orderID})
}

// SendDealOffsetListRequest запрашивает оффсеты сделки (2185).
func (s *Session) SendDealOffsetListRequest(ctx context.Context, accountID, dealID int64) (string, error) {
	return s.send(ctx, openapi.DealOffsetListReq{AccountID: accountID, DealID: dealID})
}

// SendUnrealizedPnLRequest запрашивает нереализованный PnL (2187).
func (s *Session) SendUnrealizedPnLRequest(ctx context.Context, accountID int64) (string, error) {
	return s.send(ctx, openapi.UnrealizedPnLReq{AccountID: accountID})
}

// SendOrderDetailsRequest запрашивает детали ордера (2181).
func (s *Session) SendOrderDetailsRequest(ctx context.Context, accountID, orderID int64) (string, error) {
	return s.send(ctx, openapi.OrderDetailsReq{AccountID: accountID, OrderID: orderID})
}

// SendOrderListByPositionRequest запрашивает ордера позиции (2183).
func (s *Session) SendOrderListByPositionRequest(ctx context.Context, accountID, positionID, from, to int64) (string, error) {
	return s.send(ctx, openapi.OrderListByPositionReq{
		AccountID:     accountID,
		PositionID:    positionID,
		FromTimestamp: from,
		ToTimestamp:   to,
	})
}

// SendHeartbeatEvent шлёт keep-alive вручную (51); обычно это делает
// фоновая задача сессии.
func (s *Session) SendHeartbeatEvent(ctx context.Context) (string, error) {
	return s.send(ctx, openapi.HeartbeatEvent{})
}
