package payment

import (
	"context"
	"net/url"

	"github.com/smartwalle/alipay/v3"

	"styleapi/internal/model"
)

// 支付宝交易状态词表，映射进本地三态枚举。
const (
	TradeSuccess  = "TRADE_SUCCESS"
	TradeFinished = "TRADE_FINISHED"
	TradeClosed   = "TRADE_CLOSED"
	TradeFailed   = "TRADE_FAILED"
)

// MapTradeStatus 把网关交易状态映射为本地状态；未知词表保持 pending。
func MapTradeStatus(raw string) model.OrderStatus {
	switch raw {
	case TradeSuccess, TradeFinished:
		return model.StatusSuccess
	case TradeClosed, TradeFailed:
		return model.StatusFailed
	default:
		return model.StatusPending
	}
}

// Notification 已验签的异步回调内容。
type Notification struct {
	OrderID     string
	TradeStatus string
}

// Gateway 抽象外部支付网关：下单取跳转链接、同步查单、回调验签。
// 签名算法归网关 SDK 所有，本仓库不自行实现。
type Gateway interface {
	PagePay(ctx context.Context, orderID, amount, subject string) (string, error)
	QueryTrade(ctx context.Context, orderID string) (string, error)
	// VerifyNotification 验签失败返回 model.ErrSignatureInvalid，此时不得改动任何订单。
	VerifyNotification(values url.Values) (*Notification, error)
}

// AlipayConfig 支付宝接入参数，全部来自环境配置。
type AlipayConfig struct {
	AppID      string
	PrivateKey string
	PublicKey  string
	ReturnURL  string
	NotifyURL  string
	// false = 沙箱网关（openapi-sandbox），true = 生产网关
	Production bool
}

// AlipayGateway 基于 smartwalle/alipay SDK 的网关实现。
type AlipayGateway struct {
	client    *alipay.Client
	returnURL string
	notifyURL string
}

func NewAlipayGateway(cfg AlipayConfig) (*AlipayGateway, error) {
	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.Production)
	if err != nil {
		return nil, err
	}
	if err := client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}
	return &AlipayGateway{
		client:    client,
		returnURL: cfg.ReturnURL,
		notifyURL: cfg.NotifyURL,
	}, nil
}

// PagePay 生成电脑网站支付跳转链接。SDK 在本地完成签名与拼接，
// 网关域名按沙箱/生产模式由 SDK 决定。
func (g *AlipayGateway) PagePay(_ context.Context, orderID, amount, subject string) (string, error) {
	var p = alipay.TradePagePay{}
	p.OutTradeNo = orderID
	p.TotalAmount = amount
	p.Subject = subject
	p.ProductCode = "FAST_INSTANT_TRADE_PAY"
	p.ReturnURL = g.returnURL
	p.NotifyURL = g.notifyURL

	u, err := g.client.TradePagePay(p)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// QueryTrade 同步查单，返回网关原始交易状态。
// 网关侧查无此单（买家尚未进入收银台）不视为错误，按 pending 处理。
func (g *AlipayGateway) QueryTrade(ctx context.Context, orderID string) (string, error) {
	rsp, err := g.client.TradeQuery(ctx, alipay.TradeQuery{OutTradeNo: orderID})
	if err != nil {
		return "", err
	}
	if rsp.IsFailure() {
		return "", nil
	}
	return string(rsp.TradeStatus), nil
}

// VerifyNotification 解析并验签异步回调。
func (g *AlipayGateway) VerifyNotification(values url.Values) (*Notification, error) {
	noti, err := g.client.DecodeNotification(values)
	if err != nil {
		return nil, model.ErrSignatureInvalid
	}
	return &Notification{
		OrderID:     noti.OutTradeNo,
		TradeStatus: string(noti.TradeStatus),
	}, nil
}
