package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"styleapi/internal/model"
	"styleapi/internal/queue"
	"styleapi/internal/store"
)

// EventSink 接收订单事件。*queue.Producer 满足该接口；nil 表示关闭事件发布。
type EventSink interface {
	Publish(ctx context.Context, ev queue.OrderEvent) error
}

// Service 订单生命周期管理器：创建、同步查单、异步回调对账。
// 状态转移的原子性下沉到 store.UpdateStatus，这里只做词表映射与编排。
type Service struct {
	store   store.Store
	gateway Gateway
	events  EventSink
	logger  *zap.Logger
	timeout time.Duration
}

func NewService(st store.Store, gw Gateway, events EventSink, logger *zap.Logger, timeout time.Duration) *Service {
	return &Service{
		store:   st,
		gateway: gw,
		events:  events,
		logger:  logger,
		timeout: timeout,
	}
}

// Create 创建订单并返回 (orderID, payURL)。
// 先向网关要跳转链接，成功后才落单；网关失败时不留下半个订单。
func (s *Service) Create(ctx context.Context, serviceType string, amount decimal.Decimal) (string, string, error) {
	if strings.TrimSpace(serviceType) == "" {
		return "", "", &model.ValidationError{Field: "serviceType", Reason: "must not be empty"}
	}
	// serviceType 不做白名单校验：风格目录由图像服务扩展，这里保持开放
	if !amount.IsPositive() {
		return "", "", &model.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	orderID := uuid.New().String()
	subject := fmt.Sprintf("AI Photo %s Service", capitalize(serviceType))

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	payURL, err := s.gateway.PagePay(gctx, orderID, amount.String(), subject)
	if err != nil {
		return "", "", &model.CollaboratorError{Collaborator: "payment gateway", Err: err}
	}

	order := &model.Order{
		OrderID:     orderID,
		ServiceType: serviceType,
		Amount:      amount,
		Status:      model.StatusPending,
		CreateTime:  time.Now(),
	}
	if err := s.store.Put(ctx, order); err != nil {
		return "", "", err
	}

	s.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("service_type", serviceType),
		zap.String("amount", amount.String()),
	)
	s.publish(ctx, order)
	return orderID, payURL, nil
}

// QueryStatus 同步查单并返回当前状态。
// 已终态的订单直接返回，不再打网关；pending 订单查网关后按词表映射，
// 终态写入走 compare-and-set，与并发回调竞争也不会回退。
func (s *Service) QueryStatus(ctx context.Context, orderID string) (model.OrderStatus, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.Status.Terminal() {
		return o.Status, nil
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.gateway.QueryTrade(qctx, orderID)
	if err != nil {
		return "", &model.CollaboratorError{Collaborator: "payment gateway", Err: err}
	}

	mapped := MapTradeStatus(raw)
	if !mapped.Terminal() {
		return o.Status, nil
	}

	moved, err := s.store.UpdateStatus(ctx, orderID, mapped)
	if err != nil {
		return "", err
	}
	if moved {
		o.Status = mapped
		s.logger.Info("order status updated by query",
			zap.String("order_id", orderID),
			zap.String("status", string(mapped)),
		)
		s.publish(ctx, o)
		return mapped, nil
	}

	// 回调抢先完成了转移，读回实际状态
	cur, err := s.store.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	return cur.Status, nil
}

// HandleCallback 处理网关异步回调，返回是否确认。
// 验签失败一律拒绝且不动任何订单；验签通过但订单未知照常确认——
// 网关会对未确认回调反复重推，把未知单当错误只会造成重试风暴。
func (s *Service) HandleCallback(ctx context.Context, values url.Values) bool {
	noti, err := s.gateway.VerifyNotification(values)
	if err != nil {
		s.logger.Warn("notification rejected", zap.Error(err))
		return false
	}

	o, err := s.store.Get(ctx, noti.OrderID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Info("notification for unknown order",
				zap.String("order_id", noti.OrderID),
			)
			return true
		}
		s.logger.Error("load order for notification",
			zap.String("order_id", noti.OrderID),
			zap.Error(err),
		)
		return false
	}

	mapped := MapTradeStatus(noti.TradeStatus)
	if !mapped.Terminal() {
		return true
	}

	moved, err := s.store.UpdateStatus(ctx, noti.OrderID, mapped)
	if err != nil {
		s.logger.Error("update order status from notification",
			zap.String("order_id", noti.OrderID),
			zap.Error(err),
		)
		return false
	}
	if moved {
		o.Status = mapped
		s.logger.Info("order status updated by notification",
			zap.String("order_id", noti.OrderID),
			zap.String("status", string(mapped)),
		)
		s.publish(ctx, o)
	}
	return true
}

// publish 尽力而为地发订单事件，失败只记日志不影响主流程。
func (s *Service) publish(ctx context.Context, o *model.Order) {
	if s.events == nil {
		return
	}
	ev := queue.OrderEvent{
		OrderID:     o.OrderID,
		ServiceType: o.ServiceType,
		Amount:      o.Amount.String(),
		Status:      string(o.Status),
		At:          time.Now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish order event",
			zap.String("order_id", o.OrderID),
			zap.Error(err),
		)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
