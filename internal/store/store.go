package store

import (
	"context"

	"styleapi/internal/model"
)

// Store 抽象订单存储，生命周期管理器不依赖具体后端。
// UpdateStatus 是 pending → 终态的 compare-and-set：
// 仅当当前状态为 pending 时写入 status 并返回 true；
// 终态订单或重复断言 pending 一律返回 false（幂等，不報错）；
// 订单不存在返回 model.ErrNotFound。
// 并发回调与轮询对同一订单的竞争由该原子操作收敛。
type Store interface {
	Put(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error)
}
