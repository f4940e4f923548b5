package store

import (
	"context"
	"sync"

	"styleapi/internal/model"
)

// Memory 进程内订单存储（默认后端）。
// 所有操作持同一把锁：订单量极小，全局锁足以避免回调与轮询并发丢更新。
type Memory struct {
	mu     sync.Mutex
	orders map[string]model.Order
}

func NewMemory() *Memory {
	return &Memory{orders: make(map[string]model.Order)}
}

func (m *Memory) Put(_ context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.OrderID] = *order
	return nil
}

func (m *Memory) Get(_ context.Context, orderID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &o, nil
}

func (m *Memory) UpdateStatus(_ context.Context, orderID string, status model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return false, model.ErrNotFound
	}
	// 终态不回退；重复断言 pending 视为 no-op
	if o.Status.Terminal() || !status.Terminal() {
		return false, nil
	}
	o.Status = status
	m.orders[orderID] = o
	return true, nil
}
