package store

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"styleapi/internal/model"
	rediskey "styleapi/pkg/redis"
)

// luaUpdateStatus：Redis 内原子「读当前状态 → 仅 pending 可转终态 → HSET」
// KEYS[1]=订单key，ARGV[1]=目标状态；不存在返回 -1，已终态返回 0，转移成功返回 1
const luaUpdateStatus = `
local key = KEYS[1]
if redis.call('EXISTS', key) == 0 then
  return -1
end
local cur = redis.call('HGET', key, 'status')
if cur ~= 'pending' then
  return 0
end
redis.call('HSET', key, 'status', ARGV[1])
return 1
`

// Redis 订单存储：每单一个 hash，状态转移走 Lua 保证原子性。
// ttl > 0 时订单键带过期时间，作为保留策略的挂钩点（默认 0 = 永久保留）。
type Redis struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewRedis(rdb *rd.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Put(ctx context.Context, order *model.Order) error {
	key := rediskey.OrderKey(order.OrderID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		"order_id", order.OrderID,
		"service_type", order.ServiceType,
		"amount", order.Amount.String(),
		"status", string(order.Status),
		"create_time", order.CreateTime.UTC().Format(time.RFC3339Nano),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Get(ctx context.Context, orderID string) (*model.Order, error) {
	m, err := r.rdb.HGetAll(ctx, rediskey.OrderKey(orderID)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, model.ErrNotFound
	}

	amount, err := decimal.NewFromString(m["amount"])
	if err != nil {
		return nil, err
	}
	createTime, err := time.Parse(time.RFC3339Nano, m["create_time"])
	if err != nil {
		return nil, err
	}
	return &model.Order{
		OrderID:     orderID,
		ServiceType: m["service_type"],
		Amount:      amount,
		Status:      model.OrderStatus(m["status"]),
		CreateTime:  createTime,
	}, nil
}

func (r *Redis) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	if !status.Terminal() {
		return false, nil
	}
	key := rediskey.OrderKey(orderID)
	res, err := r.rdb.Eval(ctx, luaUpdateStatus, []string{key}, string(status)).Int()
	if err != nil {
		return false, err
	}
	if res < 0 {
		return false, model.ErrNotFound
	}
	return res == 1, nil
}
