package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"styleapi/internal/model"
)

// OrderRecord 订单落库结构。金额存字符串，读写经 decimal 转换。
type OrderRecord struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	OrderID     string `gorm:"size:64;uniqueIndex;not null"`
	ServiceType string `gorm:"size:64;not null"`
	Amount      string `gorm:"size:32;not null"`
	Status      string `gorm:"size:16;not null;index"`
	CreateTime  time.Time
}

func (OrderRecord) TableName() string { return "orders" }

// Gorm sqlite 订单存储。状态转移用带 status 条件的 UPDATE 实现 compare-and-set。
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&OrderRecord{}); err != nil {
		return nil, err
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Put(ctx context.Context, order *model.Order) error {
	rec := &OrderRecord{
		OrderID:     order.OrderID,
		ServiceType: order.ServiceType,
		Amount:      order.Amount.String(),
		Status:      string(order.Status),
		CreateTime:  order.CreateTime,
	}
	return g.db.WithContext(ctx).Create(rec).Error
}

func (g *Gorm) Get(ctx context.Context, orderID string) (*model.Order, error) {
	var rec OrderRecord
	err := g.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return nil, err
	}
	return &model.Order{
		OrderID:     rec.OrderID,
		ServiceType: rec.ServiceType,
		Amount:      amount,
		Status:      model.OrderStatus(rec.Status),
		CreateTime:  rec.CreateTime,
	}, nil
}

func (g *Gorm) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	if !status.Terminal() {
		return false, nil
	}
	// WHERE status='pending' 保证并发下只有一个写者完成 pending → 终态
	res := g.db.WithContext(ctx).Model(&OrderRecord{}).
		Where("order_id = ? AND status = ?", orderID, string(model.StatusPending)).
		Update("status", string(status))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// 没改到行：要么订单不存在，要么已是终态
	var count int64
	if err := g.db.WithContext(ctx).Model(&OrderRecord{}).
		Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, model.ErrNotFound
	}
	return false, nil
}
