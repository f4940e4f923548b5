package payment

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"styleapi/internal/model"
	"styleapi/internal/queue"
	"styleapi/internal/store"
)

// fakeGateway 可编程的网关替身，验签规则：sign=valid 才通过。
type fakeGateway struct {
	payErr      error
	tradeStatus string
	queryErr    error
	queryCalls  int
}

func (g *fakeGateway) PagePay(_ context.Context, orderID, amount, subject string) (string, error) {
	if g.payErr != nil {
		return "", g.payErr
	}
	return "https://openapi-sandbox.dl.alipaydev.com/gateway.do?out_trade_no=" + orderID, nil
}

func (g *fakeGateway) QueryTrade(_ context.Context, orderID string) (string, error) {
	g.queryCalls++
	if g.queryErr != nil {
		return "", g.queryErr
	}
	return g.tradeStatus, nil
}

func (g *fakeGateway) VerifyNotification(values url.Values) (*Notification, error) {
	if values.Get("sign") != "valid" {
		return nil, model.ErrSignatureInvalid
	}
	return &Notification{
		OrderID:     values.Get("out_trade_no"),
		TradeStatus: values.Get("trade_status"),
	}, nil
}

type recordingSink struct {
	events []queue.OrderEvent
}

func (s *recordingSink) Publish(_ context.Context, ev queue.OrderEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func newTestService(gw *fakeGateway) (*Service, *store.Memory, *recordingSink) {
	st := store.NewMemory()
	sink := &recordingSink{}
	svc := NewService(st, gw, sink, zap.NewNop(), time.Second)
	return svc, st, sink
}

func TestCreate(t *testing.T) {
	svc, st, sink := newTestService(&fakeGateway{})
	ctx := context.Background()

	orderID, payURL, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
	assert.Contains(t, payURL, orderID)

	got, err := st.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "anime", got.ServiceType)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("9.99")))

	require.Len(t, sink.events, 1)
	assert.Equal(t, orderID, sink.events[0].OrderID)
	assert.Equal(t, "pending", sink.events[0].Status)
}

func TestCreateUniqueIDs(t *testing.T) {
	svc, _, _ := newTestService(&fakeGateway{})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _, err := svc.Create(ctx, "oil", decimal.RequireFromString("1"))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, sink := newTestService(&fakeGateway{})
	ctx := context.Background()

	tests := []struct {
		name        string
		serviceType string
		amount      string
	}{
		{"empty service type", "", "9.99"},
		{"blank service type", "   ", "9.99"},
		{"zero amount", "anime", "0"},
		{"negative amount", "anime", "-1.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(ctx, tt.serviceType, decimal.RequireFromString(tt.amount))
			var verr *model.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Empty(t, sink.events)
}

func TestCreateGatewayFailure(t *testing.T) {
	gw := &fakeGateway{payErr: assert.AnError}
	svc, st, _ := newTestService(gw)

	_, _, err := svc.Create(context.Background(), "anime", decimal.RequireFromString("9.99"))
	var cerr *model.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "payment gateway", cerr.Collaborator)

	// 网关失败不留半个订单
	_, getErr := st.Get(context.Background(), "any")
	assert.ErrorIs(t, getErr, model.ErrNotFound)
}

func TestQueryStatusUnknown(t *testing.T) {
	svc, _, _ := newTestService(&fakeGateway{})

	_, err := svc.QueryStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestQueryStatusMapping(t *testing.T) {
	tests := []struct {
		trade string
		want  model.OrderStatus
	}{
		{TradeSuccess, model.StatusSuccess},
		{TradeFinished, model.StatusSuccess},
		{TradeClosed, model.StatusFailed},
		{TradeFailed, model.StatusFailed},
		{"WAIT_BUYER_PAY", model.StatusPending},
		{"", model.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.trade, func(t *testing.T) {
			gw := &fakeGateway{tradeStatus: tt.trade}
			svc, st, _ := newTestService(gw)
			ctx := context.Background()

			id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
			require.NoError(t, err)

			got, err := svc.QueryStatus(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			stored, err := st.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

// 终态不回退：success 之后网关再报 TRADE_CLOSED 也不改状态，且不再打网关。
func TestQueryStatusTerminalNoRegress(t *testing.T) {
	gw := &fakeGateway{tradeStatus: TradeSuccess}
	svc, _, _ := newTestService(gw)
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	got, err := svc.QueryStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, got)
	callsAfterFirst := gw.queryCalls

	gw.tradeStatus = TradeClosed
	got, err = svc.QueryStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, got)
	assert.Equal(t, callsAfterFirst, gw.queryCalls)
}

func TestQueryStatusGatewayFailure(t *testing.T) {
	gw := &fakeGateway{queryErr: assert.AnError}
	svc, st, _ := newTestService(gw)
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	_, err = svc.QueryStatus(ctx, id)
	var cerr *model.CollaboratorError
	assert.ErrorAs(t, err, &cerr)

	// 查询失败不动存储
	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func notifyValues(orderID, tradeStatus, sign string) url.Values {
	v := url.Values{}
	v.Set("out_trade_no", orderID)
	v.Set("trade_status", tradeStatus)
	v.Set("sign", sign)
	return v
}

func TestHandleCallbackSuccess(t *testing.T) {
	svc, st, sink := newTestService(&fakeGateway{})
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	accepted := svc.HandleCallback(ctx, notifyValues(id, TradeSuccess, "valid"))
	assert.True(t, accepted)

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, stored.Status)

	// created + transitioned
	require.Len(t, sink.events, 2)
	assert.Equal(t, "success", sink.events[1].Status)
}

func TestHandleCallbackInvalidSignature(t *testing.T) {
	svc, st, _ := newTestService(&fakeGateway{})
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	accepted := svc.HandleCallback(ctx, notifyValues(id, TradeSuccess, "forged"))
	assert.False(t, accepted)

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

// 验签通过但订单未知：照常确认，避免网关重试风暴；不产生任何状态变更。
func TestHandleCallbackUnknownOrder(t *testing.T) {
	svc, _, sink := newTestService(&fakeGateway{})

	accepted := svc.HandleCallback(context.Background(), notifyValues("ghost", TradeSuccess, "valid"))
	assert.True(t, accepted)
	assert.Empty(t, sink.events)
}

// 回调先到终态后，再来反向回调只确认不改状态。
func TestHandleCallbackTerminalIdempotent(t *testing.T) {
	svc, st, _ := newTestService(&fakeGateway{})
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	require.True(t, svc.HandleCallback(ctx, notifyValues(id, TradeSuccess, "valid")))
	assert.True(t, svc.HandleCallback(ctx, notifyValues(id, TradeClosed, "valid")))

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, stored.Status)
}

func TestHandleCallbackNonTerminalStatus(t *testing.T) {
	svc, st, _ := newTestService(&fakeGateway{})
	ctx := context.Background()

	id, _, err := svc.Create(ctx, "anime", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	accepted := svc.HandleCallback(ctx, notifyValues(id, "WAIT_BUYER_PAY", "valid"))
	assert.True(t, accepted)

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestMapTradeStatus(t *testing.T) {
	assert.Equal(t, model.StatusSuccess, MapTradeStatus(TradeSuccess))
	assert.Equal(t, model.StatusSuccess, MapTradeStatus(TradeFinished))
	assert.Equal(t, model.StatusFailed, MapTradeStatus(TradeClosed))
	assert.Equal(t, model.StatusFailed, MapTradeStatus(TradeFailed))
	assert.Equal(t, model.StatusPending, MapTradeStatus("WAIT_BUYER_PAY"))
	assert.Equal(t, model.StatusPending, MapTradeStatus(""))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Anime", capitalize("anime"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Oil", capitalize("oil"))
}
