package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persol/internal/domain"
)

func validRequest() domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		Cart: []domain.CartLine{{ProductID: 1, Quantity: 2}},
		Shipping: domain.Shipping{
			Name:    "Ana Souza",
			Phone:   "+55 11 99999-0000",
			Address: "Rua das Flores, 10",
			Payment: "cod",
		},
	}
}

func TestPriceCart_ExactDecimalTotal(t *testing.T) {
	prices := map[int64]decimal.Decimal{1: decimal.RequireFromString("49.99")}

	items, total, err := domain.PriceCart([]domain.CartLine{{ProductID: 1, Quantity: 2}}, prices)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "99.98", total.StringFixed(2))
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Subtotal.Equal(decimal.RequireFromString("99.98")))
}

func TestPriceCart_SumsEveryLine(t *testing.T) {
	prices := map[int64]decimal.Decimal{
		1: decimal.RequireFromString("10.10"),
		2: decimal.RequireFromString("0.30"),
	}
	cart := []domain.CartLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 7},
		{ProductID: 1, Quantity: 1},
	}

	items, total, err := domain.PriceCart(cart, prices)

	require.NoError(t, err)
	assert.Len(t, items, 3)
	// 30.30 + 2.10 + 10.10
	assert.True(t, total.Equal(decimal.RequireFromString("42.50")), total.String())
}

func TestPriceCart_UnknownProduct(t *testing.T) {
	prices := map[int64]decimal.Decimal{1: decimal.NewFromInt(5)}

	_, _, err := domain.PriceCart([]domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 1}}, prices)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownProduct))
	var unknown *domain.UnknownProductError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, int64(99), unknown.ProductID)
}

func TestPriceCart_NonPositiveQuantity(t *testing.T) {
	prices := map[int64]decimal.Decimal{1: decimal.NewFromInt(5)}

	_, _, err := domain.PriceCart([]domain.CartLine{{ProductID: 1, Quantity: 0}}, prices)

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestPlaceOrderRequest_Validate(t *testing.T) {
	assert.NoError(t, validRequest().Validate())

	empty := validRequest()
	empty.Cart = nil
	assert.ErrorIs(t, empty.Validate(), domain.ErrEmptyCart)

	noPhone := validRequest()
	noPhone.Shipping.Phone = "   "
	assert.ErrorIs(t, noPhone.Validate(), domain.ErrEmptyCart)

	negative := validRequest()
	negative.Cart = append(negative.Cart, domain.CartLine{ProductID: 3, Quantity: -1})
	assert.ErrorIs(t, negative.Validate(), domain.ErrInvalidQuantity)
}

func TestDistinctProductIDs_KeepsFirstOccurrenceOrder(t *testing.T) {
	ids := domain.DistinctProductIDs([]domain.CartLine{
		{ProductID: 4}, {ProductID: 2}, {ProductID: 4}, {ProductID: 9},
	})

	assert.Equal(t, []int64{4, 2, 9}, ids)
}

func TestOrderStatus_StrictTransitionTable(t *testing.T) {
	legal := [][2]domain.OrderStatus{
		{domain.OrderPending, domain.OrderProcessing},
		{domain.OrderProcessing, domain.OrderShipped},
		{domain.OrderShipped, domain.OrderDelivered},
		{domain.OrderPending, domain.OrderCancelled},
		{domain.OrderProcessing, domain.OrderCancelled},
		{domain.OrderShipped, domain.OrderCancelled},
	}
	for _, tr := range legal {
		assert.True(t, tr[0].CanTransitionTo(tr[1]), "%s -> %s", tr[0], tr[1])
	}

	illegal := [][2]domain.OrderStatus{
		{domain.OrderPending, domain.OrderShipped},
		{domain.OrderDelivered, domain.OrderCancelled},
		{domain.OrderCancelled, domain.OrderPending},
		{domain.OrderShipped, domain.OrderProcessing},
		{domain.OrderPending, domain.OrderPending},
	}
	for _, tr := range illegal {
		assert.False(t, tr[0].CanTransitionTo(tr[1]), "%s -> %s", tr[0], tr[1])
	}

	assert.True(t, domain.OrderDelivered.Terminal())
	assert.True(t, domain.OrderCancelled.Terminal())
	assert.False(t, domain.OrderStatus("lost").Valid())
}

func TestPaymentStatus_Transitions(t *testing.T) {
	assert.True(t, domain.PaymentUnpaid.CanTransitionTo(domain.PaymentPaid))
	assert.True(t, domain.PaymentPaid.CanTransitionTo(domain.PaymentRefunded))
	assert.False(t, domain.PaymentUnpaid.CanTransitionTo(domain.PaymentRefunded))
	assert.False(t, domain.PaymentRefunded.CanTransitionTo(domain.PaymentPaid))
}

func TestCustomerCodeAndRoles(t *testing.T) {
	assert.Equal(t, "CUS_000042", domain.CustomerCode(42))
	assert.True(t, domain.RoleStaff.Valid())
	assert.False(t, domain.UserRole("superuser").Valid())
	assert.False(t, domain.Claims{Role: "Admin"}.IsAdmin())
	assert.Equal(t, domain.StockLow, domain.StatusForQuantity(5))
	assert.Equal(t, domain.StockOut, domain.StatusForQuantity(0))
}
