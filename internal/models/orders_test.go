package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderLinePrice(t *testing.T) {
	loaf := &Product{Name: "Nature (1 kg)", Price: decimal.NewFromFloat(5)}
	line := &OrderLine{Product: loaf, Quantity: 2}

	t.Run("retail", func(t *testing.T) {
		price := line.Price(&Customer{Username: "alice"})
		assert.True(t, price.Equal(decimal.NewFromFloat(10)), "got %s", price)
	})

	t.Run("retail without customer", func(t *testing.T) {
		price := line.Price(nil)
		assert.True(t, price.Equal(decimal.NewFromFloat(10)), "got %s", price)
	})

	t.Run("professional", func(t *testing.T) {
		// VAT comes off first, then the negotiated discount
		pro := &Customer{Username: "store", IsProfessional: true, ProDiscountPercentage: 5}
		price := line.Price(pro)
		assert.True(t, price.Equal(decimal.NewFromFloat(8.98)), "got %s", price)
	})

	t.Run("professional without discount", func(t *testing.T) {
		pro := &Customer{Username: "store", IsProfessional: true}
		price := line.Price(pro)
		assert.True(t, price.Equal(decimal.NewFromFloat(9.45)), "got %s", price)
	})

	t.Run("missing product", func(t *testing.T) {
		assert.True(t, (&OrderLine{Quantity: 3}).Price(nil).IsZero())
	})
}

func TestOrderTotalPrice(t *testing.T) {
	loaf := &Product{Name: "Nature (1 kg)", Price: decimal.NewFromFloat(5)}
	brioche := &Product{Name: "Brioche raisins", Price: decimal.NewFromFloat(6.5)}
	order := &Order{
		Customer: &Customer{Username: "alice"},
		Lines: []OrderLine{
			{Product: loaf, Quantity: 2},
			{Product: brioche, Quantity: 1},
		},
	}
	assert.True(t, order.TotalPrice().Equal(decimal.NewFromFloat(16.5)), "got %s", order.TotalPrice())
}

func TestDeliveryDateBatchTarget(t *testing.T) {
	bare := &DeliveryDate{}
	assert.Equal(t, SameDay, bare.BatchTarget())

	unset := &DeliveryDate{WeeklyDelivery: &WeeklyDelivery{}}
	assert.Equal(t, SameDay, unset.BatchTarget())

	previous := &DeliveryDate{WeeklyDelivery: &WeeklyDelivery{BatchTarget: PreviousDay}}
	assert.Equal(t, PreviousDay, previous.BatchTarget())
}

func TestDay(t *testing.T) {
	stamp := time.Date(2026, 3, 2, 14, 37, 12, 999, time.Local)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), Day(stamp))
	assert.Equal(t, Day(stamp), Day(Day(stamp)))
}

func TestWeeklyDeliveryString(t *testing.T) {
	wd := &WeeklyDelivery{
		Customer:  &Customer{DisplayName: "store"},
		DayOfWeek: time.Wednesday,
	}
	assert.Equal(t, "store: Wednesday", wd.String())
}
