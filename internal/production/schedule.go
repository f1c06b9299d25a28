package production

import (
	"time"

	"fournil/internal/models"
)

// Stages marks which production stages of an order fall on a target day. An
// order can hit delivery and bakery on the same day under a same-day policy.
type Stages struct {
	Delivery    bool
	Bakery      bool
	Preparation bool
}

// BakeryDay maps a delivery date to the day its dough is baked.
func BakeryDay(delivery time.Time, target models.BatchTarget) time.Time {
	if target == models.PreviousDay {
		return delivery.AddDate(0, 0, -1)
	}
	return delivery
}

// PreparationDay maps a delivery date to the day starters are refreshed and
// soaking ingredients are set up, always one day before baking.
func PreparationDay(delivery time.Time, target models.BatchTarget) time.Time {
	return BakeryDay(delivery, target).AddDate(0, 0, -1)
}

// Classify tells which stages of an order fall on targetDay. Pure date
// arithmetic; timestamps are compared at day granularity.
func Classify(order *models.Order, targetDay time.Time) Stages {
	if order.DeliveryDate == nil {
		return Stages{}
	}
	delivery := models.Day(order.DeliveryDate.Date)
	target := models.Day(targetDay)
	policy := order.DeliveryDate.BatchTarget()
	return Stages{
		Delivery:    delivery.Equal(target),
		Bakery:      BakeryDay(delivery, policy).Equal(target),
		Preparation: PreparationDay(delivery, policy).Equal(target),
	}
}
