// Package production turns the day's orders into ready-to-execute production
// sheets: what to deliver, what to bake, and what to prepare the day before.
//
// The engine is a single-threaded fold over a read-only order snapshot.
// Accumulation is commutative; rounding and ordering are applied once, at
// finalization. Every invocation allocates fresh accumulators and has no
// side effects, so a computation is safe to retry from scratch.
package production

import (
	"time"

	"fournil/internal/models"
)

// Config carries the production settings the engine cannot derive from the
// catalog.
type Config struct {
	// LevainSteps is the number of starter refresh steps, 2 or 3.
	// Zero means the default 2-step schedule.
	LevainSteps int
}

// Steps returns the effective refresh step count.
func (c Config) Steps() int {
	if c.LevainSteps == 3 {
		return 3
	}
	return 2
}

// Actions is the finalized result of one production computation: the three
// sheets for one target day, rounded, sorted and ready to serialize.
type Actions struct {
	TargetDay   string            `json:"target_day"`
	Delivery    DeliverySheet     `json:"delivery"`
	Bakery      *BakerySheet      `json:"bakery"`
	Preparation *PreparationSheet `json:"preparation"`
}

// ComputeActions classifies every order against the target day and folds its
// lines into the stage accumulators, then finalizes the three sheets.
// Orders whose stages all miss the target day contribute nothing; callers
// typically pass the orders delivering within [targetDay, targetDay+2].
func ComputeActions(targetDay time.Time, orders []*models.Order, cfg Config) (*Actions, error) {
	delivery := NewDeliveryBatch()
	bakery := NewBakeryBatch()
	preparation := NewPreparationBatch()

	for _, order := range orders {
		stages := Classify(order, targetDay)
		for i := range order.Lines {
			line := &order.Lines[i]
			if stages.Delivery {
				delivery.AddLine(order, line)
			}
			if stages.Bakery {
				bakery.AddLine(order, line)
			}
			if stages.Preparation {
				preparation.AddLine(order, line)
			}
		}
	}

	bakerySheet, err := bakery.Finalize()
	if err != nil {
		return nil, err
	}
	preparationSheet, err := preparation.Finalize(cfg)
	if err != nil {
		return nil, err
	}

	return &Actions{
		TargetDay:   models.Day(targetDay).Format("2006-01-02"),
		Delivery:    delivery.Finalize(),
		Bakery:      bakerySheet,
		Preparation: preparationSheet,
	}, nil
}
