package production

import (
	"time"

	"fournil/internal/models"
)

// Test catalog mirroring a small bakery: one kasha bread family sharing a
// base recipe, rye and buckwheat loaves baked by pairs, a focaccia cut from
// the plain dough with its own topping, and a butter brioche with eggs.
type testCatalog struct {
	eau            *models.Ingredient
	farineBle      *models.Ingredient
	farineSarrasin *models.Ingredient
	farineSeigle   *models.Ingredient
	sel            *models.Ingredient
	levainFroment  *models.Ingredient
	levainSarrasin *models.Ingredient
	kasha          *models.Ingredient
	raisins        *models.Ingredient
	flocons        *models.Ingredient
	tomates        *models.Ingredient
	huileOlive     *models.Ingredient
	herbes         *models.Ingredient
	olives         *models.Ingredient
	oeufs          *models.Ingredient
	beurre         *models.Ingredient
	lait           *models.Ingredient
	sucre          *models.Ingredient

	gk  *models.Product // kasha loaf, base recipe
	tgk *models.Product // double kasha loaf, variant of gk
	pk  *models.Product // half kasha loaf, variant of gk
	gn  *models.Product // plain loaf, base recipe
	foc *models.Product // focaccia, sub-batch variant of gn
	gse *models.Product // rye loaf
	pse *models.Product // half rye loaf, baked by pairs
	gsa *models.Product // buckwheat loaf
	psa *models.Product // half buckwheat loaf, baked by pairs
	bb  *models.Product // butter brioche, eggs counted by unit
	br  *models.Product // raisin brioche, two soaking ingredients
}

func grams(name string) *models.Ingredient {
	return &models.Ingredient{Name: name, Unit: "g"}
}

func soaking(name string, source *models.Ingredient, coef float64) *models.Ingredient {
	return &models.Ingredient{Name: name, Unit: "g", SoakIngredient: source, SoakCoef: coef}
}

func recipeLine(ing *models.Ingredient, qty float64) models.ProductLine {
	return models.ProductLine{Ingredient: ing, Quantity: qty}
}

func newTestCatalog() *testCatalog {
	c := &testCatalog{
		eau:            grams("Eau"),
		farineBle:      grams("Farine blé"),
		farineSarrasin: grams("Farine sarrasin"),
		farineSeigle:   grams("Farine seigle"),
		sel:            grams("Sel"),
		levainFroment:  grams("Levain froment"),
		levainSarrasin: grams("Levain sarrasin"),
		huileOlive:     grams("Huile olive"),
		herbes:         grams("Herbes de provence"),
		olives:         grams("Olives"),
		oeufs:          &models.Ingredient{Name: "Oeufs", Unit: "u"},
		beurre:         grams("Beurre"),
		lait:           grams("Lait"),
		sucre:          grams("Sucre"),
	}
	c.kasha = soaking("Graines kasha", c.eau, 1)
	c.raisins = soaking("Raisins secs", c.eau, 1)
	c.flocons = soaking("Flocons de riz", c.eau, 10)
	c.tomates = soaking("Tomates séchées", c.huileOlive, 1.5)

	c.gk = &models.Product{
		Name: "Semi-complet kasha (1 kg)", Ref: "GK",
		IsBread: true, DisplayPriority: 10, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.farineBle, 599),
			recipeLine(c.eau, 371),
			recipeLine(c.kasha, 78),
			recipeLine(c.levainFroment, 168),
			recipeLine(c.sel, 11.98),
		},
	}
	c.tgk = &models.Product{
		Name: "Semi-complet kasha (2 kg)", Ref: "TGK",
		IsBread: true, DisplayPriority: 10, Coef: 2, NbUnits: 1,
		BaseProduct: c.gk,
	}
	c.pk = &models.Product{
		Name: "Semi-complet kasha (500 g)", Ref: "PK",
		IsBread: true, DisplayPriority: 10, Coef: 0.5, NbUnits: 1,
		BaseProduct: c.gk,
	}
	c.gn = &models.Product{
		Name: "Nature (1 kg)", Ref: "GN",
		IsBread: true, DisplayPriority: 12, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.farineBle, 637),
			recipeLine(c.eau, 446),
			recipeLine(c.levainFroment, 159),
			recipeLine(c.sel, 12.75),
		},
	}
	c.foc = &models.Product{
		Name: "Focaccia (part)", Ref: "FOC",
		DisplayPriority: 5, Coef: 2.5, NbUnits: 48, BakedByBatch: true,
		BaseProduct: c.gn,
		Lines: []models.ProductLine{
			recipeLine(c.tomates, 100),
			recipeLine(c.huileOlive, 150),
			recipeLine(c.herbes, 10),
			recipeLine(c.olives, 200),
		},
	}
	c.gse = &models.Product{
		Name: "Seigle (1 kg)", Ref: "GSe",
		IsBread: true, DisplayPriority: 8, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.eau, 368),
			recipeLine(c.farineBle, 157.6),
			recipeLine(c.farineSeigle, 368.8),
			recipeLine(c.levainFroment, 147.2),
			recipeLine(c.sel, 9.6),
		},
	}
	c.pse = &models.Product{
		Name: "Petit seigle (500 g)", Ref: "PSe",
		IsBread: true, DisplayPriority: 8, Coef: 1, NbUnits: 2, BakedByBatch: true,
		BaseProduct: c.gse,
	}
	c.gsa = &models.Product{
		Name: "Sarrasin (1 kg)", Ref: "GSa",
		IsBread: true, DisplayPriority: 9, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.eau, 423),
			recipeLine(c.farineSarrasin, 455),
			recipeLine(c.levainSarrasin, 136),
			recipeLine(c.sel, 9.1),
		},
	}
	c.psa = &models.Product{
		Name: "Petit sarrasin (500 g)", Ref: "PSa",
		IsBread: true, DisplayPriority: 9, Coef: 1, NbUnits: 2, BakedByBatch: true,
		BaseProduct: c.gsa,
	}
	c.bb = &models.Product{
		Name: "Brioche beurre (400 g)", Ref: "BB400g",
		DisplayPriority: 3, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.beurre, 62.5),
			recipeLine(c.farineBle, 250),
			recipeLine(c.lait, 47.5),
			recipeLine(c.levainFroment, 50),
			recipeLine(c.oeufs, 1.5),
			recipeLine(c.sel, 2.5),
			recipeLine(c.sucre, 50),
		},
	}
	c.br = &models.Product{
		Name: "Brioche raisins", Ref: "BR",
		DisplayPriority: 3, Coef: 1, NbUnits: 1,
		Lines: []models.ProductLine{
			recipeLine(c.farineBle, 246.5),
			recipeLine(c.eau, 160),
			recipeLine(c.flocons, 10),
			recipeLine(c.raisins, 47),
			recipeLine(c.levainFroment, 128),
			recipeLine(c.huileOlive, 24.5),
			recipeLine(c.sel, 3),
			recipeLine(c.sucre, 34.5),
		},
	}
	return c
}

// nextMonday is a fixed Monday so tests stay reproducible.
var nextMonday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

func deliveryOn(date time.Time, target models.BatchTarget) *models.DeliveryDate {
	return &models.DeliveryDate{
		Date:   date,
		Active: true,
		WeeklyDelivery: &models.WeeklyDelivery{
			Active:      true,
			BatchTarget: target,
			DayOfWeek:   date.Weekday(),
			Customer:    &models.Customer{Username: "store", DisplayName: "store", IsProfessional: true},
		},
	}
}

func orderFor(dd *models.DeliveryDate, lines ...models.OrderLine) *models.Order {
	return &models.Order{DeliveryDate: dd, Validated: true, Lines: lines}
}

func orderLine(p *models.Product, qty int) models.OrderLine {
	return models.OrderLine{Product: p, Quantity: qty}
}
