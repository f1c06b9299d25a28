package production

import (
	"fmt"

	"fournil/internal/models"
)

// soakedSuffix labels a soaking ingredient on the bakery sheet once its
// diverted liquid has been folded in.
const soakedSuffix = " (soaked)"

// pool accumulates ingredient quantities by display name. Accumulation is
// commutative; ordering is only imposed at finalization.
type pool map[string]float64

func (p pool) merge(other pool) {
	for name, qty := range other {
		p[name] += qty
	}
}

// Soak tracks the dry mass of a soaking ingredient and the liquid diverted
// from its source ingredient.
type Soak struct {
	Dry    float64
	Liquid float64
	Source string
}

// Resolution holds the per-stage ingredient contributions of one ordered
// product quantity: what the bakery batch needs, what the variant's own
// sub-batch needs, and what must be prepared the day before.
type Resolution struct {
	Product *models.Product
	// Base is the product owning the shared recipe (the product itself when
	// it has no base link).
	Base *models.Product
	// Units is the ordered quantity after batch rounding.
	Units int
	// BaseUnits expresses the contribution in base-dough units:
	// units scaled by the recipe coefficient per stated batch size.
	BaseUnits float64
	Bakery    pool
	// SubBatch carries the variant's supplemental ingredient lines, nil
	// unless the product layers its own lines on a base dough.
	SubBatch pool
	// Dough is the mass in grams of shared dough consumed by the sub-batch.
	Dough    float64
	Starters pool
	Soaks    map[string]*Soak
	// Refs maps display names back to catalog ingredients so the finalizer
	// can convert rounded quantities to masses.
	Refs map[string]*models.Ingredient
}

// Resolve computes the stage contributions for quantity units of a product.
// Starter lines are credited to the preparation stage instead of the bakery
// pool; soaking lines keep their dry mass plus diverted liquid under a
// soaked label while the source ingredient is debited.
func Resolve(product *models.Product, quantity int) (*Resolution, error) {
	units := product.BatchRound(quantity)
	coef := product.Coef
	if coef == 0 {
		coef = 1
	}
	nbUnits := product.NbUnits
	if nbUnits == 0 {
		nbUnits = 1
	}

	res := &Resolution{
		Product:   product,
		Base:      product,
		Units:     units,
		BaseUnits: float64(units) * coef / float64(nbUnits),
		Bakery:    pool{},
		Starters:  pool{},
		Soaks:     map[string]*Soak{},
		Refs:      map[string]*models.Ingredient{},
	}
	if product.BaseProduct != nil {
		res.Base = product.BaseProduct
	}

	baseLines := product.BatchLines(false)
	for _, line := range baseLines {
		res.chargeBakery(res.Bakery, line)
		res.chargePreparation(line)
	}

	if product.HasSubBatch() {
		res.SubBatch = pool{}
		for _, line := range product.BatchLines(true) {
			res.chargeBakery(res.SubBatch, line)
			res.chargePreparation(line)
		}
		dough, err := doughWeight(baseLines, units)
		if err != nil {
			return nil, fmt.Errorf("sub-batch dough weight for %s: %w", product.Ref, err)
		}
		res.Dough = dough
	}

	return res, nil
}

// chargeBakery adds one resolved line to a bakery-stage pool, decomposing
// starter and soaking content.
func (r *Resolution) chargeBakery(target pool, line models.BatchLine) {
	ing := line.Ingredient
	qty := line.Quantity * float64(r.Units)
	switch {
	case ing.IsStarter():
		// refreshed the day before, arrives ready on bakery day
	case ing.NeedsSoaking():
		liquid := qty * ing.SoakCoef
		target[ing.Name+soakedSuffix] += qty + liquid
		target[ing.SoakIngredient.Name] -= liquid
		r.Refs[ing.Name+soakedSuffix] = ing
		r.Refs[ing.SoakIngredient.Name] = ing.SoakIngredient
	default:
		target[ing.Name] += qty
		r.Refs[ing.Name] = ing
	}
}

// chargePreparation credits starter and soaking content of one resolved line
// to the preparation stage.
func (r *Resolution) chargePreparation(line models.BatchLine) {
	ing := line.Ingredient
	qty := line.Quantity * float64(r.Units)
	switch {
	case ing.IsStarter():
		r.Starters[ing.Name] += qty
	case ing.NeedsSoaking():
		soak := r.Soaks[ing.Name]
		if soak == nil {
			soak = &Soak{Source: ing.SoakIngredient.Name}
			r.Soaks[ing.Name] = soak
		}
		soak.Dry += qty
		soak.Liquid += qty * ing.SoakCoef
	}
}

// doughWeight computes the mass of dough produced by the shared recipe lines
// for the given unit count. Starters stay in: the dough physically contains
// them even though the bakery sheet lists them under preparation.
func doughWeight(lines []models.BatchLine, units int) (float64, error) {
	total := 0.0
	for _, line := range lines {
		m, err := line.Ingredient.Mass(line.Quantity)
		if err != nil {
			return 0, err
		}
		total += m * float64(units)
	}
	return total, nil
}
