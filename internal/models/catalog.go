package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// StarterPrefix identifies sourdough starter ingredients by naming convention.
const StarterPrefix = "Levain"

// ErrUnknownUnit signals a catalog ingredient whose unit has no known mass
// equivalence. Weight computations fail loudly rather than produce a wrong sheet.
var ErrUnknownUnit = errors.New("unknown unit for weight computation")

// unitMasses maps count-based ingredients to their mass equivalent in grams.
var unitMasses = map[string]float64{
	"Oeufs": 60,
}

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// Ingredient represents a raw material used by recipes. Prices are per
// kilogram, liter or unit depending on Unit.
type Ingredient struct {
	gorm.Model
	Name         string          `gorm:"index" json:"name"`
	Unit         string          `json:"unit"`
	PerUnitPrice decimal.Decimal `gorm:"type:decimal(8,3)" json:"per_unit_price"`
	// Soaking ingredients absorb SoakCoef times their dry mass of
	// SoakIngredient (usually water) the day before baking.
	SoakIngredientID *uint       `json:"soak_ingredient_id"`
	SoakIngredient   *Ingredient `gorm:"foreignkey:SoakIngredientID" json:"-"`
	SoakCoef         float64     `json:"soak_coef"`
}

// TableName sets the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// IsStarter reports whether the ingredient is a sourdough starter, identified
// by naming convention.
func (i *Ingredient) IsStarter() bool {
	return strings.HasPrefix(i.Name, StarterPrefix)
}

// NeedsSoaking reports whether the ingredient must be pre-soaked.
func (i *Ingredient) NeedsSoaking() bool {
	return i.SoakIngredient != nil
}

// Mass converts a recipe quantity of this ingredient to grams. Count-based
// ingredients use the known per-unit mass table; anything else is a catalog
// data-integrity error.
func (i *Ingredient) Mass(quantity float64) (float64, error) {
	if i.Unit == "g" {
		return quantity, nil
	}
	if m, ok := unitMasses[i.Name]; ok {
		return quantity * m, nil
	}
	return 0, fmt.Errorf("%s (unit %q): %w", i.Name, i.Unit, ErrUnknownUnit)
}

// Product represents a sellable product and its recipe. When BaseProduct is
// set, ingredient lines come from the base recipe scaled by Coef; the product
// may still carry its own supplemental lines (the sub-batch case).
type Product struct {
	gorm.Model
	Name   string          `gorm:"index" json:"name"`
	Ref    string          `gorm:"unique_index" json:"ref"`
	Price  decimal.Decimal `gorm:"type:decimal(5,2)" json:"price"`
	Active bool            `json:"active"`
	// Base recipe this product derives from, if any. One level deep at most.
	BaseProductID *uint    `json:"base_product_id"`
	BaseProduct   *Product `gorm:"foreignkey:BaseProductID" json:"-"`
	Coef          float64  `json:"coef"`
	// Recipe quantities are stated for NbUnits units.
	NbUnits int `json:"nb_units"`
	// Baking happens in multiples of NbUnits; partial batches are rounded up.
	BakedByBatch    bool        `json:"baked_by_batch"`
	IsBread         bool        `json:"is_bread"`
	DisplayPriority int         `json:"display_priority"`
	AvailableDays   StringSlice `gorm:"type:text" json:"available_days"`
	Notes           string      `json:"notes"`
	Lines           []ProductLine `gorm:"foreignkey:ProductID" json:"raw_ingredients"`
}

// TableName sets the table name for Product
func (Product) TableName() string {
	return "products"
}

// ShortRecipeName returns the production-sheet name for the recipe, without
// the packaging variant suffix.
func (p *Product) ShortRecipeName() string {
	name := p.Name
	if idx := strings.Index(name, " ("); idx >= 0 {
		name = name[:idx]
	}
	return fmt.Sprintf("%s/%s", name, p.Ref)
}

// AvailableOn reports whether the product can be ordered for the given
// weekday. An empty day list means available every day.
func (p *Product) AvailableOn(day time.Weekday) bool {
	if len(p.AvailableDays) == 0 {
		return true
	}
	name := strings.ToLower(day.String())
	for _, d := range p.AvailableDays {
		if strings.ToLower(d) == name {
			return true
		}
	}
	return false
}

// BatchLine is one resolved recipe line, with the quantity needed for a
// single ordered unit of the product.
type BatchLine struct {
	Ingredient *Ingredient
	Quantity   float64
}

// BatchLines resolves the recipe lines for one unit of the product. Lines are
// read from the base recipe when one is set, scaled by the product
// coefficient and divided by the number of units the recipe is stated for.
// With direct set, the product's own lines are used regardless of the base
// link (supplemental sub-batch ingredients).
func (p *Product) BatchLines(direct bool) []BatchLine {
	source := p
	if !direct && p.BaseProduct != nil {
		source = p.BaseProduct
	}
	coef := p.Coef
	if coef == 0 {
		coef = 1
	}
	nbUnits := p.NbUnits
	if nbUnits == 0 {
		nbUnits = 1
	}
	lines := make([]BatchLine, 0, len(source.Lines))
	for i := range source.Lines {
		line := &source.Lines[i]
		if line.Ingredient == nil {
			continue
		}
		lines = append(lines, BatchLine{
			Ingredient: line.Ingredient,
			Quantity:   line.Quantity * coef / float64(nbUnits),
		})
	}
	return lines
}

// HasSubBatch reports whether the product layers its own ingredients on top
// of a shared base dough.
func (p *Product) HasSubBatch() bool {
	return p.BaseProduct != nil && len(p.Lines) > 0
}

// BatchRound rounds an ordered quantity up to the next full batch for
// products that cannot be baked partially.
func (p *Product) BatchRound(quantity int) int {
	if !p.BakedByBatch || p.NbUnits <= 1 {
		return quantity
	}
	if rem := quantity % p.NbUnits; rem != 0 {
		return quantity + p.NbUnits - rem
	}
	return quantity
}

// CostPrice returns the ingredient cost of one unit of the product.
func (p *Product) CostPrice() decimal.Decimal {
	price := decimal.Zero
	for i := range p.Lines {
		price = price.Add(lineCost(&p.Lines[i], 1))
	}
	if p.BaseProduct != nil {
		for i := range p.BaseProduct.Lines {
			price = price.Add(lineCost(&p.BaseProduct.Lines[i], p.Coef))
		}
	}
	nbUnits := p.NbUnits
	if nbUnits == 0 {
		nbUnits = 1
	}
	return price.Div(decimal.NewFromInt(int64(nbUnits))).Round(2)
}

func lineCost(line *ProductLine, coef float64) decimal.Decimal {
	if line.Ingredient == nil {
		return decimal.Zero
	}
	divisor := decimal.NewFromInt(1)
	if line.Ingredient.Unit == "g" {
		// prices are per kilogram
		divisor = decimal.NewFromInt(1000)
	}
	qty := decimal.NewFromFloat(line.Quantity * coef)
	return qty.Mul(line.Ingredient.PerUnitPrice).Div(divisor)
}

// Weight returns the dough weight of one unit in grams, rounded to the
// nearest 10 g. Ingredients without a mass equivalence make the computation
// fail: a silently wrong weight must never reach the kitchen.
func (p *Product) Weight() (float64, error) {
	weight := 0.0
	for i := range p.Lines {
		line := &p.Lines[i]
		if line.Ingredient == nil {
			continue
		}
		m, err := line.Ingredient.Mass(line.Quantity)
		if err != nil {
			return 0, err
		}
		weight += m
	}
	if p.BaseProduct != nil {
		for i := range p.BaseProduct.Lines {
			line := &p.BaseProduct.Lines[i]
			if line.Ingredient == nil {
				continue
			}
			m, err := line.Ingredient.Mass(line.Quantity)
			if err != nil {
				return 0, err
			}
			weight += m * p.Coef
		}
	}
	nbUnits := p.NbUnits
	if nbUnits == 0 {
		nbUnits = 1
	}
	return roundTo(weight/float64(nbUnits), 10), nil
}

// ProductLine binds an ingredient quantity to a product recipe. The quantity
// is stated for NbUnits units of the owning product.
type ProductLine struct {
	gorm.Model
	ProductID    uint        `json:"-"`
	IngredientID uint        `json:"-"`
	Ingredient   *Ingredient `gorm:"foreignkey:IngredientID" json:"ingredient"`
	Quantity     float64     `json:"quantity"`
}

// TableName sets the table name for ProductLine
func (ProductLine) TableName() string {
	return "product_lines"
}

// roundTo rounds half away from zero to the nearest multiple of step.
func roundTo(v float64, step float64) float64 {
	return math.Round(v/step) * step
}
