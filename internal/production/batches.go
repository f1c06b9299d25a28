package production

import (
	"math"
	"sort"
	"strings"

	"fournil/internal/models"
)

// wholeUnitIngredients are rounded to the nearest whole unit on production
// sheets; everything else rounds to the nearest 10 g.
var wholeUnitIngredients = map[string]bool{
	"Sel":   true,
	"Oeufs": true,
}

// roundMass applies the kitchen rounding convention: half away from zero, to
// the nearest 10 g for masses and to the nearest unit for salt and eggs.
// Rounding happens only at finalization, never mid-computation.
func roundMass(name string, qty float64) float64 {
	if wholeUnitIngredients[strings.TrimSuffix(name, soakedSuffix)] {
		return math.Round(qty)
	}
	return math.Round(qty/10) * 10
}

// ProductQuantity is a finalized product count on a sheet.
type ProductQuantity struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// IngredientQuantity is a finalized, rounded ingredient line on a sheet.
type IngredientQuantity struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
}

// DeliveryBatch aggregates ordered product quantities per delivery date. No
// ingredient resolution happens at this stage.
type DeliveryBatch struct {
	dates     map[*models.DeliveryDate]map[*models.Product]int
	dateOrder []*models.DeliveryDate
}

// NewDeliveryBatch creates an empty delivery accumulator.
func NewDeliveryBatch() *DeliveryBatch {
	return &DeliveryBatch{dates: make(map[*models.DeliveryDate]map[*models.Product]int)}
}

// AddLine folds one order line into the delivery totals. Duplicate lines
// legitimately add; there is no deduplication.
func (b *DeliveryBatch) AddLine(order *models.Order, line *models.OrderLine) {
	dd := order.DeliveryDate
	if dd == nil || line.Product == nil {
		return
	}
	products, ok := b.dates[dd]
	if !ok {
		products = make(map[*models.Product]int)
		b.dates[dd] = products
		b.dateOrder = append(b.dateOrder, dd)
	}
	products[line.Product] += line.Quantity
}

// DeliveryDateSheet lists what one delivery date receives.
type DeliveryDateSheet struct {
	Date     string            `json:"date"`
	Customer string            `json:"customer"`
	Products []ProductQuantity `json:"products"`
}

// DeliverySheet is the finalized delivery batch, sorted by date.
type DeliverySheet []DeliveryDateSheet

// Finalize orders the accumulated totals for presentation: dates
// chronologically, products by descending display priority.
func (b *DeliveryBatch) Finalize() DeliverySheet {
	sheet := make(DeliverySheet, 0, len(b.dateOrder))
	for _, dd := range b.dateOrder {
		entry := DeliveryDateSheet{
			Date:     models.Day(dd.Date).Format("2006-01-02"),
			Products: sortedProductQuantities(b.dates[dd]),
		}
		if dd.WeeklyDelivery != nil && dd.WeeklyDelivery.Customer != nil {
			entry.Customer = dd.WeeklyDelivery.Customer.DisplayName
		}
		sheet = append(sheet, entry)
	}
	sort.SliceStable(sheet, func(i, j int) bool {
		if sheet[i].Date != sheet[j].Date {
			return sheet[i].Date < sheet[j].Date
		}
		return sheet[i].Customer < sheet[j].Customer
	})
	return sheet
}

func sortedProductQuantities(quantities map[*models.Product]int) []ProductQuantity {
	products := make([]*models.Product, 0, len(quantities))
	for p := range quantities {
		products = append(products, p)
	}
	sortProducts(products)
	out := make([]ProductQuantity, 0, len(products))
	for _, p := range products {
		out = append(out, ProductQuantity{Product: p.Name, Quantity: quantities[p]})
	}
	return out
}

// sortProducts orders products by descending display priority, name as
// tie-break, so primary breads come first on every sheet.
func sortProducts(products []*models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].DisplayPriority != products[j].DisplayPriority {
			return products[i].DisplayPriority > products[j].DisplayPriority
		}
		return products[i].Name < products[j].Name
	})
}

// BakeryBatch aggregates ordered quantities per product, resolved into
// shared-recipe batches at finalization so batch rounding applies to the
// day's aggregate rather than to each order line.
type BakeryBatch struct {
	quantities map[*models.Product]int
	order      []*models.Product
}

// NewBakeryBatch creates an empty bakery accumulator.
func NewBakeryBatch() *BakeryBatch {
	return &BakeryBatch{quantities: make(map[*models.Product]int)}
}

// AddLine folds one order line into the bakery totals.
func (b *BakeryBatch) AddLine(order *models.Order, line *models.OrderLine) {
	if line.Product == nil {
		return
	}
	if _, ok := b.quantities[line.Product]; !ok {
		b.order = append(b.order, line.Product)
	}
	b.quantities[line.Product] += line.Quantity
}

// DivisionEntry records how many units of one variant a shared batch must be
// divided into. BaseUnits expresses the same count in base-dough units.
type DivisionEntry struct {
	Product   string  `json:"product"`
	Units     int     `json:"units"`
	BaseUnits float64 `json:"base_units"`
}

// SubBatchSheet describes the dough fraction set aside for a variant with
// its own supplemental ingredients.
type SubBatchSheet struct {
	Product     string               `json:"product"`
	DoughWeight float64              `json:"dough_weight"`
	Ingredients []IngredientQuantity `json:"ingredients"`
}

// RecipeBatchSheet is one shared-recipe batch on the bakery sheet.
type RecipeBatchSheet struct {
	Recipe      string               `json:"recipe"`
	Ingredients []IngredientQuantity `json:"ingredients"`
	Weight      float64              `json:"weight"`
	Division    []DivisionEntry      `json:"division"`
	SubBatches  []SubBatchSheet      `json:"sub_batches,omitempty"`
}

// BakerySheet is the finalized bakery batch.
type BakerySheet struct {
	Batches    []RecipeBatchSheet `json:"batches"`
	BreadUnits int                `json:"bread_units"`
}

// recipeBatch accumulates everything charged to one base recipe.
type recipeBatch struct {
	base           *models.Product
	ingredients    pool
	refs           map[string]*models.Ingredient
	division       map[*models.Product]*DivisionEntry
	divisionOrder  []*models.Product
	subIngredients map[*models.Product]pool
	subDough       map[*models.Product]float64
	subOrder       []*models.Product
}

// Finalize resolves every accumulated product, merges the contributions into
// per-base-recipe batches and applies rounding and ordering.
func (b *BakeryBatch) Finalize() (*BakerySheet, error) {
	batches := make(map[*models.Product]*recipeBatch)
	var batchOrder []*models.Product
	breadUnits := 0

	for _, product := range b.order {
		res, err := Resolve(product, b.quantities[product])
		if err != nil {
			return nil, err
		}
		rb, ok := batches[res.Base]
		if !ok {
			rb = &recipeBatch{
				base:           res.Base,
				ingredients:    pool{},
				refs:           map[string]*models.Ingredient{},
				division:       map[*models.Product]*DivisionEntry{},
				subIngredients: map[*models.Product]pool{},
				subDough:       map[*models.Product]float64{},
			}
			batches[res.Base] = rb
			batchOrder = append(batchOrder, res.Base)
		}
		rb.ingredients.merge(res.Bakery)
		for name, ing := range res.Refs {
			rb.refs[name] = ing
		}
		entry, ok := rb.division[product]
		if !ok {
			entry = &DivisionEntry{Product: product.Name}
			rb.division[product] = entry
			rb.divisionOrder = append(rb.divisionOrder, product)
		}
		entry.Units += res.Units
		entry.BaseUnits += res.BaseUnits
		if res.SubBatch != nil {
			if _, ok := rb.subIngredients[product]; !ok {
				rb.subIngredients[product] = pool{}
				rb.subOrder = append(rb.subOrder, product)
			}
			rb.subIngredients[product].merge(res.SubBatch)
			rb.subDough[product] += res.Dough
		}
		if product.IsBread {
			breadUnits += res.Units
		}
	}

	bases := make([]*models.Product, len(batchOrder))
	copy(bases, batchOrder)
	sortProducts(bases)

	sheet := &BakerySheet{BreadUnits: breadUnits}
	for _, base := range bases {
		rb := batches[base]
		ingredients, weight, err := rb.finalizeIngredients()
		if err != nil {
			return nil, err
		}
		entry := RecipeBatchSheet{
			Recipe:      base.ShortRecipeName(),
			Ingredients: ingredients,
			Weight:      weight,
		}
		division := make([]*models.Product, len(rb.divisionOrder))
		copy(division, rb.divisionOrder)
		sortProducts(division)
		for _, p := range division {
			entry.Division = append(entry.Division, *rb.division[p])
		}
		subs := make([]*models.Product, len(rb.subOrder))
		copy(subs, rb.subOrder)
		sortProducts(subs)
		for _, p := range subs {
			entry.SubBatches = append(entry.SubBatches, SubBatchSheet{
				Product:     p.Name,
				DoughWeight: roundMass("", rb.subDough[p]),
				Ingredients: roundedPool(rb.subIngredients[p]),
			})
		}
		sheet.Batches = append(sheet.Batches, entry)
	}
	return sheet, nil
}

// finalizeIngredients rounds the batch's ingredient pool and recomputes the
// batch weight as the sum of the rounded masses.
func (rb *recipeBatch) finalizeIngredients() ([]IngredientQuantity, float64, error) {
	ingredients := roundedPool(rb.ingredients)
	weight := 0.0
	for _, iq := range ingredients {
		ing := rb.refs[iq.Ingredient]
		if ing == nil {
			weight += iq.Quantity
			continue
		}
		m, err := ing.Mass(iq.Quantity)
		if err != nil {
			return nil, 0, err
		}
		weight += m
	}
	return ingredients, weight, nil
}

// roundedPool rounds a pool and returns its entries sorted by name.
func roundedPool(p pool) []IngredientQuantity {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]IngredientQuantity, 0, len(names))
	for _, name := range names {
		out = append(out, IngredientQuantity{Ingredient: name, Quantity: roundMass(name, p[name])})
	}
	return out
}

// PreparationBatch aggregates the starter and soaking work to do the day
// before baking.
type PreparationBatch struct {
	quantities map[*models.Product]int
	order      []*models.Product
}

// NewPreparationBatch creates an empty preparation accumulator.
func NewPreparationBatch() *PreparationBatch {
	return &PreparationBatch{quantities: make(map[*models.Product]int)}
}

// AddLine folds one order line into the preparation totals.
func (b *PreparationBatch) AddLine(order *models.Order, line *models.OrderLine) {
	if line.Product == nil {
		return
	}
	if _, ok := b.quantities[line.Product]; !ok {
		b.order = append(b.order, line.Product)
	}
	b.quantities[line.Product] += line.Quantity
}

// StarterSheet is one starter to refresh, with its derived refresh schedule.
type StarterSheet struct {
	Name     string        `json:"name"`
	Quantity float64       `json:"quantity"`
	Refresh  []RefreshStep `json:"refresh,omitempty"`
}

// SoakSheet is one soaking ingredient to set up.
type SoakSheet struct {
	Ingredient string  `json:"ingredient"`
	Dry        float64 `json:"dry"`
	Liquid     float64 `json:"liquid"`
	Source     string  `json:"source"`
}

// PreparationSheet is the finalized preparation batch.
type PreparationSheet struct {
	Starters []StarterSheet `json:"starters"`
	Soaks    []SoakSheet    `json:"soaks"`
}

// Finalize resolves the accumulated products into rounded starter and soak
// totals, and derives the refresh schedule for each starter.
func (b *PreparationBatch) Finalize(cfg Config) (*PreparationSheet, error) {
	starters := pool{}
	soaks := map[string]*Soak{}
	for _, product := range b.order {
		res, err := Resolve(product, b.quantities[product])
		if err != nil {
			return nil, err
		}
		starters.merge(res.Starters)
		for name, soak := range res.Soaks {
			agg := soaks[name]
			if agg == nil {
				agg = &Soak{Source: soak.Source}
				soaks[name] = agg
			}
			agg.Dry += soak.Dry
			agg.Liquid += soak.Liquid
		}
	}

	sheet := &PreparationSheet{}
	names := make([]string, 0, len(starters))
	for name := range starters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		qty := roundMass(name, starters[name])
		sheet.Starters = append(sheet.Starters, StarterSheet{
			Name:     name,
			Quantity: qty,
			Refresh:  RefreshPlan(name, qty, cfg.Steps()),
		})
	}

	names = names[:0]
	for name := range soaks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		soak := soaks[name]
		sheet.Soaks = append(sheet.Soaks, SoakSheet{
			Ingredient: name,
			Dry:        roundMass(name, soak.Dry),
			Liquid:     roundMass("", soak.Liquid),
			Source:     soak.Source,
		})
	}
	return sheet, nil
}
