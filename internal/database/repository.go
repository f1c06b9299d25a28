package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"fournil/internal/models"
)

// Repository exposes the catalog and order queries the production engine
// and the API consume. The engine side is strictly read-only.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on top of an open database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ingredients returns the full ingredient catalog.
func (r *Repository) Ingredients() ([]*models.Ingredient, error) {
	var ingredients []*models.Ingredient
	if err := r.db.Preload("SoakIngredient").Order("name").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	return ingredients, nil
}

// Products returns the product catalog with recipe lines and base-product
// links resolved to canonical instances: every variant's BaseProduct pointer
// refers to the same instance as the base product itself, so accumulators
// can group by identity.
func (r *Repository) Products() ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.
		Preload("Lines.Ingredient.SoakIngredient").
		Order("name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uint]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, p := range products {
		if p.BaseProductID != nil {
			p.BaseProduct = byID[*p.BaseProductID]
		}
	}
	return products, nil
}

// AvailableProducts returns the active products orderable on the schedule's
// weekday.
func (r *Repository) AvailableProducts(wd *models.WeeklyDelivery) ([]*models.Product, error) {
	products, err := r.Products()
	if err != nil {
		return nil, err
	}
	available := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if p.Active && p.AvailableOn(wd.DayOfWeek) {
			available = append(available, p)
		}
	}
	return available, nil
}

// WeeklyDelivery loads one schedule by id.
func (r *Repository) WeeklyDelivery(id uint) (*models.WeeklyDelivery, error) {
	var wd models.WeeklyDelivery
	if err := r.db.Preload("Customer").First(&wd, id).Error; err != nil {
		return nil, fmt.Errorf("load weekly delivery %d: %w", id, err)
	}
	return &wd, nil
}

// OrdersForWindow returns the validated orders whose active delivery date
// falls within [target, target+2], the window in which an order can affect
// a target day's delivery, bakery or preparation stage. Product references
// are re-pointed to canonical catalog instances.
func (r *Repository) OrdersForWindow(target time.Time) ([]*models.Order, error) {
	return r.Orders(models.Day(target), models.Day(target).AddDate(0, 0, 2), true)
}

// Orders returns orders with a delivery date between min and max inclusive,
// optionally restricted to validated orders.
func (r *Repository) Orders(min, max time.Time, validatedOnly bool) ([]*models.Order, error) {
	query := r.db.
		Joins("JOIN delivery_dates ON delivery_dates.id = orders.delivery_date_id").
		Where("delivery_dates.active = ?", true).
		Where("delivery_dates.date >= ? AND delivery_dates.date < ?", models.Day(min), models.Day(max).AddDate(0, 0, 1)).
		Preload("Customer").
		Preload("DeliveryDate.WeeklyDelivery.Customer").
		Preload("Lines")
	if validatedOnly {
		query = query.Where("orders.validated = ?", true)
	}
	var orders []*models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if err := r.resolveOrderProducts(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// resolveOrderProducts points every order line at the canonical catalog
// product, and deduplicates delivery date instances so the accumulators see
// one key per calendar date.
func (r *Repository) resolveOrderProducts(orders []*models.Order) error {
	products, err := r.Products()
	if err != nil {
		return err
	}
	byID := make(map[uint]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	dates := make(map[uint]*models.DeliveryDate)
	for _, order := range orders {
		if order.DeliveryDate != nil {
			if canonical, ok := dates[order.DeliveryDate.ID]; ok {
				order.DeliveryDate = canonical
			} else {
				dates[order.DeliveryDate.ID] = order.DeliveryDate
			}
		}
		for i := range order.Lines {
			line := &order.Lines[i]
			product, ok := byID[line.ProductID]
			if !ok {
				return fmt.Errorf("order %d references unknown product %d", order.ID, line.ProductID)
			}
			line.Product = product
		}
	}
	return nil
}

// GenerateDeliveryDates creates the missing delivery dates of every active
// weekly schedule for one year starting at from. Existing dates are left
// untouched, so the operation is idempotent.
func (r *Repository) GenerateDeliveryDates(from time.Time) error {
	var schedules []*models.WeeklyDelivery
	if err := r.db.Where("active = ?", true).Find(&schedules).Error; err != nil {
		return fmt.Errorf("load weekly deliveries: %w", err)
	}
	var existing []*models.DeliveryDate
	if err := r.db.Find(&existing).Error; err != nil {
		return fmt.Errorf("load delivery dates: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, dd := range existing {
		seen[dateKey(dd.WeeklyDeliveryID, dd.Date)] = true
	}
	start := models.Day(from)
	end := start.AddDate(1, 0, 0)
	for _, schedule := range schedules {
		for current := start; current.Before(end); current = current.AddDate(0, 0, 1) {
			if current.Weekday() != schedule.DayOfWeek {
				continue
			}
			if seen[dateKey(schedule.ID, current)] {
				continue
			}
			dd := &models.DeliveryDate{
				WeeklyDeliveryID: schedule.ID,
				Date:             current,
				Active:           true,
			}
			if err := r.db.Create(dd).Error; err != nil {
				return fmt.Errorf("create delivery date %s: %w", current.Format("2006-01-02"), err)
			}
		}
	}
	return nil
}

func dateKey(scheduleID uint, date time.Time) string {
	return fmt.Sprintf("%d/%s", scheduleID, models.Day(date).Format("2006-01-02"))
}

// DuplicateOrder copies an order and its lines onto another delivery date.
func (r *Repository) DuplicateOrder(orderID, deliveryDateID uint) (*models.Order, error) {
	var original models.Order
	if err := r.db.Preload("Lines").First(&original, orderID).Error; err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	duplicate := &models.Order{
		CustomerID:     original.CustomerID,
		DeliveryDateID: deliveryDateID,
		Notes:          original.Notes,
	}
	if err := r.db.Create(duplicate).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	for i := range original.Lines {
		line := &models.OrderLine{
			OrderID:   duplicate.ID,
			ProductID: original.Lines[i].ProductID,
			Quantity:  original.Lines[i].Quantity,
		}
		if err := r.db.Create(line).Error; err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
	}
	return duplicate, nil
}

// ValidateCatalog checks the invariants the production engine assumes: a
// base product owns its recipe (no chains deeper than variant → base, no
// self-reference) and soaking sources are acyclic. Run at startup so bad
// catalog data fails loudly instead of mid-computation.
func (r *Repository) ValidateCatalog() error {
	products, err := r.Products()
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.BaseProductID == nil {
			continue
		}
		if *p.BaseProductID == p.ID {
			return fmt.Errorf("product %s is its own base product", p.Ref)
		}
		if p.BaseProduct == nil {
			return fmt.Errorf("product %s references missing base product %d", p.Ref, *p.BaseProductID)
		}
		if p.BaseProduct.BaseProductID != nil {
			return fmt.Errorf("product %s: base product chains may only be one level deep (%s has a base itself)",
				p.Ref, p.BaseProduct.Ref)
		}
	}
	ingredients, err := r.Ingredients()
	if err != nil {
		return err
	}
	byID := make(map[uint]*models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}
	for _, ing := range ingredients {
		visited := map[uint]bool{ing.ID: true}
		current := ing
		for current.SoakIngredientID != nil {
			next := byID[*current.SoakIngredientID]
			if next == nil {
				return fmt.Errorf("ingredient %s references missing soaking source %d", current.Name, *current.SoakIngredientID)
			}
			if visited[next.ID] {
				return fmt.Errorf("ingredient %s has a cyclic soaking source chain", ing.Name)
			}
			visited[next.ID] = true
			current = next
		}
	}
	return nil
}
