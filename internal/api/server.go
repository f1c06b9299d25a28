package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fournil/internal/config"
	"fournil/internal/database"
	"fournil/internal/models"
	"fournil/internal/production"
)

// Server represents the bakery HTTP API
type Server struct {
	Router *gin.Engine
	repo   *database.Repository
	cfg    *config.Config
}

// NewServer creates a new API server instance
func NewServer(repo *database.Repository, cfg *config.Config) *Server {
	router := gin.Default()

	s := &Server{
		Router: router,
		repo:   repo,
		cfg:    cfg,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Fournil API is running"})
	})

	v1 := s.Router.Group("/api/v1")
	{
		// Production sheets
		v1.GET("/actions/:year/:month/:day", s.GetActions)

		// Catalog
		v1.GET("/products", s.ListProducts)
		v1.GET("/ingredients", s.ListIngredients)
		v1.GET("/deliveries/:id/products", s.DeliveryProducts)

		// Orders (read-only; order entry lives elsewhere)
		v1.GET("/orders", s.ListOrders)

		// Schedule maintenance
		v1.POST("/delivery-dates/generate", s.GenerateDeliveryDates)
	}

	// Live production sheet push
	s.Router.GET("/ws/actions", s.handleWebSocket)
}

// computeActions runs the production engine for one target day over the
// order window around it.
func (s *Server) computeActions(target time.Time) (*production.Actions, error) {
	start := time.Now()
	orders, err := s.repo.OrdersForWindow(target)
	if err != nil {
		actionsComputed.WithLabelValues("error").Inc()
		return nil, err
	}
	actions, err := production.ComputeActions(target, orders, production.Config{
		LevainSteps: s.cfg.Production.LevainSteps,
	})
	if err != nil {
		actionsComputed.WithLabelValues("error").Inc()
		return nil, err
	}
	actionsComputed.WithLabelValues("ok").Inc()
	actionsComputeSeconds.Observe(time.Since(start).Seconds())
	ordersFolded.Add(float64(len(orders)))
	return actions, nil
}

// GetActions returns the finalized production sheets for one target day.
func (s *Server) GetActions(c *gin.Context) {
	target, err := dateParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actions, err := s.computeActions(target)
	if err != nil {
		// catalog data-integrity errors must reach the caller, never a
		// silently wrong sheet
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, actions)
}

func dateParam(c *gin.Context) (time.Time, error) {
	year, err1 := strconv.Atoi(c.Param("year"))
	month, err2 := strconv.Atoi(c.Param("month"))
	day, err3 := strconv.Atoi(c.Param("day"))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, errors.New("invalid date: expected /actions/:year/:month/:day")
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// productView adds the derived pricing fields to a catalog product.
type productView struct {
	*models.Product
	CostPrice decimal.Decimal `json:"cost_price"`
	Weight    float64         `json:"weight"`
}

// ListProducts returns the product catalog with cost prices and dough
// weights.
func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.repo.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		weight, err := p.Weight()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		views = append(views, productView{Product: p, CostPrice: p.CostPrice(), Weight: weight})
	}
	c.JSON(http.StatusOK, views)
}

// ListIngredients returns the ingredient catalog.
func (s *Server) ListIngredients(c *gin.Context) {
	ingredients, err := s.repo.Ingredients()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// DeliveryProducts returns the products orderable on a weekly delivery's
// weekday.
func (s *Server) DeliveryProducts(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery id"})
		return
	}
	wd, err := s.repo.WeeklyDelivery(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Weekly delivery not found"})
		return
	}
	products, err := s.repo.AvailableProducts(wd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

// orderView adds the computed total to an order.
type orderView struct {
	*models.Order
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ListOrders returns orders between min_date and max_date (inclusive,
// YYYY-MM-DD). Defaults to the coming week.
func (s *Server) ListOrders(c *gin.Context) {
	min := models.Day(time.Now())
	max := min.AddDate(0, 0, 6)
	var err error
	if v := c.Query("min_date"); v != "" {
		if min, err = time.ParseInLocation("2006-01-02", v, time.Local); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_date"})
			return
		}
	}
	if v := c.Query("max_date"); v != "" {
		if max, err = time.ParseInLocation("2006-01-02", v, time.Local); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_date"})
			return
		}
	}
	orders, err := s.repo.Orders(min, max, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{Order: o, TotalPrice: o.TotalPrice()})
	}
	c.JSON(http.StatusOK, views)
}

// GenerateDeliveryDates creates the missing delivery dates for the coming
// year on every active weekly schedule.
func (s *Server) GenerateDeliveryDates(c *gin.Context) {
	if err := s.repo.GenerateDeliveryDates(time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery dates generated!"})
}
