package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/redisclient"
	"chickenshop-admin/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderLine is one flattened order item as shown on the order list
type OrderLine struct {
	ProductID int64              `json:"product_id"`
	Flavor    string             `json:"flavor"`
	Size      models.ProductSize `json:"size"`
	Price     decimal.Decimal    `json:"price"`
	Quantity  int                `json:"quantity"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
}

// OrderRow is an order on the admin order list
type OrderRow struct {
	ID              int64              `json:"id"`
	Slug            string             `json:"slug"`
	Status          models.OrderStatus `json:"status"`
	StatusLabel     string             `json:"status_label"`
	CreatedAt       time.Time          `json:"created_at"`
	UserID          string             `json:"user_id"`
	UserEmail       string             `json:"user_email"`
	DeliveryDate    time.Time          `json:"delivery_date"`
	DeliveryTime    string             `json:"delivery_time"`
	DeliveryAddress string             `json:"delivery_address"`
	Phone           string             `json:"phone"`
	TotalPrice      decimal.Decimal    `json:"total_price"`
	TotalItems      int                `json:"total_items"`
	Lines           []OrderLine        `json:"lines"`
	ProofOfPayment  string             `json:"proof_of_payment"`
}

// BuildOrderRows flattens orders with their products into list rows.
// TotalPrice is taken as stored, not recomputed from the lines.
func BuildOrderRows(orders []models.OrderWithProducts) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		label, _ := o.Status.Label()
		lines := make([]OrderLine, 0, len(o.Items))
		for _, item := range o.Items {
			lines = append(lines, OrderLine{
				ProductID: item.Product.ID,
				Flavor:    item.Product.Flavor,
				Size:      item.Product.Size,
				Price:     item.Product.Price,
				Quantity:  item.Quantity,
				Subtotal:  item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			})
		}

		rows = append(rows, OrderRow{
			ID:              o.ID,
			Slug:            o.Slug,
			Status:          o.Status,
			StatusLabel:     label,
			CreatedAt:       o.CreatedAt,
			UserID:          o.UserID,
			UserEmail:       o.UserEmail,
			DeliveryDate:    o.DeliveryDate,
			DeliveryTime:    o.DeliveryTime,
			DeliveryAddress: o.DeliveryAddress,
			Phone:           o.Phone,
			TotalPrice:      o.TotalPrice,
			TotalItems:      len(o.Items),
			Lines:           lines,
			ProofOfPayment:  o.ProofOfPayment,
		})
	}
	return rows
}

// OrderListStore reads orders for the list view
type OrderListStore interface {
	GetOrdersWithProducts(ctx context.Context) ([]models.OrderWithProducts, error)
}

// ViewCache stores rendered view payloads. SetView must refuse to write when the view version
// moved past version, i.e. the view was marked stale after the read began.
type ViewCache interface {
	GetView(ctx context.Context, path string) ([]byte, error)
	ViewVersion(ctx context.Context, path string) (int64, error)
	SetView(ctx context.Context, path string, version int64, data []byte) (bool, error)
}

// OrderViewService serves the admin order list
type OrderViewService struct {
	store  OrderListStore
	cache  ViewCache
	logger *zap.Logger
}

// NewOrderViewService creates a new order view service
func NewOrderViewService(store OrderListStore, cache ViewCache) *OrderViewService {
	return &OrderViewService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// ListOrders returns the order list, newest first. A cached copy is served until the
// view is marked stale; cache failures fall back to the store.
func (s *OrderViewService) ListOrders(ctx context.Context) ([]OrderRow, error) {
	ctx, span := util.StartSpan(ctx, "OrderViewService.ListOrders")
	defer span.End()

	if rows, ok := s.cached(ctx); ok {
		return rows, nil
	}

	// Taken before the read so an invalidation during the read wins
	version, verr := s.cache.ViewVersion(ctx, OrdersViewPath)
	if verr != nil {
		s.logger.Warn("Order view version unavailable, skipping cache", zap.Error(verr))
	}

	orders, err := s.store.GetOrdersWithProducts(ctx)
	if err != nil {
		return nil, &DataFetchError{View: OrdersViewPath, Err: err}
	}
	rows := BuildOrderRows(orders)

	if verr == nil {
		s.cacheRows(ctx, version, rows)
	}
	return rows, nil
}

func (s *OrderViewService) cacheRows(ctx context.Context, version int64, rows []OrderRow) {
	data, err := json.Marshal(rows)
	if err != nil {
		s.logger.Error("Failed to encode order view", zap.Error(err))
		return
	}

	stored, err := s.cache.SetView(ctx, OrdersViewPath, version, data)
	if err != nil {
		s.logger.Warn("Failed to cache order view", zap.Error(err))
		return
	}
	if !stored {
		s.logger.Debug("Order view changed during read, not cached", zap.Int64("version", version))
	}
}

func (s *OrderViewService) cached(ctx context.Context) ([]OrderRow, bool) {
	data, err := s.cache.GetView(ctx, OrdersViewPath)
	if err != nil {
		if !errors.Is(err, redisclient.ErrViewMiss) {
			s.logger.Warn("Order view cache unavailable", zap.Error(err))
		}
		util.ViewCacheLookupsTotal.WithLabelValues(OrdersViewPath, "miss").Inc()
		return nil, false
	}

	var rows []OrderRow
	if err := json.Unmarshal(data, &rows); err != nil {
		s.logger.Warn("Discarding corrupt order view cache", zap.Error(err))
		util.ViewCacheLookupsTotal.WithLabelValues(OrdersViewPath, "corrupt").Inc()
		return nil, false
	}

	util.ViewCacheLookupsTotal.WithLabelValues(OrdersViewPath, "hit").Inc()
	return rows, true
}
