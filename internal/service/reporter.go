package service

import (
	"context"
	"slices"
	"time"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/util"

	"go.uber.org/zap"
)

// Dashboard view names, used in errors and metrics
const (
	ViewMonthlyOrders       = "monthly_orders"
	ViewProductsPerCategory = "products_per_category"
	ViewLatestUsers         = "latest_users"
	ViewFlavorDistribution  = "flavor_distribution"
)

// LatestUserDateLayout renders signup times on the dashboard
const LatestUserDateLayout = "January 02, 2006 03:04:05 PM"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthlyOrders is the number of orders created in a calendar month, across all years
type MonthlyOrders struct {
	Name   string `json:"name"`
	Orders int    `json:"orders"`
}

// CategoryProducts is the number of products in a category
type CategoryProducts struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
}

// LatestUser is a recently signed up user
type LatestUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Date      string    `json:"date"`
}

// FlavorCount is the number of order lines for a flavor
type FlavorCount struct {
	Flavor string `json:"flavor"`
	Value  int    `json:"value"`
}

// Dashboard bundles every aggregation
type Dashboard struct {
	MonthlyOrders      []MonthlyOrders    `json:"monthly_orders"`
	CategoryData       []CategoryProducts `json:"category_data"`
	LatestUsers        []LatestUser       `json:"latest_users"`
	FlavorDistribution []FlavorCount      `json:"flavor_distribution"`
}

// GroupOrdersByMonth counts orders per UTC month name. Years collapse into the same
// bucket, months without orders are omitted and entries keep first-seen order.
func GroupOrdersByMonth(createdAts []time.Time) []MonthlyOrders {
	result := make([]MonthlyOrders, 0, len(monthNames))
	index := make(map[string]int, len(monthNames))

	for _, t := range createdAts {
		month := monthNames[t.UTC().Month()-1]
		i, ok := index[month]
		if !ok {
			i = len(result)
			index[month] = i
			result = append(result, MonthlyOrders{Name: month})
		}
		result[i].Orders++
	}
	return result
}

// CountProductsPerCategory returns one entry per category, empty categories included
func CountProductsPerCategory(categories []models.CategoryWithProducts) []CategoryProducts {
	result := make([]CategoryProducts, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryProducts{Name: c.Name, Products: len(c.Products)})
	}
	return result
}

// SelectLatestUsers keeps the newest limit users, newest first, and drops users
// without a signup time. Dates are rendered in loc.
func SelectLatestUsers(users []models.User, limit int, loc *time.Location) []LatestUser {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b models.User) int {
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return 0
		case a.CreatedAt == nil:
			return 1
		case b.CreatedAt == nil:
			return -1
		}
		return b.CreatedAt.Compare(*a.CreatedAt)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	result := make([]LatestUser, 0, len(sorted))
	for _, u := range sorted {
		if u.CreatedAt == nil {
			continue
		}
		result = append(result, LatestUser{
			ID:        u.ID,
			Email:     u.Email,
			CreatedAt: *u.CreatedAt,
			Date:      u.CreatedAt.In(loc).Format(LatestUserDateLayout),
		})
	}
	return result
}

// CountFlavors counts order lines per product flavor, ignoring quantity, in first-seen order
func CountFlavors(items []models.OrderItemWithProduct) []FlavorCount {
	result := make([]FlavorCount, 0)
	index := make(map[string]int)

	for _, item := range items {
		flavor := item.Product.Flavor
		i, ok := index[flavor]
		if !ok {
			i = len(result)
			index[flavor] = i
			result = append(result, FlavorCount{Flavor: flavor})
		}
		result[i].Value++
	}
	return result
}

// ReportStore is the read side the reporter aggregates
type ReportStore interface {
	GetOrderCreationTimes(ctx context.Context) ([]time.Time, error)
	GetCategoriesWithProducts(ctx context.Context) ([]models.CategoryWithProducts, error)
	GetLatestUsers(ctx context.Context, limit int) ([]models.User, error)
	GetAllOrderItems(ctx context.Context) ([]models.OrderItemWithProduct, error)
}

// Reporter recomputes dashboard aggregations on every call
type Reporter struct {
	store            ReportStore
	latestUsersLimit int
	location         *time.Location
	logger           *zap.Logger
}

// NewReporter creates a reporter. A nil location renders dates in UTC.
func NewReporter(store ReportStore, latestUsersLimit int, location *time.Location) *Reporter {
	if location == nil {
		location = time.UTC
	}
	return &Reporter{
		store:            store,
		latestUsersLimit: latestUsersLimit,
		location:         location,
		logger:           util.GetLogger(),
	}
}

func (r *Reporter) observe(view string, start time.Time) {
	util.AggregationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func (r *Reporter) fetchFailed(view string, err error) error {
	r.logger.Error("Aggregation read failed", zap.String("view", view), zap.Error(err))
	return &DataFetchError{View: view, Err: err}
}

// MonthlyOrders counts orders per month name
func (r *Reporter) MonthlyOrders(ctx context.Context) ([]MonthlyOrders, error) {
	ctx, span := util.StartSpan(ctx, "Reporter.MonthlyOrders")
	defer span.End()
	defer r.observe(ViewMonthlyOrders, time.Now())

	times, err := r.store.GetOrderCreationTimes(ctx)
	if err != nil {
		return nil, r.fetchFailed(ViewMonthlyOrders, err)
	}
	return GroupOrdersByMonth(times), nil
}

// ProductsPerCategory counts products in every category
func (r *Reporter) ProductsPerCategory(ctx context.Context) ([]CategoryProducts, error) {
	ctx, span := util.StartSpan(ctx, "Reporter.ProductsPerCategory")
	defer span.End()
	defer r.observe(ViewProductsPerCategory, time.Now())

	categories, err := r.store.GetCategoriesWithProducts(ctx)
	if err != nil {
		return nil, r.fetchFailed(ViewProductsPerCategory, err)
	}
	return CountProductsPerCategory(categories), nil
}

// LatestUsers lists the most recently created users
func (r *Reporter) LatestUsers(ctx context.Context) ([]LatestUser, error) {
	ctx, span := util.StartSpan(ctx, "Reporter.LatestUsers")
	defer span.End()
	defer r.observe(ViewLatestUsers, time.Now())

	users, err := r.store.GetLatestUsers(ctx, r.latestUsersLimit)
	if err != nil {
		return nil, r.fetchFailed(ViewLatestUsers, err)
	}
	return SelectLatestUsers(users, r.latestUsersLimit, r.location), nil
}

// FlavorDistribution counts order lines per flavor
func (r *Reporter) FlavorDistribution(ctx context.Context) ([]FlavorCount, error) {
	ctx, span := util.StartSpan(ctx, "Reporter.FlavorDistribution")
	defer span.End()
	defer r.observe(ViewFlavorDistribution, time.Now())

	items, err := r.store.GetAllOrderItems(ctx)
	if err != nil {
		return nil, r.fetchFailed(ViewFlavorDistribution, err)
	}
	return CountFlavors(items), nil
}

// Dashboard computes every aggregation in turn and stops at the first failure
func (r *Reporter) Dashboard(ctx context.Context) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "Reporter.Dashboard")
	defer span.End()

	var (
		d   Dashboard
		err error
	)
	if d.MonthlyOrders, err = r.MonthlyOrders(ctx); err != nil {
		return nil, err
	}
	if d.CategoryData, err = r.ProductsPerCategory(ctx); err != nil {
		return nil, err
	}
	if d.LatestUsers, err = r.LatestUsers(ctx); err != nil {
		return nil, err
	}
	if d.FlavorDistribution, err = r.FlavorDistribution(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}
