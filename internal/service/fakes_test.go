package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chickenshop-admin/internal/models"
	"chickenshop-admin/internal/redisclient"
	"chickenshop-admin/internal/session"
	"chickenshop-admin/internal/store"
)

var errStoreDown = errors.New("connection refused")

// fakeOrderStore keeps order statuses in memory
type fakeOrderStore struct {
	statuses map[int64]models.OrderStatus
	err      error
	writes   int
}

func newFakeOrderStore(ids ...int64) *fakeOrderStore {
	s := &fakeOrderStore{statuses: make(map[int64]models.OrderStatus)}
	for _, id := range ids {
		s.statuses[id] = models.OrderStatusPending
	}
	return s
}

func (s *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status models.OrderStatus) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.statuses[orderID]; !ok {
		return fmt.Errorf("%w: %d", store.ErrOrderNotFound, orderID)
	}
	s.statuses[orderID] = status
	s.writes++
	return nil
}

type fakeSessions struct {
	session *session.Session
	err     error
}

func (f *fakeSessions) CurrentSession(context.Context) (*session.Session, error) {
	return f.session, f.err
}

type sentNotification struct {
	UserID  string
	Message string
}

type fakeNotifier struct {
	sent []sentNotification
	err  error
}

func (n *fakeNotifier) SendNotification(_ context.Context, userID, message string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{UserID: userID, Message: message})
	return nil
}

// fakeViews implements both ViewInvalidator and ViewCache
type fakeViews struct {
	stale    []string
	data     map[string][]byte
	versions map[string]int64
	getErr   error
	gets     int
	markErr  error
	refused  int
}

func newFakeViews() *fakeViews {
	return &fakeViews{data: make(map[string][]byte), versions: make(map[string]int64)}
}

func (v *fakeViews) MarkStale(_ context.Context, path string) error {
	v.stale = append(v.stale, path)
	if v.markErr != nil {
		return v.markErr
	}
	v.versions[path]++
	delete(v.data, path)
	return nil
}

func (v *fakeViews) GetView(_ context.Context, path string) ([]byte, error) {
	v.gets++
	if v.getErr != nil {
		return nil, v.getErr
	}
	data, ok := v.data[path]
	if !ok {
		return nil, redisclient.ErrViewMiss
	}
	return data, nil
}

func (v *fakeViews) ViewVersion(_ context.Context, path string) (int64, error) {
	if v.getErr != nil {
		return 0, v.getErr
	}
	return v.versions[path], nil
}

func (v *fakeViews) SetView(_ context.Context, path string, version int64, data []byte) (bool, error) {
	if v.versions[path] != version {
		v.refused++
		return false, nil
	}
	v.data[path] = data
	return true, nil
}

type publishedStatus struct {
	OrderID   int64
	Status    models.OrderStatus
	ChangedBy string
}

type fakePublisher struct {
	events []publishedStatus
	err    error
}

func (p *fakePublisher) PublishOrderStatusChanged(_ context.Context, orderID int64, status models.OrderStatus, changedBy string) error {
	p.events = append(p.events, publishedStatus{OrderID: orderID, Status: status, ChangedBy: changedBy})
	return p.err
}

// fakeReportStore serves canned aggregation inputs
type fakeReportStore struct {
	createdAts []time.Time
	categories []models.CategoryWithProducts
	users      []models.User
	items      []models.OrderItemWithProduct
	orders     []models.OrderWithProducts
	err        error
	failView   string
	usersLimit int
	orderReads int

	// afterOrderRead runs once the orders were read, before they are returned
	afterOrderRead func()
}

func (s *fakeReportStore) fail(view string) error {
	if s.err != nil && (s.failView == "" || s.failView == view) {
		return s.err
	}
	return nil
}

func (s *fakeReportStore) GetOrderCreationTimes(context.Context) ([]time.Time, error) {
	if err := s.fail(ViewMonthlyOrders); err != nil {
		return nil, err
	}
	return s.createdAts, nil
}

func (s *fakeReportStore) GetCategoriesWithProducts(context.Context) ([]models.CategoryWithProducts, error) {
	if err := s.fail(ViewProductsPerCategory); err != nil {
		return nil, err
	}
	return s.categories, nil
}

func (s *fakeReportStore) GetLatestUsers(_ context.Context, limit int) ([]models.User, error) {
	s.usersLimit = limit
	if err := s.fail(ViewLatestUsers); err != nil {
		return nil, err
	}
	return s.users, nil
}

func (s *fakeReportStore) GetAllOrderItems(context.Context) ([]models.OrderItemWithProduct, error) {
	if err := s.fail(ViewFlavorDistribution); err != nil {
		return nil, err
	}
	return s.items, nil
}

func (s *fakeReportStore) GetOrdersWithProducts(context.Context) ([]models.OrderWithProducts, error) {
	s.orderReads++
	if err := s.fail(OrdersViewPath); err != nil {
		return nil, err
	}
	snapshot := make([]models.OrderWithProducts, len(s.orders))
	copy(snapshot, s.orders)
	if hook := s.afterOrderRead; hook != nil {
		s.afterOrderRead = nil
		hook()
	}
	return snapshot, nil
}

type fakeNotificationStore struct {
	created []models.Notification
	byUser  map[string][]models.Notification
	err     error
}

func (s *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	n.ID = int64(len(s.created) + 1)
	n.CreatedAt = time.Now()
	s.created = append(s.created, *n)
	return nil
}

func (s *fakeNotificationStore) GetNotificationsByUserID(_ context.Context, userID string) ([]models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byUser[userID], nil
}
