package services_test

import (
	"testing"

	"sklep/internal/apierror"
	"sklep/internal/models"
	"sklep/internal/repositories"
	"sklep/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder collects published routing keys in place of a live broker.
type eventRecorder struct {
	keys []string
}

func (r *eventRecorder) PublishOrderEvent(routingKey string, body []byte) error {
	r.keys = append(r.keys, routingKey)
	return nil
}

type orderFixture struct {
	service     *services.OrderService
	orderRepo   *repositories.MockOrderRepository
	productRepo *repositories.MockProductRepository
	statusRepo  *repositories.MockStatusRepository
	events      *eventRecorder
	product     *models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	orderRepo := repositories.NewMockOrderRepository()
	productRepo := repositories.NewMockProductRepository()
	statusRepo := repositories.NewMockStatusRepository()
	events := &eventRecorder{}

	for _, name := range []string{
		models.StatusUnapproved,
		models.StatusApproved,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		require.NoError(t, statusRepo.Create(&models.OrderStatus{Name: name}))
	}

	product := &models.Product{
		Name:     "Laptop",
		Price:    3499.99,
		Weight:   2.1,
		Category: models.Category{Name: "Electronics"},
	}
	require.NoError(t, productRepo.Create(product))

	return &orderFixture{
		service:     services.NewOrderService(orderRepo, productRepo, statusRepo, events),
		orderRepo:   orderRepo,
		productRepo: productRepo,
		statusRepo:  statusRepo,
		events:      events,
		product:     product,
	}
}

func (f *orderFixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.service.CreateOrder("client1", "client1@example.com", "123456789", []services.OrderItemInput{
		{ProductID: f.product.ID, Amount: 2},
	})
	require.NoError(t, err)
	return order
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	order := f.createOrder(t)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusUnapproved, order.Status.Name)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Amount)
	assert.Equal(t, f.product.Price, order.Items[0].Price)
	assert.Nil(t, order.ConfirmationDate)
	assert.Contains(t, f.events.keys, "order.created")
}

func TestOrderService_CreateOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.CreateOrder("client1", "client1@example.com", "123456789", []services.OrderItemInput{
		{ProductID: "no-such-product", Amount: 1},
	})
	assert.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestOrderService_CreateOrder_InvalidItems(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.CreateOrder("client1", "client1@example.com", "123456789", nil)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = f.service.CreateOrder("client1", "client1@example.com", "123456789", []services.OrderItemInput{
		{ProductID: f.product.ID, Amount: 0},
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

// The unit price recorded on an order is the product price at order time and
// does not follow later catalog changes.
func TestOrderService_CreateOrder_PriceSnapshot(t *testing.T) {
	f := newOrderFixture(t)

	order := f.createOrder(t)
	priceAtOrder := order.Items[0].Price

	updated := *f.product
	updated.Price = 9999.99
	require.NoError(t, f.productRepo.Update(&updated))

	reloaded, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, priceAtOrder, reloaded.Items[0].Price)
}

func TestOrderService_ApplyTransition(t *testing.T) {
	cases := []struct {
		path      []string // statuses to walk through before the attempt
		requested string
		allowed   bool
	}{
		{nil, models.StatusApproved, true},
		{nil, models.StatusCancelled, true},
		{nil, models.StatusCompleted, false},
		{nil, models.StatusUnapproved, false},
		{[]string{models.StatusApproved}, models.StatusCompleted, true},
		{[]string{models.StatusApproved}, models.StatusCancelled, true},
		{[]string{models.StatusApproved}, models.StatusUnapproved, false},
		{[]string{models.StatusApproved, models.StatusCompleted}, models.StatusCancelled, false},
		{[]string{models.StatusApproved, models.StatusCompleted}, models.StatusApproved, false},
		{[]string{models.StatusCancelled}, models.StatusApproved, false},
		{[]string{models.StatusCancelled}, models.StatusCompleted, false},
	}

	for _, tc := range cases {
		f := newOrderFixture(t)
		order := f.createOrder(t)
		for _, step := range tc.path {
			_, err := f.service.ApplyTransition(order.ID, step)
			require.NoError(t, err)
		}

		updated, err := f.service.ApplyTransition(order.ID, tc.requested)
		if tc.allowed {
			assert.NoError(t, err, "transition to %s after %v", tc.requested, tc.path)
			assert.Equal(t, tc.requested, updated.Status.Name)
		} else {
			assert.Error(t, err, "transition to %s after %v", tc.requested, tc.path)
			assert.True(t, apierror.IsKind(err, apierror.KindValidation))
		}
	}
}

func TestOrderService_ApplyTransition_ConfirmationDate(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	// Approving does not stamp the confirmation date
	approved, err := f.service.ApplyTransition(order.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Nil(t, approved.ConfirmationDate)

	// Completing does
	completed, err := f.service.ApplyTransition(order.ID, models.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.ConfirmationDate)

	stored, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ConfirmationDate)
	assert.Contains(t, f.events.keys, "order.status_changed")
}

func TestOrderService_ApplyTransition_Errors(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.service.ApplyTransition("no-such-order", models.StatusApproved)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))

	_, err = f.service.ApplyTransition(order.ID, "SHIPPED")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

// A transition whose source status was changed underneath it must surface as
// a conflict, not silently overwrite the concurrent update.
func TestOrderService_ApplyTransition_Conflict(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	cancelled, err := f.statusRepo.GetByName(models.StatusCancelled)
	require.NoError(t, err)

	// Simulate a racing transition that won between the read and the write
	require.NoError(t, f.orderRepo.TransitionStatus(order.ID, order.StatusID, cancelled, nil))

	err = f.orderRepo.TransitionStatus(order.ID, order.StatusID, cancelled, nil)
	assert.ErrorIs(t, err, repositories.ErrStatusChanged)
}

func TestOrderService_AddOpinion(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	// Not terminal yet
	_, err := f.service.AddOpinion(order.ID, "client1", 5, "great")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = f.service.ApplyTransition(order.ID, models.StatusApproved)
	require.NoError(t, err)
	_, err = f.service.ApplyTransition(order.ID, models.StatusCompleted)
	require.NoError(t, err)

	// Only the order's placer may review it, terminal or not
	_, err = f.service.AddOpinion(order.ID, "someoneelse", 5, "great")
	assert.True(t, apierror.IsKind(err, apierror.KindForbidden))

	// Rating bounds
	_, err = f.service.AddOpinion(order.ID, "client1", 0, "bad rating")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	_, err = f.service.AddOpinion(order.ID, "client1", 6, "bad rating")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	// Happy path
	reviewed, err := f.service.AddOpinion(order.ID, "client1", 5, "arrived quickly")
	require.NoError(t, err)
	require.NotNil(t, reviewed.Opinion)
	assert.Equal(t, 5, reviewed.Opinion.Rating)
	assert.Equal(t, "arrived quickly", reviewed.Opinion.Content)

	// A second opinion replaces the first
	reviewed, err = f.service.AddOpinion(order.ID, "client1", 3, "revised after a week")
	require.NoError(t, err)
	assert.Equal(t, 3, reviewed.Opinion.Rating)

	stored, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Opinion)
	assert.Equal(t, 3, stored.Opinion.Rating)

	_, err = f.service.AddOpinion("no-such-order", "client1", 5, "x")
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestOrderService_AddOpinion_CancelledOrder(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.service.ApplyTransition(order.ID, models.StatusCancelled)
	require.NoError(t, err)

	reviewed, err := f.service.AddOpinion(order.ID, "client1", 1, "never arrived")
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.Opinion.Rating)
}

func TestOrderService_GetOrdersByStatus(t *testing.T) {
	f := newOrderFixture(t)
	first := f.createOrder(t)
	f.createOrder(t)

	_, err := f.service.ApplyTransition(first.ID, models.StatusApproved)
	require.NoError(t, err)

	approved, err := f.statusRepo.GetByName(models.StatusApproved)
	require.NoError(t, err)

	orders, err := f.service.GetOrdersByStatus(approved.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
}
