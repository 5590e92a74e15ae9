// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	catalog *CatalogService
	ownerID uuid.UUID
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := newTestConfig()
	notificationService := NewNotificationServiceWithMailer(suite.db, cfg, &fakeMailer{})
	customerService := NewCustomerService(suite.db)
	suite.service = NewOrderService(suite.db, customerService, notificationService)
	suite.catalog = NewCatalogService(suite.db, nil)
	suite.ownerID = uuid.New()
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (suite *OrderServiceTestSuite) TestCreateOrderComputesTotal() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{
			{Name: "Milk", Quantity: 2, Price: price(30)},
			{Name: "Bread", Quantity: 3, Price: price(10)},
		},
	})
	suite.NoError(err)
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.True(order.Total.Equal(decimal.NewFromInt(90)))
	suite.Len(order.Items, 2)
	suite.False(order.Timestamp.IsZero())
}

func (suite *OrderServiceTestSuite) TestCreateOrderSnapshotsCatalogPrice() {
	_, err := suite.catalog.AddOrMergeProduct(suite.ownerID, ProductDraft{
		Name:     "Milk",
		Price:    decimal.NewFromInt(45),
		Quantity: 10,
	})
	suite.NoError(err)

	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "milk", Quantity: 2}},
	})
	suite.NoError(err)
	suite.True(order.Total.Equal(decimal.NewFromInt(90)))

	// A later catalog price change must not touch the frozen snapshot.
	newPrice := decimal.NewFromInt(99)
	_, err = suite.catalog.AddOrMergeProduct(suite.ownerID, ProductDraft{
		Name:     "Milk",
		Price:    newPrice,
		Quantity: 0,
	})
	suite.NoError(err)

	reloaded, err := suite.service.GetOrder(suite.ownerID, order.ID)
	suite.NoError(err)
	suite.True(reloaded.Items[0].Price.Equal(decimal.NewFromInt(45)))
}

func (suite *OrderServiceTestSuite) TestCreateOrderAllowsUncataloguedNames() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Mystery Item", Quantity: 1}},
	})
	suite.NoError(err)
	suite.True(order.Items[0].Price.IsZero())
}

func (suite *OrderServiceTestSuite) TestCreateOrderResolvesMisspelledNames() {
	_, err := suite.catalog.AddOrMergeProduct(suite.ownerID, ProductDraft{
		Name:     "Tomatoes",
		Price:    decimal.NewFromInt(20),
		Quantity: 10,
	})
	suite.NoError(err)

	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "tomatos", Quantity: 2}},
	})
	suite.NoError(err)
	suite.Equal("Tomatoes", order.Items[0].Name)
	suite.True(order.Total.Equal(decimal.NewFromInt(40)))
}

func (suite *OrderServiceTestSuite) TestFuzzyResolutionStopsAtEditBudget() {
	_, err := suite.catalog.AddOrMergeProduct(suite.ownerID, ProductDraft{
		Name:     "Tomatoes",
		Price:    decimal.NewFromInt(20),
		Quantity: 10,
	})
	suite.NoError(err)

	// "bread" is nothing like "tomatoes"; the name stays as given with a
	// zero price for manual follow-up.
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "bread", Quantity: 1}},
	})
	suite.NoError(err)
	suite.Equal("bread", order.Items[0].Name)
	suite.True(order.Items[0].Price.IsZero())
}

func (suite *OrderServiceTestSuite) TestCreateOrderValidation() {
	_, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{})
	suite.True(apperrors.Is(err, apperrors.KindValidation))

	_, err = suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 0}},
	})
	suite.True(apperrors.Is(err, apperrors.KindValidation))

	negative := decimal.NewFromInt(-1)
	_, err = suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: &negative}},
	})
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestCreateOrderResolvesCustomerByPhone() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		CustomerPhone: "+15550001111",
		CustomerName:  "Asha",
		Items:         []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
	})
	suite.NoError(err)
	suite.NotNil(order.CustomerID)

	// A second order from the same phone reuses the customer record.
	second, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		CustomerPhone: "+15550001111",
		Items:         []OrderItemInput{{Name: "Bread", Quantity: 1, Price: price(10)}},
	})
	suite.NoError(err)
	suite.Equal(*order.CustomerID, *second.CustomerID)
	suite.Equal("Asha", second.CustomerName)
}

func (suite *OrderServiceTestSuite) TestStatusLifecycle() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
	})
	suite.NoError(err)

	// Skipping ahead is rejected.
	_, err = suite.service.UpdateStatus(suite.ownerID, order.ID, models.OrderStatusDelivered)
	suite.True(apperrors.Is(err, apperrors.KindInvalidTransition))

	// Re-applying the current status is a no-op success.
	same, err := suite.service.UpdateStatus(suite.ownerID, order.ID, models.OrderStatusPending)
	suite.NoError(err)
	suite.Equal(models.OrderStatusPending, same.Status)

	// The full forward chain succeeds.
	for _, status := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusDispatched,
		models.OrderStatusDelivered,
	} {
		updated, err := suite.service.UpdateStatus(suite.ownerID, order.ID, status)
		suite.NoError(err)
		suite.Equal(status, updated.Status)
	}

	// Delivered is terminal.
	_, err = suite.service.UpdateStatus(suite.ownerID, order.ID, models.OrderStatusPending)
	suite.True(apperrors.Is(err, apperrors.KindInvalidTransition))
}

func (suite *OrderServiceTestSuite) TestUpdateStatusUnknownValue() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
	})
	suite.NoError(err)

	_, err = suite.service.UpdateStatus(suite.ownerID, order.ID, models.OrderStatus("cancelled"))
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestUpdateNotes() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
	})
	suite.NoError(err)

	updated, err := suite.service.UpdateNotes(suite.ownerID, order.ID, "deliver after 5pm")
	suite.NoError(err)
	suite.Equal("deliver after 5pm", updated.Notes)
}

func (suite *OrderServiceTestSuite) TestListOrdersFiltersByStatus() {
	for i := 0; i < 3; i++ {
		_, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
			Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
		})
		suite.NoError(err)
	}

	first, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Bread", Quantity: 1, Price: price(10)}},
	})
	suite.NoError(err)
	_, err = suite.service.UpdateStatus(suite.ownerID, first.ID, models.OrderStatusConfirmed)
	suite.NoError(err)

	result, err := suite.service.ListOrders(suite.ownerID, OrderFilters{Status: "pending"}, testPaginationParams())
	suite.NoError(err)
	suite.Equal(int64(3), result.Total)

	result, err = suite.service.ListOrders(suite.ownerID, OrderFilters{Status: "confirmed"}, testPaginationParams())
	suite.NoError(err)
	suite.Equal(int64(1), result.Total)

	_, err = suite.service.ListOrders(suite.ownerID, OrderFilters{Status: "bogus"}, testPaginationParams())
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *OrderServiceTestSuite) TestCrossOwnerOrderAccess() {
	order, err := suite.service.CreateOrder(suite.ownerID, CreateOrderInput{
		Items: []OrderItemInput{{Name: "Milk", Quantity: 1, Price: price(30)}},
	})
	suite.NoError(err)

	otherOwner := uuid.New()
	_, err = suite.service.GetOrder(otherOwner, order.ID)
	suite.True(apperrors.Is(err, apperrors.KindNotFound))

	_, err = suite.service.UpdateStatus(otherOwner, order.ID, models.OrderStatusConfirmed)
	suite.True(apperrors.Is(err, apperrors.KindNotFound))
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
