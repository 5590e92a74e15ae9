// internal/services/alert_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/models"
)

type AlertServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mailer  *fakeMailer
	service *AlertService
	ownerID uuid.UUID
}

func (suite *AlertServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := newTestConfig()
	suite.mailer = &fakeMailer{}
	notificationService := NewNotificationServiceWithMailer(suite.db, cfg, suite.mailer)
	suite.service = NewAlertService(suite.db, notificationService, cfg)
	suite.ownerID = uuid.New()
}

func (suite *AlertServiceTestSuite) dangerProduct() *models.Product {
	product := &models.Product{
		OwnerID:       suite.ownerID,
		Name:          "Rice",
		NameKey:       "rice",
		Price:         decimal.NewFromInt(50),
		Quantity:      2,
		MinStock:      20,
		Category:      "Staples",
		SupplierEmail: "supplier@example.com",
	}
	suite.NoError(suite.db.Create(product).Error)
	return product
}

func (suite *AlertServiceTestSuite) TestSendsRestockRequest() {
	product := suite.dangerProduct()

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(1, suite.mailer.sentCount())
	suite.Equal("supplier@example.com", suite.mailer.sent[0].To)
	suite.Contains(suite.mailer.sent[0].Subject, "Rice")
	// Suggested restock quantity restores double the reorder point.
	suite.Contains(suite.mailer.sent[0].Body, "40")

	var record models.AlertRecord
	suite.NoError(suite.db.Where("product_id = ?", product.ID).First(&record).Error)
	suite.WithinDuration(time.Now(), record.LastSentAt, 5*time.Second)

	// The owner's feed got a low-stock entry too.
	var feedCount int64
	suite.db.Model(&models.AppNotification{}).Where("owner_id = ?", suite.ownerID).Count(&feedCount)
	suite.Equal(int64(1), feedCount)
}

func (suite *AlertServiceTestSuite) TestCooldownSuppressesSecondAlert() {
	product := suite.dangerProduct()

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(1, suite.mailer.sentCount())
}

func (suite *AlertServiceTestSuite) TestAlertAfterCooldownExpires() {
	product := suite.dangerProduct()

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(1, suite.mailer.sentCount())

	suite.NoError(suite.db.Model(&models.AlertRecord{}).
		Where("product_id = ?", product.ID).
		Update("last_sent_at", time.Now().Add(-25*time.Hour)).Error)

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(2, suite.mailer.sentCount())
}

func (suite *AlertServiceTestSuite) TestRenewalClaimIsCompareAndSet() {
	product := suite.dangerProduct()

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(1, suite.mailer.sentCount())

	suite.NoError(suite.db.Model(&models.AlertRecord{}).
		Where("product_id = ?", product.ID).
		Update("last_sent_at", time.Now().Add(-25*time.Hour)).Error)

	var record models.AlertRecord
	suite.NoError(suite.db.Where("product_id = ?", product.ID).First(&record).Error)

	// Two renewals race holding the same expired read: the first advances
	// the row, the second finds its read stale and must skip the send.
	claimed, err := suite.service.claimRenewal(suite.db, product.ID, record.LastSentAt, time.Now())
	suite.NoError(err)
	suite.True(claimed)

	claimed, err = suite.service.claimRenewal(suite.db, product.ID, record.LastSentAt, time.Now())
	suite.NoError(err)
	suite.False(claimed)
}

func (suite *AlertServiceTestSuite) TestHealthyTiersNeverAlert() {
	product := suite.dangerProduct()
	product.Quantity = 15 // low, not danger

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(0, suite.mailer.sentCount())

	product.Quantity = 100
	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(0, suite.mailer.sentCount())
}

func (suite *AlertServiceTestSuite) TestFailedSendRollsBackCooldownClaim() {
	product := suite.dangerProduct()

	suite.mailer.setFailure(errors.New("smtp down"))
	suite.Error(suite.service.NotifyIfDanger(product))

	// The claim rolled back, so the next transition retries and succeeds.
	var count int64
	suite.db.Model(&models.AlertRecord{}).Where("product_id = ?", product.ID).Count(&count)
	suite.Equal(int64(0), count)

	suite.mailer.setFailure(nil)
	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(1, suite.mailer.sentCount())
}

func (suite *AlertServiceTestSuite) TestNoSupplierEmailStillRecordsFeedEntry() {
	product := suite.dangerProduct()
	product.SupplierEmail = ""
	suite.NoError(suite.db.Save(product).Error)

	suite.NoError(suite.service.NotifyIfDanger(product))
	suite.Equal(0, suite.mailer.sentCount())

	var feedCount int64
	suite.db.Model(&models.AppNotification{}).Where("owner_id = ?", suite.ownerID).Count(&feedCount)
	suite.Equal(int64(1), feedCount)
}

func TestAlertServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AlertServiceTestSuite))
}
