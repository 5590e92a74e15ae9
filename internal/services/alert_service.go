// internal/services/alert_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/database"
	"github.com/shopdesk/backend/internal/models"
)

// AlertService raises supplier restock requests when stock falls into the
// danger tier, at most once per cooldown window per product.
type AlertService struct {
	db                  *gorm.DB
	notificationService *NotificationService
	cooldown            time.Duration
}

func NewAlertService(db *gorm.DB, notificationService *NotificationService, cfg *config.Config) *AlertService {
	return &AlertService{
		db:                  db,
		notificationService: notificationService,
		cooldown:            time.Duration(cfg.Alerts.CooldownHours) * time.Hour,
	}
}

// NotifyIfDanger sends a restock request to the product's supplier unless one
// already went out within the cooldown window. The claim is taken inside the
// transaction before the send: creation races on the primary key, renewal is
// a compare-and-set against the lastSentAt value this transaction read. Of
// two concurrent qualifying transitions exactly one claim lands, so exactly
// one email goes out, and a failed send rolls the claim back for the next
// transition to retry.
//
// Callers treat this as fire-and-forget: any error here is logged and must
// never fail the inventory mutation that triggered it.
func (s *AlertService) NotifyIfDanger(product *models.Product) error {
	tier := product.Tier()
	if tier != models.StockTierDanger && tier != models.StockTierOutOfStock {
		return nil
	}

	now := time.Now()

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var record models.AlertRecord
		err := tx.Where("product_id = ?", product.ID).First(&record).Error

		switch {
		case err == nil:
			if now.Sub(record.LastSentAt) < s.cooldown {
				// Still cooling down, nothing to send.
				return nil
			}
			claimed, err := s.claimRenewal(tx, product.ID, record.LastSentAt, now)
			if err != nil {
				return err
			}
			if !claimed {
				// A concurrent transition renewed the claim first.
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.AlertRecord{
				ProductID:  product.ID,
				OwnerID:    product.OwnerID,
				LastSentAt: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				if isUniqueViolation(err) {
					// A concurrent transition created the claim first.
					return nil
				}
				return fmt.Errorf("failed to create alert record: %w", err)
			}
		default:
			return fmt.Errorf("failed to read alert record: %w", err)
		}

		return s.sendRestockRequest(tx, product)
	})

	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"product_id": product.ID,
			"owner_id":   product.OwnerID,
		}).Error("Supplier alert failed")
		return err
	}

	return nil
}

// claimRenewal advances lastSentAt only while it still holds the value this
// transaction read. Under read committed a competing renewal that commits
// first changes the row, the loser's re-checked WHERE matches nothing, and it
// skips its send instead of emailing the supplier twice in one window.
func (s *AlertService) claimRenewal(tx *gorm.DB, productID uuid.UUID, seen, now time.Time) (bool, error) {
	result := tx.Model(&models.AlertRecord{}).
		Where("product_id = ? AND last_sent_at = ?", productID, seen).
		Update("last_sent_at", now)
	if result.Error != nil {
		return false, fmt.Errorf("failed to renew alert claim: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *AlertService) sendRestockRequest(tx *gorm.DB, product *models.Product) error {
	suggestedQty := product.MinStock * 2

	title := fmt.Sprintf("Low stock: %s", product.Name)
	message := fmt.Sprintf("%s is down to %d units (reorder point %d). Suggested restock: %d units.",
		product.Name, product.Quantity, product.MinStock, suggestedQty)

	// The dashboard feed entry commits with the cooldown claim; losing it on
	// rollback is fine since the next transition recreates both.
	if err := s.notificationService.CreateNotificationTx(tx, product.OwnerID, models.NotificationTypeInventory, title, message); err != nil {
		logrus.WithError(err).Warn("Failed to create low-stock notification")
	}

	if product.SupplierEmail == "" {
		logrus.WithField("product_id", product.ID).Info("Product has no supplier email, skipping restock email")
		return nil
	}

	subject := fmt.Sprintf("Restock request: %s", product.Name)
	body := fmt.Sprintf(`Hello,

We are running low on the following item and would like to place a restock order:

Product:            %s
Category:           %s
Current stock:      %d
Requested quantity: %d

Please confirm availability and expected delivery date.

Thank you,
%s`,
		product.Name, product.Category, product.Quantity, suggestedQty, s.notificationService.config.Email.FromName)

	if err := s.notificationService.SendEmail(product.SupplierEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send restock email: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id":     product.ID,
		"supplier_email": product.SupplierEmail,
		"suggested_qty":  suggestedQty,
	}).Info("Restock request sent")

	return nil
}
