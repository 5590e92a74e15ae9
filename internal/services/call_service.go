// internal/services/call_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

// CallService runs the call intake pipeline: persist the call, extract an
// order draft, and auto-convert it when the extraction is confident enough.
type CallService struct {
	db                  *gorm.DB
	extractor           OrderExtractor
	orderService        *OrderService
	notificationService *NotificationService
	confidenceThreshold float64
	autoConvert         bool
}

func NewCallService(db *gorm.DB, extractor OrderExtractor, orderService *OrderService, notificationService *NotificationService, cfg *config.Config) *CallService {
	return &CallService{
		db:                  db,
		extractor:           extractor,
		orderService:        orderService,
		notificationService: notificationService,
		confidenceThreshold: cfg.AI.ConfidenceThreshold,
		autoConvert:         cfg.AI.AutoConvert,
	}
}

type ProcessCallInput struct {
	CustomerPhone string `json:"customer_phone" validate:"required,phone"`
	Transcript    string `json:"transcript" validate:"required,min=5"`
}

// ProcessCall drives a transcript through the pipeline. The call record is
// persisted first so a failed or low-confidence extraction is still visible
// for manual review, never dropped.
//
// Terminal states: converted (order auto-created), extracted (waiting for
// manual review), rejected (extraction failed).
func (s *CallService) ProcessCall(ctx context.Context, ownerID uuid.UUID, input ProcessCallInput) (*models.CallRecord, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid call: %v", err)
	}

	call := models.CallRecord{
		OwnerID:       ownerID,
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		Transcript:    input.Transcript,
		Status:        models.CallStatusReceived,
	}
	if err := s.db.Create(&call).Error; err != nil {
		return nil, fmt.Errorf("failed to persist call record: %w", err)
	}

	result, err := s.extractor.Extract(ctx, input.Transcript)
	if err != nil {
		logrus.WithError(err).WithField("call_id", call.ID).Warn("Order extraction failed")
		call.Status = models.CallStatusRejected
		if uerr := s.db.Save(&call).Error; uerr != nil {
			return nil, fmt.Errorf("failed to mark call rejected: %w", uerr)
		}
		return &call, nil
	}

	call.ExtractedItems = result.Items
	call.Confidence = result.Confidence
	call.Summary = result.Summary
	call.Status = models.CallStatusExtracted
	if err := s.db.Save(&call).Error; err != nil {
		return nil, fmt.Errorf("failed to store extraction result: %w", err)
	}

	if s.autoConvert && result.Confidence >= s.confidenceThreshold && len(result.Items) > 0 {
		if err := s.convertToOrder(&call); err != nil {
			// The call stays in extracted for manual review; conversion
			// failure must not lose the extraction.
			logrus.WithError(err).WithField("call_id", call.ID).Warn("Auto-conversion failed, call left for manual review")
		}
	} else if s.notificationService != nil {
		title := "Call needs review"
		message := fmt.Sprintf("Call from %s was transcribed with %.0f%% confidence and needs manual review.",
			call.CustomerPhone, call.Confidence*100)
		if nerr := s.notificationService.CreateNotification(ownerID, models.NotificationTypeCall, title, message); nerr != nil {
			logrus.WithError(nerr).Warn("Failed to create call review notification")
		}
	}

	return &call, nil
}

// convertToOrder creates an order from the extracted items and marks the call
// converted exactly once.
func (s *CallService) convertToOrder(call *models.CallRecord) error {
	items := make([]OrderItemInput, 0, len(call.ExtractedItems))
	for _, extracted := range call.ExtractedItems {
		items = append(items, OrderItemInput{
			Name:     extracted.Name,
			Quantity: extracted.Quantity,
		})
	}

	notes := "Created from phone call"
	if call.Summary != "" {
		notes = call.Summary
	}

	order, err := s.orderService.CreateOrder(call.OwnerID, CreateOrderInput{
		CustomerPhone: call.CustomerPhone,
		Items:         items,
		Notes:         notes,
	})
	if err != nil {
		return err
	}

	call.Status = models.CallStatusConverted
	call.LinkedOrderID = &order.ID
	if err := s.db.Save(call).Error; err != nil {
		return fmt.Errorf("failed to mark call converted: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"call_id":    call.ID,
		"order_id":   order.ID,
		"confidence": call.Confidence,
	}).Info("Call auto-converted to order")

	return nil
}

// ConvertCall manually converts an extracted call into an order, for calls
// below the auto-conversion threshold. Already-converted calls are immutable.
func (s *CallService) ConvertCall(ownerID, callID uuid.UUID) (*models.CallRecord, error) {
	var call models.CallRecord
	if err := s.db.Where("id = ? AND owner_id = ?", callID, ownerID).First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("call not found")
		}
		return nil, fmt.Errorf("failed to load call: %w", err)
	}

	if call.Status == models.CallStatusConverted {
		return nil, apperrors.InvalidTransition("call already converted")
	}
	if call.Status != models.CallStatusExtracted {
		return nil, apperrors.InvalidTransition("only extracted calls can be converted")
	}
	if len(call.ExtractedItems) == 0 {
		return nil, apperrors.Validation("call has no extracted items to convert")
	}

	if err := s.convertToOrder(&call); err != nil {
		return nil, err
	}
	return &call, nil
}

// ListCalls returns the owner's call records, newest first, optionally
// filtered by status.
func (s *CallService) ListCalls(ownerID uuid.UUID, status string, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.CallRecord{}).Where("owner_id = ?", ownerID)

	if status != "" {
		query = query.Where("status = ?", models.CallStatus(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}

	var calls []models.CallRecord
	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}

	result := utils.CreatePaginationResult(calls, total, params)
	return &result, nil
}

// GetCall fetches one call record scoped to the owner.
func (s *CallService) GetCall(ownerID, callID uuid.UUID) (*models.CallRecord, error) {
	var call models.CallRecord
	if err := s.db.Where("id = ? AND owner_id = ?", callID, ownerID).First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("call not found")
		}
		return nil, fmt.Errorf("failed to load call: %w", err)
	}
	return &call, nil
}
