// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
)

// Mailer sends a single email. Implementations wrap SES, SMTP, or a log-only
// sink for environments without credentials.
type Mailer interface {
	Send(to, subject, body string) error
}

type NotificationService struct {
	db     *gorm.DB
	mailer Mailer
	config *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		mailer: newMailer(cfg),
		config: cfg,
	}
}

// NewNotificationServiceWithMailer lets tests inject a fake transport.
func NewNotificationServiceWithMailer(db *gorm.DB, cfg *config.Config, mailer Mailer) *NotificationService {
	return &NotificationService{
		db:     db,
		mailer: mailer,
		config: cfg,
	}
}

// newMailer picks the best available transport: SES when AWS credentials are
// configured, SMTP when an SMTP host is set, otherwise a logging stub so
// development setups keep working without any email account.
func newMailer(cfg *config.Config) Mailer {
	if cfg.AWS.AccessKeyID != "" && cfg.AWS.SecretAccessKey != "" {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"",
			),
		})
		if err == nil {
			return &sesMailer{
				client: ses.New(sess),
				from:   fmt.Sprintf("%s <%s>", cfg.Email.FromName, cfg.Email.FromEmail),
			}
		}
		logrus.WithError(err).Warn("Failed to create AWS session, falling back to SMTP/log mailer")
	}

	if cfg.Email.SMTPHost != "" {
		return &smtpMailer{cfg: cfg.Email}
	}

	logrus.Warn("No email transport configured, outgoing emails will only be logged")
	return &logMailer{}
}

type sesMailer struct {
	client *ses.SES
	from   string
}

func (m *sesMailer) Send(to, subject, body string) error {
	_, err := m.client.SendEmail(&ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &ses.Body{
				Text: &ses.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	})
	return err
}

type smtpMailer struct {
	cfg config.EmailConfig
}

func (m *smtpMailer) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	msg := strings.Join([]string{
		"From: " + m.cfg.FromName + " <" + m.cfg.FromEmail + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, []byte(msg))
}

type logMailer struct{}

func (m *logMailer) Send(to, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email (log transport)")
	return nil
}

// SendEmail sends through the configured transport.
func (s *NotificationService) SendEmail(to, subject, body string) error {
	return s.mailer.Send(to, subject, body)
}

// CreateNotification appends an entry to the owner's in-app feed.
func (s *NotificationService) CreateNotification(ownerID uuid.UUID, notifType models.NotificationType, title, message string) error {
	return s.CreateNotificationTx(s.db, ownerID, notifType, title, message)
}

// CreateNotificationTx is the transaction-scoped variant for callers that
// need the feed entry to commit or roll back with their own writes.
func (s *NotificationService) CreateNotificationTx(tx *gorm.DB, ownerID uuid.UUID, notifType models.NotificationType, title, message string) error {
	notification := models.AppNotification{
		OwnerID: ownerID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}

	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the owner's feed, newest first.
func (s *NotificationService) ListNotifications(ownerID uuid.UUID, unreadOnly bool, limit int) ([]models.AppNotification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.db.Where("owner_id = ?", ownerID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.AppNotification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags one feed entry as read.
func (s *NotificationService) MarkNotificationRead(ownerID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.AppNotification{}).
		Where("id = ? AND owner_id = ?", notificationID, ownerID).
		Update("read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}
