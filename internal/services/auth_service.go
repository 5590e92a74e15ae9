// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
	"github.com/shopdesk/backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, config: cfg}
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strong_password"`
	ShopName  string `json:"shop_name" validate:"required,max=255"`
	OwnerName string `json:"owner_name,omitempty" validate:"max=255"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address   string `json:"address,omitempty" validate:"max=500"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	ShopName  *string `json:"shop_name,omitempty" validate:"omitempty,max=255"`
	OwnerName *string `json:"owner_name,omitempty" validate:"omitempty,max=255"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type AuthTokens struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Register creates a shop owner account and returns a signed token pair.
func (s *AuthService) Register(input RegisterInput) (*AuthTokens, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid registration: %v", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("an account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	user := models.User{
		Email:     email,
		ShopName:  strings.TrimSpace(input.ShopName),
		OwnerName: strings.TrimSpace(input.OwnerName),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   input.Address,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Shop owner registered")

	return s.issueTokens(&user)
}

// Login verifies credentials and returns a signed token pair.
func (s *AuthService) Login(input LoginInput) (*AuthTokens, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid login: %v", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Auth("invalid email or password")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, apperrors.Auth("invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record last login time")
	}

	return s.issueTokens(&user)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *AuthService) RefreshToken(refreshToken string) (*AuthTokens, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Auth("invalid refresh token")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.Auth("invalid refresh token")
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, apperrors.Auth("account no longer exists")
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthTokens, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, user.ShopName, s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// GetUserByID loads an account by its primary key.
func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("account not found")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies a partial update to the owner's shop profile.
func (s *AuthService) UpdateProfile(userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, apperrors.Validation("invalid profile: %v", err)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if input.ShopName != nil {
		user.ShopName = strings.TrimSpace(*input.ShopName)
	}
	if input.OwnerName != nil {
		user.OwnerName = strings.TrimSpace(*input.OwnerName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		user.Address = *input.Address
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(userID uuid.UUID, input ChangePasswordInput) error {
	if err := utils.ValidateStruct(&input); err != nil {
		return apperrors.Validation("invalid request: %v", err)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(input.CurrentPassword); err != nil {
		return apperrors.Auth("current password is incorrect")
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("Password changed")
	return nil
}
