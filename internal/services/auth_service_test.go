// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := newTestConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	suite.service = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) register() *AuthTokens {
	tokens, err := suite.service.Register(RegisterInput{
		Email:    "owner@example.com",
		Password: "StrongPass1",
		ShopName: "Corner Store",
	})
	suite.NoError(err)
	return tokens
}

func (suite *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	tokens := suite.register()
	suite.NotEmpty(tokens.AccessToken)
	suite.NotEmpty(tokens.RefreshToken)
	suite.Equal("owner@example.com", tokens.User.Email)
	suite.NotEmpty(tokens.User.PasswordHash)

	claims, err := utils.ValidateJWT(tokens.AccessToken)
	suite.NoError(err)
	suite.Equal(tokens.User.ID.String(), claims.OwnerID)
	suite.Equal("Corner Store", claims.ShopName)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	suite.register()

	_, err := suite.service.Register(RegisterInput{
		Email:    "OWNER@example.com",
		Password: "StrongPass1",
		ShopName: "Another Store",
	})
	suite.True(apperrors.Is(err, apperrors.KindConflict))
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsWeakPassword() {
	_, err := suite.service.Register(RegisterInput{
		Email:    "owner@example.com",
		Password: "short",
		ShopName: "Corner Store",
	})
	suite.True(apperrors.Is(err, apperrors.KindValidation))
}

func (suite *AuthServiceTestSuite) TestLogin() {
	suite.register()

	tokens, err := suite.service.Login(LoginInput{
		Email:    "owner@example.com",
		Password: "StrongPass1",
	})
	suite.NoError(err)
	suite.NotEmpty(tokens.AccessToken)

	_, err = suite.service.Login(LoginInput{
		Email:    "owner@example.com",
		Password: "WrongPass1",
	})
	suite.True(apperrors.Is(err, apperrors.KindAuth))

	_, err = suite.service.Login(LoginInput{
		Email:    "nobody@example.com",
		Password: "StrongPass1",
	})
	suite.True(apperrors.Is(err, apperrors.KindAuth))
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	tokens := suite.register()

	refreshed, err := suite.service.RefreshToken(tokens.RefreshToken)
	suite.NoError(err)
	suite.NotEmpty(refreshed.AccessToken)
	suite.Equal(tokens.User.ID, refreshed.User.ID)

	_, err = suite.service.RefreshToken("not-a-token")
	suite.True(apperrors.Is(err, apperrors.KindAuth))
}

func (suite *AuthServiceTestSuite) TestChangePassword() {
	tokens := suite.register()

	err := suite.service.ChangePassword(tokens.User.ID, ChangePasswordInput{
		CurrentPassword: "WrongPass1",
		NewPassword:     "NewStrongPass1",
	})
	suite.True(apperrors.Is(err, apperrors.KindAuth))

	err = suite.service.ChangePassword(tokens.User.ID, ChangePasswordInput{
		CurrentPassword: "StrongPass1",
		NewPassword:     "NewStrongPass1",
	})
	suite.NoError(err)

	_, err = suite.service.Login(LoginInput{
		Email:    "owner@example.com",
		Password: "NewStrongPass1",
	})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile() {
	tokens := suite.register()

	newName := "Bigger Store"
	user, err := suite.service.UpdateProfile(tokens.User.ID, UpdateProfileInput{ShopName: &newName})
	suite.NoError(err)
	suite.Equal("Bigger Store", user.ShopName)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
