package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flatrent-backend/models"
	"flatrent-backend/utils"
)

// UserService handles registration, email verification and login. Identity
// for lifecycle operations comes from the JWT middleware, not from here.
type UserService struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewUserService(db *gorm.DB, log *logrus.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

func (s *UserService) Register(fullName, email, password, role, phone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidInput("a valid email is required")
	}
	if len(password) < 8 {
		return nil, invalidInput("password must be at least 8 characters")
	}
	if role != models.RoleTenant && role != models.RoleOwner {
		return nil, invalidInput("role must be tenant or owner")
	}

	var existing models.User
	err := s.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, conflict("email is already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Role:              role,
		FullName:          strings.TrimSpace(fullName),
		Email:             email,
		Password:          string(hash),
		Phone:             strings.TrimSpace(phone),
		VerificationToken: token,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	// Best-effort: registration succeeds even if the mail bounces; the
	// token stays valid for a later resend.
	verifyLink := utils.BuildVerificationLink(token)
	if mailErr := utils.SendVerificationEmail(user.Email, user.FullName, verifyLink); mailErr != nil {
		s.Log.WithError(mailErr).WithField("user_id", user.ID).Warn("verification email failed")
	}

	s.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")
	return &user, nil
}

func (s *UserService) VerifyEmail(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalidInput("verification token is required")
	}

	var user models.User
	err := s.DB.Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("invalid verification token")
		}
		return nil, err
	}

	if err := s.DB.Model(&user).Updates(map[string]interface{}{
		"verified":           true,
		"verification_token": "",
	}).Error; err != nil {
		return nil, err
	}

	user.Verified = true
	user.VerificationToken = ""
	return &user, nil
}

// Authenticate checks credentials and returns the user. The caller issues
// the token.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbidden("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, forbidden("invalid email or password")
	}
	return &user, nil
}
