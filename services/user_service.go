package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Registration struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type UserService struct {
	store    *Store
	notifier Notifier
	// Cost is the bcrypt cost; tests lower it.
	Cost int
}

func NewUserService(store *Store, notifier Notifier) *UserService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &UserService{store: store, notifier: notifier, Cost: bcrypt.DefaultCost}
}

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	return s.CreateUser(ctx, reg, false)
}

// CreateUser is Register with an explicit staff flag, used by the CLI.
func (s *UserService) CreateUser(ctx context.Context, reg Registration, isStaff bool) (*models.User, error) {
	username := strings.TrimSpace(reg.Username)
	if username == "" || reg.Password == "" {
		return nil, ErrInvalidRegistration
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    strings.TrimSpace(reg.Email),
		Password: string(hashed),
		IsStaff:  isStaff,
	}
	if err := s.store.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	utils.InfoLogger.Printf("New user registered: %s (staff=%t)", user.Username, user.IsStaff)
	return &user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.store.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.store.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// Delete removes a user and every booking they own.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	var removed int64
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		res := tx.Where("user_id = ?", id).Delete(&models.Booking{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&user).Error
	})
	if err != nil {
		if be, ok := AsBookingError(err); ok {
			return be
		}
		utils.ErrorLogger.Printf("Error deleting user %d: %v", id, err)
		return fmt.Errorf("delete user: %w", err)
	}

	utils.InfoLogger.Printf("User %d deleted with %d booking(s)", id, removed)
	s.notifier.Publish(hub.EventUserDelete, map[string]interface{}{
		"user_id":          id,
		"bookings_removed": removed,
	})
	return nil
}
