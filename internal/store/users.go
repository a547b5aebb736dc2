package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"geocache/internal/models"
)

// NewUser describes an account to create. PasswordHash must already be hashed.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash *string
	GoogleID     *string
}

// CreateUser inserts a user with exactly one credential.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	hasPassword := in.PasswordHash != nil && *in.PasswordHash != ""
	hasGoogle := in.GoogleID != nil && *in.GoogleID != ""
	if hasPassword == hasGoogle {
		return nil, ErrMissingCredential
	}

	if taken, err := s.EmailExists(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.UsernameExists(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	user := models.User{Email: in.Email, Username: in.Username}
	if hasPassword {
		user.Password = in.PasswordHash
	} else {
		user.GoogleID = in.GoogleID
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			// lost a race with a concurrent registration
			if taken, _ := s.EmailExists(ctx, in.Email); taken {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	return &user, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// LinkGoogleID attaches a Google subject to an existing account.
func (s *Store) LinkGoogleID(ctx context.Context, userID uint, googleID string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("google_id", googleID)
	if res.Error != nil {
		return fmt.Errorf("could not link google account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

// DeleteUser removes the user together with their routes, memberships,
// visits, and achievements.
func (s *Store) DeleteUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var routeIDs []uint
		if err := tx.Model(&models.Route{}).Where("owner_id = ?", userID).Pluck("id", &routeIDs).Error; err != nil {
			return err
		}
		for _, id := range routeIDs {
			if err := deleteRouteTx(tx, id); err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Visit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.JoinedRoute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *Store) UserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var achievements []models.UserAchievement
	err := s.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&achievements).Error
	return achievements, err
}
