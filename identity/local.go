package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"odontologia/models"
)

// LocalProvider checks credentials against the admin_users table.
type LocalProvider struct {
	db *gorm.DB
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Principal, error) {
	var user models.AdminUser
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Principal{}, ErrBadCredentials
	}
	if err != nil {
		return Principal{}, fmt.Errorf("failed to look up admin user: %w", err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		return Principal{}, ErrBadCredentials
	}
	if user.Disabled {
		return Principal{}, ErrUserDisabled
	}

	return Principal{UID: strconv.Itoa(user.ID), Email: user.Email}, nil
}

// EnsureAdmin creates the account, or resets its password when it exists.
// An empty email or password is a no-op.
func (p *LocalProvider) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var user models.AdminUser
	err = p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.AdminUser{Email: email, PasswordHash: hash}
		if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		slog.Info("admin user created", "email", email)
	case err != nil:
		return fmt.Errorf("failed to look up admin user: %w", err)
	case !CheckPasswordHash(password, user.PasswordHash):
		if err := p.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("failed to update admin password: %w", err)
		}
		slog.Info("admin password updated", "email", email)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
