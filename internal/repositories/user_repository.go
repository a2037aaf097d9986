package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/social-connect/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
// Emails are stored as given; callers normalize them.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// userRecord is the users table row.
type userRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string
	Avatar    string
	CreatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

func (u *userRecord) toModel() *models.User {
	return &models.User{
		ID:       strconv.FormatUint(uint64(u.ID), 10),
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Avatar:   u.Avatar,
		Date:     u.CreatedAt,
	}
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// AutoMigrate creates or updates the users table.
func (r *PostgresUserRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&userRecord{})
}

// CreateUser creates a new user in PostgreSQL and sets its ID.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	record := &userRecord{
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		Avatar:    user.Avatar,
		CreatedAt: user.Date,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = strconv.FormatUint(uint64(record.ID), 10)
	user.Date = record.CreatedAt
	return nil
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	pk, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return record.toModel(), nil
}

// GetUserByEmail retrieves a user by email from PostgreSQL
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var record userRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return record.toModel(), nil
}
