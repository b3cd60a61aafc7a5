package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByRut expects an already normalized RUT.
func (r *UserRepository) GetByRut(rut string) (*models.User, error) {
	var user models.User
	err := r.db.Where("rut = ?", rut).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete hard-deletes a user and their meeting relations.
func (r *UserRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM meeting_interested WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM meeting_attendees WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// searchScope filters by name, surname, email or RUT plus an exact category.
func searchScope(query, category string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if query != "" {
			q := "%" + strings.ToLower(query) + "%"
			db = db.Where(
				"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR lower(rut) LIKE ?",
				q, q, q, q,
			)
		}
		if category != "" {
			db = db.Where("category = ?", category)
		}
		return db
	}
}

func (r *UserRepository) CountSearch(query, category string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Scopes(searchScope(query, category)).Count(&count).Error
	return count, err
}

// Search lists matching users ordered by name. A zero limit returns the
// whole result set (exports).
func (r *UserRepository) Search(query, category string, offset, limit int) ([]models.User, error) {
	var users []models.User
	db := r.db.Scopes(searchScope(query, category)).
		Order("first_name, last_name")
	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}
	err := db.Find(&users).Error
	return users, err
}

// Categories returns the distinct non-empty categories in use.
func (r *UserRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.User{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// NonStaff returns every user without a privileged role, for the prize wheel.
func (r *UserRepository) NonStaff() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("is_admin = ? AND is_helper = ? AND is_kiosk = ?", false, false, false).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
