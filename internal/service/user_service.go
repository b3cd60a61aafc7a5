package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/bcrypt"
	"github.com/ecosistemala/meetingup-backend/pkg/excel"
	"github.com/ecosistemala/meetingup-backend/pkg/rut"
	"github.com/ecosistemala/meetingup-backend/pkg/storage"
)

var (
	ErrEmailTaken = errors.New("email is already registered")
	ErrRutTaken   = errors.New("rut is already registered")
	// ErrSelfDelete protects an admin from removing their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
)

// CredentialGenerator produces the per-user QR credential.
type CredentialGenerator interface {
	CredentialContent(userID uint) string
	GenerateCredential(userID uint, size int) ([]byte, error)
}

type UserService struct {
	userRepo *repository.UserRepository
	qr       CredentialGenerator
	storage  storage.ObjectStorage
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, qr CredentialGenerator, store storage.ObjectStorage, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		qr:       qr,
		storage:  store,
		logger:   logger,
	}
}

// Create registers a new user. The RUT is checksum-validated and normalized
// before any lookup or insert. QR credential generation and upload run as a
// side effect of creation itself, best-effort.
func (s *UserService) Create(req models.RegisterUserRequest) (*models.User, error) {
	normalizedRut, err := rut.Validate(req.Rut)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByRut(normalizedRut); err == nil {
		return nil, ErrRutTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:     req.Name,
		LastName:      req.Surname,
		Email:         req.Email,
		Rut:           normalizedRut,
		Password:      hashed,
		Phone:         req.Phone,
		Category:      req.Category,
		PublicProfile: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.generateCredential(user)
	return user, nil
}

// generateCredential renders and stores the QR credential. Failures are
// logged only; the account exists either way.
func (s *UserService) generateCredential(user *models.User) {
	png, err := s.qr.GenerateCredential(user.ID, 512)
	if err != nil {
		s.logger.Warn("QR credential generation failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	key := fmt.Sprintf("qr/user-%d.png", user.ID)
	if err := s.storage.Upload(key, bytes.NewReader(png)); err != nil {
		s.logger.Warn("QR credential upload failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	user.QRCodeURL = s.storage.PublicURL(key)
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Warn("QR credential URL save failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

// SetPhoto stores a member picture and records its public URL.
func (s *UserService) SetPhoto(userID uint, src io.Reader) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("photos/user-%d.jpg", userID)
	if err := s.storage.Upload(key, src); err != nil {
		return err
	}
	user.PhotoURL = s.storage.PublicURL(key)
	return s.userRepo.Update(user)
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// SearchPage is the paginated directory search behind the user panel and its
// AJAX endpoint.
func (s *UserService) SearchPage(query, category string, page int) ([]models.UserRow, models.Pagination, error) {
	total, err := s.userRepo.CountSearch(query, category)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	page, totalPages := clampPage(page, total, pageSize)
	users, err := s.userRepo.Search(query, category, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	rows := make([]models.UserRow, 0, len(users))
	for i := range users {
		rows = append(rows, users[i].Row())
	}
	return rows, models.NewPagination(page, totalPages), nil
}

func (s *UserService) Categories() ([]string, error) {
	return s.userRepo.Categories()
}

// Update applies an edit form. Role and visibility flags only change when the
// editor is an admin; helpers use the same form with those fields ignored.
func (s *UserService) Update(editorIsAdmin bool, userID uint, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.FirstName = *req.Name
	}
	if req.Surname != nil {
		user.LastName = *req.Surname
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Category != nil {
		user.Category = *req.Category
	}
	if editorIsAdmin {
		if req.IsAdmin != nil {
			user.IsAdmin = *req.IsAdmin
		}
		if req.IsHelper != nil {
			user.IsHelper = *req.IsHelper
		}
		if req.IsKiosk != nil {
			user.IsKiosk = *req.IsKiosk
		}
		if req.PublicProfile != nil {
			user.PublicProfile = *req.PublicProfile
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account for good, cascading out of meeting relations.
// Admins cannot delete themselves.
func (s *UserService) Delete(actorID, userID uint) (*models.User, error) {
	if actorID == userID {
		return nil, ErrSelfDelete
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ToggleFeatured(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Featured = !user.Featured
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// HideProfile is one-way: an admin can hide a profile from the public
// directory but never force it public.
func (s *UserService) HideProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.PublicProfile {
		user.PublicProfile = false
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ExportFiltered renders the (possibly filtered) user list as a spreadsheet.
// Zero matches still produce a valid file with the header row.
func (s *UserService) ExportFiltered(query, category string) (*bytes.Buffer, string, error) {
	users, err := s.userRepo.Search(query, category, 0, 0)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{
			u.FirstName, u.LastName, u.Email, u.Rut, u.Category, u.Phone, u.AttendanceCount,
		})
	}

	wb := excel.NewWorkbook()
	if err := wb.AddSheet(
		"Lista de Usuarios",
		[]string{"Nombre", "Apellido", "Email", "RUT", "Rubro", "Teléfono", "Asistencias"},
		rows,
	); err != nil {
		return nil, "", err
	}

	buf, err := wb.Buffer()
	if err != nil {
		return nil, "", err
	}
	return buf, "lista_usuarios_ecosistemala.xlsx", nil
}
