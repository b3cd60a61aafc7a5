package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/captcha"
	"github.com/ecosistemala/meetingup-backend/pkg/rut"
	"github.com/ecosistemala/meetingup-backend/pkg/utils"
)

// ErrRegistrationClosed refuses sign-up once the grace window is over,
// regardless of step or session.
var ErrRegistrationClosed = errors.New("registration for this meeting is closed")

// Signup flow steps.
const (
	StepIdentify = "identify"
	StepRegister = "register"
)

// Mailer sends the confirmation mails. Delivery is dispatched fire-and-forget
// and failures never reach the visitor.
type Mailer interface {
	SendMeetingConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error
	SendWelcomeConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error
}

// SignupOutcome is what the signup page renders after each submission.
type SignupOutcome struct {
	Step        string            `json:"step"`
	Rut         string            `json:"national_id,omitempty"`
	Alert       *models.Alert     `json:"alert,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// RegistrationService drives the public two-step self-registration flow.
type RegistrationService struct {
	meetingRepo *repository.MeetingRepository
	userRepo    *repository.UserRepository
	users       *UserService
	validator   *utils.Validator
	mailer      Mailer
	qr          CredentialGenerator
	logger      *zap.Logger

	baseURL         string
	turnstileSecret string

	// Now is swapped out in tests to pin the grace window.
	Now func() time.Time
}

func NewRegistrationService(
	meetingRepo *repository.MeetingRepository,
	userRepo *repository.UserRepository,
	users *UserService,
	validator *utils.Validator,
	mailer Mailer,
	qr CredentialGenerator,
	logger *zap.Logger,
	baseURL string,
	turnstileSecret string,
) *RegistrationService {
	return &RegistrationService{
		meetingRepo:     meetingRepo,
		userRepo:        userRepo,
		users:           users,
		validator:       validator,
		mailer:          mailer,
		qr:              qr,
		logger:          logger,
		baseURL:         baseURL,
		turnstileSecret: turnstileSecret,
		Now:             time.Now,
	}
}

func (s *RegistrationService) publicLink(meetingID uint) string {
	return fmt.Sprintf("%s/meetings/%d", s.baseURL, meetingID)
}

// EnsureOpen is the entry guard shared by every step.
func (s *RegistrationService) EnsureOpen(meeting *models.Meeting) error {
	if meeting.RegistrationClosed(s.Now()) {
		return ErrRegistrationClosed
	}
	return nil
}

// PublicMeetingView is the unauthenticated meeting page payload.
type PublicMeetingView struct {
	Meeting            *models.Meeting `json:"meeting"`
	RegistrationClosed bool            `json:"registration_closed"`
	AlreadyInterested  bool            `json:"already_interested"`
}

func (s *RegistrationService) PublicMeeting(meetingID uint, currentUser *models.User) (*PublicMeetingView, error) {
	meeting, err := s.meetingRepo.GetByID(meetingID)
	if err != nil {
		return nil, err
	}

	view := &PublicMeetingView{
		Meeting:            meeting,
		RegistrationClosed: meeting.RegistrationClosed(s.Now()),
	}
	if currentUser != nil {
		interested, err := s.meetingRepo.IsInterested(meetingID, currentUser.ID)
		if err != nil {
			return nil, err
		}
		view.AlreadyInterested = interested
	}
	return view, nil
}

// RegisterIdentity signs up an already resolved identity (a sessioned
// visitor). Re-registering is informational, not an error. No confirmation
// mail here: the member already has their credential, and the page notice is
// the acknowledgement.
func (s *RegistrationService) RegisterIdentity(meeting *models.Meeting, user *models.User) (*SignupOutcome, error) {
	if err := s.EnsureOpen(meeting); err != nil {
		return nil, err
	}

	err := s.meetingRepo.AddInterested(meeting.ID, user.ID)
	if errors.Is(err, repository.ErrDuplicateInterested) {
		return &SignupOutcome{
			Step: StepIdentify,
			Alert: &models.Alert{
				Type:     "info",
				Title:    "Ya estás inscrito",
				Message:  "Ya estás inscrito en esta reunión.",
				Redirect: s.publicLink(meeting.ID),
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &SignupOutcome{
		Step: StepIdentify,
		Alert: &models.Alert{
			Type:     "success",
			Title:    "¡Inscripción exitosa!",
			Message:  fmt.Sprintf("Te has inscrito exitosamente en \"%s\".", meeting.Title),
			Redirect: s.publicLink(meeting.ID),
		},
	}, nil
}

// IdentifyByRut is step one: the visitor submits only their RUT. Checksum
// validation happens before any lookup, so an invalid RUT has no side
// effects. An unknown RUT moves the flow to the register step carrying the
// normalized value forward.
func (s *RegistrationService) IdentifyByRut(meeting *models.Meeting, rawRut string) (*SignupOutcome, error) {
	if err := s.EnsureOpen(meeting); err != nil {
		return nil, err
	}

	normalized, err := rut.Validate(rawRut)
	if err != nil {
		return &SignupOutcome{
			Step: StepIdentify,
			Alert: &models.Alert{
				Type:    "error",
				Title:   "RUT inválido",
				Message: rutErrorMessage(err),
			},
		}, nil
	}

	user, err := s.userRepo.GetByRut(normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SignupOutcome{
			Step: StepRegister,
			Rut:  normalized,
			Alert: &models.Alert{
				Type:    "warning",
				Title:   "Debes registrarte",
				Message: "Tu RUT no está registrado en el sistema. Completa el formulario para crear una cuenta e inscribirte.",
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	addErr := s.meetingRepo.AddInterested(meeting.ID, user.ID)
	if errors.Is(addErr, repository.ErrDuplicateInterested) {
		return &SignupOutcome{
			Step: StepIdentify,
			Alert: &models.Alert{
				Type:     "info",
				Title:    "Ya estás inscrito",
				Message:  fmt.Sprintf("%s, tu RUT ya está inscrito en esta reunión.", user.FirstName),
				Redirect: s.publicLink(meeting.ID),
			},
		}, nil
	}
	if addErr != nil {
		return nil, addErr
	}

	s.dispatchConfirmation(user, meeting, false)
	return &SignupOutcome{
		Step: StepIdentify,
		Alert: &models.Alert{
			Type:  "success",
			Title: "¡Inscripción exitosa!",
			Message: fmt.Sprintf(
				"%s, te has inscrito en \"%s\". Se ha enviado un correo de confirmación a %s.",
				user.FirstName, meeting.Title, user.Email,
			),
			Redirect: s.publicLink(meeting.ID),
		},
	}, nil
}

// CompleteRegistration is step two: a full registration form pre-seeded with
// the normalized RUT. On success the new account is pre-registered for the
// meeting and welcomed by mail; on validation failure the form redisplays
// with field errors.
func (s *RegistrationService) CompleteRegistration(meeting *models.Meeting, req models.RegisterUserRequest) (*SignupOutcome, error) {
	if err := s.EnsureOpen(meeting); err != nil {
		return nil, err
	}

	if s.turnstileSecret != "" {
		ok, err := captcha.VerifyTurnstile(s.turnstileSecret, req.CaptchaToken)
		if err != nil || !ok {
			return &SignupOutcome{
				Step:        StepRegister,
				Rut:         req.Rut,
				FieldErrors: map[string]string{"captcha": "Captcha verification failed"},
			}, nil
		}
	}

	if err := s.validator.Struct(req); err != nil {
		return &SignupOutcome{
			Step:        StepRegister,
			Rut:         req.Rut,
			FieldErrors: s.validator.FieldErrors(err),
		}, nil
	}

	user, err := s.users.Create(req)
	if errors.Is(err, ErrEmailTaken) {
		return &SignupOutcome{
			Step:        StepRegister,
			Rut:         req.Rut,
			FieldErrors: map[string]string{"email": "Email is already registered"},
		}, nil
	}
	if errors.Is(err, ErrRutTaken) {
		return &SignupOutcome{
			Step:        StepRegister,
			Rut:         req.Rut,
			FieldErrors: map[string]string{"national_id": "RUT is already registered"},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.meetingRepo.AddInterested(meeting.ID, user.ID); err != nil &&
		!errors.Is(err, repository.ErrDuplicateInterested) {
		return nil, err
	}

	s.dispatchConfirmation(user, meeting, true)
	return &SignupOutcome{
		Step: StepRegister,
		Rut:  user.Rut,
		Alert: &models.Alert{
			Type:  "success",
			Title: "¡Cuenta creada!",
			Message: fmt.Sprintf(
				"¡Bienvenido %s! Tu cuenta ha sido creada y te has inscrito en \"%s\". Se ha enviado un correo de confirmación.",
				user.FirstName, meeting.Title,
			),
			Redirect: s.publicLink(meeting.ID),
		},
	}, nil
}

// dispatchConfirmation sends the confirmation mail as a fire-and-forget
// task: a rejected or failed send is logged and never blocks registration.
func (s *RegistrationService) dispatchConfirmation(user *models.User, meeting *models.Meeting, welcome bool) {
	link := s.publicLink(meeting.ID)
	go func() {
		qrPNG, err := s.qr.GenerateCredential(user.ID, 512)
		if err != nil {
			s.logger.Warn("QR attachment generation failed", zap.Uint("user_id", user.ID), zap.Error(err))
			qrPNG = nil
		}

		var sendErr error
		if welcome {
			sendErr = s.mailer.SendWelcomeConfirmation(user, meeting, link, qrPNG)
		} else {
			sendErr = s.mailer.SendMeetingConfirmation(user, meeting, link, qrPNG)
		}
		if sendErr != nil {
			s.logger.Warn("confirmation email failed",
				zap.Uint("user_id", user.ID),
				zap.Uint("meeting_id", meeting.ID),
				zap.Error(sendErr),
			)
		}
	}()
}

func rutErrorMessage(err error) string {
	switch {
	case errors.Is(err, rut.ErrEmpty):
		return "Debes ingresar tu RUT."
	case errors.Is(err, rut.ErrAgainst):
		return "El dígito verificador del RUT no es válido."
	default:
		return "El formato del RUT no es válido."
	}
}
