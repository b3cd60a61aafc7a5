package email

import (
	"encoding/base64"
	"fmt"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"

	"github.com/ecosistemala/meetingup-backend/internal/config"
	"github.com/ecosistemala/meetingup-backend/internal/models"
)

// EmailService sends the plain-text meeting confirmation mails. Delivery is
// best-effort: callers log failures and never surface them to the visitor.
type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewEmailService(cfg *config.Config, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(cfg.Email.APIKey),
		from:     cfg.Email.FromAddress,
		fromName: cfg.Email.FromName,
		logger:   logger,
	}
}

// SendMeetingConfirmation confirms a sign-up for an existing member, with the
// personal QR credential attached.
func (s *EmailService) SendMeetingConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error {
	subject := fmt.Sprintf("Confirmación de inscripción - %s", meeting.Title)
	body := fmt.Sprintf(`Hola %s,

¡Te has inscrito exitosamente en la reunión!

Detalles de la reunión:
%s
📌 %s
📅 %s
🕒 %s hrs
📍 %s

%s

Ver más detalles: %s

📱 INGRESO AL EVENTO:
%s
Para ingresar al evento, debes presentar tu código QR personal que
está adjunto en este correo. El equipo de registro escaneará tu código
en la entrada.

También puedes acceder a tu código QR en cualquier momento ingresando
al sitio web: meetingup.cl

¡Nos vemos pronto!

%s
EcosistemaLA - Comunidad Emprendedora
meetingup.cl
`,
		user.FullName(), divider,
		meeting.Title,
		meeting.Date.Format("02/01/2006"),
		meeting.Date.Format("15:04"),
		meeting.Location,
		meeting.Description,
		link,
		divider, divider,
	)

	return s.send(user.Email, subject, body, qrPNG)
}

// SendWelcomeConfirmation is the variant for accounts created during public
// sign-up: welcome plus meeting confirmation in one mail.
func (s *EmailService) SendWelcomeConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error {
	subject := fmt.Sprintf("Bienvenido a EcosistemaLA - Inscripción en %s", meeting.Title)
	body := fmt.Sprintf(`Hola %s,

¡Bienvenido a EcosistemaLA!

Tu cuenta ha sido creada exitosamente y te has inscrito en:

%s
📌 %s
📅 %s
🕒 %s hrs
📍 %s

%s

Ver más detalles: %s

📱 INGRESO AL EVENTO:
%s
Para ingresar al evento, debes presentar tu código QR personal que
está adjunto en este correo. El equipo de registro escaneará tu código
en la entrada.

También puedes acceder a tu código QR en cualquier momento ingresando
al sitio web: meetingup.cl

Ahora puedes acceder a tu perfil usando tus credenciales.

¡Nos vemos pronto!

%s
EcosistemaLA - Comunidad Emprendedora
meetingup.cl
`,
		user.FullName(), divider,
		meeting.Title,
		meeting.Date.Format("02/01/2006"),
		meeting.Date.Format("15:04"),
		meeting.Location,
		meeting.Description,
		link,
		divider, divider,
	)

	return s.send(user.Email, subject, body, qrPNG)
}

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

func (s *EmailService) send(to, subject, body string, qrPNG []byte) error {
	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if len(qrPNG) > 0 {
		params.Attachments = []resend.Attachment{{
			Filename: "codigo-qr.png",
			Content:  base64.StdEncoding.EncodeToString(qrPNG),
		}}
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		return err
	}
	s.logger.Info("confirmation email sent", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}
