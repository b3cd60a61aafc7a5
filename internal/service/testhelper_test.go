package service

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Meeting{},
		&models.Survey{},
		&models.SurveyResponse{},
		&models.SupportTicket{},
		&models.TicketReply{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, user *models.User) *models.User {
	t.Helper()
	if user.Password == "" {
		user.Password = "hashed"
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createMeeting(t *testing.T, db *gorm.DB, meeting *models.Meeting) *models.Meeting {
	t.Helper()
	if err := db.Create(meeting).Error; err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return meeting
}

// fakeQR satisfies CredentialGenerator without rendering anything.
type fakeQR struct{}

func (fakeQR) CredentialContent(userID uint) string { return fmt.Sprintf("test://u/%d", userID) }
func (fakeQR) GenerateCredential(userID uint, size int) ([]byte, error) {
	return []byte("png"), nil
}

// fakeStorage satisfies storage.ObjectStorage in memory.
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(key string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Delete(key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PublicURL(key string) string { return "test://storage/" + key }

// fakeMailer records sends and signals each one on a channel so tests can
// wait for the fire-and-forget dispatch.
type fakeMailer struct {
	sent chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (m *fakeMailer) SendMeetingConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error {
	m.sent <- "confirmation:" + user.Email
	return nil
}

func (m *fakeMailer) SendWelcomeConfirmation(user *models.User, meeting *models.Meeting, link string, qrPNG []byte) error {
	m.sent <- "welcome:" + user.Email
	return nil
}

func (m *fakeMailer) waitForSend(t *testing.T) string {
	t.Helper()
	select {
	case kind := <-m.sent:
		return kind
	case <-time.After(2 * time.Second):
		t.Fatal("expected a confirmation email to be dispatched")
		return ""
	}
}

func (m *fakeMailer) assertNoSend(t *testing.T) {
	t.Helper()
	select {
	case kind := <-m.sent:
		t.Fatalf("unexpected email dispatched: %s", kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), fakeQR{}, newFakeStorage(), zap.NewNop())
}

func countInterested(t *testing.T, db *gorm.DB, meetingID, userID uint) int64 {
	t.Helper()
	var count int64
	err := db.Table("meeting_interested").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count interested: %v", err)
	}
	return count
}

func countAttendees(t *testing.T, db *gorm.DB, meetingID, userID uint) int64 {
	t.Helper()
	var count int64
	err := db.Table("meeting_attendees").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count attendees: %v", err)
	}
	return count
}
