package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ecosistemala/meetingup-backend/internal/models"
	"github.com/ecosistemala/meetingup-backend/internal/repository"
	"github.com/ecosistemala/meetingup-backend/pkg/rut"
)

func TestCreateRejectsInvalidRut(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	_, err := svc.Create(models.RegisterUserRequest{
		Name:     "Ana",
		Surname:  "Rojas",
		Email:    "ana@example.com",
		Rut:      "12345678-9",
		Password: "secret123",
	})
	if !errors.Is(err, rut.ErrAgainst) {
		t.Fatalf("create error = %v, want checksum failure", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("users created = %d, want 0", count)
	}
}

func TestCreateNormalizesRutAndStoresCredential(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStorage()
	svc := NewUserService(repository.NewUserRepository(db), fakeQR{}, store, zap.NewNop())

	user, err := svc.Create(models.RegisterUserRequest{
		Name:     "Ana",
		Surname:  "Rojas",
		Email:    "ana@example.com",
		Rut:      "12.345.678-5",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Rut != "12345678-5" {
		t.Fatalf("stored rut = %q, want 12345678-5", user.Rut)
	}
	if _, ok := store.objects["qr/user-1.png"]; !ok {
		t.Fatal("QR credential was not uploaded")
	}
	if user.QRCodeURL == "" {
		t.Fatal("QR credential URL was not recorded")
	}
}

func TestDeleteSelfIsRefused(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	admin := createUser(t, db, &models.User{
		FirstName: "Admin", LastName: "Uno",
		Email: "admin@example.com", Rut: "11111111-1", IsAdmin: true,
	})

	if _, err := svc.Delete(admin.ID, admin.ID); !errors.Is(err, ErrSelfDelete) {
		t.Fatalf("self delete error = %v, want ErrSelfDelete", err)
	}
}

func TestHideProfileIsOneWay(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	user := createUser(t, db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "11111111-1", PublicProfile: true,
	})

	hidden, err := svc.HideProfile(user.ID)
	if err != nil {
		t.Fatalf("hide profile: %v", err)
	}
	if hidden.PublicProfile {
		t.Fatal("profile still public after hide")
	}

	// Hiding again stays hidden; there is no unhide path here.
	hidden, err = svc.HideProfile(user.ID)
	if err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if hidden.PublicProfile {
		t.Fatal("profile turned public on repeat hide")
	}
}

func TestExportZeroUsersStillValidWorkbook(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	buf, filename, err := svc.ExportFiltered("nadie", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename == "" {
		t.Fatal("empty export filename")
	}

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("exported file is not a valid workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("Lista de Usuarios")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header row only", len(rows))
	}
	if rows[0][0] != "Nombre" || rows[0][3] != "RUT" {
		t.Fatalf("header row = %v", rows[0])
	}
}

func TestHelperEditCannotChangeRoles(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)

	user := createUser(t, db, &models.User{
		FirstName: "Ana", LastName: "Rojas",
		Email: "ana@example.com", Rut: "11111111-1",
	})

	makeAdmin := true
	newName := "Anita"
	updated, err := svc.Update(false, user.ID, models.UpdateUserRequest{
		Name:    &newName,
		IsAdmin: &makeAdmin,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Anita" {
		t.Fatalf("name = %q, want Anita", updated.FirstName)
	}
	if updated.IsAdmin {
		t.Fatal("helper edit escalated the role flag")
	}

	updated, err = svc.Update(true, user.ID, models.UpdateUserRequest{IsAdmin: &makeAdmin})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if !updated.IsAdmin {
		t.Fatal("admin edit did not apply the role flag")
	}
}
