package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/easygrow/plantcore/internal/config"
	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

type fakeStore struct {
	users   map[int64]*storage.User
	byName  map[string]*storage.User
	devices map[int64][]*storage.Device
	nextID  int64

	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]*storage.User),
		byName:  make(map[string]*storage.User),
		devices: make(map[int64][]*storage.Device),
		nextID:  1,
	}
}

func (f *fakeStore) CreateUser(_ context.Context, fullName string, phone *string, email, username, passwordHash string) (*storage.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byName[username]; exists {
		return nil, types.Conflict("username already exists")
	}
	user := &storage.User{
		ID:           f.nextID,
		FullName:     fullName,
		Phone:        phone,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		RegisteredAt: time.Now(),
	}
	f.nextID++
	f.users[user.ID] = user
	f.byName[username] = user
	return user, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*storage.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return nil, types.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, userID int64) (*storage.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, types.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeStore) ListUsers(_ context.Context, skip, limit int) ([]*storage.User, error) {
	users := make([]*storage.User, 0)
	for _, user := range f.users {
		users = append(users, user)
	}
	if skip >= len(users) {
		return []*storage.User{}, nil
	}
	end := skip + limit
	if end > len(users) {
		end = len(users)
	}
	return users[skip:end], nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeStore) ListDevicesByUser(_ context.Context, userID int64) ([]*storage.Device, error) {
	devices := f.devices[userID]
	if devices == nil {
		devices = []*storage.Device{}
	}
	return devices, nil
}

type fakeMailer struct {
	sent    []string
	sendErr error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestService(store *fakeStore, mailer *fakeMailer) *Service {
	cfg := config.AuthConfig{AccessTokenTTL: time.Hour}
	return NewService(store, cfg, mailer, zap.NewNop())
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)

	result, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if result.User.Username != "maria" {
		t.Errorf("Expected username maria, got %s", result.User.Username)
	}
	if !result.EmailSent {
		t.Error("Expected email to be reported as sent")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "maria@example.com" {
		t.Errorf("Expected one mail to maria@example.com, got %v", mailer.sent)
	}
	if result.User.PasswordHash == "supersecret" {
		t.Error("Password must never be stored in plain text")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	req := RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("First register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if types.KindOf(err) != types.KindConflict {
		t.Errorf("Expected Conflict for duplicate username, got %v", err)
	}
}

func TestRegisterMailFailureDoesNotRollBack(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{sendErr: errors.New("smtp unreachable")}
	svc := newTestService(store, mailer)

	result, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("Register should succeed despite mail failure: %v", err)
	}

	if result.EmailSent {
		t.Error("Expected EmailSent=false after mail failure")
	}
	if result.EmailWarning == "" {
		t.Error("Expected a warning about the undelivered email")
	}
	if _, err := store.GetUserByUsername(context.Background(), "maria"); err != nil {
		t.Error("Expected user to stay registered after mail failure")
	}
}

func TestRegisterBlankFields(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeMailer{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "   ",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	})
	if types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for blank full name, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "maria", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if result.AccessToken == "" {
		t.Error("Expected an access token")
	}
	if result.TokenType != "Bearer" {
		t.Errorf("Expected Bearer token type, got %s", result.TokenType)
	}
	if result.Profile.Username != "maria" {
		t.Errorf("Expected profile for maria, got %s", result.Profile.Username)
	}

	claims, err := svc.JWTHandler().ValidateAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("Issued token failed validation: %v", err)
	}
	if claims.UserID != result.Profile.ID {
		t.Errorf("Token user id %d does not match profile id %d", claims.UserID, result.Profile.ID)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown user must be indistinguishable.
	_, wrongPass := svc.Login(context.Background(), "maria", "not-the-password")
	_, unknownUser := svc.Login(context.Background(), "nobody", "supersecret")

	if types.KindOf(wrongPass) != types.KindUnauthorized {
		t.Errorf("Expected Unauthorized for wrong password, got %v", wrongPass)
	}
	if types.KindOf(unknownUser) != types.KindUnauthorized {
		t.Errorf("Expected Unauthorized for unknown user, got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Error("Expected identical error messages for wrong password and unknown user")
	}
}

func TestGetUserByUsername(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), RegisterRequest{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
		Username: "maria",
		Password: "supersecret",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	profile, err := svc.GetUserByUsername(context.Background(), "maria")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if profile.Username != "maria" {
		t.Errorf("Expected profile for maria, got %s", profile.Username)
	}
	if profile.Devices == nil {
		t.Error("Expected devices list on the profile, got nil")
	}

	// The password hash must not survive JSON encoding.
	data, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("Failed to marshal profile: %v", err)
	}
	if strings.Contains(string(data), profile.PasswordHash) && profile.PasswordHash != "" {
		t.Error("Expected password hash to be hidden from the wire shape")
	}

	if _, err := svc.GetUserByUsername(context.Background(), "nobody"); types.KindOf(err) != types.KindNotFound {
		t.Errorf("Expected NotFound for unknown username, got %v", err)
	}
	if _, err := svc.GetUserByUsername(context.Background(), "   "); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for blank username, got %v", err)
	}
}

func TestListUsersLimits(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeMailer{})

	if _, err := svc.ListUsers(context.Background(), -1, 10); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for negative skip, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), 0, 0); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for zero limit, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), 0, 101); types.KindOf(err) != types.KindInvalidInput {
		t.Errorf("Expected InvalidInput for limit above 100, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), 0, 100); err != nil {
		t.Errorf("Expected limit 100 to be accepted, got %v", err)
	}
}
