package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradedeskhq/tradedesk-backend/pkg/auth"
	"github.com/tradedeskhq/tradedesk-backend/pkg/auth/session"
	"github.com/tradedeskhq/tradedesk-backend/pkg/config"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "tradedesk",
	ExpirationMinutes: 30,
}

// fakeSessions is an in-memory stand-in for the Redis session manager.
type fakeSessions struct {
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := uuid.NewString()
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := uuid.NewString()
	newToken := uuid.NewString()
	f.tokens[newAccessID] = newToken
	return newAccessID, newToken, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *fakeSessions) {
	t.Helper()
	sessions := newFakeSessions()
	svc, err := NewService(NewRepository(openTestDB(t)), sessions, testJWTConfig, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, sessions
}

func createManager(t *testing.T, svc Service, email, password string) *UserDTO {
	t.Helper()
	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Admin",
		Email:    email,
		Role:     "manager",
		Password: password,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &created.User
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	result, err := svc.Login(ctx, "Admin@TradeDesk.pk", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if result.User.LastLoginAt == nil {
		t.Fatal("last_login_at must be recorded")
	}

	claims, err := auth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("token user %s does not match %s", claims.UserID, result.User.ID)
	}
	if claims.Role.String() != "manager" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@tradedesk.pk", "nope"},
		{"unknown email", "ghost@tradedesk.pk", "s3cret-pass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.email, tc.password)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			// unknown email and wrong password are indistinguishable
			if typed.Message() != "invalid email or password" {
				t.Fatalf("unexpected message %q", typed.Message())
			}
		})
	}
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")
	target := createManager(t, svc, "rider@tradedesk.pk", "rider-pass")

	if _, err := svc.DeactivateUser(ctx, admin.ID, target.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Login(ctx, "rider@tradedesk.pk", "rider-pass"); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	login, err := svc.Login(ctx, "admin@tradedesk.pk", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("access token must rotate")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// the old pair is dead after rotation
	if _, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for replayed pair, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	login, err := svc.Login(ctx, "admin@tradedesk.pk", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := auth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.tokens[claims.ID]; ok {
		t.Fatal("session must be revoked")
	}
}

func TestCreateUserGeneratesTempPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Name:  "Rider One",
		Email: "rider@tradedesk.pk",
		Role:  "rider",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TempPassword == "" {
		t.Fatal("expected generated temporary password")
	}

	if _, err := svc.Login(ctx, "rider@tradedesk.pk", created.TempPassword); err != nil {
		t.Fatalf("login with temp password: %v", err)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "Clone",
		Email:    "ADMIN@tradedesk.pk",
		Role:     "manager",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:  "X",
		Email: "x@tradedesk.pk",
		Role:  "superadmin",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUserChangesRoleAndPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	target := createManager(t, svc, "rider@tradedesk.pk", "old-pass")

	role := "rider"
	password := "new-pass"
	updated, err := svc.UpdateUser(ctx, target.ID, UpdateUserInput{Role: &role, Password: &password})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != "rider" {
		t.Fatalf("unexpected role %q", updated.Role)
	}

	if _, err := svc.Login(ctx, "rider@tradedesk.pk", "old-pass"); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, err := svc.Login(ctx, "rider@tradedesk.pk", "new-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	account := createManager(t, svc, "admin@tradedesk.pk", "old-pass-123")

	// wrong current password is rejected
	if err := svc.ChangePassword(ctx, account.ID, "nope", "new-pass-123"); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// new password must differ
	if err := svc.ChangePassword(ctx, account.ID, "old-pass-123", "old-pass-123"); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := svc.ChangePassword(ctx, account.ID, "old-pass-123", "new-pass-123"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "admin@tradedesk.pk", "old-pass-123"); err == nil {
		t.Fatal("old password must stop working")
	}
	if _, err := svc.Login(ctx, "admin@tradedesk.pk", "new-pass-123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDeactivateUserGuards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := createManager(t, svc, "admin@tradedesk.pk", "s3cret-pass")

	// self-deactivation is blocked
	if _, err := svc.DeactivateUser(ctx, admin.ID, admin.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	target := createManager(t, svc, "rider@tradedesk.pk", "rider-pass")
	if _, err := svc.DeactivateUser(ctx, admin.ID, target.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	// already deactivated
	if _, err := svc.DeactivateUser(ctx, admin.ID, target.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListUsersPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		createManager(t, svc, fmt.Sprintf("user%d@tradedesk.pk", i), "pass")
	}

	page, err := svc.ListUsers(ctx, 3, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(page.Users))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	rest, err := svc.ListUsers(ctx, 3, page.NextCursor)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(rest.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(rest.Users))
	}
	if rest.NextCursor != "" {
		t.Fatalf("unexpected cursor %q", rest.NextCursor)
	}
}
