package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

const (
	testSecret = "test-secret-at-least-32-chars-long-for-security"
	testIssuer = "planning-test"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	t.Parallel()

	roles := []domain.UserRole{domain.UserRoleMember, domain.UserRoleResponsable, domain.UserRoleAdmin}
	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			t.Parallel()

			manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)
			userID := uuid.New()

			token, err := manager.GenerateAccessToken(userID, role)
			if err != nil {
				t.Fatalf("GenerateAccessToken: %v", err)
			}

			id, err := manager.ValidateAccessToken(token)
			if err != nil {
				t.Fatalf("ValidateAccessToken: %v", err)
			}
			if id.UserID != userID {
				t.Errorf("user id = %s, want %s", id.UserID, userID)
			}
			if id.Role != role {
				t.Errorf("role = %q, want %q", id.Role, role)
			}
		})
	}
}

func TestJWTManager_ValidateAccessToken_Expired(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager(testSecret, testIssuer, -time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), domain.UserRoleMember)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = manager.ValidateAccessToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("err = %v, want jwt.ErrTokenExpired in chain", err)
	}
}

func TestJWTManager_ValidateAccessToken_Rejects(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager(testSecret, testIssuer, 15*time.Minute)

	otherSecret := NewJWTManager("different-secret-32-chars-long-for-security!!", testIssuer, 15*time.Minute)
	forged, err := otherSecret.GenerateAccessToken(uuid.New(), domain.UserRoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	otherIssuer := NewJWTManager(testSecret, "someone-else", 15*time.Minute)
	foreign, err := otherIssuer.GenerateAccessToken(uuid.New(), domain.UserRoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	badRole, err := manager.GenerateAccessToken(uuid.New(), domain.UserRole("SUPERUSER"))
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(domain.UserRoleAdmin),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{"empty", "", "empty"},
		{"malformed", "not.a.jwt", ""},
		{"missing signature", "header.payload", ""},
		{"wrong secret", forged, ""},
		{"wrong issuer", foreign, ""},
		{"unknown role", badRole, "unknown role"},
		{"alg none", none, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := manager.ValidateAccessToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
			if tt.wantSub != "" && !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestJWTManager_AccessTTL(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager(testSecret, testIssuer, 42*time.Minute)
	if got := manager.AccessTTL(); got != 42*time.Minute {
		t.Errorf("AccessTTL() = %v, want 42m", got)
	}
}
