package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "ana@example.com"}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := testUser()

	token, issued, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %v, want %v", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Errorf("token id = %q, want %q", claims.ID, issued.ID)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Generate(testUser())
	if err != nil {
		t.Fatal(err)
	}

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Generate(testUser())
	if err != nil {
		t.Fatal(err)
	}

	state, err := m.GenerateState("/lists")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		mgr   *TokenManager
		token string
		want  error
	}{
		{"empty", m, "", ErrMissingToken},
		{"garbage", m, "not-a-jwt", ErrInvalidToken},
		{"wrong secret", NewTokenManager("other", time.Hour), token, ErrInvalidToken},
		{"expired", m, oldToken, ErrInvalidToken},
		{"state used as access token", m, state, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.Validate(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenManager_State(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	state, err := m.GenerateState("/share/123")
	if err != nil {
		t.Fatal(err)
	}
	redirect, err := m.ValidateState(state)
	if err != nil {
		t.Fatalf("ValidateState() error = %v", err)
	}
	if redirect != "/share/123" {
		t.Errorf("redirect = %q, want %q", redirect, "/share/123")
	}

	access, _, _ := m.Generate(testUser())
	if _, err := m.ValidateState(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateState(access token) error = %v, want ErrInvalidToken", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword(valid) error = %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword(wrong) error = %v", err)
	}
	if err := CheckPassword("", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword(no hash) error = %v", err)
	}
}

type mapKV struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func (m *mapKV) Get(key string) ([]byte, error) { return m.data[key], nil }

func (m *mapKV) Set(key string, val []byte, exp time.Duration) error {
	m.data[key] = val
	m.ttl[key] = exp
	return nil
}

func TestStorageDenylist(t *testing.T) {
	kv := &mapKV{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
	d := NewStorageDenylist(kv)
	ctx := context.Background()

	if err := d.Revoke(ctx, "abc", time.Now().Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if ttl := kv.ttl["revoked:abc"]; ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within one minute", ttl)
	}

	revoked, _ := d.IsRevoked(ctx, "abc")
	if !revoked {
		t.Error("IsRevoked(abc) = false, want true")
	}
	revoked, _ = d.IsRevoked(ctx, "other")
	if revoked {
		t.Error("IsRevoked(other) = true, want false")
	}

	if err := d.Revoke(ctx, "past", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.data["revoked:past"]; ok {
		t.Error("expired token should not be stored")
	}
}

func TestMemoryDenylist(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()
	now := time.Now()
	d.now = func() time.Time { return now }

	_ = d.Revoke(ctx, "a", now.Add(time.Minute))
	if revoked, _ := d.IsRevoked(ctx, "a"); !revoked {
		t.Error("IsRevoked(a) = false, want true")
	}

	now = now.Add(2 * time.Minute)
	if revoked, _ := d.IsRevoked(ctx, "a"); revoked {
		t.Error("IsRevoked(a) after expiry = true, want false")
	}

	_ = d.Revoke(ctx, "b", now.Add(time.Minute))
	if _, ok := d.revoked["a"]; ok {
		t.Error("expired entry was not pruned")
	}
}
