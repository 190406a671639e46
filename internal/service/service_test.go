package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/email"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/objectstore"
	"github.com/mdemena/lists-sharing-sub000/internal/store/memstore"
)

type sentInvitation struct {
	Recipients []string
	SenderName string
	ListName   string
	ListID     string
}

type fakeMailer struct {
	mu          sync.Mutex
	invitations []sentInvitation
	files       []email.Attachment
	err         error
}

func (m *fakeMailer) SendShareInvitation(ctx context.Context, recipients []string, senderName, senderEmail, listName, listID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitations = append(m.invitations, sentInvitation{recipients, senderName, listName, listID})
	return m.err
}

func (m *fakeMailer) SendListFile(ctx context.Context, recipient, subject, htmlContent string, attachment email.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, attachment)
	return m.err
}

type fixture struct {
	store   *memstore.Store
	mailer  *fakeMailer
	objects *objectstore.Store
	svc     *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	mailer := &fakeMailer{}
	objects, err := objectstore.New(t.TempDir(), "http://localhost:3000/uploads")
	require.NoError(t, err)
	svc := New(Deps{
		Store:    st,
		Tokens:   auth.NewTokenManager("test-secret", time.Hour),
		Denylist: auth.NewMemoryDenylist(),
		Mailer:   mailer,
		Objects:  objects,
	}, Options{
		AllowAnonymousShares: true,
		MaxShareRecipients:   10,
		MaxUploadBytes:       1 << 20,
		AllowedImageTypes:    []string{"image/png", "image/jpeg"},
	})
	return &fixture{store: st, mailer: mailer, objects: objects, svc: svc}
}

func (f *fixture) signUp(t *testing.T, email, name string) *models.User {
	t.Helper()
	sess, err := f.svc.Auth.SignUp(context.Background(), SignUpInput{Email: email, Password: "password123", DisplayName: name})
	require.NoError(t, err)
	return sess.User
}

func (f *fixture) newList(t *testing.T, owner *models.User, name string) *models.List {
	t.Helper()
	list, err := f.svc.Lists.CreateList(context.Background(), owner, ListInput{Name: &name})
	require.NoError(t, err)
	return list
}

func (f *fixture) newItem(t *testing.T, owner *models.User, listID uuid.UUID, name string) *models.ListItem {
	t.Helper()
	item, err := f.svc.Items.CreateItem(context.Background(), owner, listID, ItemInput{Name: &name})
	require.NoError(t, err)
	return item
}

// share invites email to list as owner and binds it by visiting.
func (f *fixture) share(t *testing.T, owner *models.User, listID uuid.UUID, guest *models.User) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Shares.ShareList(ctx, owner, ShareRequest{ListID: listID, RecipientEmails: []string{guest.Email}})
	require.NoError(t, err)
	_, err = f.svc.Shares.RegisterVisit(ctx, guest, listID)
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

func TestErrorKinds(t *testing.T) {
	err := notAllowed("item already claimed")
	assert.True(t, errors.Is(err, ErrNotAllowed))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "item already claimed", Message(err))

	wrapped := upstream("email failed", errors.New("smtp down"))
	assert.True(t, errors.Is(wrapped, ErrUpstream))
	assert.Equal(t, "email failed: smtp down", Message(wrapped))
	assert.Equal(t, "email failed", Message(upstream("email failed", nil)))
	assert.Contains(t, wrapped.Error(), "smtp down")

	assert.Equal(t, "internal server error", Message(errors.New("boom")))
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "/", true},
		{"/share/abc", "/share/abc", true},
		{"//evil.com", "", false},
		{"https://evil.com", "", false},
		{`/\evil.com`, "", false},
	}
	for _, tt := range tests {
		got, err := safeRedirect(tt.in)
		if tt.ok {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, ErrValidation, tt.in)
		}
	}
}

// createUserWithoutClaim stores an account without binding pending shares.
func (f *fixture) createUserWithoutClaim(t *testing.T, email, name string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Email: email, Provider: models.ProviderPassword}
	require.NoError(t, f.store.CreateUser(ctx, user))
	require.NoError(t, f.store.CreateProfile(ctx, &models.Profile{ID: user.ID, Email: email, DisplayName: name}))
	return user
}
