package client_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/config"
	"github.com/mdemena/lists-sharing-sub000/internal/email"
	"github.com/mdemena/lists-sharing-sub000/internal/objectstore"
	"github.com/mdemena/lists-sharing-sub000/internal/server"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
	"github.com/mdemena/lists-sharing-sub000/internal/store/memstore"
	"github.com/mdemena/lists-sharing-sub000/pkg/client"
)

type nopMailer struct{}

func (nopMailer) SendShareInvitation(ctx context.Context, recipients []string, senderName, senderEmail, listName, listID string) error {
	return nil
}

func (nopMailer) SendListFile(ctx context.Context, recipient, subject, htmlContent string, attachment email.Attachment) error {
	return nil
}

// startServer runs the API on a random local port and returns its base URL.
func startServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + ln.Addr().String()

	cfg := &config.Config{
		ClientURL:          "http://client.test",
		StorageDir:         t.TempDir(),
		MaxUploadBytes:     1 << 20,
		MaxShareRecipients: 10,
	}
	objects, err := objectstore.New(cfg.StorageDir, baseURL+"/uploads")
	require.NoError(t, err)

	st := memstore.New()
	svc := service.New(service.Deps{
		Store:    st,
		Tokens:   auth.NewTokenManager("e2e-secret", time.Hour),
		Denylist: auth.NewMemoryDenylist(),
		Mailer:   nopMailer{},
		Objects:  objects,
	}, service.Options{
		AllowAnonymousShares: true,
		MaxShareRecipients:   cfg.MaxShareRecipients,
		MaxUploadBytes:       cfg.MaxUploadBytes,
		AllowedImageTypes:    []string{"image/png"},
	})

	srv := server.New(cfg, nil)
	srv.RegisterRoutes(server.Deps{Services: svc, Health: st})

	go func() {
		_ = srv.App.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return baseURL
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }

func TestClientEndToEnd(t *testing.T) {
	baseURL := startServer(t)
	ctx := context.Background()

	owner := client.New(baseURL)
	guest := client.New(baseURL)
	other := client.New(baseURL)

	_, err := owner.SignUp(ctx, "ana@example.com", "password123", "Ana")
	require.NoError(t, err)

	list, err := owner.CreateList(ctx, client.ListInput{Name: ptr("Birthday"), Description: ptr("Things I'd like")})
	require.NoError(t, err)

	up, err := owner.UploadImage(ctx, "book.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Contains(t, up.URL, up.Path)

	item, err := owner.CreateItem(ctx, list.ID, client.ItemInput{
		Name:       ptr("Book"),
		Importance: ptr(5),
		ImageURLs:  []string{up.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Importance)

	res, err := owner.ShareList(ctx, client.ShareRequest{
		ListID:          list.ID,
		ListName:        list.Name,
		RecipientEmails: []string{"bob@example.com", "cy@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	shares, err := owner.ListShares(ctx, list.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	_, err = guest.SignUp(ctx, "bob@example.com", "password123", "Bob")
	require.NoError(t, err)
	_, err = other.SignUp(ctx, "cy@example.com", "password123", "Cy")
	require.NoError(t, err)

	visit, err := guest.RegisterVisit(ctx, list.ID)
	require.NoError(t, err)
	assert.False(t, visit.IsOwner)

	shared, err := guest.SharedWithMe(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "Birthday", shared[0].Name)

	claimed, err := guest.Claim(ctx, list.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, claimed.IsAdjudicated)

	_, err = other.Claim(ctx, list.ID, item.ID)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))

	_, err = other.Release(ctx, list.ID, item.ID)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	seen, err := other.GetItem(ctx, list.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, seen.IsAdjudicated)

	ownerItems, err := owner.Items(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, ownerItems, 1)
	assert.True(t, ownerItems[0].IsAdjudicated)
	assert.Nil(t, ownerItems[0].AdjudicatedBy)

	err = owner.DeleteList(ctx, list.ID)
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))

	_, err = guest.Release(ctx, list.ID, item.ID)
	require.NoError(t, err)
	require.NoError(t, owner.DeleteList(ctx, list.ID))

	_, err = owner.GetList(ctx, list.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	n, err := owner.DeleteImages(ctx, up.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClientProfileAndSession(t *testing.T) {
	baseURL := startServer(t)
	ctx := context.Background()

	c := client.New(baseURL)
	_, err := c.CurrentUser(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.ErrorIs(t, c.SignOut(ctx), client.ErrNoToken)

	sess, err := c.SignUp(ctx, "ana@example.com", "password123", "Ana")
	require.NoError(t, err)
	assert.Equal(t, sess.AccessToken, c.Token())

	p, err := c.UpdateProfile(ctx, client.ProfileInput{DisplayName: ptr("Ana B")})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", p.DisplayName)

	p, err = c.Profile(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", p.DisplayName)

	token := c.Token()
	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.Token())

	stale := client.New(baseURL, client.WithToken(token))
	_, err = stale.Lists(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	_, err = c.SignIn(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
	lists, err := c.Lists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
}
