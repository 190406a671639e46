package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// SignUp creates a password account and keeps its token.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "password": password, "displayName": displayName}
	if err := c.do(ctx, http.MethodPost, "/auth", action("signup"), body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.AccessToken)
	return &sess, nil
}

// SignIn authenticates with a password and keeps the token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth", action("signin"), body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.AccessToken)
	return &sess, nil
}

// SignOut revokes the current token and forgets it.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Token() == "" {
		return ErrNoToken
	}
	if err := c.do(ctx, http.MethodPost, "/auth", action("signout"), nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// CurrentUser returns the signed-in account and profile.
func (c *Client) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	var cu CurrentUser
	if err := c.do(ctx, http.MethodGet, "/auth", action("user"), nil, &cu); err != nil {
		return nil, err
	}
	return &cu, nil
}

// OAuthURL returns the identity provider URL that starts an OIDC login.
func (c *Client) OAuthURL(ctx context.Context, redirectTo string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	body := map[string]string{"redirectTo": redirectTo}
	if err := c.do(ctx, http.MethodPost, "/auth", action("oauth"), body, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Lists returns the caller's own lists.
func (c *Client) Lists(ctx context.Context) ([]List, error) {
	var lists []List
	if err := c.do(ctx, http.MethodGet, "/lists", nil, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// SharedWithMe returns the lists other users shared with the caller.
func (c *Client) SharedWithMe(ctx context.Context) ([]SharedList, error) {
	var lists []SharedList
	if err := c.do(ctx, http.MethodGet, "/lists", action("my-shared-lists"), nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetList returns one list the caller can view.
func (c *Client) GetList(ctx context.Context, id uuid.UUID) (*List, error) {
	var list List
	if err := c.do(ctx, http.MethodGet, "/lists", url.Values{"id": {id.String()}}, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateList creates a list owned by the caller.
func (c *Client) CreateList(ctx context.Context, in ListInput) (*List, error) {
	var list List
	if err := c.do(ctx, http.MethodPost, "/lists", nil, in, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateList changes a list's name or description.
func (c *Client) UpdateList(ctx context.Context, id uuid.UUID, in ListInput) (*List, error) {
	var list List
	if err := c.do(ctx, http.MethodPut, "/lists", url.Values{"id": {id.String()}}, in, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteList deletes a list. It fails while any item is claimed.
func (c *Client) DeleteList(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/lists", url.Values{"id": {id.String()}}, nil, nil)
}

// ListShares returns the invitations of a list the caller owns.
func (c *Client) ListShares(ctx context.Context, listID uuid.UUID) ([]ListShare, error) {
	q := action("shares")
	q.Set("listId", listID.String())
	var shares []ListShare
	if err := c.do(ctx, http.MethodGet, "/lists", q, nil, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// RevokeShare removes an invitation from a list the caller owns.
func (c *Client) RevokeShare(ctx context.Context, listID uuid.UUID, email string) error {
	q := action("shares")
	q.Set("listId", listID.String())
	q.Set("email", email)
	return c.do(ctx, http.MethodDelete, "/lists", q, nil, nil)
}

// RegisterVisit binds the caller to a shared list on first visit.
func (c *Client) RegisterVisit(ctx context.Context, listID uuid.UUID) (*VisitResult, error) {
	q := action("register-user")
	q.Set("listId", listID.String())
	var res VisitResult
	if err := c.do(ctx, http.MethodGet, "/lists", q, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func itemQuery(listID, itemID uuid.UUID) url.Values {
	q := url.Values{"listId": {listID.String()}}
	if itemID != uuid.Nil {
		q.Set("itemId", itemID.String())
	}
	return q
}

// Items returns every item of a list.
func (c *Client) Items(ctx context.Context, listID uuid.UUID) ([]ListItem, error) {
	var items []ListItem
	if err := c.do(ctx, http.MethodGet, "/items", itemQuery(listID, uuid.Nil), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns one item.
func (c *Client) GetItem(ctx context.Context, listID, itemID uuid.UUID) (*ListItem, error) {
	var item ListItem
	if err := c.do(ctx, http.MethodGet, "/items", itemQuery(listID, itemID), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem adds an item to a list the caller owns.
func (c *Client) CreateItem(ctx context.Context, listID uuid.UUID, in ItemInput) (*ListItem, error) {
	var item ListItem
	if err := c.do(ctx, http.MethodPost, "/items", itemQuery(listID, uuid.Nil), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem changes an item's metadata.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID uuid.UUID, in ItemInput) (*ListItem, error) {
	var item ListItem
	if err := c.do(ctx, http.MethodPut, "/items", itemQuery(listID, itemID), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Claim marks an item as taken by the caller.
func (c *Client) Claim(ctx context.Context, listID, itemID uuid.UUID) (*ListItem, error) {
	return c.setAdjudicated(ctx, listID, itemID, true)
}

// Release gives back an item the caller claimed.
func (c *Client) Release(ctx context.Context, listID, itemID uuid.UUID) (*ListItem, error) {
	return c.setAdjudicated(ctx, listID, itemID, false)
}

func (c *Client) setAdjudicated(ctx context.Context, listID, itemID uuid.UUID, v bool) (*ListItem, error) {
	var item ListItem
	body := map[string]bool{"is_adjudicated": v}
	if err := c.do(ctx, http.MethodPut, "/items", itemQuery(listID, itemID), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an unclaimed item.
func (c *Client) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/items", itemQuery(listID, itemID), nil, nil)
}

// Profile returns a profile; uuid.Nil means the caller's own.
func (c *Client) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var q url.Values
	if id != uuid.Nil {
		q = url.Values{"id": {id.String()}}
	}
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/profiles", q, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPut, "/profiles", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ShareList invites recipients by email. Works anonymously when the server
// allows it.
func (c *Client) ShareList(ctx context.Context, req ShareRequest) (*ShareResult, error) {
	var res ShareResult
	if err := c.do(ctx, http.MethodPost, "/share-list", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SendListFile emails an exported list with an attachment.
func (c *Client) SendListFile(ctx context.Context, req ListFileRequest) error {
	return c.do(ctx, http.MethodPost, "/send-list-file", nil, req, nil)
}

// UploadImage stores an image and returns its path and public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*Upload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/storage", action("upload")), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var up Upload
	if err := c.send(req, &up); err != nil {
		return nil, err
	}
	return &up, nil
}

// DeleteImages removes uploaded images the caller owns and returns how many
// were deleted.
func (c *Client) DeleteImages(ctx context.Context, paths ...string) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	body := map[string][]string{"paths": paths}
	if err := c.do(ctx, http.MethodPost, "/storage", action("delete-multiple"), body, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
