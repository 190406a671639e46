package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/email"
	"github.com/mdemena/lists-sharing-sub000/internal/metrics"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/validation"
)

// ShareRequest invites recipients to a list.
type ShareRequest struct {
	ListID          uuid.UUID `json:"listId"`
	ListName        string    `json:"listName"`
	RecipientEmails []string  `json:"recipientEmails"`
	SenderEmail     string    `json:"senderEmail"`
	SenderName      string    `json:"senderName"`
}

// ShareResult reports what an invitation did.
type ShareResult struct {
	Recipients []string `json:"recipients"`
	Created    int      `json:"created"`
}

// VisitResult is what a user learns when opening a shared list.
type VisitResult struct {
	ListID       uuid.UUID `json:"list_id"`
	IsOwner      bool      `json:"is_owner"`
	SharedByName string    `json:"shared_by_name,omitempty"`
	BoundShares  int64     `json:"bound_shares"`
}

// ListFileAttachment is a base64-encoded file.
type ListFileAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ListFileRequest mails an exported list.
type ListFileRequest struct {
	RecipientEmail string             `json:"recipientEmail"`
	Subject        string             `json:"subject"`
	HTMLContent    string             `json:"htmlContent"`
	Attachment     ListFileAttachment `json:"attachment"`
}

// ShareService handles invitations and the binding of invitations to accounts.
type ShareService struct {
	store  store.Store
	mailer Mailer
	opts   Options
}

// ShareList records an invitation per recipient and sends one email to all
// of them. Rows already present are kept as they are. If the email fails the
// rows stay and ErrUpstream is returned.
func (s *ShareService) ShareList(ctx context.Context, actor *models.User, req ShareRequest) (*ShareResult, error) {
	recipients, bad := validation.NormalizeEmails(req.RecipientEmails)
	if len(bad) > 0 {
		return nil, invalid("invalid email address: " + strings.Join(bad, ", "))
	}
	if len(recipients) == 0 {
		return nil, invalid("at least one recipient is required")
	}
	if s.opts.MaxShareRecipients > 0 && len(recipients) > s.opts.MaxShareRecipients {
		return nil, invalid(fmt.Sprintf("at most %d recipients per invitation", s.opts.MaxShareRecipients))
	}

	list, role, err := access(ctx, s.store, req.ListID, actor)
	if err != nil {
		return nil, err
	}

	var sharedBy *uuid.UUID
	senderName := strings.TrimSpace(req.SenderName)
	senderEmail := validation.NormalizeEmail(req.SenderEmail)

	if actor == nil {
		if !s.opts.AllowAnonymousShares {
			return nil, newError(ErrUnauthorized, authz.ErrAnonymousShare.Error(), authz.ErrAnonymousShare)
		}
	} else {
		if err := authz.CanShare(role); err != nil {
			return nil, forbidden(err)
		}
		id := actor.ID
		sharedBy = &id
		senderEmail = actor.Email
		if profile, err := s.store.GetProfile(ctx, actor.ID); err == nil {
			senderName = profile.Name()
		}
	}
	if senderName == "" {
		senderName = senderEmail
	}
	if senderName == "" {
		senderName = "Someone"
	}
	if !validation.ValidateEmail(senderEmail) {
		senderEmail = ""
	}

	created, err := s.store.InsertShares(ctx, list.ID, recipients, sharedBy)
	if err != nil {
		return nil, fromStore(err)
	}

	result := &ShareResult{Recipients: recipients, Created: len(created)}

	if err := s.mailer.SendShareInvitation(ctx, recipients, senderName, senderEmail, list.Name, list.ID.String()); err != nil {
		metrics.RecordInvitation("failed", len(created))
		return result, upstream("the list was shared but the invitation email could not be sent", err)
	}

	metrics.RecordInvitation("sent", len(created))
	slog.Info("list shared", "list_id", list.ID, "recipients", len(recipients), "created", len(created), "anonymous", actor == nil)
	return result, nil
}

// RegisterVisit runs when a signed-in user opens a shared list. It binds
// every pending invitation for the user's email, registers the user on this
// list if they hold no share yet, and returns who shared it.
// Repeated visits change nothing.
func (s *ShareService) RegisterVisit(ctx context.Context, actor *models.User, listID uuid.UUID) (*VisitResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fromStore(err)
	}

	bound, err := s.store.ClaimPendingShares(ctx, actor.Email, actor.ID)
	if err != nil {
		return nil, err
	}

	result := &VisitResult{ListID: list.ID, BoundShares: bound}
	if list.IsOwner(actor.ID) {
		result.IsOwner = true
		return result, nil
	}

	share, err := s.store.GetShareForUser(ctx, list.ID, actor.ID, actor.Email)
	if errors.Is(err, store.ErrShareNotFound) {
		if err := s.store.EnsureBoundShare(ctx, list.ID, actor.Email, actor.ID); err != nil {
			return nil, fromStore(err)
		}
		share, err = s.store.GetShareForUser(ctx, list.ID, actor.ID, actor.Email)
		if errors.Is(err, store.ErrShareNotFound) {
			// The invitation for this email is already bound to another account.
			return nil, forbidden(authz.ErrNoAccess)
		}
	}
	if err != nil {
		return nil, fromStore(err)
	}
	if share.SharedBy != nil {
		profile, err := s.store.GetProfile(ctx, *share.SharedBy)
		switch {
		case err == nil:
			result.SharedByName = profile.Name()
		case !errors.Is(err, store.ErrProfileNotFound):
			return nil, err
		}
	}

	return result, nil
}

// SendListFile emails an exported list with its attachment.
func (s *ShareService) SendListFile(ctx context.Context, actor *models.User, req ListFileRequest) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	recipient := validation.NormalizeEmail(req.RecipientEmail)
	if !validation.ValidateEmail(recipient) {
		return invalid("a valid recipient email is required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return invalid("subject is required")
	}
	name := filepath.Base(strings.TrimSpace(req.Attachment.Name))
	if name == "" || name == "." || name == "/" {
		return invalid("attachment name is required")
	}

	content, err := base64.StdEncoding.DecodeString(req.Attachment.Content)
	if err != nil {
		return invalid("attachment content must be base64")
	}
	if len(content) == 0 {
		return invalid("attachment is empty")
	}

	attachment := email.Attachment{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Content:     content,
	}
	if err := s.mailer.SendListFile(ctx, recipient, req.Subject, req.HTMLContent, attachment); err != nil {
		return upstream("the email could not be sent", err)
	}
	return nil
}
