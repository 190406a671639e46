package email

import (
	"context"
	"log/slog"

	"github.com/mdemena/lists-sharing-sub000/internal/config"
)

// Notifier composes and sends the application's emails.
type Notifier struct {
	sender    Sender
	templates *Templates
	cfg       *config.Config
}

// NewNotifier creates a notifier that delivers through sender.
func NewNotifier(cfg *config.Config, sender Sender) (*Notifier, error) {
	templates, err := NewTemplates(cfg)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		sender:    sender,
		templates: templates,
		cfg:       cfg,
	}, nil
}

// SendShareInvitation sends one email addressed to every recipient with the
// deep link to the list.
func (n *Notifier) SendShareInvitation(ctx context.Context, recipients []string, senderName, senderEmail, listName, listID string) error {
	subject, htmlBody, textBody, err := n.templates.ShareInvitation(Invitation{
		SenderName: senderName,
		ListName:   listName,
		ShareURL:   n.cfg.ShareURL(listID),
	})
	if err != nil {
		return err
	}

	err = n.sender.Send(ctx, &Message{
		To:      recipients,
		ReplyTo: senderEmail,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		slog.Error("failed to send share invitation", "list_id", listID, "recipients", len(recipients), "error", err)
		return err
	}

	slog.Info("share invitation sent", "list_id", listID, "recipients", len(recipients))
	return nil
}

// SendListFile sends caller-provided HTML with one attachment.
func (n *Notifier) SendListFile(ctx context.Context, recipient, subject, htmlContent string, attachment Attachment) error {
	err := n.sender.Send(ctx, &Message{
		To:          []string{recipient},
		Subject:     subject,
		HTML:        htmlContent,
		Attachments: []Attachment{attachment},
	})
	if err != nil {
		slog.Error("failed to send list file", "attachment", attachment.Name, "error", err)
		return err
	}

	slog.Info("list file sent", "attachment", attachment.Name, "bytes", len(attachment.Content))
	return nil
}
