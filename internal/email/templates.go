package email

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/config"
)

//go:embed templates
var templateFS embed.FS

const layout = "layouts/main"

// Invitation describes a list share for the invitation email.
type Invitation struct {
	SenderName string
	ListName   string
	ShareURL   string
}

// Templates renders email bodies from the embedded HTML templates.
type Templates struct {
	cfg    *config.Config
	engine *html.Engine
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &Templates{cfg: cfg, engine: engine}, nil
}

func (t *Templates) render(name string, data map[string]any) (string, error) {
	data["SiteTitle"] = t.cfg.SiteTitle
	data["ClientURL"] = t.cfg.ClientURL

	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name, data, layout); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ShareInvitation generates the email sent to the recipients of a shared list.
func (t *Templates) ShareInvitation(inv Invitation) (subject, htmlBody, textBody string, err error) {
	subject = fmt.Sprintf(t.cfg.InviteSubject, inv.SenderName, inv.ListName)

	htmlBody, err = t.render("share_invitation", map[string]any{
		"Title":      subject,
		"SenderName": inv.SenderName,
		"ListName":   inv.ListName,
		"ShareURL":   inv.ShareURL,
	})
	if err != nil {
		return "", "", "", err
	}

	textBody = fmt.Sprintf(`Hi!

%s has shared the list "%s" with you.

Open it here: %s

The owner will never know who picked what.

--
%s
%s`,
		inv.SenderName,
		inv.ListName,
		inv.ShareURL,
		t.cfg.SiteTitle,
		t.cfg.ClientURL,
	)

	return subject, htmlBody, textBody, nil
}
