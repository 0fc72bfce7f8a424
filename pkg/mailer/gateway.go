package mailer

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
)

// Message is a template-driven email request.
type Message struct {
	To       string
	CC       string
	Subject  string
	Template string
	Data     map[string]any
}

// Gateway renders a template pair and hands the result to a Sender.
type Gateway struct {
	renderer *Renderer
	sender   Sender
	from     string
}

type GatewayParams struct {
	Renderer *Renderer
	Sender   Sender
	From     string
}

func NewGateway(params GatewayParams) (*Gateway, error) {
	if params.Renderer == nil {
		return nil, errors.New("renderer required")
	}
	if params.Sender == nil {
		return nil, errors.New("sender required")
	}
	if strings.TrimSpace(params.From) == "" {
		return nil, errors.New("from address required")
	}
	return &Gateway{renderer: params.Renderer, sender: params.Sender, from: params.From}, nil
}

// Send renders msg.Template with msg.Data and submits it. Errors are never swallowed;
// callers decide whether a failed delivery is fatal.
func (g *Gateway) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	rendered, err := g.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	if err := g.sender.Send(ctx, Envelope{
		From:    g.from,
		To:      msg.To,
		CC:      msg.CC,
		Subject: msg.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver email")
	}
	return nil
}
