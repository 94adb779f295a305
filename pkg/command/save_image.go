package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/sipeed/mediapaste/pkg/accept"
	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/sipeed/mediapaste/pkg/media"
	"github.com/sipeed/mediapaste/pkg/reconcile"
	"github.com/sipeed/mediapaste/pkg/textbuf"
)

// ErrContextMismatch is returned when a command is invoked without the
// paste, drop or file-input event it needs. Nothing is written to the
// buffer in that case.
var ErrContextMismatch = errors.New("wrong context")

// Context carries the originating event and the caller's policy.
type Context struct {
	Event  *media.Event
	Policy accept.Policy
}

type Options struct {
	Buffer   textbuf.Buffer
	Resolver reconcile.Resolver
	// Label is the localized "uploading" text shown in the placeholder.
	Label           string
	Alt             string
	ContinueOnError bool
}

// SaveImage inserts the media carried by a paste, drop or file-input event
// into the buffer as image references.
type SaveImage struct{}

func (SaveImage) Name() string {
	return "save-image"
}

func (c SaveImage) Execute(ctx context.Context, cmdCtx *Context, opts Options) (reconcile.Report, error) {
	if err := validate(cmdCtx, opts); err != nil {
		return reconcile.Report{}, err
	}

	extracted := media.Extract(*cmdCtx.Event)
	accepted := accept.Filter(extracted, cmdCtx.Policy)

	logger.InfoCF("command", "Processing media event", map[string]interface{}{
		"event":     cmdCtx.Event.Kind.String(),
		"extracted": len(extracted),
		"accepted":  len(accepted),
		"multiple":  cmdCtx.Policy.Multiple,
		"accept":    cmdCtx.Policy.Accept,
	})

	engine := &reconcile.Engine{
		Label:           opts.Label,
		Alt:             opts.Alt,
		ContinueOnError: opts.ContinueOnError,
	}
	report, err := engine.Process(ctx, accepted, opts.Buffer, opts.Resolver)
	if err != nil {
		return report, fmt.Errorf("%s: %w", c.Name(), err)
	}
	return report, nil
}

func validate(cmdCtx *Context, opts Options) error {
	if cmdCtx == nil || cmdCtx.Event == nil {
		return fmt.Errorf("%w: no event", ErrContextMismatch)
	}
	if !cmdCtx.Event.Kind.Valid() {
		return fmt.Errorf("%w: unsupported event %s", ErrContextMismatch, cmdCtx.Event.Kind)
	}
	if !cmdCtx.Event.Consistent() {
		return fmt.Errorf("%w: %s event without matching payload", ErrContextMismatch, cmdCtx.Event.Kind)
	}
	if opts.Buffer == nil {
		return errors.New("save-image: buffer is required")
	}
	if opts.Resolver == nil {
		return errors.New("save-image: resolver is required")
	}
	return nil
}
