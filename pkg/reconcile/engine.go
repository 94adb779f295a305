package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sipeed/mediapaste/pkg/logger"
	"github.com/sipeed/mediapaste/pkg/markdown"
	"github.com/sipeed/mediapaste/pkg/media"
	"github.com/sipeed/mediapaste/pkg/textbuf"
)

const (
	DefaultLabel = "Uploading image..."
	DefaultAlt   = "image"
)

// Upload is what a Resolver receives for one payload.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Resolver turns raw bytes into a reference such as a URL. An empty
// reference with a nil error means the upload produced nothing and the
// placeholder should be removed.
type Resolver interface {
	Resolve(ctx context.Context, up Upload) (string, error)
}

type ResolverFunc func(ctx context.Context, up Upload) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, up Upload) (string, error) {
	return f(ctx, up)
}

type Outcome int

const (
	// OutcomeReplaced: the placeholder became the final markup.
	OutcomeReplaced Outcome = iota
	// OutcomeRemoved: the resolver returned no reference; placeholder deleted.
	OutcomeRemoved
	// OutcomeStale: the placeholder was edited meanwhile; buffer left alone.
	OutcomeStale
	// OutcomeFailed: decoding or resolving failed; placeholder left in place.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplaced:
		return "replaced"
	case OutcomeRemoved:
		return "removed"
	case OutcomeStale:
		return "stale"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

type Result struct {
	Name      string
	Outcome   Outcome
	Reference string
	Err       error
}

type Report struct {
	Results []Result
}

// Count returns how many payloads ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Reconciled counts payloads whose placeholder was resolved one way or the
// other (replaced, removed or left stale).
func (r Report) Reconciled() int {
	return len(r.Results) - r.Count(OutcomeFailed)
}

// BatchError reports a payload whose decode or resolve step failed.
// Reconciled is how many payloads before it completed.
type BatchError struct {
	Index      int
	Name       string
	Reconciled int
	Err        error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("payload %d (%s) failed after %d reconciled: %v", e.Index, e.Name, e.Reconciled, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Engine inserts placeholders and reconciles them once each payload is
// resolved.
type Engine struct {
	// Label is shown inside the placeholder.
	Label string
	// Alt is the alt text of the final image markup.
	Alt string
	// ContinueOnError records a failed payload and moves on instead of
	// aborting the remaining payloads.
	ContinueOnError bool
}

func (e *Engine) label() string {
	if e.Label == "" {
		return DefaultLabel
	}
	return e.Label
}

func (e *Engine) alt() string {
	if e.Alt == "" {
		return DefaultAlt
	}
	return e.Alt
}

// Process handles payloads one at a time, in order. Each payload's resolve
// step completes before the next placeholder is inserted. Nil entries are
// skipped.
func (e *Engine) Process(ctx context.Context, payloads []*media.Payload, buf textbuf.Buffer, resolver Resolver) (Report, error) {
	var report Report
	var errs []error

	for i, p := range payloads {
		if p == nil {
			continue
		}
		res, err := e.processOne(ctx, p, buf, resolver)
		report.Results = append(report.Results, res)
		if err == nil {
			continue
		}

		batchErr := &BatchError{Index: i, Name: p.Name, Reconciled: report.Reconciled(), Err: err}
		logger.WarnCF("reconcile", "Payload failed", map[string]interface{}{
			"index": i,
			"name":  p.Name,
			"error": err.Error(),
		})
		if !e.ContinueOnError {
			return report, batchErr
		}
		errs = append(errs, batchErr)
	}

	return report, errors.Join(errs...)
}

func (e *Engine) processOne(ctx context.Context, p *media.Payload, buf textbuf.Buffer, resolver Resolver) (Result, error) {
	res := Result{Name: p.Name}

	initial := buf.State()
	breaks := markdown.Breaks(markdown.BreaksNeededForEmptyLineBefore(initial.Text, initial.Selection.Start))
	placeholder := breaks + markdown.Placeholder(e.label())

	buf.ReplaceSelection(placeholder)

	data, err := p.ReadAll(ctx)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res, err
	}

	ref, err := resolver.Resolve(ctx, Upload{Name: p.Name, MIMEType: p.MIMEType, Data: data})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("resolve %s: %w", p.Name, err)
		return res, res.Err
	}
	res.Reference = ref

	var final string
	if ref != "" {
		final = breaks + markdown.Image(e.alt(), ref)
	}

	if !swapPlaceholder(buf, initial.Selection.Start, placeholder, final) {
		res.Outcome = OutcomeStale
		logger.InfoCF("reconcile", "Placeholder edited during upload, leaving it", map[string]interface{}{
			"name": p.Name,
		})
		return res, nil
	}

	if final == "" {
		res.Outcome = OutcomeRemoved
	} else {
		res.Outcome = OutcomeReplaced
	}
	logger.DebugCF("reconcile", "Placeholder reconciled", map[string]interface{}{
		"name":    p.Name,
		"outcome": res.Outcome.String(),
	})
	return res, nil
}

// swapPlaceholder replaces placeholder at start with final if, and only if,
// the buffer still holds placeholder there verbatim. The selection read
// before the swap is shifted by the length delta afterwards.
func swapPlaceholder(buf textbuf.Buffer, start int, placeholder, final string) bool {
	current := buf.State()
	if textbuf.Substring(current.Text, start, len(placeholder)) != placeholder {
		return false
	}

	buf.SetSelectionRange(textbuf.Selection{Start: start, End: start + len(placeholder)})
	buf.ReplaceSelection(final)

	delta := len(final) - len(placeholder)
	buf.SetSelectionRange(textbuf.Selection{
		Start: current.Selection.Start + delta,
		End:   current.Selection.End + delta,
	})
	return true
}
