package logs

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type NewSpan func(ctx context.Context, parent Span, what string) (context.Context, Span)

func newSpanID() Span {
	id, err := uuid.NewRandom()
	if err != nil {
		return Span(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	}
	return Span(strings.ReplaceAll(id.String(), "-", "")[:12])
}

// NewSpan opens a span under parent, or under the span already in ctx when
// parent is empty. The span that was in ctx is logged as the creator if it
// differs from the parent.
func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, parent Span, what string) (context.Context, Span) {
		creator, _ := ctx.Value(SpanKey).(Span)
		if parent == "" {
			parent = creator
		}

		span := newSpanID()
		ctx = context.WithValue(ctx, SpanKey, span)

		attrs := []any{"what", what}
		if parent != "" {
			attrs = append(attrs, "parent", parent)
		}
		if creator != "" && creator != parent {
			attrs = append(attrs, "creator", creator)
		}
		logger.DebugContext(ctx, "span", attrs...)

		return ctx, span
	}
}
