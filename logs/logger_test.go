package logs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/reusee/dscope"
)

func TestHandler(t *testing.T) {
	buf := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		logger Logger,
	) {
		ctx := context.WithValue(context.Background(), SpanKey, Span("segment-1"))
		logger.With("run", "r1").InfoContext(ctx, "test", "hello", "world!")
	})
	if _, err := getCgroupPath(); err == nil && buf.Len() == 0 {
		// running under systemd, output went to the journal
		return
	}
	out := buf.String()
	if !strings.Contains(out, "hello=world!") {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(out, "logs.span=segment-1") {
		t.Fatalf("span lost through With: %q", out)
	}
}

func TestToJournalKey(t *testing.T) {
	if k := toJournalKey("logs.span"); k != "LOGS_SPAN" {
		t.Fatalf("got %s", k)
	}
	if k := toJournalKey("meta-step"); k != "META_STEP" {
		t.Fatalf("got %s", k)
	}
}
