package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

type noteMessage struct {
	Text string
}

func (noteMessage) Type() string { return "signum.test.note" }

func (m noteMessage) Validate() error {
	if m.Text == "" {
		return validation.Errors{
			"text": validation.NewError("signum.test.text_required", "text is required"),
		}
	}
	return nil
}

func TestHandlerExecutes(t *testing.T) {
	var got string
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		got = msg.Text
		return nil
	})

	if err := handler.Execute(context.Background(), noteMessage{Text: "hello"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "hello" {
		t.Fatalf("handler did not run, got %q", got)
	}
}

func TestHandlerValidation(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		t.Fatal("invalid message must not execute")
		return nil
	})

	err := handler.Execute(context.Background(), noteMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	boom := errors.New("boom")
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		return boom
	})

	err := handler.Execute(context.Background(), noteMessage{Text: "x"})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("wrapped error should keep the cause: %v", err)
	}
}

func TestHandlerCanceledContext(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		t.Fatal("canceled context must not execute")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := handler.Execute(ctx, noteMessage{Text: "x"})
	if err == nil {
		t.Fatal("expected context error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled cause, got %v", err)
	}
}

func TestHandlerExpiredDeadline(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		t.Fatal("expired deadline must not execute")
		return nil
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	err := handler.Execute(ctx, noteMessage{Text: "x"})
	if err == nil {
		t.Fatal("expected context error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded cause, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerNilContext(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg noteMessage) error {
		if ctx == nil {
			t.Fatal("handler must receive a context")
		}
		return nil
	})
	var nilCtx context.Context
	if err := handler.Execute(nilCtx, noteMessage{Text: "x"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
}
