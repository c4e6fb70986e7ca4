package helpers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestResolver_ScheduleIssuesSequentialTokens(t *testing.T) {
	resolver := NewResolver()
	first := resolver.Schedule(context.Background(), func(done func(string, error)) { done("a", nil) })
	second := resolver.Schedule(context.Background(), func(done func(string, error)) { done("b", nil) })

	if first == second {
		t.Fatalf("tokens must be unique, both %q", first)
	}
	if !tokenPattern.MatchString(first) || !tokenPattern.MatchString(second) {
		t.Fatalf("tokens do not match the placeholder shape: %q %q", first, second)
	}
	if !resolver.Outstanding() {
		t.Fatal("expected outstanding placeholders")
	}
}

func TestResolver_ResolveSubstitutesAllTokens(t *testing.T) {
	resolver := NewResolver()
	ctx := context.Background()

	slow := resolver.Schedule(ctx, func(done func(string, error)) {
		time.Sleep(20 * time.Millisecond)
		done("SLOW", nil)
	})
	fast := resolver.Schedule(ctx, func(done func(string, error)) { done("FAST", nil) })

	out, err := resolver.Resolve(ctx, "a "+slow+" b "+fast+" c "+slow)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "a SLOW b FAST c SLOW" {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.Contains(out, "__async_helper_") {
		t.Fatalf("placeholder leaked into output: %q", out)
	}
}

func TestResolver_ResolveNoPlaceholders(t *testing.T) {
	resolver := NewResolver()
	out, err := resolver.Resolve(context.Background(), "static content")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "static content" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestResolver_ResolveFailsOnComputationError(t *testing.T) {
	resolver := NewResolver()
	ctx := context.Background()
	token := resolver.Schedule(ctx, func(done func(string, error)) {
		done("", errors.New("backend down"))
	})

	if _, err := resolver.Resolve(ctx, token); err == nil {
		t.Fatal("expected computation error to propagate")
	}
}

func TestResolver_ResolveFailsOnUnknownToken(t *testing.T) {
	resolver := NewResolver()
	if _, err := resolver.Resolve(context.Background(), "x __async_helper_99__ y"); err == nil {
		t.Fatal("expected error for token this resolver never issued")
	}

	withPending := NewResolver()
	ctx := context.Background()
	token := withPending.Schedule(ctx, func(done func(string, error)) { done("ok", nil) })
	if _, err := withPending.Resolve(ctx, token+" __async_helper_42__"); err == nil {
		t.Fatal("expected error for foreign token alongside a real one")
	}
}

func TestResolver_ResolveHonorsCancelledContext(t *testing.T) {
	resolver := NewResolver()
	ctx, cancel := context.WithCancel(context.Background())

	token := resolver.Schedule(ctx, func(done func(string, error)) {
		// never settles; resolution must bail on cancellation
		<-make(chan struct{})
		done("late", nil)
	})
	cancel()

	if _, err := resolver.Resolve(ctx, token); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestResolver_DoneCalledOnce(t *testing.T) {
	resolver := NewResolver()
	ctx := context.Background()
	token := resolver.Schedule(ctx, func(done func(string, error)) {
		done("first", nil)
		done("second", nil)
	})

	out, err := resolver.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "first" {
		t.Fatalf("only the first settlement should count, got %q", out)
	}
}
