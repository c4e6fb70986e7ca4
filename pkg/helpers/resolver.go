package helpers

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

var tokenPattern = regexp.MustCompile(`__async_helper_(\d+)__`)

type asyncResult struct {
	value string
	err   error
}

// Resolver tracks the placeholder tokens issued during one render and the
// computations behind them. It is created per render call and discarded
// afterwards; it must not be shared between renders.
type Resolver struct {
	mu      sync.Mutex
	seq     int
	order   []string
	pending map[string]chan asyncResult
}

// NewResolver creates an empty per-render resolver.
func NewResolver() *Resolver {
	return &Resolver{pending: make(map[string]chan asyncResult)}
}

// Schedule issues a fresh placeholder token and starts run in its own
// goroutine. The token is what the engine sees; Resolve later replaces it
// with the value run reports.
func (r *Resolver) Schedule(ctx context.Context, run func(done func(string, error))) string {
	r.mu.Lock()
	r.seq++
	token := fmt.Sprintf("__async_helper_%d__", r.seq)
	ch := make(chan asyncResult, 1)
	r.pending[token] = ch
	r.order = append(r.order, token)
	r.mu.Unlock()

	go func() {
		var once sync.Once
		run(func(value string, err error) {
			once.Do(func() {
				select {
				case ch <- asyncResult{value: value, err: err}:
				case <-ctx.Done():
				}
			})
		})
	}()
	return token
}

// Outstanding reports whether any placeholder has been issued.
func (r *Resolver) Outstanding() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending) > 0
}

// Resolve waits for every scheduled computation and substitutes each token
// occurrence in rendered with its settled value. Substitution follows
// first-encounter order in the output; computations themselves may settle
// concurrently. A token in the output that this resolver never issued, or a
// computation that reports an error, fails the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, rendered string) (string, error) {
	r.mu.Lock()
	pending := make(map[string]chan asyncResult, len(r.pending))
	order := make([]string, len(r.order))
	copy(order, r.order)
	for token, ch := range r.pending {
		pending[token] = ch
	}
	r.mu.Unlock()

	if len(pending) == 0 {
		if tokenPattern.MatchString(rendered) {
			return "", fmt.Errorf("helpers: unresolved placeholder %q in output", tokenPattern.FindString(rendered))
		}
		return rendered, nil
	}

	results := make(map[string]string, len(pending))
	for _, token := range order {
		select {
		case res := <-pending[token]:
			if res.err != nil {
				return "", fmt.Errorf("helpers: async helper failed: %w", res.err)
			}
			results[token] = res.value
		case <-ctx.Done():
			return "", fmt.Errorf("helpers: await async helper: %w", ctx.Err())
		}
	}

	var unknown string
	out := tokenPattern.ReplaceAllStringFunc(rendered, func(token string) string {
		value, ok := results[token]
		if !ok {
			if unknown == "" {
				unknown = token
			}
			return token
		}
		return value
	})
	if unknown != "" {
		return "", fmt.Errorf("helpers: unresolved placeholder %q in output", unknown)
	}
	return out, nil
}
