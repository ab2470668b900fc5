package login

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	DefaultMaxFailures   = 5
	DefaultFailureWindow = 15 * time.Minute
)

// Throttle counts failed logins per username and client address. Once the
// count hits the limit the pair is locked out until the window resets.
type Throttle struct {
	lim *limiter.Limiter
}

func NewThrottle(maxFailures int64, window time.Duration) *Throttle {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "login",
		CleanUpInterval: window,
	})
	return &Throttle{lim: limiter.New(store, limiter.Rate{Period: window, Limit: maxFailures})}
}

// Blocked reports whether key is locked out and for how long.
func (t *Throttle) Blocked(ctx context.Context, key string) (bool, time.Duration) {
	if t == nil {
		return false, 0
	}
	st, err := t.lim.Peek(ctx, key)
	if err != nil {
		slog.Warn("login throttle peek failed", slog.Any("err", err))
		return false, 0
	}
	if st.Remaining > 0 {
		return false, 0
	}
	return true, time.Until(time.Unix(st.Reset, 0)).Round(time.Second)
}

func (t *Throttle) Fail(ctx context.Context, key string) {
	if t == nil {
		return
	}
	if _, err := t.lim.Get(ctx, key); err != nil {
		slog.Warn("login throttle record failed", slog.Any("err", err))
	}
}

// Clear forgets past failures after a successful login.
func (t *Throttle) Clear(ctx context.Context, key string) {
	if t == nil {
		return
	}
	if _, err := t.lim.Reset(ctx, key); err != nil {
		slog.Warn("login throttle reset failed", slog.Any("err", err))
	}
}

func throttleKey(r *http.Request, username string) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.ToLower(username) + "|" + host
}
