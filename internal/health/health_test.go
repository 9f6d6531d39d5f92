package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestCheckBasic(t *testing.T) {
	if s := NewHealthChecker(up, nil).CheckBasic(context.Background()); s.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", s.Status)
	}
	s := NewHealthChecker(down, nil).CheckBasic(context.Background())
	if s.Status != StatusUnhealthy || s.Database.Error == "" {
		t.Fatalf("expected unhealthy with error, got %+v", s)
	}
}

func TestCheckDetailedStorage(t *testing.T) {
	s := NewHealthChecker(up, nil).CheckDetailed(context.Background())
	if s.Storage.Status != StatusDisabled || s.Redis.Status != StatusDisabled {
		t.Fatalf("expected optional components disabled, got %+v / %+v", s.Storage, s.Redis)
	}
	if s.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", s.Status)
	}

	s = NewHealthChecker(up, down).CheckDetailed(context.Background())
	if s.Status != StatusDegraded {
		t.Fatalf("expected degraded when storage is down, got %s", s.Status)
	}
}

func TestFormatUptime(t *testing.T) {
	if got := formatUptime(26*time.Hour + 5*time.Minute); got != "1d 2h 5m" {
		t.Fatalf("unexpected %q", got)
	}
	if got := formatUptime(90 * time.Minute); got != "1h 30m" {
		t.Fatalf("unexpected %q", got)
	}
}
