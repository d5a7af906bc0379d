package monolith

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

var greeting = di.NewToken[string]("test.greeting")

type recordingModule struct {
	name     string
	order    *[]string
	startErr error
}

func (m recordingModule) RegisterServices(c di.Container) error {
	di.RegisterToken(c, greeting, func(sr di.ServiceRegistry) string {
		return sr.Get(ServiceConfig).(*config.Config).App.Name
	})
	*m.order = append(*m.order, "register:"+m.name)
	return nil
}

func (m recordingModule) Startup(ctx context.Context, mono Monolith) error {
	*m.order = append(*m.order, "start:"+m.name)
	return m.startErr
}

func TestNew_RegistersGlobalServices(t *testing.T) {
	cfg := config.Defaults()
	mono, err := New(cfg, &mockLogger{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sr := mono.Services()
	if sr.Get(ServiceConfig).(*config.Config) != cfg {
		t.Error("config not registered")
	}
	if _, ok := sr.Get(ServiceHTTPClient).(httpclient.Client); !ok {
		t.Error("http client not registered")
	}
	if sr.Get(ServiceDelayPolicy).(*delay.Policy) != mono.Delay() {
		t.Error("delay policy mismatch")
	}
	if sr.Get(ServiceDelayOverrides).(*delay.MapOverrides) != mono.Overrides() {
		t.Error("overrides mismatch")
	}
}

func TestModulesLifecycle(t *testing.T) {
	mono, err := New(config.Defaults(), &mockLogger{})
	if err != nil {
		t.Fatal(err)
	}

	var order []string
	a := recordingModule{name: "a", order: &order}
	b := recordingModule{name: "b", order: &order, startErr: errors.New("boom")}

	if err := mono.RegisterModules(a, b); err != nil {
		t.Fatalf("RegisterModules() error = %v", err)
	}
	if err := mono.StartModules(context.Background(), a, b); err == nil {
		t.Fatal("expected startup error from module b")
	}

	want := []string{"register:a", "register:b", "start:a", "start:b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	if got := di.GetToken(mono.Services(), greeting); got != "quote-engine" {
		t.Errorf("greeting = %q", got)
	}
}
