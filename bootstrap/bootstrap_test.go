package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/config"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	desc     *component.Description
	routes   []component.Route
	events   *[]string
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.record("start:" + m.name)
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *mockComponent) Stop(context.Context) error {
	m.record("stop:" + m.name)
	m.stopped = true
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Status == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func (m *mockComponent) record(ev string) {
	if m.events != nil {
		*m.events = append(*m.events, ev)
	}
}

type describedComponent struct{ *mockComponent }

func (d describedComponent) Describe() component.Description { return *d.desc }
func (d describedComponent) Routes() []component.Route       { return d.routes }

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "voxscribe-test", Version: "1.2.3"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithOutput(&bytes.Buffer{})}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "voxscribe-test" || app.Version != "1.2.3" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied, environment=%q", app.Cfg.Environment)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Error("expected registry, logger and summary")
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("unexpected default timeout %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "moon"}}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "a"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	var events []string
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "diarization", events: &events})
	app.RegisterComponent(&mockComponent{name: "server", events: &events})

	hook := func(name string) Hook {
		return func(context.Context) error {
			events = append(events, name)
			return nil
		}
	}
	app.OnStart(hook("onStart"))
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure:"+a.Cfg.Name)
		return nil
	})
	app.OnReady(hook("onReady"))
	app.OnStop(hook("onStop"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{
		"start:diarization", "start:server",
		"onStart", "configure:voxscribe-test", "onReady",
		"task",
		"onStop", "stop:server", "stop:diarization",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events =\n%v\nwant\n%v", events, want)
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	boom := errors.New("boom")
	if err := app.RunTask(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTaskStopErrorReported(t *testing.T) {
	app := newTestApp(t)
	stopErr := errors.New("stuck")
	app.RegisterComponent(&mockComponent{name: "a", stopErr: stopErr})
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, stopErr) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestStartupFailureKeepsErrorCode(t *testing.T) {
	app := newTestApp(t)
	first := &mockComponent{name: "diarization"}
	app.RegisterComponent(first)
	app.RegisterComponent(&mockComponent{
		name:     "transcription",
		startErr: apperrors.ModelLoad("transcription", errors.New("connection refused")),
	})

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if ran {
		t.Error("task must not run when a backend fails to start")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeModelLoad) {
		t.Errorf("expected ModelLoad error, got %v", err)
	}
	if !first.stopped {
		t.Error("started components should be rolled back")
	}
}

func TestStartupHookErrorsStopComponents(t *testing.T) {
	tests := []struct {
		name  string
		setup func(app *App[*testConfig])
		want  string
	}{
		{"onStart", func(a *App[*testConfig]) {
			a.OnStart(func(context.Context) error { return errors.New("x") })
		}, "onStart hook failed"},
		{"configure", func(a *App[*testConfig]) {
			a.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("x") })
		}, "configuration failed"},
		{"onReady", func(a *App[*testConfig]) {
			a.OnReady(func(context.Context) error { return errors.New("x") })
		}, "onReady hook failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			c := &mockComponent{name: "a"}
			app.RegisterComponent(c)
			tc.setup(app)
			err := app.RunTask(context.Background(), func(context.Context) error { return nil })
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
			if !c.stopped {
				t.Error("component should be stopped after a failed startup")
			}
		})
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunReturnsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "server"}
	app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !c.stopped {
		t.Error("component not stopped")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  component.Health
		wantErr string
	}{
		{"healthy", component.Health{Status: component.StatusHealthy}, ""},
		{"degraded", component.Health{Name: "summary", Status: component.StatusDegraded, Message: "no api key"}, "summary=degraded(no api key)"},
		{"unhealthy", component.Health{Name: "whisper", Status: component.StatusUnhealthy}, "whisper=unhealthy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			app.RegisterComponent(&mockComponent{name: "c", health: tc.health})
			err := app.ReadyCheck(context.Background())
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSummaryDisplay(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, WithOutput(&out))
	app.RegisterComponent(describedComponent{&mockComponent{
		name: "diarization",
		desc: &component.Description{Type: "model", Details: "http://pyannote:8001"},
	}})
	app.RegisterComponent(describedComponent{&mockComponent{
		name:   "http-server",
		desc:   &component.Description{Name: "HTTP Server", Type: "server", Details: "gin", Port: 5000},
		routes: []component.Route{{Method: "POST", Path: "/transcribe", Handler: "api.Transcribe"}},
		health: component.Health{Name: "http-server", Status: component.StatusUnhealthy, Message: "not started"},
	}})
	app.Summary.AddSetting("summary", "anthropic key=sk-a****")

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"voxscribe-test v1.2.3 started",
		"summary: anthropic key=sk-a****",
		"diarization [model] http://pyannote:8001",
		"HTTP Server [server] gin (:5000)",
		"Routes (1)",
		"/transcribe → api.Transcribe",
		"http-server: unhealthy (not started)",
		"Some components have issues (1/2 healthy)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestWithoutSummary(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, WithOutput(&out), WithoutSummary())
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestTreePrefix(t *testing.T) {
	if treePrefix(0, 2) != "├──" || treePrefix(1, 2) != "└──" {
		t.Error("unexpected tree prefixes")
	}
}

func TestHealthStatusIcon(t *testing.T) {
	tests := map[component.HealthStatus]string{
		component.StatusHealthy:   "✅",
		component.StatusDegraded:  "⚠️",
		component.StatusUnhealthy: "❌",
		"unknown":                 "❓",
	}
	for status, want := range tests {
		if got := healthStatusIcon(status); got != want {
			t.Errorf("healthStatusIcon(%s) = %s, want %s", status, got, want)
		}
	}
}
