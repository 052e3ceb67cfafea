package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func newApp(t *testing.T) *app.Application {
	t.Helper()
	a, err := app.New(&config.Config{
		App:       config.AppConfig{Name: "Test", Env: "testing"},
		Container: config.ContainerConfig{ID: "test", LogLevel: "error", EnvNamespace: "env"},
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return a
}

func value(v any) func(container.Resolver, container.Args) (any, error) {
	return func(container.Resolver, container.Args) (any, error) { return v, nil }
}

func mustGet(t *testing.T, a *app.Application, key container.Key) any {
	t.Helper()
	v, err := a.Get(key)
	if err != nil {
		t.Fatalf("Get(%v): %v", key, err)
	}
	return v
}

// ── stub modules ──────────────────────────────────────────────────────────────

type eagerModule struct {
	app.BaseModule
	registerCalled bool
	bootCalled     bool
}

func (m *eagerModule) Register(a *app.Application) error {
	m.registerCalled = true
	return a.Singleton("eager-svc", value("eager"))
}

func (m *eagerModule) Boot(_ *app.Application) error {
	m.bootCalled = true
	return nil
}

// deferredModule is lazy: only registered when "deferred-svc" is first resolved.
type deferredModule struct {
	app.BaseModule
	registerCalls int
	bootCalled    bool
}

func (m *deferredModule) Register(a *app.Application) error {
	m.registerCalls++
	if err := a.Singleton("deferred-svc", value("deferred-value")); err != nil {
		return err
	}
	return a.Singleton("deferred-other", value("other-value"))
}

func (m *deferredModule) Boot(_ *app.Application) error {
	m.bootCalled = true
	return nil
}

func (m *deferredModule) IsDeferred() bool { return true }
func (m *deferredModule) Provides() []container.Key {
	return []container.Key{"deferred-svc", "deferred-other"}
}

// wiringModule is deferred and uses the application directly from its hooks,
// while the container is resolving one of its keys.
type wiringModule struct {
	app.BaseModule
	booted any
}

func (m *wiringModule) Register(a *app.Application) error {
	if err := a.Instance("wiring-config", "cfg"); err != nil {
		return err
	}
	return a.Singleton("wiring-svc", func(r container.Resolver, _ container.Args) (any, error) {
		return r.Get("wiring-config")
	})
}

func (m *wiringModule) Boot(a *app.Application) error {
	v, err := a.Get("eager-svc")
	m.booted = v
	return err
}

func (m *wiringModule) IsDeferred() bool          { return true }
func (m *wiringModule) Provides() []container.Key { return []container.Key{"wiring-svc"} }

// multiModule registers multiple keys.
type multiModule struct {
	app.BaseModule
}

func (m *multiModule) Register(a *app.Application) error {
	if err := a.Singleton("alpha", value("α")); err != nil {
		return err
	}
	return a.Singleton("beta", value("β"))
}

type failingModule struct {
	app.BaseModule
}

var errBroken = errors.New("broken module")

func (m *failingModule) Register(_ *app.Application) error { return errBroken }

// ── Registry ──────────────────────────────────────────────────────────────────

func TestRegistry_EagerModule_RegisterCalled(t *testing.T) {
	a := newApp(t)

	m := &eagerModule{}
	if err := a.Register(m); err != nil {
		t.Fatal(err)
	}

	if !m.registerCalled {
		t.Error("Register() should be called immediately for eager modules")
	}
}

func TestRegistry_EagerModule_BootCalledAfterBoot(t *testing.T) {
	a := newApp(t)

	m := &eagerModule{}
	_ = a.Register(m)

	if m.bootCalled {
		t.Error("Boot() should NOT be called before Boot()")
	}

	_ = a.Boot()

	if !m.bootCalled {
		t.Error("Boot() should be called after Boot()")
	}
}

func TestRegistry_EagerModule_ServiceResolvable(t *testing.T) {
	a := newApp(t)
	_ = a.Register(&eagerModule{})
	_ = a.Boot()

	if got := mustGet(t, a, "eager-svc"); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	a := newApp(t)
	_ = a.Register(&eagerModule{})

	if err := a.Boot(); err != nil {
		t.Fatal(err)
	}
	if err := a.Boot(); err != nil { // second call should be no-op
		t.Fatal(err)
	}

	if !a.Modules.Booted() {
		t.Error("Booted() should be true after Boot()")
	}
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	a := newApp(t)
	if a.Modules.Booted() {
		t.Error("Booted() should be false before Boot()")
	}
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	a := newApp(t)

	m := &eagerModule{}
	if err := a.Register(m); err != nil {
		t.Fatal(err)
	}
	// a second real registration would fail with a duplicate key
	if err := a.Register(m); err != nil {
		t.Errorf("second Register() of the same module: got %v, want nil", err)
	}
	if len(a.Modules.Modules()) != 1 {
		t.Errorf("Modules(): got %d, want 1", len(a.Modules.Modules()))
	}
}

func TestRegistry_RegisterError_Wrapped(t *testing.T) {
	a := newApp(t)

	err := a.Register(&failingModule{})

	if !errors.Is(err, errBroken) {
		t.Errorf("Register(): got %v, want wrapped errBroken", err)
	}
}

// ── Deferred modules ──────────────────────────────────────────────────────────

func TestRegistry_DeferredModule_NotRegisteredEagerly(t *testing.T) {
	a := newApp(t)

	m := &deferredModule{}
	_ = a.Register(m)
	_ = a.Boot()

	if m.registerCalls != 0 {
		t.Error("deferred module Register() should not be called until Get()")
	}
	if m.bootCalled {
		t.Error("deferred module Boot() should not be called until Get()")
	}
}

func TestRegistry_DeferredModule_RegisteredOnFirstGet(t *testing.T) {
	a := newApp(t)

	m := &deferredModule{}
	_ = a.Register(m)
	_ = a.Boot()

	// Trigger lazy load
	if got := mustGet(t, a, "deferred-svc"); got != "deferred-value" {
		t.Errorf("deferred-svc: got %q, want 'deferred-value'", got)
	}
	if !m.bootCalled {
		t.Error("deferred module loaded after Boot() should be booted")
	}

	// the other key of the module is served without registering again
	if got := mustGet(t, a, "deferred-other"); got != "other-value" {
		t.Errorf("deferred-other: got %q, want 'other-value'", got)
	}
	if m.registerCalls != 1 {
		t.Errorf("Register() calls: got %d, want 1", m.registerCalls)
	}
}

func TestRegistry_DeferredModule_BeforeBoot(t *testing.T) {
	a := newApp(t)

	m := &deferredModule{}
	_ = a.Register(m)

	_ = mustGet(t, a, "deferred-svc")
	if m.bootCalled {
		t.Error("deferred module loaded before Boot() should not be booted yet")
	}
}

func TestRegistry_DeferredModule_Pending(t *testing.T) {
	a := newApp(t)
	before := a.Modules.Pending()

	_ = a.Register(&deferredModule{})
	if got := a.Modules.Pending(); got != before+2 {
		t.Errorf("Pending(): got %d, want %d", got, before+2)
	}

	_ = mustGet(t, a, "deferred-other")
	if got := a.Modules.Pending(); got != before {
		t.Errorf("Pending() after load: got %d, want %d", got, before)
	}
}

// ── Multiple modules ──────────────────────────────────────────────────────────

func TestRegistry_MultipleModules_AllServicesResolvable(t *testing.T) {
	a := newApp(t)
	_ = a.Register(&multiModule{})
	_ = a.Register(&eagerModule{})
	_ = a.Boot()

	if got := mustGet(t, a, "alpha"); got != "α" {
		t.Errorf("alpha: got %q, want 'α'", got)
	}
	if got := mustGet(t, a, "beta"); got != "β" {
		t.Errorf("beta: got %q, want 'β'", got)
	}
	if got := mustGet(t, a, "eager-svc"); got != "eager" {
		t.Errorf("eager-svc: got %q, want 'eager'", got)
	}
}

// ── Modules list ──────────────────────────────────────────────────────────────

func TestRegistry_Modules_ReturnsEagerOnes(t *testing.T) {
	a := newApp(t)
	_ = a.Register(&eagerModule{})
	_ = a.Register(&deferredModule{}) // deferred, not in Modules()

	if len(a.Modules.Modules()) != 1 {
		t.Errorf("Modules(): got %d, want 1 (eager only)", len(a.Modules.Modules()))
	}
}

func TestRegistry_DeferredModule_HooksUseApplication(t *testing.T) {
	a := newApp(t)
	m := &wiringModule{}
	_ = a.Register(&eagerModule{})
	_ = a.Register(m)
	_ = a.Boot()

	done := make(chan error, 1)
	var got any
	go func() {
		var err error
		got, err = a.Get("wiring-svc")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Get(wiring-svc): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deferred module hooks blocked on the container")
	}
	if got != "cfg" {
		t.Errorf("wiring-svc: got %v, want 'cfg'", got)
	}
	if m.booted != "eager" {
		t.Errorf("Boot() resolved %v, want 'eager'", m.booted)
	}
}

// ── BaseModule defaults ───────────────────────────────────────────────────────

func TestBaseModule_Defaults(t *testing.T) {
	var m app.BaseModule

	if err := m.Boot(nil); err != nil {
		t.Errorf("BaseModule.Boot(): got %v, want nil", err)
	}
	if m.IsDeferred() {
		t.Error("BaseModule.IsDeferred() should be false")
	}
	if len(m.Provides()) != 0 {
		t.Error("BaseModule.Provides() should return empty slice")
	}
}

// ── Boot after registration (late module) ─────────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	a := newApp(t)
	_ = a.Boot() // boot before registering

	m := &eagerModule{}
	_ = a.Register(m) // register after boot

	if !m.bootCalled {
		t.Error("module registered after Boot() should be booted immediately")
	}
}
