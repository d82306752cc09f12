package sandbox

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/logging"
)

// ConsoleName is the reserved binding under which the capturing logging
// facade is injected.
const ConsoleName = "console"

// Runtime executes source text against injected bindings.
type Runtime struct {
	config Config
	log    *logging.Logger
	mu     sync.Mutex // one execution at a time
}

// New creates a sandbox runtime.
func New(config Config, log *logging.Logger) *Runtime {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runtime{
		config: config,
		log:    log,
	}
}

// Execute runs source as the body of an async function whose parameters are
// exactly the binding names. It always returns an Outcome; failures are
// captured, never thrown or returned.
func (r *Runtime) Execute(ctx context.Context, source string, bindings Bindings) (outcome *Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	outcome = &Outcome{}
	defer func() {
		outcome.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			r.fail(outcome, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	// Fresh VM per execution: no state bleeds between runs.
	vm := goja.New()
	scrubGlobals(vm)

	names := make([]string, 0, len(bindings)+1)
	for name := range bindings {
		if name == ConsoleName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	names = append([]string{ConsoleName}, names...)

	wrapped := fmt.Sprintf("(async function(%s) {\n%s\n})", strings.Join(names, ", "), source)

	val, err := vm.RunString(wrapped)
	if err != nil {
		r.fail(outcome, errMessage(err))
		return outcome
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		r.fail(outcome, "source did not compile to a callable body")
		return outcome
	}

	args := make([]goja.Value, len(names))
	args[0] = r.makeConsole(vm, outcome)
	for i, name := range names[1:] {
		args[i+1] = vm.ToValue(bindings[name])
	}

	stop := make(chan struct{})
	defer close(stop)
	go r.watchdog(ctx, vm, stop)

	res, err := fn(goja.Undefined(), args...)
	if err != nil {
		r.fail(outcome, errMessage(err))
		return outcome
	}

	// The body is async, so the call yields a promise. goja drains the job
	// queue before returning, which settles every await backed by the
	// synchronous bindings above.
	if p, ok := res.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateFulfilled:
			outcome.Value = exportValue(p.Result())
		case goja.PromiseStateRejected:
			r.fail(outcome, valueMessage(p.Result()))
		default:
			r.fail(outcome, "execution suspended on a promise that never settled")
		}
		return outcome
	}

	outcome.Value = exportValue(res)
	return outcome
}

// watchdog interrupts the VM on timeout or context cancellation.
func (r *Runtime) watchdog(ctx context.Context, vm *goja.Runtime, stop <-chan struct{}) {
	var timeout <-chan time.Time
	if r.config.Timeout > 0 {
		timer := time.NewTimer(r.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-timeout:
		vm.Interrupt("execution timeout exceeded")
	case <-ctx.Done():
		vm.Interrupt("context cancelled")
	case <-stop:
	}
}

func (r *Runtime) fail(outcome *Outcome, msg string) {
	outcome.Failed = true
	outcome.Err = msg
	outcome.Lines = append(outcome.Lines, "[error] "+msg)
	r.log.Debug("sandbox execution failed", zap.String("error", msg))
}

// makeConsole builds the capturing logging facade injected as the console
// binding. It replaces the host console entirely.
func (r *Runtime) makeConsole(vm *goja.Runtime, outcome *Outcome) goja.Value {
	capture := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = formatValue(arg)
			}
			line := strings.Join(parts, " ")
			if prefix != "" {
				line = prefix + " " + line
			}
			outcome.Lines = append(outcome.Lines, line)
			return goja.Undefined()
		}
	}

	console := vm.NewObject()
	console.Set("log", capture(""))
	console.Set("info", capture(""))
	console.Set("warn", capture("[warn]"))
	console.Set("error", capture("[error]"))
	return console
}

// scrubGlobals removes the ambient escape hatches. Everything else a body can
// reach arrives through its parameter list.
func scrubGlobals(vm *goja.Runtime) {
	for _, name := range []string{"require", "process", "module", "exports", "globalThis"} {
		vm.Set(name, goja.Undefined())
	}
	vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

// formatValue renders a logged value: primitives as-is, composites as
// indented structured text.
func formatValue(val goja.Value) string {
	if val == nil || goja.IsUndefined(val) {
		return "undefined"
	}
	if goja.IsNull(val) {
		return "null"
	}

	exported := val.Export()
	if isComposite(exported) {
		if data, err := sonic.MarshalIndent(exported, "", "  "); err == nil {
			return string(data)
		}
	}
	return val.String()
}

func isComposite(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}

func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// errMessage extracts the user-facing message from a goja error.
func errMessage(err error) string {
	if ex, ok := err.(*goja.Exception); ok {
		return ex.Value().String()
	}
	if in, ok := err.(*goja.InterruptedError); ok {
		return fmt.Sprintf("interrupted: %v", in.Value())
	}
	return err.Error()
}

// valueMessage renders a rejected promise's reason.
func valueMessage(val goja.Value) string {
	if val == nil {
		return "rejected"
	}
	return val.String()
}
