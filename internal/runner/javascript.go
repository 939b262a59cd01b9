package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// jsExecutor runs untrusted JavaScript inside a fresh goja runtime built for
// each call. goja implements pure ECMAScript: the runtime carries no
// filesystem, network, process, or module-loading builtins, so the
// constrained global namespace is the engine's own intrinsics (JSON, Math,
// Date, typed arrays, the standard Error kinds) plus the console and input
// bindings installed here. eval and the Function constructor are blanked
// because dynamic code evaluation is outside the allow-list.
type jsExecutor struct {
	timeout time.Duration
}

func (e jsExecutor) execute(ctx context.Context, code, input string) (string, error) {
	buf := &captureBuffer{}

	vm := goja.New()
	if err := bindSandboxGlobals(vm, buf, input); err != nil {
		return buf.String(), fmt.Errorf("preparing sandbox: %w", err)
	}

	prg, err := goja.Compile("sandbox", code, false)
	if err != nil {
		return buf.String(), err
	}

	// Wall-clock budget. The interrupt makes RunProgram return promptly, so
	// the submitted code cannot keep emitting capture lines after the call
	// ends. ClearInterrupt covers a timer firing after normal completion.
	timer := time.AfterFunc(e.timeout, func() { vm.Interrupt(ErrExecutionTimeout) })
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-watchDone:
		}
	}()

	value, runErr := vm.RunProgram(prg)

	timer.Stop()
	close(watchDone)
	vm.ClearInterrupt()

	if runErr != nil {
		return buf.String(), sandboxError(runErr)
	}

	// A trailing expression value becomes the final capture line.
	if value != nil && !goja.IsUndefined(value) {
		buf.append("log", formatValue(value))
	}
	return buf.String(), nil
}

// bindSandboxGlobals installs the per-call console bridge and the pre-bound
// input value, and removes the dynamic-evaluation entry points.
func bindSandboxGlobals(vm *goja.Runtime, buf *captureBuffer, input string) error {
	console := vm.NewObject()
	for _, level := range []string{"log", "error", "warn", "info", "debug"} {
		if err := console.Set(level, func(call goja.FunctionCall) goja.Value {
			buf.append(level, formatArgs(call.Arguments))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}
	if err := vm.Set("input", input); err != nil {
		return err
	}

	for _, name := range []string{"eval", "Function"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}
	return nil
}

// sandboxError maps a goja failure onto the service taxonomy: interrupts
// carry the timeout (or caller cancellation), thrown values become runtime
// faults with the script-level message only.
func sandboxError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if v, ok := interrupted.Value().(error); ok {
			return v
		}
		return ErrExecutionTimeout
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		return errors.New(ex.Value().String())
	}
	return err
}

type jsValidator struct{}

func (jsValidator) validate(code string) ValidationResult {
	// Parsed as a function body, mirroring a dynamic Function(code) check:
	// top-level return is legal and nothing is executed.
	if _, err := goja.Compile("validate", "(function(){\n"+code+"\n})", false); err != nil {
		return ValidationResult{Errors: []string{err.Error()}}
	}
	return ValidationResult{IsValid: true}
}

type jsFormatter struct{}

func (jsFormatter) format(code string) (FormatResult, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return FormatResult{Code: code}, nil
	}
	return FormatResult{Code: trimmed + ";", Changes: []string{"Added trailing semicolon"}}, nil
}
