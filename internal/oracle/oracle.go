// Package oracle evaluates TypeScript snippets in a reference engine so
// runtime behavior can be checked against it: esbuild strips the types and
// QuickJS runs the result.
package oracle

import (
	"fmt"
	"strings"
	"sync"

	esbuild "github.com/evanw/esbuild/pkg/api"
	"modernc.org/quickjs"
)

// Outcome prefixes. An evaluation yields "ok:" followed by String(result),
// or "throw:" followed by the name of the thrown error.
const (
	OK    = "ok:"
	Throw = "throw:"
)

// Oracle owns one QuickJS VM. Evaluations are serialized.
type Oracle struct {
	mu sync.Mutex
	vm *quickjs.VM
}

// New starts a reference VM.
func New() (*Oracle, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("oracle: creating VM: %w", err)
	}
	return &Oracle{vm: vm}, nil
}

// Close releases the VM.
func (o *Oracle) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.vm != nil {
		o.vm.Close()
		o.vm = nil
	}
}

// Transpile turns TypeScript into plain JavaScript.
func Transpile(ts string) (string, error) {
	res := esbuild.Transform(ts, esbuild.TransformOptions{
		Loader: esbuild.LoaderTS,
		Target: esbuild.ES2022,
	})
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, m := range res.Errors {
			msgs[i] = m.Text
		}
		return "", fmt.Errorf("oracle: transpile: %s", strings.Join(msgs, "; "))
	}
	return string(res.Code), nil
}

// Eval evaluates a TypeScript expression and returns its outcome string.
// Each call runs in its own function scope, so snippets cannot see each
// other's bindings.
func (o *Oracle) Eval(expr string) (string, error) {
	src := fmt.Sprintf(`(() => {
	try {
		return %q + String((%s));
	} catch (e) {
		return %q + ((e as Error) && (e as Error).name);
	}
})()`, OK, expr, Throw)
	js, err := Transpile(src)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.vm == nil {
		return "", fmt.Errorf("oracle: VM closed")
	}
	res, err := o.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return "", fmt.Errorf("oracle: eval %q: %w", expr, err)
	}
	s, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("oracle: eval %q: unexpected result %T", expr, res)
	}
	return s, nil
}
