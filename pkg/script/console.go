package script

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
)

// installConsole routes console output into the diagnostics sink.
func (r *Realm) installConsole() {
	console := r.vm.NewObject()
	log := func(sev diag.Severity) func(args ...goja.Value) {
		return func(args ...goja.Value) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = formatValue(a)
			}
			r.sink.Report(diag.Diagnostic{
				Severity: sev,
				Stage:    diag.StageScript,
				Message:  strings.Join(parts, " "),
			})
		}
	}
	console.Set("log", log(diag.Info))
	console.Set("info", log(diag.Info))
	console.Set("warn", log(diag.Warning))
	console.Set("error", log(diag.Error))
	r.vm.Set("console", console)
}

func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return fmt.Sprintf("%v", v.Export())
}
