// Package datalayer renders the analytics dataLayer push script for a page.
//
// Automatic variables come from the host page context and are always
// rendered. Custom variables are a premium feature: they are merged only when
// the license gate reports an active license, and never replace automatic
// keys.
package datalayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
)

// Variables is a flat set of dataLayer keys.
type Variables map[string]any

// validName matches accepted custom variable names.
var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]{0,63}$`)

var scriptTemplate = template.Must(template.New("datalayer").Parse(`{{if .Debug}}<!-- DataLayer Manager: Auto-detected {{.Count}} variables -->
{{end}}<script type="text/javascript">
try {
	window.dataLayer = window.dataLayer || [];
	window.dataLayer.push({{.JSON}});
} catch (error) {
	console.error('DataLayer Manager: Error injecting variables', error);
}
</script>
`))

const emptyComment = "<!-- DataLayer Manager: No variables detected -->\n"

// Filter rewrites the variables before they are rendered.
type Filter func(Variables) Variables

// Option configures an Injector.
type Option func(*Injector)

// WithFilter appends a filter applied after custom variables are merged.
func WithFilter(f Filter) Option {
	return func(i *Injector) {
		i.filters = append(i.filters, f)
	}
}

// WithLogger sets the logger used for rejected custom variables.
func WithLogger(l zerolog.Logger) Option {
	return func(i *Injector) {
		i.logger = l
	}
}

// Injector builds and renders dataLayer scripts.
type Injector struct {
	gate    dlmlicense.Gate
	filters []Filter
	logger  zerolog.Logger
}

// NewInjector creates an Injector gated by gate.
func NewInjector(gate dlmlicense.Gate, opts ...Option) *Injector {
	i := &Injector{gate: gate, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ValidName reports whether name is an acceptable custom variable name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Build returns the variables to push. The gate is consulted only when there
// are custom variables to merge.
func (i *Injector) Build(ctx context.Context, automatic, custom Variables) Variables {
	out := make(Variables, len(automatic)+len(custom))
	for k, v := range automatic {
		out[k] = v
	}

	if len(custom) > 0 && i.gate != nil && i.gate.IsPremiumActive(ctx) {
		for _, k := range sortedKeys(custom) {
			if !ValidName(k) {
				i.logger.Warn().Str("variable", k).Msg("skipping custom variable with invalid name")
				continue
			}
			if _, exists := automatic[k]; exists {
				i.logger.Debug().Str("variable", k).Msg("custom variable shadows automatic key")
				continue
			}
			out[k] = custom[k]
		}
	}

	for _, f := range i.filters {
		out = f(out)
	}
	return out
}

// Render returns the script tag for the page, or "" when there is nothing to
// push. With debug set, an HTML comment describing the result is included.
func (i *Injector) Render(ctx context.Context, automatic, custom Variables, debug bool) (string, error) {
	vars := i.Build(ctx, automatic, custom)
	if len(vars) == 0 {
		if debug {
			return emptyComment, nil
		}
		return "", nil
	}

	// encoding/json escapes <, > and & so the payload cannot close the script tag.
	payload, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("encode datalayer variables: %w", err)
	}

	var buf bytes.Buffer
	err = scriptTemplate.Execute(&buf, struct {
		Debug bool
		Count int
		JSON  string
	}{debug, len(vars), string(payload)})
	if err != nil {
		return "", fmt.Errorf("render datalayer script: %w", err)
	}
	return buf.String(), nil
}

func sortedKeys(v Variables) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
