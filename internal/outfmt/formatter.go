package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// Formatter handles output formatting for commands.
type Formatter struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{ctx: ctx, out: out, errOut: errOut}
}

// Output writes a single document. JSON modes honor the query and compact
// settings; text mode prints the top-level keys of an object as an aligned table.
func (f *Formatter) Output(data any) error {
	if IsJSON(f.ctx) {
		return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
	}
	return f.writeText(data)
}

// OutputAll writes several documents. JSONL emits one line each; JSON wraps
// them in an array; text separates the tables with a blank line.
func (f *Formatter) OutputAll(items []any) error {
	switch ModeFromContext(f.ctx) {
	case JSONL:
		for _, item := range items {
			if err := WriteJSONFiltered(f.out, item, GetQuery(f.ctx), true); err != nil {
				return err
			}
		}
		return nil
	case JSON:
		if items == nil {
			items = []any{}
		}
		return WriteJSONFiltered(f.out, items, GetQuery(f.ctx), IsCompact(f.ctx))
	default:
		for i, item := range items {
			if i > 0 {
				_, _ = fmt.Fprintln(f.out)
			}
			if err := f.writeText(item); err != nil {
				return err
			}
		}
		return nil
	}
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}

func (f *Formatter) writeText(data any) error {
	m, ok := asObject(data)
	if !ok {
		return WriteJSON(f.out, data, false)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(f.out, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, TextValue(m[k]))
	}
	return tw.Flush()
}

// TextValue renders a JSON value for a text cell. Strings and numbers are
// printed verbatim; composites as compact JSON.
func TextValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func asObject(data any) (map[string]any, bool) {
	if m, ok := data.(map[string]any); ok {
		return m, true
	}
	// Named map types such as api.Response.
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
