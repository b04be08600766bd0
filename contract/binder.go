package contract

import (
	"fmt"

	requester "github.com/cartage-http/declare"
)

// BodyEncoder renders a RoleBody argument into bytes plus a Content-Type, the
// way the root package's BodyMarshaler renders a request body (marshaling.go).
type BodyEncoder interface {
	Encode(v interface{}) (data []byte, contentType string, err error)
}

// BodyEncoderFunc adapts a function to BodyEncoder.
type BodyEncoderFunc func(v interface{}) ([]byte, string, error)

func (f BodyEncoderFunc) Encode(v interface{}) ([]byte, string, error) { return f(v) }

// ArgumentBinder turns a call's argument vector into a resolved Request,
// following spec §4.4: URL override, named placeholder bindings, form
// encoding, and body encoding.
type ArgumentBinder struct {
	// BodyEncoder renders a RoleBody argument. Required only for operations
	// that declare one; JSONBodyEncoder is a sane default.
	BodyEncoder BodyEncoder
}

// NewArgumentBinder constructs an ArgumentBinder using enc to render body
// arguments. A nil enc defaults to JSONBodyEncoder.
func NewArgumentBinder(enc BodyEncoder) *ArgumentBinder {
	if enc == nil {
		enc = JSONBodyEncoder{}
	}
	return &ArgumentBinder{BodyEncoder: enc}
}

// Bind resolves meta's template against argv, returning a frozen Request.
func (b *ArgumentBinder) Bind(meta *MethodMetadata, argv []interface{}) (*Request, error) {
	tmpl := meta.Template

	if meta.URLIndex != nil {
		if override, ok := stringArg(argv, *meta.URLIndex); ok && override != "" {
			tmpl = tmpl.clone()
			tmpl.SetURL(override)
		}
	}

	bindings := map[string]string{}
	droppedQueries := map[string]bool{}

	for idx, names := range meta.IndexToName {
		if idx >= len(argv) {
			continue
		}
		arg := argv[idx]
		for _, name := range names {
			if arg == nil {
				// A nil-bound query placeholder whose template value is
				// exactly "{name}" drops the query key entirely rather than
				// rendering "name=" (spec Open Question, decided in
				// DESIGN.md): any other nil binding substitutes "".
				if isExactQueryPlaceholder(tmpl, name) {
					droppedQueries[name] = true
					continue
				}
				bindings[name] = ""
				continue
			}
			bindings[name] = fmt.Sprint(arg)
		}
	}

	if len(droppedQueries) > 0 {
		tmpl = dropQueries(tmpl, droppedQueries)
	}

	if meta.BodyIndex != nil && *meta.BodyIndex < len(argv) {
		data, contentType, err := b.BodyEncoder.Encode(argv[*meta.BodyIndex])
		if err != nil {
			return nil, err
		}
		tmpl = tmpl.clone()
		tmpl.Body(data, contentType)
	}

	resolved := tmpl.Resolve(bindings)
	return resolved.Request()
}

func stringArg(argv []interface{}, idx int) (string, bool) {
	if idx >= len(argv) || argv[idx] == nil {
		return "", false
	}
	s, ok := argv[idx].(string)
	return s, ok
}

// isExactQueryPlaceholder reports whether name is bound to a query whose
// entire value is the single placeholder "{name}" (as opposed to being
// embedded in a larger literal), the only shape eligible for key-dropping.
func isExactQueryPlaceholder(tmpl *RequestTemplate, name string) bool {
	vals, ok := tmpl.queries.Get(name)
	if !ok {
		return false
	}
	for _, v := range vals {
		if v != "{"+name+"}" {
			return false
		}
	}
	return true
}

func dropQueries(tmpl *RequestTemplate, drop map[string]bool) *RequestTemplate {
	t := tmpl.clone()
	kept := newOrderedMultimap()
	for _, k := range t.queries.Names() {
		if drop[k] {
			continue
		}
		vals, _ := t.queries.Get(k)
		if len(vals) == 0 {
			kept.AddFlag(k)
		} else {
			kept.Add(k, vals...)
		}
	}
	t.queries = kept
	return t
}

// JSONBodyEncoder is the default BodyEncoder. It delegates to the root
// package's JSONMarshaler (marshaling.go), so a declared interface's body
// encoding goes through the same BodyMarshaler collaborator a hand-built
// Requester would use.
type JSONBodyEncoder struct{}

func (JSONBodyEncoder) Encode(v interface{}) ([]byte, string, error) {
	return (&requester.JSONMarshaler{}).Marshal(v)
}

// FormBodyEncoder renders url.Values, a map, or a `url`-tagged struct as a
// urlencoded form body via the root package's FormMarshaler (which in turn
// uses github.com/google/go-querystring for struct values); it exists for
// RoleBody parameters that are themselves a pre-built form (as opposed to
// the FormParams placeholder path, which goes through bodyTemplate).
type FormBodyEncoder struct{}

func (FormBodyEncoder) Encode(v interface{}) ([]byte, string, error) {
	return (&requester.FormMarshaler{}).Marshal(v)
}
