package contract

import (
	"fmt"
	"regexp"
	"strings"
)

// orderedMultimap is an insertion-ordered multimap: both the order keys were
// first seen in, and the order values were added within a key, are
// preserved. It backs RequestTemplate's Queries and Headers, satisfying the
// spec's "ordered-insertion multiset of string values" requirement and the
// "a keys-only entry renders as just k" flag case.
type orderedMultimap struct {
	order  []string
	values map[string][]string
}

func newOrderedMultimap() *orderedMultimap {
	return &orderedMultimap{values: map[string][]string{}}
}

func (m *orderedMultimap) ensureKey(name string) {
	if _, ok := m.values[name]; !ok {
		m.order = append(m.order, name)
		m.values[name] = nil
	}
}

// Add appends a value to name, creating the key (with no prior values) if
// necessary.
func (m *orderedMultimap) Add(name string, vals ...string) {
	m.ensureKey(name)
	m.values[name] = append(m.values[name], vals...)
}

// AddFlag ensures name is present with no values (a "flag" query/header).
func (m *orderedMultimap) AddFlag(name string) {
	m.ensureKey(name)
}

func (m *orderedMultimap) Get(name string) ([]string, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *orderedMultimap) Names() []string {
	return m.order
}

func (m *orderedMultimap) clone() *orderedMultimap {
	c := newOrderedMultimap()
	c.order = append([]string(nil), m.order...)
	for k, v := range m.values {
		c.values[k] = append([]string(nil), v...)
	}
	return c
}

// placeholderPattern matches {name} tokens in a url/query/header/body
// template. Names are restricted to the usual identifier charset.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

func placeholdersIn(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// RequestTemplate is a mutable HTTP request builder during construction and
// an immutable snapshot once parsed; Resolve() always returns a new,
// independent RequestTemplate rather than mutating the receiver, so a single
// parsed template is safe to reuse across many calls (spec §4.1).
type RequestTemplate struct {
	method       string
	url          string
	queries      *orderedMultimap
	headers      *orderedMultimap
	body         []byte
	bodyTemplate string
	hasBody      bool // distinguishes a nil/empty body from "no body set"
}

// NewRequestTemplate returns an empty RequestTemplate.
func NewRequestTemplate() *RequestTemplate {
	return &RequestTemplate{
		queries: newOrderedMultimap(),
		headers: newOrderedMultimap(),
	}
}

// Method sets the HTTP verb.
func (t *RequestTemplate) Method(verb string) *RequestTemplate {
	t.method = verb
	return t
}

// AppendURL appends fragment to the template's URL. Any "?k=v&k2=v2&flag"
// query portion of fragment is lifted out: the path becomes the portion
// before "?", and each "k=v" pair (or bare "k" flag) is merged into
// Queries, preserving insertion order. Repeated keys accumulate.
func (t *RequestTemplate) AppendURL(fragment string) *RequestTemplate {
	path, query := splitQuery(fragment)
	t.url += path
	t.mergeRawQuery(query)
	return t
}

// SetURL replaces the template's URL (used for a full-URL-override
// parameter); the query portion, if any, is lifted the same way as
// AppendURL.
func (t *RequestTemplate) SetURL(fragment string) *RequestTemplate {
	path, query := splitQuery(fragment)
	t.url = path
	t.mergeRawQuery(query)
	return t
}

func splitQuery(fragment string) (path, query string) {
	if idx := strings.IndexByte(fragment, '?'); idx >= 0 {
		return fragment[:idx], fragment[idx+1:]
	}
	return fragment, ""
}

func (t *RequestTemplate) mergeRawQuery(query string) {
	if query == "" {
		return
	}
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			t.queries.Add(part[:eq], part[eq+1:])
		} else {
			t.queries.AddFlag(part)
		}
	}
}

// Query adds one or more values to a query parameter.
func (t *RequestTemplate) Query(name string, values ...string) *RequestTemplate {
	if len(values) == 0 {
		t.queries.AddFlag(name)
		return t
	}
	t.queries.Add(name, values...)
	return t
}

// Header adds one or more values to a header.
func (t *RequestTemplate) Header(name string, values ...string) *RequestTemplate {
	t.headers.Add(name, values...)
	return t
}

// Body sets a literal, final body. Mutually exclusive with BodyTemplate:
// setting one clears the other.
func (t *RequestTemplate) Body(b []byte, contentType string) *RequestTemplate {
	t.body = b
	t.hasBody = true
	t.bodyTemplate = ""
	if contentType != "" {
		t.setContentTypeIfAbsent(contentType)
	}
	return t
}

// BodyTemplate sets a template string to be rendered into the body on
// Resolve. Mutually exclusive with Body.
func (t *RequestTemplate) BodyTemplate(tmpl string) *RequestTemplate {
	t.bodyTemplate = tmpl
	t.hasBody = false
	t.body = nil
	return t
}

func (t *RequestTemplate) setContentTypeIfAbsent(contentType string) {
	if _, ok := t.headers.Get("Content-Type"); ok {
		return
	}
	t.headers.Add("Content-Type", contentType)
}

// HasBodyTemplate reports whether a bodyTemplate (rather than a literal
// body) is set.
func (t *RequestTemplate) HasBodyTemplate() bool { return t.bodyTemplate != "" }

// BodyTemplateString returns the raw bodyTemplate string.
func (t *RequestTemplate) BodyTemplateString() string { return t.bodyTemplate }

// Placeholders returns the set of distinct {name} tokens appearing across
// the url path, query values, header values, and bodyTemplate.
func (t *RequestTemplate) Placeholders() map[string]bool {
	names := map[string]bool{}
	path, _ := splitQuery(t.url)
	for _, n := range placeholdersIn(path) {
		names[n] = true
	}
	for _, k := range t.queries.Names() {
		vals, _ := t.queries.Get(k)
		for _, v := range vals {
			for _, n := range placeholdersIn(v) {
				names[n] = true
			}
		}
	}
	for _, k := range t.headers.Names() {
		vals, _ := t.headers.Get(k)
		for _, v := range vals {
			for _, n := range placeholdersIn(v) {
				names[n] = true
			}
		}
	}
	if t.bodyTemplate != "" {
		for _, n := range placeholdersIn(t.bodyTemplate) {
			names[n] = true
		}
	}
	return names
}

// clone returns a deep copy of t.
func (t *RequestTemplate) clone() *RequestTemplate {
	return &RequestTemplate{
		method:       t.method,
		url:          t.url,
		queries:      t.queries.clone(),
		headers:      t.headers.clone(),
		body:         append([]byte(nil), t.body...),
		bodyTemplate: t.bodyTemplate,
		hasBody:      t.hasBody,
	}
}

// isUnreserved reports whether b is in the RFC 3986 unreserved set,
// which substituted path/query values are never escaped.
func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	}
	return false
}

// encodeValue percent-encodes s for inclusion in a URL path segment or
// query value, leaving only RFC 3986 unreserved characters unescaped. This
// is deliberately stricter than net/url's PathEscape/QueryEscape (which
// leave various sub-delims untouched): any reserved character in a bound
// argument is data, not URI grammar, so it is always escaped.
func encodeValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// substitutePlaceholders replaces every {name} in s using lookup. Names not
// present in lookup are left as literal "{name}" text (spec: "unbound
// placeholders remain literal"). When encode is true, substituted values
// are run through encodeValue first.
func substitutePlaceholders(s string, lookup map[string]string, encode bool) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		val, ok := lookup[name]
		if !ok {
			return match
		}
		if encode {
			return encodeValue(val)
		}
		return val
	})
}

var bracesEscapeReplacer = strings.NewReplacer("%7B", "{", "%7D", "}", "%7b", "{", "%7d", "}")

// Resolve expands every {name} placeholder across the url path, query
// values, header values, and bodyTemplate, returning a new, independent
// RequestTemplate. Substitution scope and percent-encoding rules are
// described in spec.md §4.1.
func (t *RequestTemplate) Resolve(bindings map[string]string) *RequestTemplate {
	r := t.clone()

	path, _ := splitQuery(r.url)
	r.url = substitutePlaceholders(path, bindings, true)

	resolvedQueries := newOrderedMultimap()
	for _, k := range r.queries.Names() {
		vals, _ := r.queries.Get(k)
		if len(vals) == 0 {
			resolvedQueries.AddFlag(k)
			continue
		}
		for _, v := range vals {
			resolvedQueries.Add(k, substitutePlaceholders(v, bindings, true))
		}
	}
	r.queries = resolvedQueries

	resolvedHeaders := newOrderedMultimap()
	for _, k := range r.headers.Names() {
		vals, _ := r.headers.Get(k)
		if len(vals) == 0 {
			resolvedHeaders.AddFlag(k)
			continue
		}
		for _, v := range vals {
			resolvedHeaders.Add(k, substitutePlaceholders(v, bindings, false))
		}
	}
	r.headers = resolvedHeaders

	if r.bodyTemplate != "" {
		rendered := substitutePlaceholders(r.bodyTemplate, bindings, false)
		rendered = bracesEscapeReplacer.Replace(rendered)
		r.body = []byte(rendered)
		r.bodyTemplate = ""
		r.hasBody = true
	}

	return r
}

// Request is the frozen (method, url, headers, body) tuple RequestTemplate
// produces once every placeholder has been resolved (spec §3).
type Request struct {
	Method  string
	URL     string
	Headers map[string][]string
	Body    []byte
}

// Request validates that no {name} placeholder remains and returns the
// frozen Request. Returns a *TemplateError (ReasonTemplateNotFullyResolved)
// if any placeholder survived resolution.
func (t *RequestTemplate) Request() (*Request, error) {
	if remaining := t.Placeholders(); len(remaining) > 0 {
		for name := range remaining {
			return nil, newTemplateError(ReasonTemplateNotFullyResolved, name)
		}
	}

	headers := map[string][]string{}
	for _, k := range t.headers.Names() {
		vals, _ := t.headers.Get(k)
		headers[k] = append([]string(nil), vals...)
	}

	return &Request{
		Method:  t.method,
		URL:     t.renderURL(),
		Headers: headers,
		Body:    append([]byte(nil), t.body...),
	}, nil
}

func (t *RequestTemplate) renderURL() string {
	path, _ := splitQuery(t.url)
	qs := t.queryString()
	if qs == "" {
		return path
	}
	return path + "?" + qs
}

func (t *RequestTemplate) queryString() string {
	var parts []string
	for _, k := range t.queries.Names() {
		vals, _ := t.queries.Get(k)
		if len(vals) == 0 {
			parts = append(parts, k)
			continue
		}
		for _, v := range vals {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}

// String renders the template in the textual form used by logs and test
// assertions (spec §6):
//
//	<METHOD> <url>[?<queries>] HTTP/1.1
//	<Header-Name>: <value>
//	...
//
//	<body-bytes-or-template>
func (t *RequestTemplate) String() string {
	var b strings.Builder
	qs := t.queryString()
	if qs != "" {
		fmt.Fprintf(&b, "%s %s?%s HTTP/1.1\n", t.method, firstPath(t.url), qs)
	} else {
		fmt.Fprintf(&b, "%s %s HTTP/1.1\n", t.method, firstPath(t.url))
	}
	for _, k := range t.headers.Names() {
		vals, _ := t.headers.Get(k)
		if len(vals) == 0 {
			fmt.Fprintf(&b, "%s\n", k)
			continue
		}
		for _, v := range vals {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	b.WriteString("\n")
	if t.bodyTemplate != "" {
		b.WriteString(t.bodyTemplate)
	} else if len(t.body) > 0 {
		b.Write(t.body)
	}
	return b.String()
}

func firstPath(u string) string {
	p, _ := splitQuery(u)
	return p
}
