package contract

import (
	"fmt"
	"reflect"
	"strings"
)

// ParamRole is the role a single argument position plays when an operation
// is invoked: which part of the request it feeds, or whether it carries the
// observer / raw body / URL override instead.
type ParamRole int

const (
	// RoleNone is the zero value: an unmarked position. The contract parser
	// treats it as a raw body argument, the same as RoleBody.
	RoleNone ParamRole = iota
	// RolePath binds the argument to a {name} placeholder appearing in the
	// template's URL path.
	RolePath
	// RoleQuery binds the argument to a query parameter named Name.
	RoleQuery
	// RoleHeader binds the argument to a header named Name.
	RoleHeader
	// RoleForm binds the argument to a form field named Name; requires a
	// bodyTemplate on the operation.
	RoleForm
	// RoleURL marks the argument as a full-URL override for this call.
	RoleURL
	// RoleBody marks the argument as a raw object to run through a
	// BodyEncoder.
	RoleBody
	// RoleObserver marks the argument as the streaming sink.
	RoleObserver
)

func (r ParamRole) String() string {
	switch r {
	case RolePath:
		return "path"
	case RoleQuery:
		return "query"
	case RoleHeader:
		return "header"
	case RoleForm:
		return "form"
	case RoleURL:
		return "url"
	case RoleBody:
		return "body"
	case RoleObserver:
		return "observer"
	default:
		return "none"
	}
}

// ParamSpec describes one argument position of a described operation.
type ParamSpec struct {
	// Role is how this argument position is used.
	Role ParamRole
	// Name is the placeholder/query/header/form field name. Required for
	// RolePath, RoleQuery, RoleHeader, RoleForm; ignored otherwise.
	Name string
	// Type is the Go type of this argument. Used to render the configKey
	// and, for RoleObserver, as the starting point for
	// ResolveObserverElement when ElementType is not set explicitly.
	Type reflect.Type
	// ElementType is the decoded element type of a RoleObserver parameter.
	// If nil, it is resolved from Type via ResolveObserverElement (spec
	// §4.2's Design Note (b) fallback: supplying it here explicitly is
	// equivalent to "the caller passes the element type explicitly
	// alongside the observer").
	ElementType reflect.Type
}

// OperationSpec is a declarative description of one operation: the input to
// Contract.Parse. It stands in for the annotated interface method of the
// source system (spec.md §1) — see SPEC_FULL.md for why Go describes
// operations as data rather than parsing them off a live interface.
type OperationSpec struct {
	// InterfaceName and MethodName together form the configKey (spec §6).
	InterfaceName string
	MethodName    string

	// Verb is the HTTP method. Required, exactly one.
	Verb string
	// Path is appended to the template's URL; may carry a "?k=v&flag"
	// query portion, which RequestTemplate.AppendURL lifts into Queries.
	Path string
	// Produces sets the Content-Type header if non-empty.
	Produces string
	// BodyTemplate sets the template's bodyTemplate. If a RoleBody
	// parameter is also present, its encoded body replaces the template at
	// bind time and the template is not rendered.
	BodyTemplate string

	// Params is the ordered-by-index list of parameter descriptions.
	Params []ParamSpec

	// ReturnsResponse, when true, means the operation's declared return
	// type is the raw Response sentinel (caller owns the body).
	ReturnsResponse bool
	// ReturnsVoid, when true, means the operation has no return value to
	// decode (required to be true when an observer parameter is present).
	ReturnsVoid bool
	// ReturnType is the concrete Go type to decode into, when neither
	// ReturnsResponse nor ReturnsVoid is set.
	ReturnType reflect.Type
}

// ConfigKey renders the canonical operation identity string (spec §6):
// <SimpleInterfaceName>#<methodName>(<SimpleParamType1>,<SimpleParamType2>,…)
//
// Every parameter is included positionally; a parameter with a nil Type
// renders as "interface{}". The URL/observer/body markers are themselves
// ordinary parameter positions and are included like any other.
func (s OperationSpec) ConfigKey() string {
	names := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		names = append(names, simpleTypeName(p.Type))
	}
	return fmt.Sprintf("%s#%s(%s)", s.InterfaceName, s.MethodName, strings.Join(names, ","))
}

func simpleTypeName(t reflect.Type) string {
	if t == nil {
		return "interface{}"
	}
	name := t.String()
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// DecodeKind distinguishes the three possible shapes of MethodMetadata's
// DecodeInto.
type DecodeKind int

const (
	// DecodeValue means DecodeInto names a concrete user type to decode
	// into (the method's declared return type, or an observer's element
	// type).
	DecodeValue DecodeKind = iota
	// DecodeVoid means the response body is drained and discarded.
	DecodeVoid
	// DecodeResponse means the raw *Response is handed back (or
	// pushed, in the streaming case) with ownership of its body.
	DecodeResponse
)

// MethodMetadata is the frozen, immutable-after-parsing record Contract.Parse
// produces for one operation (spec §3).
type MethodMetadata struct {
	ConfigKey string

	// Template is the frozen RequestTemplate snapshot: verb, url, queries,
	// headers, and bodyTemplate (if any) as described, with all {name}
	// placeholders still unresolved.
	Template *RequestTemplate

	// URLIndex, ObserverIndex, BodyIndex are argument positions, or nil if
	// the operation has no such parameter. Pairwise distinct when set.
	URLIndex      *int
	ObserverIndex *int
	BodyIndex     *int

	// FormParams is the ordered list of form field names; non-empty only
	// when Template.BodyTemplate is set and every name here is one of its
	// placeholders.
	FormParams []string

	// IndexToName maps an argument position to the set of placeholder
	// names it supplies values for (path/query/header/form roles). Both
	// dialects produce one ParamSpec per position, so each position
	// currently feeds at most one name.
	IndexToName map[int][]string

	// DecodeKind and DecodeInto together describe what a successful
	// response decodes into.
	DecodeKind DecodeKind
	DecodeInto reflect.Type

	// Params is carried through unchanged from the OperationSpec, for
	// handlers that need role/type lookups beyond IndexToName (e.g. the
	// observer's ElementType, or the body parameter's Type).
	Params []ParamSpec
}

// voidType is the sentinel reflect.Type used when an operation has no
// meaningful return value.
var voidType = reflect.TypeOf(struct{}{})
