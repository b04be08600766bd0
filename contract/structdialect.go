package contract

import "reflect"

// Struct tag keys recognized by the secondary contract dialect, one per
// ParamRole (spec §4.3's "extension point"), named the way
// danielgtaylor/huma looks up its own request-shape tags via
// reflect.StructField.Tag.Lookup.
const (
	tagPath     = "path"
	tagQuery    = "query"
	tagHeader   = "header"
	tagForm     = "form"
	tagURL      = "url"
	tagBody     = "body"
	tagObserver = "observer"
)

// StructOperation describes one operation the way a struct-tag-annotated
// params type would: Params, if non-nil, is a pointer to (or zero value of)
// a struct whose fields carry one of the role tags above. It produces
// exactly the same MethodMetadata as an equivalent OperationSpec built by
// hand — StructOperation is sugar over OperationSpec, not a second parser.
type StructOperation struct {
	InterfaceName string
	MethodName    string

	Verb         string
	Path         string
	Produces     string
	BodyTemplate string

	// Params, if non-nil, is a struct (or pointer to struct) value whose
	// field order determines argument position and whose tags determine
	// role. A field with no recognized tag is treated as RoleBody if it is
	// the only untagged field, else it is skipped.
	Params interface{}

	ReturnsResponse bool
	ReturnsVoid     bool
	ReturnType      reflect.Type
}

// Describe converts a StructOperation into an OperationSpec via struct-tag
// inspection, then hands it to Contract.Parse like any other dialect.
func (Contract) Describe(op StructOperation) (OperationSpec, error) {
	spec := OperationSpec{
		InterfaceName:   op.InterfaceName,
		MethodName:      op.MethodName,
		Verb:            op.Verb,
		Path:            op.Path,
		Produces:        op.Produces,
		BodyTemplate:    op.BodyTemplate,
		ReturnsResponse: op.ReturnsResponse,
		ReturnsVoid:     op.ReturnsVoid,
		ReturnType:      op.ReturnType,
	}

	if op.Params == nil {
		return spec, nil
	}

	t := reflect.TypeOf(op.Params)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return spec, newContractError(spec.ConfigKey(), "struct dialect: Params must be a struct or pointer to struct")
	}

	spec.Params = make([]ParamSpec, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		spec.Params[i] = fieldToParamSpec(f)
	}

	return spec, nil
}

func fieldToParamSpec(f reflect.StructField) ParamSpec {
	switch {
	case hasTag(f, tagPath):
		return ParamSpec{Role: RolePath, Name: tagValue(f, tagPath, f.Name), Type: f.Type}
	case hasTag(f, tagQuery):
		return ParamSpec{Role: RoleQuery, Name: tagValue(f, tagQuery, f.Name), Type: f.Type}
	case hasTag(f, tagHeader):
		return ParamSpec{Role: RoleHeader, Name: tagValue(f, tagHeader, f.Name), Type: f.Type}
	case hasTag(f, tagForm):
		return ParamSpec{Role: RoleForm, Name: tagValue(f, tagForm, f.Name), Type: f.Type}
	case hasTag(f, tagURL):
		return ParamSpec{Role: RoleURL, Type: f.Type}
	case hasTag(f, tagObserver):
		return ParamSpec{Role: RoleObserver, Type: f.Type}
	case hasTag(f, tagBody):
		return ParamSpec{Role: RoleBody, Type: f.Type}
	default:
		return ParamSpec{Role: RoleNone, Type: f.Type}
	}
}

func hasTag(f reflect.StructField, key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

func tagValue(f reflect.StructField, key, fallback string) string {
	v := f.Tag.Get(key)
	if v == "" || v == "true" {
		return fallback
	}
	return v
}
