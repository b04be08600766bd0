package contract

import (
	"fmt"
	"reflect"
)

// responseType is the sentinel reflect.Type used when a method's declared
// return is the raw Response.
var responseType = reflect.TypeOf((*Response)(nil)).Elem()

// Contract parses OperationSpec values into MethodMetadata (spec §4.3).
// The zero value is ready to use.
type Contract struct{}

// Parse parses one operation description. It is the only entry point of
// the primary contract dialect; the struct-tag dialect (structdialect.go)
// produces OperationSpec values and feeds them through the same Parse.
func (Contract) Parse(spec OperationSpec) (*MethodMetadata, error) {
	configKey := spec.ConfigKey()

	if spec.Verb == "" {
		return nil, newContractError(configKey, ReasonMissingOrAmbiguousVerb)
	}

	tmpl := NewRequestTemplate().Method(spec.Verb)
	if spec.Path != "" {
		tmpl.AppendURL(spec.Path)
	}
	if spec.Produces != "" {
		tmpl.Header("Content-Type", spec.Produces)
	}
	if spec.BodyTemplate != "" {
		tmpl.BodyTemplate(spec.BodyTemplate)
	}

	meta := &MethodMetadata{
		ConfigKey:   configKey,
		Template:    tmpl,
		IndexToName: map[int][]string{},
		Params:      spec.Params,
	}

	var urlIndex, observerIndex, bodyIndex *int
	var formParams []string

	for i, p := range spec.Params {
		idx := i
		switch p.Role {
		case RoleURL:
			if urlIndex != nil {
				return nil, newContractError(configKey, ReasonRoleConflict)
			}
			urlIndex = &idx
		case RolePath:
			meta.IndexToName[idx] = append(meta.IndexToName[idx], p.Name)
		case RoleQuery:
			tmpl.Query(p.Name, "{"+p.Name+"}")
			meta.IndexToName[idx] = append(meta.IndexToName[idx], p.Name)
		case RoleHeader:
			tmpl.Header(p.Name, "{"+p.Name+"}")
			meta.IndexToName[idx] = append(meta.IndexToName[idx], p.Name)
		case RoleForm:
			formParams = append(formParams, p.Name)
			meta.IndexToName[idx] = append(meta.IndexToName[idx], p.Name)
		case RoleObserver:
			if observerIndex != nil {
				return nil, newContractError(configKey, ReasonRoleConflict)
			}
			observerIndex = &idx
		case RoleBody, RoleNone:
			// An unmarked parameter (spec §4.3 step 6, last bullet) is
			// treated as a raw body argument, same as an explicit RoleBody.
			if bodyIndex != nil {
				return nil, newContractError(configKey, ReasonRoleConflict)
			}
			bodyIndex = &idx
		}
	}

	if len(formParams) > 0 && !tmpl.HasBodyTemplate() {
		return nil, newContractError(configKey, ReasonFormRequiresBodyTemplate)
	}
	inBody := map[string]bool{}
	for _, n := range placeholdersIn(tmpl.BodyTemplateString()) {
		inBody[n] = true
	}
	for _, n := range formParams {
		if !inBody[n] {
			return nil, newContractError(configKey, fmt.Sprintf("%s: %s", ReasonFormRequiresBodyTemplate, n))
		}
	}
	meta.FormParams = formParams

	if err := validateDisjoint(configKey, urlIndex, observerIndex, bodyIndex); err != nil {
		return nil, err
	}

	if observerIndex != nil {
		if !spec.ReturnsVoid {
			return nil, newContractError(configKey, ReasonObserverMethodMustVoid)
		}
		if *observerIndex != len(spec.Params)-1 {
			return nil, newContractError(configKey, ReasonObserverMustBeLast)
		}
		p := spec.Params[*observerIndex]
		elemType := p.ElementType
		if elemType == nil {
			var err error
			elemType, err = ResolveObserverElement(p.Type)
			if err != nil {
				return nil, newContractError(configKey, err.Error())
			}
		}
		meta.DecodeKind = DecodeValue
		meta.DecodeInto = elemType
	} else {
		switch {
		case spec.ReturnsResponse:
			meta.DecodeKind = DecodeResponse
			meta.DecodeInto = responseType
		case spec.ReturnsVoid:
			meta.DecodeKind = DecodeVoid
			meta.DecodeInto = voidType
		default:
			meta.DecodeKind = DecodeValue
			meta.DecodeInto = spec.ReturnType
		}
	}

	meta.URLIndex = urlIndex
	meta.ObserverIndex = observerIndex
	meta.BodyIndex = bodyIndex

	if err := validateUnboundPlaceholders(configKey, meta); err != nil {
		return nil, err
	}

	return meta, nil
}

func validateDisjoint(configKey string, idxs ...*int) error {
	seen := map[int]bool{}
	for _, idx := range idxs {
		if idx == nil {
			continue
		}
		if seen[*idx] {
			return newContractError(configKey, ReasonRoleConflict)
		}
		seen[*idx] = true
	}
	return nil
}

// validateUnboundPlaceholders enforces that every {name} placeholder in the
// url/headers/bodyTemplate resolves to a named parameter, EXCEPT query
// placeholders, which are commonly left intentionally unresolved templates
// (spec §4.3 step 8).
func validateUnboundPlaceholders(configKey string, meta *MethodMetadata) error {
	bound := map[string]bool{}
	for _, names := range meta.IndexToName {
		for _, n := range names {
			bound[n] = true
		}
	}

	path, _ := splitQuery(meta.Template.url)
	for _, n := range placeholdersIn(path) {
		if !bound[n] {
			return newContractError(configKey, fmt.Sprintf("%s: %s", ReasonUnboundPlaceholder, n))
		}
	}
	for _, k := range meta.Template.headers.Names() {
		vals, _ := meta.Template.headers.Get(k)
		for _, v := range vals {
			for _, n := range placeholdersIn(v) {
				if !bound[n] {
					return newContractError(configKey, fmt.Sprintf("%s: %s", ReasonUnboundPlaceholder, n))
				}
			}
		}
	}
	if meta.Template.bodyTemplate != "" {
		for _, n := range placeholdersIn(meta.Template.bodyTemplate) {
			if !bound[n] {
				return newContractError(configKey, fmt.Sprintf("%s: %s", ReasonUnboundPlaceholder, n))
			}
		}
	}
	// Query placeholders are intentionally exempt: {name} here is commonly
	// an optional filter the caller may never bind.
	return nil
}
