/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"fmt"
	"html"
	"strings"
)

// TemplateProcessor is a named transform applied to a rendered template
// value before substitution.
type TemplateProcessor func(string) string

// templateProcessors replaces the dynamic module:function callable
// resolution of the original tool with a closed registry: every name a
// document can reference is listed here, so an unknown name is rejected
// at parse time rather than failing the first time a template renders.
var templateProcessors = map[string]TemplateProcessor{
	"html_escape": html.EscapeString,
	"upper":       strings.ToUpper,
	"lower":       strings.ToLower,
}

// ErrUnknownTemplateProcessor is returned by ParseDocument when a
// template_processor name isn't in the registry.
var ErrUnknownTemplateProcessor = fmt.Errorf("unknown template_processor")

// ResolveTemplateProcessor looks up name in the registry. An empty name
// resolves to the identity transform.
func ResolveTemplateProcessor(name string) (TemplateProcessor, error) {
	if name == "" {
		return func(s string) string { return s }, nil
	}
	p, ok := templateProcessors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplateProcessor, name)
	}
	return p, nil
}
