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
	"strings"

	"github.com/BurntSushi/toml"
)

// knownOptions enumerates every recognized Settings key, normalized (hyphens
// folded to underscores, lower-cased). Anything else in the document is a
// parse-time error.
var knownOptions = map[string]bool{
	"file_path":            true,
	"timezone":             true,
	"discard_before":       true,
	"before_context":       true,
	"after_context":        true,
	"pattern":              true,
	"except_pattern":       true,
	"discard_after":        true,
	"host":                 true,
	"port":                 true,
	"uuid":                 true,
	"ssl_keyfile":          true,
	"ssl_keyfile_password": true,
	"ssl_certificate":      true,
	"header_template":      true,
	"footer_template":      true,
	"template_processor":   true,
}

// section is a single parsed table (or the implicit top-level scalars):
// the typed Settings plus the set of keys that were actually present, so
// layering can distinguish "not set" from "set to the zero value".
type section struct {
	settings Settings
	set      map[string]bool
}

// Document is a fully parsed settings file: the top-level defaults plus
// every named profile. It is immutable once built.
type Document struct {
	defaults section
	profiles map[string]section
}

// ParseDocument parses a TOML-like settings document: scalar keys above the
// first table are the defaults, each [table] is a named profile layered
// over those defaults.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}

	doc := &Document{profiles: map[string]section{}}
	top := map[string]interface{}{}
	for k, v := range raw {
		if tbl, ok := v.(map[string]interface{}); ok {
			sec, err := extractSection(tbl)
			if err != nil {
				return nil, fmt.Errorf("profile %q: %w", k, err)
			}
			doc.profiles[k] = sec
		} else {
			top[k] = v
		}
	}
	sec, err := extractSection(top)
	if err != nil {
		return nil, fmt.Errorf("top-level: %w", err)
	}
	doc.defaults = sec
	return doc, nil
}

// Effective returns the layered Settings for the named profile: top-level
// defaults with that profile's explicitly-set values overlaid. An empty
// name returns just the defaults. Synthetic (#-prefixed) profile names,
// including the reserved "#top-level" identity, can never be selected.
func (d *Document) Effective(name string) (Settings, error) {
	merged := d.defaults.settings
	if name == "" {
		return merged, nil
	}
	if strings.HasPrefix(name, "#") {
		return Settings{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	p, ok := d.profiles[name]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	overlay(&merged, p)
	return merged, nil
}

// overlay writes every key present in p.set from p.settings into dst.
func overlay(dst *Settings, p section) {
	if p.set["file_path"] {
		dst.FilePath = p.settings.FilePath
	}
	if p.set["timezone"] {
		dst.Timezone = p.settings.Timezone
	}
	if p.set["discard_before"] {
		dst.DiscardBefore = p.settings.DiscardBefore
	}
	if p.set["before_context"] {
		dst.BeforeContext = p.settings.BeforeContext
	}
	if p.set["after_context"] {
		dst.AfterContext = p.settings.AfterContext
	}
	if p.set["pattern"] {
		dst.Pattern = p.settings.Pattern
	}
	if p.set["except_pattern"] {
		dst.ExceptPattern = p.settings.ExceptPattern
	}
	if p.set["discard_after"] {
		dst.DiscardAfter = p.settings.DiscardAfter
	}
	if p.set["host"] {
		dst.Host = p.settings.Host
	}
	if p.set["port"] {
		dst.Port = p.settings.Port
	}
	if p.set["uuid"] {
		dst.UUID = p.settings.UUID
	}
	if p.set["ssl_keyfile"] {
		dst.SSLKeyfile = p.settings.SSLKeyfile
	}
	if p.set["ssl_keyfile_password"] {
		dst.SSLKeyfilePassword = p.settings.SSLKeyfilePassword
	}
	if p.set["ssl_certificate"] {
		dst.SSLCertificate = p.settings.SSLCertificate
	}
	if p.set["header_template"] {
		dst.HeaderTemplate = p.settings.HeaderTemplate
	}
	if p.set["footer_template"] {
		dst.FooterTemplate = p.settings.FooterTemplate
	}
	if p.set["template_processor"] {
		dst.TemplateProcessor = p.settings.TemplateProcessor
	}
}

// extractSection validates and types a single raw TOML table (or the
// top-level scalar set) into a section, rejecting unknown options and
// mismatched types by name.
func extractSection(raw map[string]interface{}) (section, error) {
	m := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		m[strings.ToLower(strings.ReplaceAll(k, "-", "_"))] = v
	}
	for k := range m {
		if !knownOptions[k] {
			return section{}, fmt.Errorf("%w: %s", ErrUnknownOption, k)
		}
	}

	sec := section{set: make(map[string]bool, len(m))}
	var err error
	assign := func(key string, fn func(v interface{}) error) {
		if err != nil {
			return
		}
		v, ok := m[key]
		if !ok {
			return
		}
		if e := fn(v); e != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTypeMismatch, key, e)
			return
		}
		sec.set[key] = true
	}

	assign("file_path", func(v interface{}) (e error) { sec.settings.FilePath, e = asString(v); return })
	assign("timezone", func(v interface{}) (e error) { sec.settings.Timezone, e = asString(v); return })
	assign("discard_before", func(v interface{}) (e error) { sec.settings.DiscardBefore, e = asString(v); return })
	assign("before_context", func(v interface{}) (e error) { sec.settings.BeforeContext, e = asInt(v); return })
	assign("after_context", func(v interface{}) (e error) { sec.settings.AfterContext, e = asInt(v); return })
	assign("pattern", func(v interface{}) (e error) { sec.settings.Pattern, e = asString(v); return })
	assign("except_pattern", func(v interface{}) (e error) { sec.settings.ExceptPattern, e = asString(v); return })
	assign("discard_after", func(v interface{}) (e error) { sec.settings.DiscardAfter, e = asString(v); return })
	assign("host", func(v interface{}) (e error) { sec.settings.Host, e = asString(v); return })
	assign("port", func(v interface{}) (e error) { p, e := asInt(v); sec.settings.Port = uint16(p); return e })
	assign("uuid", func(v interface{}) (e error) { sec.settings.UUID, e = asString(v); return })
	assign("ssl_keyfile", func(v interface{}) (e error) { sec.settings.SSLKeyfile, e = asString(v); return })
	assign("ssl_keyfile_password", func(v interface{}) (e error) { sec.settings.SSLKeyfilePassword, e = asString(v); return })
	assign("ssl_certificate", func(v interface{}) (e error) { sec.settings.SSLCertificate, e = asString(v); return })
	assign("header_template", func(v interface{}) (e error) { sec.settings.HeaderTemplate, e = asString(v); return })
	assign("footer_template", func(v interface{}) (e error) { sec.settings.FooterTemplate, e = asString(v); return })
	assign("template_processor", func(v interface{}) (e error) { sec.settings.TemplateProcessor, e = asString(v); return })

	if err != nil {
		return section{}, err
	}
	if sec.set["template_processor"] {
		if _, e := ResolveTemplateProcessor(sec.settings.TemplateProcessor); e != nil {
			return section{}, e
		}
	}
	return sec, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asInt(v interface{}) (int, error) {
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	return int(i), nil
}
