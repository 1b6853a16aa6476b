package sequence

import (
	"context"
	"strings"

	"seqcode/domain/core"
	"seqcode/domain/record"
)

// Placeholder is one {name} or {lookup.name} token inside a prefix or
// suffix template.
type Placeholder struct {
	Raw           string
	AttributeName string
	ParentLookup  string
}

// IsParent reports whether the placeholder traverses a lookup attribute to a
// related record. Only one level of indirection is supported.
func (p Placeholder) IsParent() bool {
	return p.ParentLookup != ""
}

// RelatedLookup resolves an attribute on the record referenced by a lookup
// attribute of the target record.
type RelatedLookup interface {
	RelatedValue(ctx context.Context, rec record.Record, lookupAttribute, attributeName string) (core.Value, error)
}

type templateSegment struct {
	literal     string
	placeholder *Placeholder
}

func parseSegments(template string) ([]templateSegment, error) {
	var segments []templateSegment
	var literal strings.Builder
	var param strings.Builder
	inParam := false

	for _, r := range template {
		switch {
		case r == '{' && inParam:
			return nil, core.NewTemplateError("nested parameter braces")
		case r == '{':
			if literal.Len() > 0 {
				segments = append(segments, templateSegment{literal: literal.String()})
				literal.Reset()
			}
			inParam = true
		case r == '}' && !inParam:
			return nil, core.NewTemplateError("unbalanced closing brace")
		case r == '}':
			p, err := parsePlaceholder(param.String())
			if err != nil {
				return nil, err
			}
			segments = append(segments, templateSegment{placeholder: p})
			param.Reset()
			inParam = false
		case inParam:
			param.WriteRune(r)
		default:
			literal.WriteRune(r)
		}
	}
	if inParam {
		return nil, core.NewTemplateError("unbalanced opening brace")
	}
	if literal.Len() > 0 {
		segments = append(segments, templateSegment{literal: literal.String()})
	}
	return segments, nil
}

func parsePlaceholder(body string) (*Placeholder, error) {
	if strings.TrimSpace(body) == "" {
		return nil, core.NewTemplateError("empty parameter")
	}
	parts := strings.Split(body, ".")
	switch len(parts) {
	case 1:
		return &Placeholder{Raw: "{" + body + "}", AttributeName: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return nil, core.NewTemplateError("malformed parent parameter " + "{" + body + "}")
		}
		return &Placeholder{Raw: "{" + body + "}", ParentLookup: parts[0], AttributeName: parts[1]}, nil
	default:
		// Chained traversal is not supported; one hop only.
		return nil, core.NewTemplateError("parameter " + "{" + body + "}" + " traverses more than one relationship")
	}
}

// ParseTemplate returns the placeholders embedded in a template, validating
// brace structure. The validator uses this to check templates before a
// definition is persisted.
func ParseTemplate(template string) ([]Placeholder, error) {
	segments, err := parseSegments(template)
	if err != nil {
		return nil, err
	}
	var params []Placeholder
	for _, s := range segments {
		if s.placeholder != nil {
			params = append(params, *s.placeholder)
		}
	}
	return params, nil
}

// Render resolves a template against the record. Parent placeholders go
// through the related lookup; attributes missing from the record render as
// empty. Pure apart from the lookup oracle.
func Render(ctx context.Context, template string, rec record.Record, lookup RelatedLookup) (string, error) {
	segments, err := parseSegments(template)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, s := range segments {
		if s.placeholder == nil {
			out.WriteString(s.literal)
			continue
		}
		p := s.placeholder
		if p.IsParent() {
			if lookup == nil {
				return "", core.NewTemplateError("no related lookup available for " + p.Raw)
			}
			v, err := lookup.RelatedValue(ctx, rec, p.ParentLookup, p.AttributeName)
			if err != nil {
				return "", err
			}
			out.WriteString(v.Text())
			continue
		}
		if v, ok := rec.Get(p.AttributeName); ok {
			out.WriteString(v.Text())
		}
	}
	return out.String(), nil
}
