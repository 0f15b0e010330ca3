// encoder_props.go: structured properties formatter, the "structured
// properties (name→value map; names are static text, values are
// sub-formatters)" wire variant
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

// Property is one name/value-template pair of a PropsFormatter.
type Property struct {
	Name  string
	Value *Formatter
}

// PropsFormatter renders a record as a fixed set of named properties, each
// property's value produced by its own sub-formatter. Unlike the
// single-template Formatter, property names are not themselves parsed from
// `${}` tokens: they are static text supplied at construction.
type PropsFormatter struct {
	props []Property
}

// NewPropsFormatter compiles a PropsFormatter from (name, valueTemplate)
// pairs. Parsing is total: it either succeeds for every pair or returns
// the first error.
func NewPropsFormatter(pairs ...[2]string) (*PropsFormatter, error) {
	pf := &PropsFormatter{}
	for _, p := range pairs {
		f, err := Parse(p[1])
		if err != nil {
			return nil, err
		}
		pf.props = append(pf.props, Property{Name: p[0], Value: f})
	}
	return pf, nil
}

// Render writes each property as "name=value" joined by sep into buf,
// using a text receptor (no color) for each sub-formatter's value.
func (pf *PropsFormatter) Render(buf *LogBuffer, rec *Record, tree *Tree, pi ProcessInfo, utc bool, sep string) {
	for i, p := range pf.props {
		if i > 0 {
			buf.AppendString(sep)
		}
		buf.AppendString(p.Name)
		buf.AppendString("=")
		enc := NewTextEncoder(buf, false)
		p.Value.Render(enc, rec, tree, pi, utc)
	}
}
