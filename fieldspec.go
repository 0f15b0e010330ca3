// fieldspec.go: field selector grammar `${name[:spec[:spec…]]}`
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"strconv"
	"strings"
)

// JustifyMode selects how a field's rendered text is padded to width.
type JustifyMode int8

const (
	JustifyNone JustifyMode = iota
	JustifyLeft
	JustifyRight
)

// Justify is a field's width+mode padding spec.
type Justify struct {
	Mode  JustifyMode
	Width int
}

// TextAttr is one comma-listed attribute from a `text=` spec.
type TextAttr int8

const (
	AttrBold TextAttr = iota
	AttrFaint
	AttrNormal
	AttrItalic
	AttrNoItalic
	AttrUnderline
	AttrNoUnderline
	AttrCrossOut
	AttrNoCrossOut
	AttrBlinkSlow
	AttrBlinkRapid
	AttrNoBlink
)

var textAttrNames = map[string]TextAttr{
	"bold": AttrBold, "faint": AttrFaint, "normal": AttrNormal,
	"italic": AttrItalic, "no-italic": AttrNoItalic,
	"underline": AttrUnderline, "no-underline": AttrNoUnderline,
	"cross-out": AttrCrossOut, "no-cross-out": AttrNoCrossOut,
	"blink-slow": AttrBlinkSlow, "blink-rapid": AttrBlinkRapid, "no-blink": AttrNoBlink,
}

// Color is a resolved fg/bg color: either a simple/bright 8-color name, a
// 216-cube vga index, a 24-step grayscale index, or 24-bit truecolor.
type Color struct {
	Kind ColorKind
	R, G, B byte // truecolor / vga components (vga components are clamped to <= 0x1F)
	Index byte   // simple-name index (0-7), bright flag folded into Kind, or grayscale step (0-23)
}

type ColorKind int8

const (
	ColorNone ColorKind = iota
	ColorNamed
	ColorNamedBright
	ColorTruecolor
	ColorVGA
	ColorGrey
)

var namedColors = map[string]byte{
	"black": 0, "red": 1, "green": 2, "yellow": 3,
	"blue": 4, "magenta": 5, "cyan": 6, "white": 7,
}

// TextSpec is the resolved font/color attributes for a field, plus whether
// it is "begin-only" (no automatic reset emitted at the end of the field).
type TextSpec struct {
	Attrs     []TextAttr
	Fg, Bg    *Color
	BeginOnly bool
	Reset     bool // "default"/"reset": emit terminal reset, further specs ignored
	// Escape is the precomputed terminal escape sequence for this spec,
	// computed once at parse time.
	Escape string
}

// FieldSpec is one parsed `${…}` token.
type FieldSpec struct {
	Name    string
	Justify Justify
	Text    *TextSpec
}

// parseFieldToken parses the inside of `${...}` (name plus colon-separated
// specs) starting at byte offset `base` in the original template, for
// located error messages.
func parseFieldToken(token string, base int, full string) (*FieldSpec, error) {
	parts := strings.Split(token, ":")
	name := parts[0]
	if name == "" {
		return nil, NewConfigParseError("empty field name", base, full)
	}
	if !isKnownField(name) {
		return nil, NewConfigParseError(fmt.Sprintf("unknown field name %q", name), base, full)
	}

	fs := &FieldSpec{Name: name}
	for _, spec := range parts[1:] {
		if err := applySpec(fs, spec, base, full); err != nil {
			return nil, err
		}
		if fs.Text != nil && fs.Text.Reset {
			break // "default"/"reset": further specs ignored
		}
	}
	if fs.Text != nil {
		fs.Text.Escape = renderEscape(fs.Text)
	}
	return fs, nil
}

func applySpec(fs *FieldSpec, spec string, base int, full string) error {
	beginOnly := false
	if strings.HasPrefix(spec, "begin-") {
		beginOnly = true
		spec = strings.TrimPrefix(spec, "begin-")
	}

	switch {
	case spec == "default" || spec == "reset":
		fs.Text = ensureText(fs.Text)
		fs.Text.Reset = true
		return nil

	case spec == "":
		return NewConfigParseError("empty spec segment", base, full)

	case isInt(spec):
		n, _ := strconv.Atoi(spec)
		if n > 0 {
			fs.Justify = Justify{Mode: JustifyLeft, Width: n}
		} else if n < 0 {
			fs.Justify = Justify{Mode: JustifyRight, Width: -n}
		}
		return nil

	case strings.HasPrefix(spec, "justify-left="):
		n, err := strconv.Atoi(strings.TrimPrefix(spec, "justify-left="))
		if err != nil {
			return NewConfigParseError("invalid justify-left width", base, full)
		}
		fs.Justify = Justify{Mode: JustifyLeft, Width: n}
		return nil

	case strings.HasPrefix(spec, "justify-right="):
		n, err := strconv.Atoi(strings.TrimPrefix(spec, "justify-right="))
		if err != nil {
			return NewConfigParseError("invalid justify-right width", base, full)
		}
		fs.Justify = Justify{Mode: JustifyRight, Width: n}
		return nil

	case strings.HasPrefix(spec, "fg-color="):
		c, err := parseColor(strings.TrimPrefix(spec, "fg-color="), base, full)
		if err != nil {
			return err
		}
		fs.Text = ensureText(fs.Text)
		fs.Text.Fg = c
		fs.Text.BeginOnly = fs.Text.BeginOnly || beginOnly
		return nil

	case strings.HasPrefix(spec, "bg-color="):
		c, err := parseColor(strings.TrimPrefix(spec, "bg-color="), base, full)
		if err != nil {
			return err
		}
		fs.Text = ensureText(fs.Text)
		fs.Text.Bg = c
		fs.Text.BeginOnly = fs.Text.BeginOnly || beginOnly
		return nil

	case strings.HasPrefix(spec, "text="):
		fs.Text = ensureText(fs.Text)
		fs.Text.BeginOnly = fs.Text.BeginOnly || beginOnly
		for _, name := range strings.Split(strings.TrimPrefix(spec, "text="), ",") {
			attr, ok := textAttrNames[name]
			if !ok {
				return NewConfigParseError(fmt.Sprintf("unknown text attribute %q", name), base, full)
			}
			fs.Text.Attrs = append(fs.Text.Attrs, attr)
		}
		return nil

	default:
		return NewConfigParseError(fmt.Sprintf("malformed spec %q", spec), base, full)
	}
}

func ensureText(t *TextSpec) *TextSpec {
	if t == nil {
		return &TextSpec{}
	}
	return t
}

func isInt(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start == len(s) {
		return false
	}
	for _, r := range s[start:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseColor(spec string, base int, full string) (*Color, error) {
	switch {
	case strings.HasPrefix(spec, "#") && len(spec) == 7:
		r, g, b, err := parseHex6(spec[1:])
		if err != nil {
			return nil, NewConfigParseError("invalid truecolor hex", base, full)
		}
		return &Color{Kind: ColorTruecolor, R: r, G: g, B: b}, nil

	case strings.HasPrefix(spec, "vga#") && len(spec) == 10:
		r, g, b, err := parseHex6(spec[4:])
		if err != nil {
			return nil, NewConfigParseError("invalid vga hex", base, full)
		}
		clamp := func(v byte) byte {
			if v > 0x1F {
				return 0x1F
			}
			return v
		}
		return &Color{Kind: ColorVGA, R: clamp(r), G: clamp(g), B: clamp(b)}, nil

	case strings.HasPrefix(spec, "grey#"):
		n, err := strconv.Atoi(strings.TrimPrefix(spec, "grey#"))
		if err != nil || n < 0 || n > 23 {
			return nil, NewConfigParseError("grey index must be 0-23", base, full)
		}
		return &Color{Kind: ColorGrey, Index: byte(n)}, nil

	case strings.HasPrefix(spec, "bright-"):
		name := strings.TrimPrefix(spec, "bright-")
		idx, ok := namedColors[name]
		if !ok {
			return nil, NewConfigParseError(fmt.Sprintf("unknown color name %q", name), base, full)
		}
		return &Color{Kind: ColorNamedBright, Index: idx}, nil

	default:
		idx, ok := namedColors[spec]
		if !ok {
			return nil, NewConfigParseError(fmt.Sprintf("unknown color name %q", spec), base, full)
		}
		return &Color{Kind: ColorNamed, Index: idx}, nil
	}
}

func parseHex6(s string) (r, g, b byte, err error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return byte(v >> 16), byte(v >> 8), byte(v), nil
}

// renderEscape precomputes the ANSI SGR escape sequence for a text spec, so
// emitting a field never re-derives it.
func renderEscape(t *TextSpec) string {
	if t.Reset {
		return "\x1b[0m"
	}
	var codes []string
	for _, a := range t.Attrs {
		codes = append(codes, sgrForAttr(a))
	}
	if t.Fg != nil {
		codes = append(codes, sgrForColor(*t.Fg, false))
	}
	if t.Bg != nil {
		codes = append(codes, sgrForColor(*t.Bg, true))
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func sgrForAttr(a TextAttr) string {
	switch a {
	case AttrBold:
		return "1"
	case AttrFaint:
		return "2"
	case AttrNormal:
		return "22"
	case AttrItalic:
		return "3"
	case AttrNoItalic:
		return "23"
	case AttrUnderline:
		return "4"
	case AttrNoUnderline:
		return "24"
	case AttrCrossOut:
		return "9"
	case AttrNoCrossOut:
		return "29"
	case AttrBlinkSlow:
		return "5"
	case AttrBlinkRapid:
		return "6"
	case AttrNoBlink:
		return "25"
	default:
		return ""
	}
}

func sgrForColor(c Color, bg bool) string {
	base := 38
	if bg {
		base = 48
	}
	switch c.Kind {
	case ColorNamed:
		off := 30
		if bg {
			off = 40
		}
		return strconv.Itoa(off + int(c.Index))
	case ColorNamedBright:
		off := 90
		if bg {
			off = 100
		}
		return strconv.Itoa(off + int(c.Index))
	case ColorTruecolor:
		return fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)
	case ColorVGA:
		// 6x6x6 cube, each component folded from 0x1F down to 0-5.
		scale := func(v byte) int { return int(v) * 5 / 0x1F }
		idx := 16 + 36*scale(c.R) + 6*scale(c.G) + scale(c.B)
		return fmt.Sprintf("%d;5;%d", base, idx)
	case ColorGrey:
		idx := 232 + int(c.Index)
		return fmt.Sprintf("%d;5;%d", base, idx)
	default:
		return ""
	}
}

// builtinFieldNames is the fixed set of field names the template grammar
// recognizes without registration.
var builtinFieldNames = map[string]bool{
	"rid": true, "time": true, "host": true, "user": true, "prog": true,
	"pid": true, "tid": true, "tname": true, "file": true, "line": true,
	"func": true, "level": true, "src": true, "mod": true, "msg": true,
}

var customFieldNames = struct {
	m map[string]bool
}{m: make(map[string]bool)}

// RegisterFieldName extends the format engine with a user-defined field
// name, resolvable in templates alongside the built-in set.
func RegisterFieldName(name string) {
	customFieldNames.m[name] = true
}

func isKnownField(name string) bool {
	return builtinFieldNames[name] || customFieldNames.m[name]
}
