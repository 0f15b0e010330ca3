// format.go: parses a template into an ordered list of field selectors and
// drives a FieldReceptor over a record
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// selector is one parsed unit of a template: either literal text or a
// field reference.
type selector struct {
	static string     // non-empty for a static-text selector
	field  *FieldSpec // non-nil for a field selector
}

// Formatter is an immutable, concurrency-safe ordered sequence of
// selectors produced by parsing a template string.
type Formatter struct {
	template  string
	selectors []selector
}

// Parse compiles a template of the form `text ${name[:spec[:spec…]]} text…`
// Parsing is total: it either succeeds or returns a located
// *errors.Error.
func Parse(template string) (*Formatter, error) {
	var sels []selector
	i := 0
	for i < len(template) {
		start := strings.Index(template[i:], "${")
		if start < 0 {
			sels = append(sels, selector{static: template[i:]})
			break
		}
		start += i
		if start > i {
			sels = append(sels, selector{static: template[i:start]})
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			return nil, NewConfigParseError("unterminated field token", start, template)
		}
		end += start
		token := template[start+2 : end]
		fs, err := parseFieldToken(token, start+2, template)
		if err != nil {
			return nil, err
		}
		sels = append(sels, selector{field: fs})
		i = end + 1
	}
	return &Formatter{template: template, selectors: sels}, nil
}

// MustParse is Parse but panics on error; intended for package-level
// format-string constants, not for config ingestion.
func MustParse(template string) *Formatter {
	f, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return f
}

// ProcessInfo supplies the process-identity fields (${host}, ${user},
// ${prog}, ${pid}) a formatter can emit. Acquisition of these values is
// out of the core's scope; DefaultProcessInfo is a stdlib-backed
// default collaborators may replace.
type ProcessInfo interface {
	Hostname() string
	User() string
	ProgramName() string
	PID() int
}

type defaultProcessInfo struct{}

func (defaultProcessInfo) Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func (defaultProcessInfo) User() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}

func (defaultProcessInfo) ProgramName() string {
	if len(os.Args) == 0 {
		return ""
	}
	parts := strings.Split(os.Args[0], string(os.PathSeparator))
	return parts[len(parts)-1]
}

func (defaultProcessInfo) PID() int { return os.Getpid() }

// DefaultProcessInfo is the stdlib-backed ProcessInfo used when a target's
// formatter is not given one explicitly.
var DefaultProcessInfo ProcessInfo = defaultProcessInfo{}

// Render drives recv over rec's fields in template order. tree resolves
// rec.SourceID to a qualified name for ${src}/${mod}; pi supplies process
// identity fields; utc selects UTC vs local time rendering for ${time}.
func (f *Formatter) Render(recv FieldReceptor, rec *Record, tree *Tree, pi ProcessInfo, utc bool) {
	if pi == nil {
		pi = DefaultProcessInfo
	}
	for _, sel := range f.selectors {
		if sel.field == nil {
			recv.ReceiveStaticText(sel.static)
			continue
		}
		emitField(recv, sel.field, rec, tree, pi, utc)
	}
}

func emitField(recv FieldReceptor, fs *FieldSpec, rec *Record, tree *Tree, pi ProcessInfo, utc bool) {
	switch fs.Name {
	case "rid":
		recv.ReceiveInt(fs, int64(rec.ID))
	case "time":
		t := time.Unix(0, rec.Timestamp)
		if utc {
			t = t.UTC()
		}
		recv.ReceiveTime(fs, t, globalTimeCache.FormatString(rec.Timestamp, utc))
	case "host":
		recv.ReceiveString(fs, pi.Hostname())
	case "user":
		recv.ReceiveString(fs, pi.User())
	case "prog":
		recv.ReceiveString(fs, pi.ProgramName())
	case "pid":
		recv.ReceiveInt(fs, int64(pi.PID()))
	case "tid":
		recv.ReceiveInt(fs, rec.ThreadID)
	case "tname":
		recv.ReceiveString(fs, strconv.FormatInt(rec.ThreadID, 10))
	case "file":
		recv.ReceiveString(fs, rec.File)
	case "line":
		recv.ReceiveInt(fs, int64(rec.Line))
	case "func":
		recv.ReceiveString(fs, rec.Func)
	case "level":
		recv.ReceiveLevel(fs, rec.Level)
	case "src", "mod":
		name := ""
		if tree != nil {
			if s, ok := tree.ByID(rec.SourceID); ok {
				name = s.QualifiedName()
			}
		}
		recv.ReceiveString(fs, name)
	case "msg":
		recv.ReceiveString(fs, rec.Message)
	default:
		// custom field: emit nothing by default; applications that
		// register custom names are expected to supply their own
		// receptor that special-cases them before falling back here.
		recv.ReceiveString(fs, "")
	}
}

// RoundTrip renders the static-text portions of a template with no record
// at all, useful for validating a template's literal framing independent
// of any field values.
func (f *Formatter) RoundTrip() string {
	var sb strings.Builder
	for _, sel := range f.selectors {
		if sel.field == nil {
			sb.WriteString(sel.static)
		}
	}
	return sb.String()
}

