// Package mathtext splits question text into literal and TeX math segments.
//
// Supported delimiters are $...$ (inline) and $$...$$ (block). The alternate
// \(...\) and \[...\] forms are normalised to those first. Typesetting itself
// happens in the browser; this package only decides what is math and whether
// it is well formed enough to hand to the typesetter.
package mathtext

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tags a segment.
type Kind string

const (
	KindText   Kind = "text"
	KindInline Kind = "inline"
	KindBlock  Kind = "block"
)

// Segment is one renderable run of the input.
// For math kinds Content is the TeX body without delimiters.
// For text it is the verbatim text, including raw delimiters if the math degraded.
type Segment struct {
	Kind    Kind         `json:"kind"`
	Content string       `json:"content"`
	Err     *RenderError `json:"error,omitempty"`
}

// RenderError records why a math run was emitted as literal text.
type RenderError struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render math %q: %s", e.Raw, e.Reason)
}

var (
	normaliser = strings.NewReplacer(`\(`, `$`, `\)`, `$`, `\[`, `$$`, `\]`, `$$`)
	mathRun    = regexp.MustCompile(`\$\$[^$]*\$\$|\$[^$]*\$`)
	beginEnv   = regexp.MustCompile(`\\(begin|end)\{([^}]*)\}`)
	leftRight  = regexp.MustCompile(`\\(left|right)\b`)
)

// Normalise rewrites \( \) to $ and \[ \] to $$.
func Normalise(s string) string {
	return normaliser.Replace(s)
}

// Render splits s into ordered segments. It never fails: malformed math is
// returned as a text segment carrying a RenderError.
func Render(s string) []Segment {
	if s == "" {
		return nil
	}

	src := Normalise(s)
	var out []Segment
	last := 0

	for _, loc := range mathRun.FindAllStringIndex(src, -1) {
		if loc[0] > last {
			out = append(out, Segment{Kind: KindText, Content: src[last:loc[0]]})
		}
		out = append(out, mathSegment(src[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(src) {
		out = append(out, Segment{Kind: KindText, Content: src[last:]})
	}
	return out
}

// PlainText joins segments back into a single string, re-adding delimiters.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case KindInline:
			b.WriteString("$" + seg.Content + "$")
		case KindBlock:
			b.WriteString("$$" + seg.Content + "$$")
		default:
			b.WriteString(seg.Content)
		}
	}
	return b.String()
}

// HasErrors reports whether any segment degraded.
func HasErrors(segs []Segment) bool {
	for _, seg := range segs {
		if seg.Err != nil {
			return true
		}
	}
	return false
}

func mathSegment(raw string) Segment {
	kind := KindInline
	body := raw[1 : len(raw)-1]
	if len(raw) >= 4 && strings.HasPrefix(raw, "$$") && strings.HasSuffix(raw, "$$") {
		kind = KindBlock
		body = raw[2 : len(raw)-2]
	}

	if reason := validate(body); reason != "" {
		return Segment{
			Kind:    KindText,
			Content: raw,
			Err:     &RenderError{Raw: raw, Reason: reason},
		}
	}
	return Segment{Kind: kind, Content: body}
}

// validate returns a non-empty reason when body cannot be typeset.
func validate(body string) string {
	if strings.TrimSpace(body) == "" {
		return "empty math"
	}

	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if i == len(body)-1 {
				return "trailing backslash"
			}
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return "unbalanced braces"
			}
		}
	}
	if depth != 0 {
		return "unbalanced braces"
	}

	var envs []string
	for _, m := range beginEnv.FindAllStringSubmatch(body, -1) {
		if m[1] == "begin" {
			envs = append(envs, m[2])
			continue
		}
		if len(envs) == 0 || envs[len(envs)-1] != m[2] {
			return fmt.Sprintf("unmatched \\end{%s}", m[2])
		}
		envs = envs[:len(envs)-1]
	}
	if len(envs) > 0 {
		return fmt.Sprintf("unclosed \\begin{%s}", envs[len(envs)-1])
	}

	open := 0
	for _, m := range leftRight.FindAllStringSubmatch(body, -1) {
		if m[1] == "left" {
			open++
			continue
		}
		open--
		if open < 0 {
			return `\right without \left`
		}
	}
	if open != 0 {
		return `\left without \right`
	}

	return ""
}
