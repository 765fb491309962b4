package loader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// sourceMap is a version 3 source map as esbuild writes it.
type sourceMap struct {
	Version        int             `json:"version"`
	File           string          `json:"file,omitempty"`
	Sources        []string        `json:"sources"`
	SourcesContent json.RawMessage `json:"sourcesContent,omitempty"`
	Names          []string        `json:"names"`
	Mappings       string          `json:"mappings"`
}

// segment is one decoded mapping. Fields other than genCol are absolute.
type segment struct {
	genCol  int
	fields  int // 1, 4 or 5
	source  int
	srcLine int
	srcCol  int
	name    int
}

// composeSourceMap maps the interop output back through the syntax stage
// map. The interop stage copies statements verbatim and only reorders them,
// so every output line that still exists in the syntax stage output takes
// that line's mappings. Generated lines stay unmapped.
func composeSourceMap(syntaxMap []byte, syntaxCode, code string) ([]byte, error) {
	var sm sourceMap
	if err := json.Unmarshal(syntaxMap, &sm); err != nil {
		return nil, fmt.Errorf("reading source map: %w", err)
	}
	lines, err := decodeMappings(sm.Mappings)
	if err != nil {
		return nil, fmt.Errorf("reading source map: %w", err)
	}

	refs := alignLines(syntaxCode, code)
	out := make([][]segment, len(refs))
	for i, ref := range refs {
		if ref.line < 0 || ref.line >= len(lines) {
			continue
		}
		for _, seg := range lines[ref.line] {
			if seg.genCol -= ref.delta; seg.genCol >= 0 {
				out[i] = append(out[i], seg)
			}
		}
	}
	sm.Mappings = encodeMappings(out)
	return json.Marshal(sm)
}

// lineRef points an output line at a line of the input. delta is the input
// column minus the output column of the same text.
type lineRef struct {
	line  int
	delta int
}

// alignLines matches each output line to an input line, walking the input
// forward so repeated lines pair up in order.
func alignLines(in, out string) []lineRef {
	inLines := strings.Split(in, "\n")
	outLines := strings.Split(out, "\n")

	refs := make([]lineRef, len(outLines))
	cursor := 0
	for o, text := range outLines {
		refs[o] = lineRef{line: -1}
		if strings.TrimSpace(text) == "" {
			continue
		}
		for i := cursor; i < len(inLines); i++ {
			if delta, ok := matchLine(inLines[i], text); ok {
				refs[o] = lineRef{line: i, delta: delta}
				cursor = i + 1
				break
			}
		}
	}
	return refs
}

// exportPrefixes are stripped from declarations moved out of an export.
var exportPrefixes = []string{"export default ", "export "}

func matchLine(in, out string) (int, bool) {
	if in == out {
		return 0, true
	}
	inText := strings.TrimLeft(in, " \t")
	outText := strings.TrimLeft(out, " \t")
	outIndent := len(out) - len(outText)
	if inText == outText {
		return len(in) - len(inText) - outIndent, true
	}
	for _, prefix := range exportPrefixes {
		if rest, ok := strings.CutPrefix(inText, prefix); ok && rest == outText {
			return len(in) - len(rest) - outIndent, true
		}
	}
	return 0, false
}

const vlqChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func decodeMappings(mappings string) ([][]segment, error) {
	var lines [][]segment
	var source, srcLine, srcCol, name int
	for _, line := range strings.Split(mappings, ";") {
		var (
			segs   []segment
			genCol int
		)
		for _, raw := range strings.Split(line, ",") {
			if raw == "" {
				continue
			}
			values, err := decodeVLQ(raw)
			if err != nil {
				return nil, err
			}
			if n := len(values); n != 1 && n != 4 && n != 5 {
				return nil, fmt.Errorf("segment %q has %d fields", raw, n)
			}
			genCol += values[0]
			seg := segment{genCol: genCol, fields: len(values)}
			if len(values) >= 4 {
				source += values[1]
				srcLine += values[2]
				srcCol += values[3]
				seg.source, seg.srcLine, seg.srcCol = source, srcLine, srcCol
			}
			if len(values) == 5 {
				name += values[4]
				seg.name = name
			}
			segs = append(segs, seg)
		}
		lines = append(lines, segs)
	}
	return lines, nil
}

func encodeMappings(lines [][]segment) string {
	var b strings.Builder
	var source, srcLine, srcCol, name int
	for i, segs := range lines {
		if i > 0 {
			b.WriteByte(';')
		}
		genCol := 0
		for j, seg := range segs {
			if j > 0 {
				b.WriteByte(',')
			}
			encodeVLQ(&b, seg.genCol-genCol)
			genCol = seg.genCol
			if seg.fields >= 4 {
				encodeVLQ(&b, seg.source-source)
				encodeVLQ(&b, seg.srcLine-srcLine)
				encodeVLQ(&b, seg.srcCol-srcCol)
				source, srcLine, srcCol = seg.source, seg.srcLine, seg.srcCol
			}
			if seg.fields == 5 {
				encodeVLQ(&b, seg.name-name)
				name = seg.name
			}
		}
	}
	return b.String()
}

func decodeVLQ(s string) ([]int, error) {
	var (
		values       []int
		value, shift int
	)
	for i := 0; i < len(s); i++ {
		digit := strings.IndexByte(vlqChars, s[i])
		if digit < 0 {
			return nil, fmt.Errorf("invalid mapping character %q", s[i])
		}
		value += (digit & 31) << shift
		if digit&32 != 0 {
			shift += 5
			continue
		}
		if value&1 != 0 {
			values = append(values, -(value >> 1))
		} else {
			values = append(values, value>>1)
		}
		value, shift = 0, 0
	}
	if shift != 0 {
		return nil, fmt.Errorf("truncated mapping %q", s)
	}
	return values, nil
}

func encodeVLQ(b *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		b.WriteByte(vlqChars[digit])
		if v == 0 {
			return
		}
	}
}
