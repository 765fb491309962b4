package symbolicate

import (
	"bytes"
	"encoding/json"
	"fmt"

	oerrors "github.com/expo/metro-core/internal/errors"
)

// StackFrame is one frame of a JavaScript stack trace.
type StackFrame struct {
	// File is empty when unknown.
	File string
	// LineNumber is 1-based, nil when unknown.
	LineNumber *int
	// Column is 0-based, nil when unknown.
	Column     *int
	MethodName string
	// Collapse hides the frame in the overlay by default.
	Collapse  bool
	Arguments []string
}

// wireFrame is the JSON shape shared with the dev server.
type wireFrame struct {
	Arguments  []string `json:"arguments"`
	Column     *int     `json:"column"`
	File       *string  `json:"file"`
	LineNumber *int     `json:"lineNumber"`
	MethodName string   `json:"methodName"`
	Collapse   bool     `json:"collapse"`
}

// MarshalJSON encodes the frame with every key present and a null file
// when unknown.
func (f StackFrame) MarshalJSON() ([]byte, error) {
	w := wireFrame{
		Arguments:  f.Arguments,
		Column:     f.Column,
		LineNumber: f.LineNumber,
		MethodName: f.MethodName,
		Collapse:   f.Collapse,
	}
	if w.Arguments == nil {
		w.Arguments = []string{}
	}
	if f.File != "" {
		file := f.File
		w.File = &file
	}
	return json.Marshal(w)
}

// Stack is a stack trace instance. The symbolication cache is keyed by the
// *Stack pointer, so two Stacks with equal frames are cached separately.
type Stack struct {
	Frames []StackFrame
}

// NewStack wraps frames in a new Stack.
func NewStack(frames []StackFrame) *Stack {
	return &Stack{Frames: frames}
}

// CodeFrame is the source excerpt the dev server renders around the
// first application frame.
type CodeFrame struct {
	Content  string             `json:"content"`
	Location *CodeFrameLocation `json:"location,omitempty"`
	FileName string             `json:"fileName"`
}

// CodeFrameLocation is the highlighted position in a CodeFrame.
type CodeFrameLocation struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// SymbolicatedStackTrace is a stack after source map resolution.
type SymbolicatedStackTrace struct {
	Stack     []StackFrame `json:"stack"`
	CodeFrame *CodeFrame   `json:"codeFrame,omitempty"`
}

// ProtocolError reports a symbolication response that breaks the dev server
// contract.
type ProtocolError struct {
	Message string
	// Frame is the index of the offending frame, or -1.
	Frame int
}

func (e *ProtocolError) Error() string {
	if e.Frame >= 0 {
		return fmt.Sprintf("invalid symbolication result: frame %d: %s", e.Frame, e.Message)
	}
	return "invalid symbolication result: " + e.Message
}

func (e *ProtocolError) Unwrap() error { return oerrors.ErrProtocol }

// Sanitize validates a raw symbolication response and rebuilds each frame
// with only the fields the overlay uses. A stack that is not an array or a
// collapse flag that is not a boolean fails the whole result.
func Sanitize(raw []byte) (*SymbolicatedStackTrace, error) {
	var body struct {
		Stack     json.RawMessage `json:"stack"`
		CodeFrame *CodeFrame      `json:"codeFrame"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ProtocolError{Message: "response is not a JSON object: " + err.Error(), Frame: -1}
	}

	var frames []json.RawMessage
	if trimmed := bytes.TrimSpace(body.Stack); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ProtocolError{Message: "expected stack to be an array", Frame: -1}
	}
	if err := json.Unmarshal(body.Stack, &frames); err != nil {
		return nil, &ProtocolError{Message: "expected stack to be an array: " + err.Error(), Frame: -1}
	}

	out := &SymbolicatedStackTrace{Stack: make([]StackFrame, 0, len(frames)), CodeFrame: body.CodeFrame}
	for i, rawFrame := range frames {
		frame, err := sanitizeFrame(rawFrame)
		if err != nil {
			return nil, &ProtocolError{Message: err.Error(), Frame: i}
		}
		out.Stack = append(out.Stack, frame)
	}
	return out, nil
}

func sanitizeFrame(raw json.RawMessage) (StackFrame, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return StackFrame{}, fmt.Errorf("expected frame to be an object")
	}

	frame := StackFrame{Arguments: []string{}}
	if v, ok := fields["collapse"]; ok {
		if isNull(v) || json.Unmarshal(v, &frame.Collapse) != nil {
			return StackFrame{}, fmt.Errorf("expected collapse to be a boolean, got %s", v)
		}
	}

	var file *string
	if err := decodeOptional(fields, "file", &file); err != nil {
		return StackFrame{}, err
	}
	if file != nil {
		frame.File = *file
	}
	if err := decodeOptional(fields, "lineNumber", &frame.LineNumber); err != nil {
		return StackFrame{}, err
	}
	if err := decodeOptional(fields, "column", &frame.Column); err != nil {
		return StackFrame{}, err
	}
	var method *string
	if err := decodeOptional(fields, "methodName", &method); err != nil {
		return StackFrame{}, err
	}
	if method != nil {
		frame.MethodName = *method
	}
	return frame, nil
}

func decodeOptional(fields map[string]json.RawMessage, key string, dst any) error {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("invalid %s: %s", key, v)
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}
