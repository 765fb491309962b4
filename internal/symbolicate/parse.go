package symbolicate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// at method (file:line:col), at file:line:col, Hermes "address at file:line:col"
	v8Frame = regexp.MustCompile(`^\s*at (?:(?:new )?(.+?) )?\(?(?:address at )?([^()]+?)(?::(\d+))?(?::(\d+))?\)?\s*$`)
	// method@file:line:col (JavaScriptCore, SpiderMonkey)
	geckoFrame = regexp.MustCompile(`^\s*(.*?)@(.*?)(?::(\d+))?(?::(\d+))?\s*$`)
	// at method (native)
	nativeFrame = regexp.MustCompile(`^\s*at (.+?) \((native|<anonymous>)\)\s*$`)
)

// ParseErrorStack parses a JavaScript error stack string into frames. Lines
// that are not frames (the error message, blank lines) are skipped. Columns
// in the input are 1-based and are returned 0-based.
func ParseErrorStack(stack string) []StackFrame {
	var frames []StackFrame
	for _, line := range strings.Split(stack, "\n") {
		if frame, ok := parseLine(line); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// ParseErrorStackFrames returns already parsed frames unchanged.
func ParseErrorStackFrames(frames []StackFrame) []StackFrame {
	return frames
}

func parseLine(line string) (StackFrame, bool) {
	if m := nativeFrame.FindStringSubmatch(line); m != nil {
		return StackFrame{MethodName: m[1], File: m[2], Arguments: []string{}}, true
	}
	if m := v8Frame.FindStringSubmatch(line); m != nil {
		return newFrame(m[1], m[2], m[3], m[4]), true
	}
	if strings.Contains(line, "@") {
		if m := geckoFrame.FindStringSubmatch(line); m != nil && m[2] != "" {
			return newFrame(m[1], m[2], m[3], m[4]), true
		}
	}
	return StackFrame{}, false
}

func newFrame(method, file, line, column string) StackFrame {
	frame := StackFrame{
		MethodName: method,
		File:       file,
		Arguments:  []string{},
	}
	if frame.MethodName == "" {
		frame.MethodName = "<unknown>"
	}
	if n, err := strconv.Atoi(line); err == nil {
		frame.LineNumber = &n
	}
	if n, err := strconv.Atoi(column); err == nil {
		n--
		frame.Column = &n
	}
	return frame
}
