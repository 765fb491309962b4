// Package symbolicate provides the symbolicate command.
package symbolicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/output"
	"github.com/expo/metro-core/internal/symbolicate"
)

var (
	styleMethod   = lipgloss.NewStyle().Foreground(output.ColorCyan)
	styleLocation = lipgloss.NewStyle().Foreground(output.ColorYellow)
)

// NewSymbolicateCmd creates the symbolicate command.
func NewSymbolicateCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		of         cmdutil.OutputFlags
		originFlag string
		rawOnError bool
	)

	c := &cobra.Command{
		Use:   "symbolicate [file]",
		Short: "Resolve a JavaScript stack trace through the dev server",
		Long: `Symbolicate a stack trace against the running dev server's source maps.

The input is read from the file argument, or stdin when it is absent or "-".
It may be a raw error stack as printed by V8, Hermes, JavaScriptCore or
Gecko, a JSON array of frames, or a JSON object with a "stack" array.

The dev server origin comes from --origin, then EXPO_DEV_SERVER_ORIGIN, then
devServer.origin in metro.yaml, then http://localhost:8081.

Examples:
  metro symbolicate crash.txt
  adb logcat -d | metro symbolicate --origin http://192.168.1.20:8081
  metro symbolicate frames.json -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var in io.Reader = c.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					if os.IsNotExist(err) {
						return cmdtypes.ExitErrorFor(oerrors.NewNotFoundError("stack file not found", args[0], ""))
					}
					return err
				}
				defer f.Close()
				in = f
			}
			return runSymbolicate(c.Context(), c.OutOrStdout(), in, g, originFlag, of.Format, rawOnError)
		},
	}

	of.AddTo(c, "text")
	c.Flags().StringVar(&originFlag, "origin", "", "Dev server origin (env: EXPO_DEV_SERVER_ORIGIN)")
	c.Flags().BoolVar(&rawOnError, "raw-on-error", false, "Print the unresolved stack instead of failing when the dev server cannot symbolicate")
	return c
}

func runSymbolicate(ctx context.Context, w io.Writer, in io.Reader, g *cmdtypes.GlobalConfig, origin, format string, rawOnError bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading stack: %w", err)
	}
	frames, err := ReadFrames(data)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	s, err := cmdutil.NewSymbolicator(g, origin)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	stack := symbolicate.NewStack(frames)

	var result *symbolicate.SymbolicatedStackTrace
	if rawOnError {
		result = s.SymbolicateOrRaw(ctx, stack)
	} else if result, err = s.Symbolicate(ctx, stack); err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	if f != output.FormatText {
		return output.Encode(w, f, result)
	}
	root := ""
	if g != nil {
		root = g.ProjectRoot
	}
	fmt.Fprint(w, FormatTrace(root, result))
	return nil
}

// ReadFrames decodes stack input: a JSON frame array, a JSON object with a
// "stack" array, or raw stack text.
func ReadFrames(data []byte) ([]symbolicate.StackFrame, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, oerrors.NewValidationError("stack input is empty", "", "", "pass a file or pipe a stack trace on stdin")
	}

	switch trimmed[0] {
	case '[':
		trimmed = append(append([]byte(`{"stack":`), trimmed...), '}')
		fallthrough
	case '{':
		var fields map[string]json.RawMessage
		if json.Unmarshal(trimmed, &fields) != nil {
			break
		}
		result, err := symbolicate.Sanitize(trimmed)
		if err != nil {
			return nil, err
		}
		return result.Stack, nil
	}

	frames := symbolicate.ParseErrorStack(string(data))
	if len(frames) == 0 {
		return nil, oerrors.NewValidationError("no stack frames found in input", "", "", "")
	}
	return frames, nil
}

// FormatTrace renders a symbolicated trace for the terminal. Collapsed
// frames are dimmed.
func FormatTrace(projectRoot string, result *symbolicate.SymbolicatedStackTrace) string {
	var sb strings.Builder
	for _, frame := range result.Stack {
		method := frame.MethodName
		if method == "" {
			method = "<unknown>"
		}
		line := fmt.Sprintf("  at %s (%s)", styleMethod.Render(method),
			styleLocation.Render(symbolicate.GetStackFormattedLocation(projectRoot, frame)))
		if frame.Collapse {
			line = output.StyleDim.Render(fmt.Sprintf("  at %s (%s)", method,
				symbolicate.GetStackFormattedLocation(projectRoot, frame)))
		}
		sb.WriteString(line + "\n")
	}

	if cf := result.CodeFrame; cf != nil && cf.Content != "" {
		sb.WriteString("\n")
		if cf.FileName != "" {
			loc := symbolicate.FormatProjectFilePath(projectRoot, cf.FileName)
			if cf.Location != nil {
				loc = fmt.Sprintf("%s:%d:%d", loc, cf.Location.Row, cf.Location.Column+1)
			}
			sb.WriteString(output.StyleNoun.Render(loc) + "\n")
		}
		sb.WriteString(cf.Content + "\n")
	}
	return sb.String()
}
