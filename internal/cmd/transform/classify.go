package transform

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/expo/metro-core/internal/cmdtypes"
	"github.com/expo/metro-core/internal/cmdutil"
	"github.com/expo/metro-core/internal/loader"
	"github.com/expo/metro-core/internal/output"
)

type classifyReport struct {
	Path    string      `json:"path"`
	Rule    loader.Name `json:"rule"`
	Package string      `json:"package,omitempty"`
	Reason  string      `json:"reason"`
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var of cmdutil.OutputFlags

	c := &cobra.Command{
		Use:   "classify <path>...",
		Short: "Show which loader rule handles each path",
		Long: `Classify paths into loader rules without reading or transforming them.

Rules are tried in priority order and the first match wins:
  app, reactNativeModule, expoModule, untranspiledModule, passthroughModule

Examples:
  metro classify App.tsx node_modules/react-native/index.js
  metro classify node_modules/@expo/vector-icons/index.js -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runClassify(c.OutOrStdout(), g, args, of.Format)
		},
	}

	of.AddTo(c, "text")
	return c
}

func runClassify(w io.Writer, g *cmdtypes.GlobalConfig, paths []string, format string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}
	t, err := cmdutil.NewTransformer(g)
	if err != nil {
		return cmdtypes.ExitErrorFor(err)
	}

	reports := make([]classifyReport, 0, len(paths))
	for _, p := range paths {
		cl := t.Classify(p)
		reports = append(reports, classifyReport{Path: p, Rule: cl.Rule, Package: cl.Package, Reason: cl.Reason})
	}

	if f != output.FormatText {
		return output.Encode(w, f, reports)
	}

	rows := make([]output.ClassifyRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, output.ClassifyRow{Path: r.Path, Rule: string(r.Rule), Package: r.Package, Reason: r.Reason})
	}
	fmt.Fprintln(w, output.RenderClassifyTable(rows))
	return nil
}
