package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderClassifyTable(t *testing.T) {
	out := RenderClassifyTable([]ClassifyRow{
		{Path: "src/App.tsx", Rule: "app", Reason: "outside dependency folders"},
		{Path: "node_modules/lodash/map.js", Rule: "passthroughModule", Package: "lodash", Reason: "prebuilt dependency"},
	})

	for _, want := range []string{"FILE", "RULE", "src/App.tsx", "lodash", "prebuilt dependency"} {
		assert.Contains(t, out, want)
	}
	// app code has no package
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "src/App.tsx") {
			assert.Contains(t, line, "-")
		}
	}
}
