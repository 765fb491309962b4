package importexport

import (
	"fmt"

	"github.com/expo/metro-core/internal/jsast"
)

const liveExportTemplate = `Object.defineProperty(exports, %s, {
  enumerable: true,
  get: function () {
    return %s.%s;
  }
});`

const liveExportAllTemplate = `Object.keys(%[1]s).forEach(function (%[2]s) {
  if (%[2]s === "default" || %[2]s === "__esModule") return;
  if (%[2]s in exports && exports[%[2]s] === %[1]s[%[2]s]) return;
  Object.defineProperty(exports, %[2]s, {
    enumerable: true,
    get: function () {
      return %[1]s[%[2]s];
    }
  });
});`

// liveExport defines exports[remote] as a getter for namespace.local.
func liveExport(remote, namespace, local string) jsast.Statement {
	return &jsast.Verbatim{Text: fmt.Sprintf(liveExportTemplate, jsast.Quote(remote), namespace, local)}
}

// liveExportAll re-exports every key of required except default and the
// __esModule marker, skipping keys already exported with the same value.
func liveExportAll(required, key string) jsast.Statement {
	return &jsast.Verbatim{Text: fmt.Sprintf(liveExportAllTemplate, required, key)}
}
