// Package export builds and writes the on-disk export of platform bundles.
//
// An export directory holds:
//
//	metadata.json
//	bundles/<platform>-<hash>.js
//	bundles/<platform>-<hash>.map
//	assets/<hash>
//
// metadata.json maps each platform to its bundle file and the asset files it
// references, so a runtime can download an update without scanning the tree.
package export

import "sort"

// Manifest constants describing the tool that produced the export.
const (
	MetadataVersion = 0
	Bundler         = "metro"
	MetadataFile    = "metadata.json"
	BundlesDir      = "bundles"
	AssetsDir       = "assets"
)

// AssetRecord is one asset referenced by a bundle. FileHashes holds one hash
// per scale variant.
type AssetRecord struct {
	Type       string   `json:"type"`
	FileHashes []string `json:"fileHashes"`
	// Files are the source paths of each variant, parallel to FileHashes.
	Files []string `json:"files,omitempty"`
}

// Bundle is the output of bundling one platform.
type Bundle struct {
	Code   string        `json:"code,omitempty"`
	Map    string        `json:"map,omitempty"`
	Assets []AssetRecord `json:"assets"`
}

// AssetMetadata locates one asset file in the export.
type AssetMetadata struct {
	Path string `json:"path"`
	Ext  string `json:"ext"`
}

// PlatformMetadata locates a platform's bundle and assets.
type PlatformMetadata struct {
	Bundle string          `json:"bundle"`
	Assets []AssetMetadata `json:"assets"`
}

// Metadata is the contents of metadata.json.
type Metadata struct {
	Version      int                         `json:"version"`
	Bundler      string                      `json:"bundler"`
	FileMetadata map[string]PlatformMetadata `json:"fileMetadata"`
}

// Input is the data CreateMetadataJSON describes.
type Input struct {
	// FileNames maps platform to bundle file name.
	FileNames map[string]string
	// Bundles maps platform to its bundle.
	Bundles map[string]Bundle
	// EmbeddedHashSet lists asset hashes already shipped inside the native
	// binary. They are left out of the manifest.
	EmbeddedHashSet map[string]struct{}
}

// CreateMetadataJSON describes where each platform's bundle and assets live
// in the export. Platforms are visited in sorted order; assets keep their
// record order and, within a record, their hash order.
func CreateMetadataJSON(in Input) Metadata {
	platforms := make([]string, 0, len(in.Bundles))
	for p := range in.Bundles {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	meta := Metadata{
		Version:      MetadataVersion,
		Bundler:      Bundler,
		FileMetadata: make(map[string]PlatformMetadata, len(platforms)),
	}
	for _, platform := range platforms {
		assets := make([]AssetMetadata, 0)
		for _, record := range in.Bundles[platform].Assets {
			for _, hash := range record.FileHashes {
				if _, embedded := in.EmbeddedHashSet[hash]; embedded {
					continue
				}
				assets = append(assets, AssetMetadata{Path: AssetsDir + "/" + hash, Ext: record.Type})
			}
		}
		meta.FileMetadata[platform] = PlatformMetadata{
			Bundle: BundlesDir + "/" + in.FileNames[platform],
			Assets: assets,
		}
	}
	return meta
}

// Platforms returns the platforms in m, sorted.
func (m Metadata) Platforms() []string {
	out := make([]string, 0, len(m.FileMetadata))
	for p := range m.FileMetadata {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
