package export

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	oerrors "github.com/expo/metro-core/internal/errors"
)

// Descriptor describes bundles built elsewhere so they can be exported.
// It is read from YAML or JSON:
//
//	fileNames:
//	  ios: ios-abc.js
//	bundles:
//	  ios:
//	    codeFile: build/ios.js
//	    mapFile: build/ios.js.map
//	    assets:
//	      - type: png
//	        fileHashes: [a1b2]
//	        files: [assets/icon.png]
//	embeddedHashes: [c3d4]
//
// Relative paths resolve against the descriptor's directory.
type Descriptor struct {
	FileNames      map[string]string       `json:"fileNames,omitempty"`
	Bundles        map[string]BundleSource `json:"bundles"`
	EmbeddedHashes []string                `json:"embeddedHashes,omitempty"`

	dir string
}

// BundleSource locates one platform's build output.
type BundleSource struct {
	CodeFile string        `json:"codeFile,omitempty"`
	MapFile  string        `json:"mapFile,omitempty"`
	Assets   []AssetRecord `json:"assets"`
}

// LoadDescriptor reads a bundle descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("bundle descriptor not found", path, "")
		}
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	return ParseDescriptor(data, filepath.Dir(path))
}

// ParseDescriptor decodes a descriptor whose relative paths resolve
// against dir.
func ParseDescriptor(data []byte, dir string) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, oerrors.NewValidationError("invalid bundle descriptor", dir, "", err.Error())
	}
	if len(d.Bundles) == 0 {
		return nil, oerrors.NewValidationError("bundle descriptor lists no bundles", dir, "bundles", "")
	}
	d.dir = dir
	return &d, nil
}

func (d *Descriptor) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.dir, p)
}

func (d *Descriptor) embedded() map[string]struct{} {
	set := make(map[string]struct{}, len(d.EmbeddedHashes))
	for _, h := range d.EmbeddedHashes {
		set[h] = struct{}{}
	}
	return set
}

// LoadBundles loads each platform's code, map and asset paths.
func (d *Descriptor) LoadBundles() (map[string]Bundle, error) {
	bundles := make(map[string]Bundle, len(d.Bundles))
	for platform, src := range d.Bundles {
		b := Bundle{Assets: make([]AssetRecord, len(src.Assets))}
		if src.CodeFile != "" {
			code, err := os.ReadFile(d.resolve(src.CodeFile))
			if err != nil {
				return nil, fmt.Errorf("reading %s bundle: %w", platform, err)
			}
			b.Code = string(code)
		}
		if src.MapFile != "" {
			m, err := os.ReadFile(d.resolve(src.MapFile))
			if err != nil {
				return nil, fmt.Errorf("reading %s source map: %w", platform, err)
			}
			b.Map = string(m)
		}
		for i, record := range src.Assets {
			files := make([]string, len(record.Files))
			for j, f := range record.Files {
				files[j] = d.resolve(f)
			}
			b.Assets[i] = AssetRecord{Type: record.Type, FileHashes: record.FileHashes, Files: files}
		}
		bundles[platform] = b
	}
	return bundles, nil
}

// MetadataInput builds the metadata input. A platform without a file name
// entry is named from its bundle contents.
func (d *Descriptor) MetadataInput() (Input, error) {
	bundles, err := d.LoadBundles()
	if err != nil {
		return Input{}, err
	}
	fileNames := make(map[string]string, len(bundles))
	for platform, b := range bundles {
		if name, ok := d.FileNames[platform]; ok {
			fileNames[platform] = name
			continue
		}
		if d.Bundles[platform].CodeFile == "" {
			return Input{}, oerrors.NewValidationError(
				fmt.Sprintf("platform %s has neither a file name nor a code file", platform),
				d.dir, "bundles."+platform, "add fileNames."+platform+" or bundles."+platform+".codeFile")
		}
		fileNames[platform] = BundleFileName(platform, b.Code)
	}
	return Input{FileNames: fileNames, Bundles: bundles, EmbeddedHashSet: d.embedded()}, nil
}

// WriteInput builds the input for Writer.Write.
func (d *Descriptor) WriteInput(sourceMaps bool) (WriteInput, error) {
	bundles, err := d.LoadBundles()
	if err != nil {
		return WriteInput{}, err
	}
	return WriteInput{Bundles: bundles, EmbeddedHashSet: d.embedded(), SourceMaps: sourceMaps}, nil
}
