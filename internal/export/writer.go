package export

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	oerrors "github.com/expo/metro-core/internal/errors"
	"github.com/expo/metro-core/internal/output"
)

// defaultUploadConcurrency bounds parallel asset writes.
const defaultUploadConcurrency = 8

// BundleFileName returns the content-addressed file name of a bundle.
func BundleFileName(platform, code string) string {
	sum := md5.Sum([]byte(code))
	return platform + "-" + hex.EncodeToString(sum[:]) + ".js"
}

// Writer lays out an export in an ArtifactStore.
type Writer struct {
	Store ArtifactStore
	// Concurrency bounds parallel asset writes. Zero uses a default.
	Concurrency int
	// ReadAsset loads an asset file's contents. Defaults to os.ReadFile.
	ReadAsset func(path string) ([]byte, error)
}

// WriteInput is everything needed to write one export.
type WriteInput struct {
	Bundles         map[string]Bundle
	EmbeddedHashSet map[string]struct{}
	// SourceMaps writes each bundle's map next to it.
	SourceMaps bool
}

// Write stores every bundle, source map, asset and metadata.json and
// returns the metadata it wrote. Assets are written once per hash even when
// several platforms reference them.
func (w *Writer) Write(ctx context.Context, in WriteInput) (*Metadata, error) {
	platforms := make([]string, 0, len(in.Bundles))
	for p := range in.Bundles {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	if err := checkAssetSources(platforms, in); err != nil {
		return nil, err
	}

	// Step 1: bundles and maps
	fileNames := make(map[string]string, len(platforms))
	for _, platform := range platforms {
		bundle := in.Bundles[platform]
		name := BundleFileName(platform, bundle.Code)
		fileNames[platform] = name

		if err := w.Store.Put(ctx, path.Join(BundlesDir, name), []byte(bundle.Code)); err != nil {
			return nil, fmt.Errorf("writing %s bundle: %w", platform, err)
		}
		if in.SourceMaps && bundle.Map != "" {
			mapName := strings.TrimSuffix(name, ".js") + ".map"
			if err := w.Store.Put(ctx, path.Join(BundlesDir, mapName), []byte(bundle.Map)); err != nil {
				return nil, fmt.Errorf("writing %s source map: %w", platform, err)
			}
		}
		output.Debug("wrote bundle", "platform", platform, "file", name, "bytes", len(bundle.Code))
	}

	// Step 2: assets
	if err := w.writeAssets(ctx, platforms, in); err != nil {
		return nil, err
	}

	// Step 3: metadata.json
	meta := CreateMetadataJSON(Input{
		FileNames:       fileNames,
		Bundles:         in.Bundles,
		EmbeddedHashSet: in.EmbeddedHashSet,
	})
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := w.Store.Put(ctx, MetadataFile, append(data, '\n')); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	return &meta, nil
}

func (w *Writer) writeAssets(ctx context.Context, platforms []string, in WriteInput) error {
	read := w.ReadAsset
	if read == nil {
		read = os.ReadFile
	}
	limit := w.Concurrency
	if limit <= 0 {
		limit = defaultUploadConcurrency
	}

	seen := make(map[string]bool)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, platform := range platforms {
		for _, record := range in.Bundles[platform].Assets {
			for i, hash := range record.FileHashes {
				if _, embedded := in.EmbeddedHashSet[hash]; embedded || seen[hash] {
					continue
				}
				seen[hash] = true
				src := record.Files[i]
				hash := hash
				g.Go(func() error {
					data, err := read(src)
					if err != nil {
						return fmt.Errorf("reading asset %s: %w", src, err)
					}
					return w.Store.Put(ctx, path.Join(AssetsDir, hash), data)
				})
			}
		}
	}
	return g.Wait()
}

// checkAssetSources rejects asset hashes that metadata.json would list but
// that have no file to copy into the export.
func checkAssetSources(platforms []string, in WriteInput) error {
	for _, platform := range platforms {
		for _, record := range in.Bundles[platform].Assets {
			for i, hash := range record.FileHashes {
				if _, embedded := in.EmbeddedHashSet[hash]; embedded || i < len(record.Files) {
					continue
				}
				return oerrors.NewValidationError(
					fmt.Sprintf("asset %s of platform %s has no source file", hash, platform),
					"", "bundles."+platform+".assets",
					"list one entry in files for every entry in fileHashes, or mark the hash as embedded")
			}
		}
	}
	return nil
}

// ReadMetadata loads metadata.json from store.
func ReadMetadata(ctx context.Context, store ArtifactStore) (*Metadata, error) {
	data, err := store.Get(ctx, MetadataFile)
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}
	return &meta, nil
}
