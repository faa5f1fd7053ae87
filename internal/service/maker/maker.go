package maker

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/manifest"
)

// makeDirName is the directory (sibling of the staged build dir) receiving artifacts.
const makeDirName = "make"

// dirMode is used when creating the destination directory.
const dirMode os.FileMode = 0o755

// Zip produces a single compressed archive from a staged platform build.
type Zip struct{}

// NewZip returns the generic zip maker.
func NewZip() *Zip {
	return &Zip{}
}

// Make archives one staged build directory and returns the artifact path:
// <parent-of-dir>/make/<basename(dir)>-<version>.zip. The archive root is the
// application bundle on the darwin family and the whole staged directory
// otherwise. Single pass; the first I/O error aborts.
func (z *Zip) Make(ctx context.Context, dir, appName, platform string, m *manifest.Manifest) (string, error) {
	makeDir := filepath.Join(filepath.Dir(dir), makeDirName)
	if err := os.MkdirAll(makeDir, dirMode); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	zipPath := filepath.Join(makeDir, fmt.Sprintf("%s-%s.zip", filepath.Base(dir), m.Version))

	root := dir
	if platform == "darwin" || platform == "mas" {
		root = filepath.Join(dir, appName+".app")
	}

	logger.InfoKV(ctx, "Creating zip archive", "root", root, "artifact", zipPath)

	if err := writeZip(zipPath, root); err != nil {
		return "", err
	}

	return zipPath, nil
}

// writeZip archives the root directory into a zip file at path. Entry names
// are prefixed with the root's basename, so the archive unpacks into a single
// folder.
func writeZip(path, root string) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	writer := zip.NewWriter(out)
	prefix := filepath.Base(root)

	walkErr := filepath.WalkDir(root, func(entryPath string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, entryPath)
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		header.Method = zip.Deflate

		dst, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}

		src, err := os.Open(filepath.Clean(entryPath))
		if err != nil {
			return err
		}

		if _, err := io.Copy(dst, src); err != nil {
			_ = src.Close()

			return err
		}

		return src.Close()
	})

	if walkErr != nil {
		_ = writer.Close()
		_ = out.Close()

		return fmt.Errorf("write archive: %w", walkErr)
	}

	if err := writer.Close(); err != nil {
		_ = out.Close()

		return fmt.Errorf("finish archive: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}
