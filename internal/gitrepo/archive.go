package gitrepo

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/klauspost/compress/zip"
)

// Archive writes a zip of the directory at root, .git included, to w.
// Entries are streamed so nothing is staged on disk.
func Archive(ctx context.Context, w io.Writer, root string) error {
	zw := zip.NewWriter(w)
	if err := addDir(ctx, zw, osfs.New(root), ""); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func addDir(ctx context.Context, zw *zip.Writer, fs billy.Filesystem, dir string) error {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := path.Join(dir, info.Name())

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("zip header %s: %w", rel, err)
		}
		header.Name = rel

		if info.IsDir() {
			header.Name += "/"
			if _, err := zw.CreateHeader(header); err != nil {
				return fmt.Errorf("zip dir %s: %w", rel, err)
			}
			if err := addDir(ctx, zw, fs, rel); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		header.Method = zip.Deflate
		dst, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", rel, err)
		}
		if err := copyFile(fs, rel, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fs billy.Filesystem, name string, dst io.Writer) error {
	src, err := fs.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}
