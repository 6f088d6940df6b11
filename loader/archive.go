/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// TypeListEntry is the archive entry listing persistent type names, one per
// line. Blank lines and lines starting with # are ignored.
const TypeListEntry = "META-INF/persistent-types"

// maxEntrySize bounds a single archive entry read into memory.
const maxEntrySize = 16 << 20

// Archive loads descriptor files packed in .zip, .tar.gz/.tgz and
// .tar.zst/.tzst archives. Entries matching the pattern are parsed as
// descriptor files registered under "<archive>!<entry>".
type Archive struct {
	pattern string
}

// NewArchive returns an archive loader matching entries against pattern.
func NewArchive(pattern string) (*Archive, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.NewValidationError("pattern", fmt.Sprintf("invalid descriptor pattern %q", pattern))
	}
	return &Archive{pattern: pattern}, nil
}

// ArchiveKey is the origin key of an entry inside an archive.
func ArchiveKey(archive, entry string) string {
	return archive + "!" + entry
}

func (a *Archive) LoadArchive(ctx context.Context, archivePath string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, []string, error) {
	var (
		files []*metadata.DescriptorFile
		types []string
		errs  []error
	)
	visit := func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name = path.Clean(strings.TrimPrefix(name, "./"))
		isTypeList := name == TypeListEntry
		if !isTypeList {
			if ok, _ := doublestar.Match(a.pattern, name); !ok {
				return nil
			}
		}
		data, err := readEntry(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ArchiveKey(archivePath, name), err))
			return nil
		}
		if isTypeList {
			types = append(types, parseTypeList(data)...)
			return nil
		}
		f, err := ParseFile(ArchiveKey(archivePath, name), data, resolver)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		files = append(files, f)
		return nil
	}

	var err error
	switch lower := strings.ToLower(archivePath); {
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".jar"):
		err = walkZip(archivePath, visit)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		err = walkCompressedTar(archivePath, func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		}, visit)
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		err = walkCompressedTar(archivePath, func(r io.Reader) (io.ReadCloser, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return zr.IOReadCloser(), nil
		}, visit)
	case strings.HasSuffix(lower, ".tar"):
		err = walkCompressedTar(archivePath, func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		}, visit)
	default:
		err = errors.NewValidationError("archive", "unsupported archive format: "+archivePath)
	}
	if err != nil {
		errs = append(errs, err)
	}
	return files, types, errors.NewLoadError("read archive "+archivePath, errs)
}

func walkZip(archivePath string, visit func(string, io.Reader) error) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", ArchiveKey(archivePath, entry.Name), err)
		}
		err = visit(entry.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func walkCompressedTar(archivePath string, decompress func(io.Reader) (io.ReadCloser, error), visit func(string, io.Reader) error) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	dr, err := decompress(file)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", archivePath, err)
	}
	defer dr.Close()

	tr := tar.NewReader(dr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := visit(hdr.Name, tr); err != nil {
			return err
		}
	}
}

func readEntry(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	return data, nil
}

func parseTypeList(data []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}
