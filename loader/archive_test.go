/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymeta/errors"
)

var archiveEntries = map[string]string{
	"model/shop/order.meta.yaml": "packages:\n  - name: example.com/shop\n    classes:\n      - {name: Order}\n",
	"model/shop/notes.txt":       "not a descriptor",
	TypeListEntry:                "# listed types\nexample.com/shop.Order\n\nexample.com/shop.Invoice\n",
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	zw := zip.NewWriter(out)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeTar(t *testing.T, w io.Writer, entries map[string]string) {
	t.Helper()
	tw := tar.NewWriter(w)
	for name, body := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := io.WriteString(tw, body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	gw := gzip.NewWriter(out)
	writeTar(t, gw, entries)
	require.NoError(t, gw.Close())
}

func writeTarZst(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	zw, err := zstd.NewWriter(out)
	require.NoError(t, err)
	writeTar(t, zw, entries)
	require.NoError(t, zw.Close())
}

func TestArchiveFormats(t *testing.T) {
	dir := t.TempDir()
	archives := map[string]func(*testing.T, string, map[string]string){
		"model.zip":     writeZip,
		"model.tar.gz":  writeTarGz,
		"model.tar.zst": writeTarZst,
	}

	loader, err := NewArchive("**/*.meta.yaml")
	require.NoError(t, err)

	for name, write := range archives {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			write(t, path, archiveEntries)

			files, types, err := loader.LoadArchive(context.Background(), path, nil)
			require.NoError(t, err)
			require.Len(t, files, 1)
			assert.Equal(t, ArchiveKey(path, "model/shop/order.meta.yaml"), files[0].Key)
			assert.Equal(t, "example.com/shop.Order", files[0].Types()[0].Name)
			assert.Equal(t, []string{"example.com/shop.Order", "example.com/shop.Invoice"}, types)
		})
	}
}

func TestArchiveBadEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	writeZip(t, path, map[string]string{
		"a.meta.yaml": "packages: [\n",
		"b.meta.yaml": "packages:\n  - name: example.com/b\n    classes:\n      - {name: B}\n",
	})

	loader, err := NewArchive("**/*.meta.yaml")
	require.NoError(t, err)
	files, _, err := loader.LoadArchive(context.Background(), path, nil)
	assert.Len(t, files, 1)
	assert.True(t, errors.IsLoadError(err))
	assert.Len(t, errors.Causes(err), 1)
}

func TestArchiveUnsupported(t *testing.T) {
	loader, err := NewArchive("**/*.meta.yaml")
	require.NoError(t, err)
	_, _, err = loader.LoadArchive(context.Background(), "model.rar", nil)
	assert.True(t, errors.IsValidationError(err))

	_, _, err = loader.LoadArchive(context.Background(), filepath.Join(t.TempDir(), "absent.zip"), nil)
	assert.Error(t, err)
}

func TestNewArchiveInvalidPattern(t *testing.T) {
	_, err := NewArchive("[")
	assert.True(t, errors.IsValidationError(err))
}
