package item

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestScanFindsImagesAndCaptions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.jpg", "a.png", "notes.txt", "raw.cr2")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("  a red apple \n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir.png"), 0o755))

	lib := NewLibrary(nil, "Caption")
	items := lib.Scan(dir)

	require.Len(t, items, 2)
	// sorted by filename, IDs are filenames
	assert.Equal(t, "a.png", items[0].ID)
	assert.Equal(t, "b.jpg", items[1].ID)
	// sidecar captions are trimmed
	assert.Equal(t, "a red apple", items[0].Caption)
	assert.Empty(t, items[1].Caption)
	assert.Equal(t, "Caption", items[0].PromptType)
	assert.Equal(t, filepath.Join(dir, "a.txt"), items[0].CaptionPath)
	assert.Equal(t, dir, lib.Dir())
}

func TestScanMatchesCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "UPPER.PNG", "Mixed.JpEg")

	lib := NewLibrary(nil, "")
	assert.Len(t, lib.Scan(dir), 2)
}

func TestScanMissingDirectory(t *testing.T) {
	lib := NewLibrary(nil, "")
	assert.Empty(t, lib.Scan(filepath.Join(t.TempDir(), "nope")))
}

func TestScanReplacesPreviousContents(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFiles(t, dirA, "old.png")
	writeFiles(t, dirB, "new.png")

	lib := NewLibrary(nil, "")
	lib.Scan(dirA)
	items := lib.Scan(dirB)

	require.Len(t, items, 1)
	assert.Equal(t, "new.png", items[0].ID)
	_, ok := lib.ByID("old.png")
	assert.False(t, ok)
}

func TestCaptionPath(t *testing.T) {
	assert.Equal(t, "/data/img.txt", CaptionPath("/data/img.png"))
	assert.Equal(t, "/data/img.v2.txt", CaptionPath("/data/img.v2.jpeg"))
}

func TestByIDs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png", "b.png")

	lib := NewLibrary(nil, "")
	lib.Scan(dir)

	items := lib.ByIDs([]string{"b.png", "ghost.png", "a.png"})
	require.Len(t, items, 2)
	assert.Equal(t, "b.png", items[0].ID)
	assert.Equal(t, "a.png", items[1].ID)
}

func TestSaveCaption(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png")

	lib := NewLibrary(nil, "")
	lib.Scan(dir)

	require.NoError(t, lib.SaveCaption("a.png", "  fresh caption \n"))

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh caption", string(data))

	it, _ := lib.ByID("a.png")
	assert.Equal(t, "fresh caption", it.Caption)

	assert.Error(t, lib.SaveCaption("ghost.png", "x"))
}

func TestSetPromptType(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png")

	lib := NewLibrary(nil, "Caption")
	lib.Scan(dir)

	lib.SetPromptType("a.png", "Tags")
	it, _ := lib.ByID("a.png")
	assert.Equal(t, "Tags", it.PromptType)

	// unknown items are logged, not fatal
	lib.SetPromptType("ghost.png", "Tags")
}

func TestAccessorsReturnCopies(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png")

	lib := NewLibrary(nil, "")
	items := lib.Scan(dir)
	items[0].Caption = "mutated"

	it, _ := lib.ByID("a.png")
	assert.Empty(t, it.Caption)
}
