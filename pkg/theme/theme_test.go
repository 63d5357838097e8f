package theme

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fsys, name, []byte(content), 0o644))
}

func defaultThemeFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	writeFile(t, fsys, "default/banner1/index.html", `<section class="banner"><h2 data-x>Banner</h2></section>`)
	writeFile(t, fsys, "default/footer1/index.html", `<footer><p>Footer</p></footer>`)
	writeFile(t, fsys, "default/index.ts", "export {};")
	writeFile(t, fsys, "default/.hidden/index.html", "<div></div>")
	return fsys
}

func TestLoadTheme(t *testing.T) {
	dir := NewDir(defaultThemeFS(t))

	blocks, err := dir.LoadTheme("default")
	require.NoError(t, err)

	require.Len(t, blocks, 2)
	assert.Equal(t, "banner1", blocks[0].Folder)
	assert.Equal(t, `<section class="banner"><h2 data-x>Banner</h2></section>`, blocks[0].Source)
	assert.Equal(t, "footer1", blocks[1].Folder)
}

func TestLoadTheme_NotFound(t *testing.T) {
	dir := NewDir(defaultThemeFS(t))

	_, err := dir.LoadTheme("missing")
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestLoadTheme_NameStaysInsideRoot(t *testing.T) {
	dir := NewDir(defaultThemeFS(t))

	for _, name := range []string{"../outside", "a/b", `a\b`, "..", ""} {
		_, err := dir.LoadTheme(name)
		assert.ErrorIsf(t, err, ErrThemeNotFound, "name %q", name)
	}
}

func TestLoadTheme_SkipsFolderWithoutSource(t *testing.T) {
	fsys := defaultThemeFS(t)
	writeFile(t, fsys, "default/empty1/notes.txt", "todo")

	blocks, err := NewDir(fsys).LoadTheme("default")
	require.NoError(t, err)

	folders := make([]string, 0, len(blocks))
	for _, b := range blocks {
		folders = append(folders, b.Folder)
	}
	assert.Equal(t, []string{"banner1", "footer1"}, folders)
}

func TestThemes(t *testing.T) {
	fsys := defaultThemeFS(t)
	writeFile(t, fsys, "minimal/hero1/index.html", "<div></div>")
	writeFile(t, fsys, ".git/config", "")
	writeFile(t, fsys, "README.md", "")

	names, err := NewDir(fsys).Themes()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "minimal"}, names)
}

func TestRegistry_Swap(t *testing.T) {
	dir := NewDir(defaultThemeFS(t))
	first, err := dir.BuildCatalog("default")
	require.NoError(t, err)

	registry := NewRegistry("default", first)
	assert.Same(t, first, registry.Catalog())
	assert.Equal(t, "default", registry.Theme())

	second, err := dir.BuildCatalog("default")
	require.NoError(t, err)
	registry.Swap(second)
	assert.Same(t, second, registry.Catalog())
}
