package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemason/pagemason/pkg/asset"
	"github.com/pagemason/pagemason/pkg/document"
	"github.com/pagemason/pagemason/pkg/store"
	"github.com/pagemason/pagemason/pkg/theme"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func testServer(t *testing.T) *Server {
	t.Helper()

	themeFS := memfs.New()
	require.NoError(t, util.WriteFile(themeFS, "default/banner1/index.html", []byte(`<section class="banner"></section>`), 0o644))
	require.NoError(t, util.WriteFile(themeFS, "default/footer1/index.html", []byte(`<footer></footer>`), 0o644))
	require.NoError(t, util.WriteFile(themeFS, "default/index.ts", []byte("export {};"), 0o644))
	themeDir := theme.NewDir(themeFS)

	catalog, err := themeDir.BuildCatalog("default")
	require.NoError(t, err)

	packagesFS := memfs.New()
	require.NoError(t, util.WriteFile(packagesFS, "img/logo.png", pngHeader, 0o644))

	srv, err := New(Config{
		Store:    store.NewDirStore(memfs.New(), theme.NewRegistry("default", catalog)),
		ThemeDir: themeDir,
		Registry: theme.NewRegistry("default", catalog),
		Gateway:  asset.NewGateway(packagesFS, memfs.New()),
	})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_LoadBootstrapsNewDocument(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=data&path=home", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snapshot struct {
		Root struct {
			Block    string `json:"block"`
			Children []any  `json:"children"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, document.PageBlockID, snapshot.Root.Block)
	assert.Empty(t, snapshot.Root.Children)
}

func TestServer_UpdateThenLoad(t *testing.T) {
	srv := testServer(t)

	body := strings.NewReader(`<h1>Welcome</h1>`)
	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/?type=data&path=home&ext=html", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=data&path=home&ext=html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), document.HeadingBlockID)
	assert.Contains(t, rec.Body.String(), "Welcome")
}

func TestServer_Theme(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=theme&name=default", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var blocks []theme.Block
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blocks))
	require.Len(t, blocks, 2)
	assert.Equal(t, "banner1", blocks[0].Folder)
	assert.Equal(t, "footer1", blocks[1].Folder)
}

func TestServer_Asset(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=asset&path=img/logo.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "12", rec.Header().Get("Content-Length"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())
}

func TestServer_AssetTraversalCollapsesTo500(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=asset&path=../secret.png", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestServer_InvalidType(t *testing.T) {
	srv := testServer(t)

	for _, target := range []string{"/", "/?type=bogus"} {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid Type"}`, rec.Body.String())
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodDelete, "/?type=data&path=home", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodPost, "/?type=theme&name=default", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Upload(t *testing.T) {
	srv := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	_, err = fw.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := do(t, srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var urls []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &urls))
	assert.Equal(t, []string{"/uploads/shot.png"}, urls)

	// The stored upload is immediately served back.
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/uploads/shot.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())
}

func TestServer_UpdateJSONSnapshot(t *testing.T) {
	srv := testServer(t)

	// Persist markup first, load its snapshot, then store the snapshot
	// under the json format and read it back.
	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/?type=data&path=home&ext=html", strings.NewReader(`<h1>t</h1>`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=data&path=home&ext=html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := rec.Body.String()

	rec = do(t, srv, httptest.NewRequest(http.MethodPost, "/?type=data&path=home&ext=json", strings.NewReader(snapshot)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/?type=data&path=home&ext=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), document.HeadingBlockID)
}
