package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pagemason/pagemason/pkg/asset"
	"github.com/pagemason/pagemason/pkg/document"
	"github.com/pagemason/pagemason/pkg/store"
	"github.com/pagemason/pagemason/pkg/theme"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 32 << 20

type handler struct {
	store    store.Store
	themeDir *theme.Dir
	registry *theme.Registry
	gateway  *asset.Gateway
	logger   *zap.Logger
}

// ServeHTTP dispatches the builder endpoint on the type query
// parameter. Only client-input mistakes (unknown type, wrong method)
// surface as specific 4xx codes; every internal failure collapses to a
// generic 500 with the detail logged.
func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	// Multipart POSTs are uploads regardless of the type parameter;
	// the upload transport sends no query at all.
	if r.Method == http.MethodPost && isMultipart(r) {
		h.handleUpload(w, r)
		return
	}

	switch r.URL.Query().Get("type") {
	case "data":
		if r.Method == http.MethodGet {
			h.handleLoad(w, r)
		} else {
			h.handleUpdate(w, r)
		}
	case "theme":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.handleTheme(w, r)
	case "asset":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.serveAsset(w, r, r.URL.Query().Get("path"))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid Type"})
	}
}

// handleLoad returns the document at (path, ext) as its structural
// snapshot. A nonexistent path bootstraps an empty page, so the editor
// can open any path without a create step.
func (h *handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	docPath, format := docParams(r)

	tree, err := h.store.Load(docPath, format)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	data, err := document.ToSnapshot(tree)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleUpdate persists the request body at (path, ext): markup for
// html, a snapshot for json. Responds with an empty success object.
func (h *handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	docPath, format := docParams(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	catalog := h.registry.Catalog()

	var tree *document.Tree
	switch format {
	case document.FormatJSON:
		tree, err = document.FromSnapshot(body, catalog, docPath, document.WithLogger(h.logger))
	default:
		tree, err = document.FromMarkup(string(body), catalog, docPath, format, document.WithLogger(h.logger))
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	if err := h.store.Save(docPath, format, tree); err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.themeDir.LoadTheme(r.URL.Query().Get("name"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

// serveAsset streams an asset's bytes. The contract fixes the content
// type to image/png and sets Content-Length from the resolved size.
func (h *handler) serveAsset(w http.ResponseWriter, r *http.Request, rel string) {
	reader, size, err := h.gateway.Resolve(rel)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	_, _ = io.Copy(w, reader)
}

// handleUpload stores every file of a multipart request and returns
// the resulting asset URLs in field order.
func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.internalError(w, r, err)
		return
	}

	urls := []string{}
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				h.internalError(w, r, err)
				return
			}
			url, err := h.gateway.StoreUpload(header.Filename, f)
			_ = f.Close()
			if err != nil {
				h.internalError(w, r, err)
				return
			}
			urls = append(urls, url)
		}
	}
	writeJSON(w, http.StatusOK, urls)
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(
		"request failed",
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}

func docParams(r *http.Request) (string, document.Format) {
	q := r.URL.Query()
	format := document.Format(q.Get("ext"))
	if format == "" {
		format = document.FormatHTML
	}
	return q.Get("path"), format
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
}
