package asset

import (
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// unsafeNameChars collapses everything outside the portable filename
// alphabet; uploads keep only the base name the browser sent.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// StoreUpload saves an uploaded file into the uploads root and returns
// its public URL path. The payload is sniffed and anything that is not
// an image fails with ErrUnsupportedAsset before a byte is written.
func (g *Gateway) StoreUpload(filename string, r io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", errors.Wrap(ErrUnsupportedAsset, "empty file name")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to read upload")
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", errors.Wrapf(ErrUnsupportedAsset, "%s (%s)", name, mime.String())
	}

	if err := util.WriteFile(g.uploads, name, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to store upload %q", name)
	}

	g.logger.Info(
		"stored upload",
		zap.String("name", name),
		zap.String("mime", mime.String()),
		zap.Int("bytes", len(data)),
	)
	return "/uploads/" + name, nil
}

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	return base
}
