package report

import (
	"bytes"
	"context"
	"depscan/internal/core/errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// graphvizBinary is looked up on PATH for image rendering.
const graphvizBinary = "dot"

var imageFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

// ImagePath is where RenderImage writes the format rendering of dotPath: the DOT
// path with its extension replaced.
func ImagePath(dotPath, format string) string {
	return strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + "." + format
}

// RenderImage runs Graphviz on an existing DOT file and returns the image path.
// An unknown format or a missing dot binary is NOT_SUPPORTED.
func RenderImage(ctx context.Context, dotPath, format string) (string, error) {
	if !imageFormats[format] {
		return "", errors.Newf(errors.CodeNotSupported, "image format %q is not supported", format)
	}
	bin, err := exec.LookPath(graphvizBinary)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeNotSupported, "graphviz dot is not on PATH")
	}

	out := ImagePath(dotPath, format)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", out, dotPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("render %s image: %w: %s", format, err, strings.TrimSpace(stderr.String()))
	}
	slog.Info("wrote output", "kind", format, "path", out)
	return out, nil
}
