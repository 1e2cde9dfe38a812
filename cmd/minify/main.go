// Command minify writes minified copies of the templates and static assets to
// dist/, which the server prefers in production.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var mediaTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

func main() {
	var (
		inputFile = flag.String("input", "", "minify a single file instead of the asset tree")
		output    = flag.String("output", "", "output file for -input")
		dist      = flag.String("dist", "dist", "output directory for the asset tree")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	m := newMinifier()

	if *inputFile != "" {
		if *output == "" {
			log.Fatal().Msg("usage: go run ./cmd/minify -input=<file> -output=<file>")
		}
		if _, err := minifyFile(m, *inputFile, *output); err != nil {
			log.Fatal().Err(err).Str("file", *inputFile).Msg("minify failed")
		}
		return
	}

	for _, dir := range []string{"templates", "static"} {
		if err := minifyTree(m, dir, filepath.Join(*dist, dir)); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("minify failed")
		}
	}
	log.Info().Str("dist", *dist).Msg("minification complete")
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}

// minifyTree minifies every known asset under src into the same relative path
// under dst. Other files are skipped.
func minifyTree(m *minify.M, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		_, err = minifyFile(m, path, filepath.Join(dst, rel))
		return err
	})
}

// minifyFile writes the minified form of srcPath to dstPath and returns the
// number of bytes saved.
func minifyFile(m *minify.M, srcPath, dstPath string) (int, error) {
	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(srcPath))]
	if !ok {
		return 0, fmt.Errorf("unsupported file type: %s (supported: css, js, html)", srcPath)
	}
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return 0, err
	}
	minified, err := m.Bytes(mediaType, src)
	if err != nil {
		return 0, fmt.Errorf("minify %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(dstPath, minified, 0o644); err != nil {
		return 0, err
	}

	saved := len(src) - len(minified)
	ratio := 0.0
	if len(src) > 0 {
		ratio = float64(saved) / float64(len(src)) * 100
	}
	log.Info().Str("file", srcPath).Int("before", len(src)).Int("after", len(minified)).
		Msgf("%.1f%% reduction", ratio)
	return saved, nil
}
