package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/conceptmap/pkg/cache"
)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Renderer renders SVG through a cache keyed by the DOT source, so a map
// that has not changed is rendered once.
type Renderer struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	// render is swapped out in tests.
	render func(context.Context, string) ([]byte, error)
}

// NewRenderer returns a caching renderer. A nil keyer uses
// [cache.NewDefaultKeyer].
func NewRenderer(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Renderer {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Renderer{cache: c, keyer: keyer, ttl: ttl, render: RenderSVG}
}

// SVG returns the rendered SVG for dot and whether it came from the cache.
// Cache failures are not fatal: the map is rendered and the error dropped.
func (r *Renderer) SVG(ctx context.Context, dot string) ([]byte, bool, error) {
	key := r.keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "svg"})
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	svg, err := r.render(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	_ = r.cache.Set(ctx, key, svg, r.ttl)
	return svg, false, nil
}
