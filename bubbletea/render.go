package bubbletea

import "github.com/fwojciec/coursechat/markdown"

// maxRendered bounds the render cache. Streaming adds one entry per
// content event, so the cache is dropped wholesale once it fills.
const maxRendered = 512

type renderKey struct {
	source string
	width  int
}

// renderCache memoizes markdown rendering across frames. Only the answer
// being streamed misses on every frame.
type renderCache struct {
	renderer *markdown.Renderer
	entries  map[renderKey]string
}

func newRenderCache(r *markdown.Renderer) *renderCache {
	return &renderCache{renderer: r, entries: make(map[renderKey]string)}
}

func (c *renderCache) render(source string, width int) string {
	k := renderKey{source: source, width: width}
	if out, ok := c.entries[k]; ok {
		return out
	}
	if len(c.entries) >= maxRendered {
		clear(c.entries)
	}
	out := c.renderer.Render(source, width)
	c.entries[k] = out
	return out
}
