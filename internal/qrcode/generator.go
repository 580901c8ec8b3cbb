package qrcode

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"

	"github.com/zombor/paydesk/internal/agent"
)

// DefaultCacheSize is the number of rendered images kept in memory
const DefaultCacheSize = 128

// Image is a rendered, downloadable agent QR code
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	PNG      []byte `json:"-"`
}

type cacheKey struct {
	id, name, location string
}

// Generator renders agent QR codes, caching results and archiving them when storage is set
type Generator struct {
	origin  string
	cache   *lru.Cache
	storage Storage
	render  func(content string, a *agent.Agent) ([]byte, error)
}

// NewGenerator creates a Generator producing links under origin. storage may be nil.
func NewGenerator(origin string, cacheSize int, storage Storage) (*Generator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating qr cache: %w", err)
	}
	return &Generator{
		origin:  origin,
		cache:   cache,
		storage: storage,
		render:  Render,
	}, nil
}

// Link returns the URL and filename for an agent without rendering
func (g *Generator) Link(a *agent.Agent) *Image {
	return &Image{URL: AgentURL(g.origin, a), Filename: Filename(a)}
}

// Generate renders the agent's QR code
func (g *Generator) Generate(a *agent.Agent) (*Image, error) {
	key := cacheKey{id: a.ID, name: a.Name, location: a.Location}
	if cached, ok := g.cache.Get(key); ok {
		return cached.(*Image), nil
	}

	img := g.Link(a)
	data, err := g.render(img.URL, a)
	if err != nil {
		return nil, fmt.Errorf("rendering qr code for agent %s: %w", a.ID, err)
	}
	img.PNG = data

	if g.storage != nil {
		// archive failures don't block the download
		if _, err := g.storage.Save(img.Filename, data); err != nil {
			slog.Warn("Failed to archive qr code", "filename", img.Filename, "error", err)
		}
	}

	g.cache.Add(key, img)
	return img, nil
}
