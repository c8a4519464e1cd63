package services

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"artsync/config"
	"artsync/models"
)

// fakeGateway is an in-memory Gateway so pipeline semantics can be exercised
// without a database. failOn injects per-record write failures by english
// title.
type fakeGateway struct {
	mu          sync.Mutex
	nextID      uint
	rows        map[uint]*models.Artwork
	failOn      map[string]error
	inserts     int
	updates     int
	lastUpdates map[uint]map[string]any
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		rows:        map[uint]*models.Artwork{},
		failOn:      map[string]error{},
		lastUpdates: map[uint]map[string]any{},
	}
}

// add seeds one artwork and returns its id.
func (g *fakeGateway) add(art models.Artwork) uint {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	art.ID = g.nextID
	g.rows[art.ID] = &art
	return art.ID
}

func (g *fakeGateway) writeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inserts + g.updates
}

func (g *fakeGateway) FindBySourceURL(_ context.Context, url string) (*models.Artwork, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, art := range g.rows {
		if art.SourceURL == url {
			cp := *art
			return &cp, nil
		}
	}
	return nil, nil
}

func (g *fakeGateway) FindByTitle(_ context.Context, titleEN string) ([]models.Artwork, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Artwork
	for _, art := range g.rows {
		if art.TitleEN == titleEN {
			out = append(out, *art)
		}
	}
	return out, nil
}

func (g *fakeGateway) Insert(_ context.Context, art *models.Artwork) (uint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failOn[art.TitleEN]; err != nil {
		return 0, err
	}
	g.nextID++
	art.ID = g.nextID
	cp := *art
	g.rows[cp.ID] = &cp
	g.inserts++
	return cp.ID, nil
}

func (g *fakeGateway) Update(_ context.Context, id uint, fields map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	art, ok := g.rows[id]
	if !ok {
		return errNotFound
	}
	if err := g.failOn[art.TitleEN]; err != nil {
		return err
	}
	apply := func(key string, dst *string) {
		if v, ok := fields[key]; ok {
			*dst = v.(string)
		}
	}
	apply("title_en", &art.TitleEN)
	apply("title_cn", &art.TitleCN)
	apply("year", &art.Year)
	apply("type", &art.Type)
	apply("dimensions", &art.Dimensions)
	apply("materials", &art.Materials)
	apply("duration", &art.Duration)
	apply("thumbnail_url", &art.ThumbnailURL)
	g.updates++
	g.lastUpdates[id] = fields
	return nil
}

func (g *fakeGateway) Thumbnail(_ context.Context, id uint) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	art, ok := g.rows[id]
	if !ok {
		return "", errNotFound
	}
	return art.ThumbnailURL, nil
}

var errNotFound = errSentinel("record not found")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// fakeRunStore records run rows and row updates in memory.
type fakeRunStore struct {
	mu      sync.Mutex
	created []*models.ImportRun
	updates []map[string]any
}

func (s *fakeRunStore) Create(_ context.Context, run *models.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, run)
	return nil
}

func (s *fakeRunStore) Update(_ context.Context, _ string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, fields)
	return nil
}

// setupService creates an ImportService over a fresh fake gateway.
func setupService(t *testing.T) (*ImportService, *fakeGateway, *fakeRunStore) {
	t.Helper()
	gw := newFakeGateway()
	runs := &fakeRunStore{}
	cfg := &config.Config{BatchSize: 30}
	return NewImportService(cfg, gw, runs, zap.NewNop()), gw, runs
}
