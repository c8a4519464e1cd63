package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"artsync/models"
)

// PostgresGateway implements the pipeline's persistence gateway on GORM.
type PostgresGateway struct {
	db *gorm.DB
}

// NewPostgresGateway creates a gateway bound to an open GORM connection.
func NewPostgresGateway(db *gorm.DB) *PostgresGateway {
	return &PostgresGateway{db: db}
}

// FindBySourceURL returns the artwork with an exactly equal source URL, or
// nil when there is none.
func (g *PostgresGateway) FindBySourceURL(ctx context.Context, url string) (*models.Artwork, error) {
	var art models.Artwork
	err := g.db.WithContext(ctx).Where("source_url = ?", url).First(&art).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// FindByTitle returns all artworks whose english title is exactly equal.
func (g *PostgresGateway) FindByTitle(ctx context.Context, titleEN string) ([]models.Artwork, error) {
	var arts []models.Artwork
	if err := g.db.WithContext(ctx).Where("title_en = ?", titleEN).Find(&arts).Error; err != nil {
		return nil, err
	}
	return arts, nil
}

// Insert creates the artwork and returns its id.
func (g *PostgresGateway) Insert(ctx context.Context, art *models.Artwork) (uint, error) {
	if err := g.db.WithContext(ctx).Create(art).Error; err != nil {
		return 0, err
	}
	return art.ID, nil
}

// Update applies a partial update; only the given columns are written.
func (g *PostgresGateway) Update(ctx context.Context, id uint, fields map[string]any) error {
	return g.db.WithContext(ctx).Model(&models.Artwork{}).Where("id = ?", id).Updates(fields).Error
}

// Thumbnail returns the currently stored thumbnail URL, "" if none is set.
func (g *PostgresGateway) Thumbnail(ctx context.Context, id uint) (string, error) {
	var art models.Artwork
	if err := g.db.WithContext(ctx).Select("thumbnail_url").First(&art, id).Error; err != nil {
		return "", err
	}
	return art.ThumbnailURL, nil
}

// RunRepo persists import run accounting rows.
type RunRepo struct {
	db *gorm.DB
}

// NewRunRepo creates a run repository bound to an open GORM connection.
func NewRunRepo(db *gorm.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts a new run row.
func (r *RunRepo) Create(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update applies a partial update to a run row.
func (r *RunRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.ImportRun{}).Where("id = ?", id).Updates(fields).Error
}

// Get loads one run row.
func (r *RunRepo) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// FailStale marks runs stuck in "running" longer than maxAge as failed.
// Returns the number of runs failed over.
func (r *RunRepo) FailStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	res := r.db.WithContext(ctx).
		Model(&models.ImportRun{}).
		Where("status = ? AND started_at < ?", models.RunStatusRunning, cutoff).
		Updates(map[string]any{
			"status":      models.RunStatusFailed,
			"finished_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
