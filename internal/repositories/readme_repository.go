package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wonder-codes/echo-repo/internal/models"
)

// DefaultHistoryLimit is the number of records ListRecent returns when the
// caller does not ask for a specific amount.
const DefaultHistoryLimit = 10

var (
	ErrEmptyContent = errors.New("readme content is required")
	ErrDuplicateID  = errors.New("readme with this id already exists")
	ErrNilReadme    = errors.New("readme is required")
)

// ReadmeRepository is the append-only history of generated READMEs.
type ReadmeRepository interface {
	// Append persists readme, filling ID and CreatedAt when they are empty.
	// An existing record is never overwritten.
	Append(ctx context.Context, readme *models.Readme) error
	// ListRecent returns at most limit records, newest first. Records with
	// equal CreatedAt are ordered by most recent insertion.
	ListRecent(ctx context.Context, limit int) ([]models.Readme, error)
}

type readmeRepository struct {
	db *gorm.DB
}

func NewReadmeRepository(db *gorm.DB) ReadmeRepository {
	return &readmeRepository{db: db}
}

func (r *readmeRepository) Append(ctx context.Context, readme *models.Readme) error {
	if err := prepareReadme(readme); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Readme{}).Where("id = ?", readme.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateID
		}
		return tx.Create(readme).Error
	})
}

func (r *readmeRepository) ListRecent(ctx context.Context, limit int) ([]models.Readme, error) {
	var readmes []models.Readme
	// rowid follows insertion order in SQLite and breaks created_at ties.
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("rowid desc").
		Limit(normalizeLimit(limit)).
		Find(&readmes).Error
	if err != nil {
		return nil, err
	}
	return readmes, nil
}

// prepareReadme validates readme and assigns its identity and timestamp.
func prepareReadme(readme *models.Readme) error {
	if readme == nil {
		return ErrNilReadme
	}
	if strings.TrimSpace(readme.Content) == "" {
		return ErrEmptyContent
	}
	if readme.ID == "" {
		readme.ID = uuid.NewString()
	}
	if readme.CreatedAt.IsZero() {
		readme.CreatedAt = time.Now().UTC()
	} else {
		readme.CreatedAt = readme.CreatedAt.UTC()
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
