package champion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type championModel struct {
	ID           uint           `gorm:"primaryKey"`
	GenomeID     string         `gorm:"uniqueIndex;size:64"`
	TemplateName string         `gorm:"index;size:64"`
	SharpeRatio  float64        `gorm:"index"`
	Parameters   datatypes.JSON `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (championModel) TableName() string { return "champions" }

// GormRepository is the SQLite-backed champion store.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository opens (or creates) the champion database at path.
func NewGormRepository(path string) (*GormRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("champion repository requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&championModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormRepository{db: db}, nil
}

// Champions returns all champions with Sharpe >= minSharpe, best first.
func (r *GormRepository) Champions(ctx context.Context, minSharpe float64) ([]Champion, error) {
	var models []championModel
	err := r.db.WithContext(ctx).
		Where("sharpe_ratio >= ?", minSharpe).
		Order("sharpe_ratio DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]Champion, 0, len(models))
	for _, m := range models {
		c, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// BestForTemplate returns the highest-Sharpe champion for one template.
func (r *GormRepository) BestForTemplate(ctx context.Context, templateName string, minSharpe float64) (Champion, bool, error) {
	var m championModel
	err := r.db.WithContext(ctx).
		Where("template_name = ? AND sharpe_ratio >= ?", templateName, minSharpe).
		Order("sharpe_ratio DESC").
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return Champion{}, false, nil
	}
	if err != nil {
		return Champion{}, false, err
	}
	c, err := fromModel(m)
	if err != nil {
		return Champion{}, false, err
	}
	return c, true, nil
}

// Upsert inserts or replaces a champion keyed by genome ID.
func (r *GormRepository) Upsert(ctx context.Context, c Champion) error {
	if strings.TrimSpace(c.GenomeID) == "" {
		return fmt.Errorf("champion genome_id cannot be empty")
	}
	raw, err := json.Marshal(c.Parameters)
	if err != nil {
		return err
	}
	m := championModel{
		GenomeID:     c.GenomeID,
		TemplateName: c.TemplateName,
		SharpeRatio:  c.SharpeRatio,
		Parameters:   datatypes.JSON(raw),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "genome_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"template_name", "sharpe_ratio", "parameters", "updated_at"}),
	}).Create(&m).Error
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromModel(m championModel) (Champion, error) {
	c := Champion{
		GenomeID:     m.GenomeID,
		TemplateName: m.TemplateName,
		SharpeRatio:  m.SharpeRatio,
	}
	if len(m.Parameters) > 0 {
		if err := json.Unmarshal(m.Parameters, &c.Parameters); err != nil {
			return Champion{}, fmt.Errorf("champion %s has malformed parameters: %w", m.GenomeID, err)
		}
	}
	return c, nil
}
