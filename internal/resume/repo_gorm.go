package resume

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resumeapi/internal/database"
)

// skillMatchExpr 用参数化的 unnest/lower 谓词做忽略大小写的精确成员匹配，
// 取代原始拼接 SQL 的做法，也避免 ILIKE 把过滤值中的通配符当模式解释。
const skillMatchExpr = "EXISTS (SELECT 1 FROM unnest(skills) AS skill WHERE lower(skill) = lower(?))"

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository 构造基于 GORM/PostgreSQL 的简历仓库。
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context, params ListParams) ([]database.Resume, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := r.db.WithContext(ctx).Model(&database.Resume{})
	if params.Skill != "" {
		query = query.Where(skillMatchExpr, params.Skill)
	}

	var resumes []database.Resume
	if err := query.Order("id").Offset(params.Skip).Limit(limit).Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

func (r *gormRepository) Get(ctx context.Context, id uint) (*database.Resume, error) {
	var resume database.Resume
	if err := r.db.WithContext(ctx).First(&resume, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resume: %w", err)
	}
	return &resume, nil
}

func (r *gormRepository) Create(ctx context.Context, resume *database.Resume) error {
	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create resume: %w", err)
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, id uint, patch Update) (*database.Resume, error) {
	var updated *database.Resume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resume database.Resume
		if err := tx.First(&resume, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load resume: %w", err)
		}

		patch.Apply(&resume)
		if err := tx.Save(&resume).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("save resume: %w", err)
		}

		updated = &resume
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&database.Resume{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete resume: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
