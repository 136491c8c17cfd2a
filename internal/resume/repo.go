package resume

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"resumeapi/internal/database"
)

// ErrEmailTaken 表示写入违反了邮箱唯一约束。
var ErrEmailTaken = errors.New("email already exists")

// DefaultLimit 是未指定分页大小时的默认值。
const DefaultLimit = 100

// ListParams 描述列表查询的分页与过滤条件。
// Skill 非空时只返回 skills 数组中含有该值（忽略大小写的精确匹配）的记录。
type ListParams struct {
	Skip  int
	Limit int
	Skill string
}

// Update 是类型化的部分更新结构：nil 字段保持原值不动。
type Update struct {
	FullName       *string
	Email          *string
	Phone          *string
	LinkedinURL    *string
	Education      *datatypes.JSON
	WorkExperience *datatypes.JSON
	Skills         *pq.StringArray
}

// Apply 把已设置的字段合并到目标记录上。显式逐字段合并，不走反射。
func (u Update) Apply(r *database.Resume) {
	if u.FullName != nil {
		r.FullName = *u.FullName
	}
	if u.Email != nil {
		r.Email = *u.Email
	}
	if u.Phone != nil {
		r.Phone = *u.Phone
	}
	if u.LinkedinURL != nil {
		r.LinkedinURL = *u.LinkedinURL
	}
	if u.Education != nil {
		r.Education = *u.Education
	}
	if u.WorkExperience != nil {
		r.WorkExperience = *u.WorkExperience
	}
	if u.Skills != nil {
		r.Skills = *u.Skills
	}
}

// Repository 定义简历的持久化操作。
// Get/Update 查无记录时返回 (nil, nil)，Delete 返回是否真的删掉了记录；
// 缺席都是正常结果，只有存储故障才作为 error 上抛。
type Repository interface {
	List(ctx context.Context, params ListParams) ([]database.Resume, error)
	Get(ctx context.Context, id uint) (*database.Resume, error)
	Create(ctx context.Context, r *database.Resume) error
	Update(ctx context.Context, id uint, patch Update) (*database.Resume, error)
	Delete(ctx context.Context, id uint) (bool, error)
}
