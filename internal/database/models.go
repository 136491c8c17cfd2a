package database

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// User 表示可登录的账号记录。
type User struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
}

// Resume 表示一条简历记录。结构化字段存 JSONB，技能存原生 text[]。
// 无软删除：删除即物理删除。
type Resume struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	FullName       string         `gorm:"size:255;not null" json:"full_name"`
	Email          string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone          string         `gorm:"size:64;not null" json:"phone"`
	LinkedinURL    string         `gorm:"size:512" json:"linkedin_url,omitempty"`
	Education      datatypes.JSON `gorm:"type:jsonb" json:"education,omitempty"`
	WorkExperience datatypes.JSON `gorm:"type:jsonb" json:"work_experience,omitempty"`
	Skills         pq.StringArray `gorm:"type:text[]" json:"skills,omitempty"`
}
