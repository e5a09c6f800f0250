package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return nil
	}
}

// UUIDModel 字符串主键，创建时自动生成
type UUIDModel struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`
}

func (m *UUIDModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All 返回所有需要迁移的模型
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Comment{},
		&BlogPost{},
		&Project{},
		&Resume{},
		&Certificate{},
		&PageView{},
		&ViewCount{},
	}
}
