// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User は学習者の基本情報と継続学習の統計を表します。
// 行の作成・認証は外部(認証レイヤー)の責務で、コアは
// level / ストリーク関連カラムのみを更新する。
type User struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Level        int       `gorm:"not null;default:1" json:"level"`         // 1〜5
	DailyMinutes int       `gorm:"not null;default:20" json:"daily_minutes"` // 1日の学習時間(分)

	StreakDays        int        `gorm:"not null;default:0" json:"streak_days"`
	MaxStreakDays     int        `gorm:"not null;default:0" json:"max_streak_days"`
	TotalPracticeDays int        `gorm:"not null;default:0" json:"total_practice_days"`
	LastPracticeDate  *time.Time `gorm:"type:date" json:"last_practice_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	UserID            uuid.UUID  `json:"user_id"`
	Name              string     `json:"name"`
	Level             int        `json:"level"`
	DailyMinutes      int        `json:"daily_minutes"`
	StreakDays        int        `json:"streak_days"`
	MaxStreakDays     int        `json:"max_streak_days"`
	TotalPracticeDays int        `json:"total_practice_days"`
	LastPracticeDate  *time.Time `json:"last_practice_date"`
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
)
