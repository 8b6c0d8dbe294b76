// internal/model/material.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialStatus は教材の学習状態
type MaterialStatus string

const (
	MaterialStatusUnlearned MaterialStatus = "unlearned"
	MaterialStatusLearning  MaterialStatus = "learning"
	MaterialStatusMastered  MaterialStatus = "mastered"
)

// PreprocessStatus は前処理パイプラインの進捗状態。
// パイプライン自体は外部コンポーネントで、コアは done のものだけを出題対象にする。
type PreprocessStatus string

const (
	PreprocessStatusPending    PreprocessStatus = "pending"
	PreprocessStatusProcessing PreprocessStatus = "processing"
	PreprocessStatusDone       PreprocessStatus = "done"
	PreprocessStatusFailed     PreprocessStatus = "failed"
)

// Material は1つの練習文(シャドーイング教材)を表します。
// review_count / next_review_date / status は練習完了のたびに
// 間隔反復ポリシーで進む。同一教材への同時更新はCAS前提で直列化される。
type Material struct {
	MaterialID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"material_id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Sentence   string         `gorm:"not null" json:"sentence"`
	Level      int            `gorm:"not null;default:1;index" json:"level"` // 1〜5 (難易度)
	Tags       string         `gorm:"not null;default:''" json:"tags"`       // 直列化済みタグ集合 (ソート済みカンマ区切り)
	Status     MaterialStatus `gorm:"not null;default:unlearned;index" json:"status"`

	ReviewCount      int        `gorm:"not null;default:0" json:"review_count"`
	NextReviewDate   *time.Time `gorm:"type:date;index" json:"next_review_date"`
	LastPracticeDate *time.Time `gorm:"type:date" json:"last_practice_date"`

	// 前処理パイプラインの成果物 (外部コンポーネントが書き戻す)
	PreprocessStatus PreprocessStatus `gorm:"not null;default:pending;index" json:"preprocess_status"`
	Translation      string           `json:"translation,omitempty"`
	PhoneticNotes    string           `json:"phonetic_notes,omitempty"`
	PauseMarks       string           `json:"pause_marks,omitempty"`
	WordMask         string           `json:"word_mask,omitempty"`
	AudioSlowPath    string           `json:"audio_slow_path,omitempty"`
	AudioNormalPath  string           `json:"audio_normal_path,omitempty"`
	AudioFastPath    string           `json:"audio_fast_path,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 論理削除用
}

func (Material) TableName() string {
	return "materials"
}

// 教材作成リクエストDTO
type CreateMaterialRequest struct {
	Sentence string `json:"sentence" validate:"required,min=1"`
	Level    int    `json:"level" validate:"required,min=1,max=5"`
	Tags     string `json:"tags" validate:"omitempty,max=255"`
}

// 前処理結果の書き戻しリクエストDTO (外部パイプライン用)
type PreprocessResultRequest struct {
	Status          PreprocessStatus `json:"status" validate:"required,oneof=pending processing done failed"`
	Translation     string           `json:"translation" validate:"omitempty"`
	PhoneticNotes   string           `json:"phonetic_notes" validate:"omitempty"`
	PauseMarks      string           `json:"pause_marks" validate:"omitempty"`
	WordMask        string           `json:"word_mask" validate:"omitempty"`
	AudioSlowPath   string           `json:"audio_slow_path" validate:"omitempty"`
	AudioNormalPath string           `json:"audio_normal_path" validate:"omitempty"`
	AudioFastPath   string           `json:"audio_fast_path" validate:"omitempty"`
}

// 教材一覧のフィルタ
type ListMaterialsQuery struct {
	Status *MaterialStatus
	Level  *int
}
