// internal/model/record.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SelfRating は練習後の自己評価
type SelfRating string

const (
	SelfRatingGood SelfRating = "good"
	SelfRatingFair SelfRating = "fair"
	SelfRatingPoor SelfRating = "poor"
)

// PracticeRecord は1回の練習完了の不変ログ。
// 書き込みは完了トランザクションにつき1回だけ。削除されるのは
// 同じトランザクションの失敗時の補償パスのみ。
type PracticeRecord struct {
	RecordID   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"record_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	MaterialID uuid.UUID  `gorm:"type:uuid;not null;index" json:"material_id"`
	PlanItemID *uuid.UUID `gorm:"type:uuid;index" json:"plan_item_id"` // プラン外練習では NULL

	CompletedAllStages bool        `gorm:"not null" json:"completed_all_stages"`
	SelfRating         *SelfRating `json:"self_rating"` // 未申告なら NULL
	IsPoorPerformance  bool        `gorm:"not null;default:false" json:"is_poor_performance"`
	DurationSeconds    int         `gorm:"not null;default:0" json:"duration_seconds"`

	// クライアント付与の冪等トークン (任意)。重複は監査で検出する。
	ClientOpID *string `gorm:"index" json:"client_op_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (PracticeRecord) TableName() string {
	return "practice_records"
}

// CompletePracticeRequest は練習完了APIのリクエストDTO。
// 音声Blob自体は別コンポーネント(音声ストレージ)の責務で、ここには含めない。
type CompletePracticeRequest struct {
	MaterialID         uuid.UUID   `json:"material_id" validate:"required"`
	PlanItemID         *uuid.UUID  `json:"plan_item_id" validate:"omitempty"`
	SelfRating         *SelfRating `json:"self_rating" validate:"omitempty,oneof=good fair poor"`
	IsPoorPerformance  bool        `json:"is_poor_performance"`
	DurationSeconds    int         `json:"duration_seconds" validate:"min=0"`
	CompletedAllStages bool        `json:"completed_all_stages"`
	ClientOpID         *string     `json:"client_op_id" validate:"omitempty,max=128"`
}

// CompletePracticeResponse は練習完了APIのレスポンスDTO
type CompletePracticeResponse struct {
	RecordID uuid.UUID `json:"record_id"`
}
