// internal/model/plan.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanItemType はプランアイテムの種別 (復習 or 新規教材)
type PlanItemType string

const (
	PlanItemTypeReview PlanItemType = "review"
	PlanItemTypeNew    PlanItemType = "new"
)

// PlanItemStatus はプランアイテムの状態。
// 前進遷移は pending / in_progress → completed のみ (completed は終端)。
// completed から戻すのは完了トランザクションの補償パスだけ。
type PlanItemStatus string

const (
	PlanItemStatusPending    PlanItemStatus = "pending"
	PlanItemStatusInProgress PlanItemStatus = "in_progress"
	PlanItemStatusCompleted  PlanItemStatus = "completed"
)

// DailyPlan は (ユーザー, 日付) ごとに1行のデイリープラン。
// 一意性は複合ユニークインデックスでストレージ層が保証する。
// completed_items は完了トランザクションのみが増やし、補償以外で減らない。
type DailyPlan struct {
	PlanID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"plan_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_plan_date,unique" json:"-"`
	PlanDate time.Time `gorm:"type:date;not null;index:idx_user_plan_date,unique" json:"plan_date"`

	TotalItems     int `gorm:"not null" json:"total_items"`
	CompletedItems int `gorm:"not null;default:0" json:"completed_items"` // 0 <= completed_items <= total_items

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 関連 (Preload用)
	Items []PlanItem `gorm:"foreignKey:PlanID;references:PlanID" json:"items,omitempty"`
}

func (DailyPlan) TableName() string {
	return "daily_plans"
}

// PlanItem はデイリープラン内の1教材スロット。
// 「completed であること」と「対応するPracticeRecordがちょうど1件あること」は同値。
type PlanItem struct {
	PlanItemID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"plan_item_id"`
	PlanID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_plan_order" json:"plan_id"`
	MaterialID uuid.UUID      `gorm:"type:uuid;not null;index" json:"material_id"`
	ItemOrder  int            `gorm:"not null;index:idx_plan_order" json:"item_order"`
	ItemType   PlanItemType   `gorm:"not null" json:"item_type"`
	Status     PlanItemStatus `gorm:"not null;default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 関連 (Preload用)
	Material *Material `gorm:"foreignKey:MaterialID;references:MaterialID" json:"material,omitempty"`
}

func (PlanItem) TableName() string {
	return "plan_items"
}

// GeneratePlanResponse はプラン生成APIのレスポンスDTO
type GeneratePlanResponse struct {
	PlanID     uuid.UUID `json:"plan_id"`
	PlanDate   time.Time `json:"plan_date"`
	TotalItems int       `json:"total_items"`
	Created    bool      `json:"created"` // false なら既存プラン(生成スキップ)
}

// PlanItemResponse はプラン取得APIの1アイテム分のDTO
type PlanItemResponse struct {
	PlanItemID uuid.UUID      `json:"plan_item_id"`
	ItemOrder  int            `json:"item_order"`
	ItemType   PlanItemType   `json:"item_type"`
	Status     PlanItemStatus `json:"status"`
	Material   *Material      `json:"material,omitempty"`
}

// PlanResponse はプラン取得APIのレスポンスDTO
type PlanResponse struct {
	PlanID         uuid.UUID          `json:"plan_id"`
	PlanDate       time.Time          `json:"plan_date"`
	TotalItems     int                `json:"total_items"`
	CompletedItems int                `json:"completed_items"`
	Items          []PlanItemResponse `json:"items"`
}
