// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "ShadowingKeep"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort       = ":8080"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMaxDailySlots    = 50
	DefaultAuditSampleLimit = 20
)

// スケジューリング関連の固定値。
// 設定で変えるものではなく、仕様として固定された閾値。
const (
	// 1アイテムあたりの想定所要時間(分)。スロット数 = daily_minutes / 2
	MinutesPerSlot = 2

	// 復習アイテムがスロット全体に占められる割合の上限 (新規枠を最低1つ残す)
	ReviewSlotRatio = 0.8

	// マスター判定に必要な復習回数
	MasteryThreshold = 5

	// レベルアップに必要な現レベルのマスター済み教材数
	LevelUpMasteredCount = 20

	// レベルアップ判定: 直前7日間でプランが3件以上、完了率 > 0.80
	LevelUpWindowDays     = 7
	LevelUpMinPlans       = 3
	LevelUpCompletionRate = 0.80

	// リタイア保護判定: 直前3日間でプランが3件以上、全件で完了率 < 0.50
	RetirementWindowDays     = 3
	RetirementMinPlans       = 3
	RetirementCompletionRate = 0.50

	// 最高レベル
	MaxUserLevel = 5

	// CASリトライ回数の上限 (間隔反復更新・ストリーク更新・レベル昇格)
	CASMaxRetries = 5
)
