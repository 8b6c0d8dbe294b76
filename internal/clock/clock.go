// internal/clock/clock.go
package clock

import "time"

// 学習日の境界はサーバーやクライアントのローカルタイムゾーンではなく、
// 固定の UTC+8 オフセットで決める。プラン生成・練習完了・ストリーク・
// レベル判定のすべてがこの1箇所を通ることで、日付境界の不変条件を守る。
var practiceZone = time.FixedZone("UTC+8", 8*60*60)

// Clock は「今日の学習日」を返すインターフェースです。
// テストでは固定日を返す実装を注入する。
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

// NewSystemClock は実時間ベースの Clock を返します。
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Today() time.Time {
	return PracticeDay(time.Now())
}

// PracticeDay は任意の時刻を学習日(UTC+8境界で切り捨てた日付)に変換します。
// 戻り値は UTC の 00:00:00 に正規化した日付。DBの date カラムと直接比較できる。
func PracticeDay(t time.Time) time.Time {
	local := t.In(practiceZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Fixed はテスト用に固定の学習日を返す Clock です。
type Fixed struct {
	Day time.Time
}

func (f Fixed) Today() time.Time {
	return f.Day
}

// Date は日付リテラル用のヘルパーです (UTC 00:00 の日付)。
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
