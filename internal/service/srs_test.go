// internal/service/srs_test.go
package service

import (
	"testing"
	"time"

	"go_shadowing_keep/internal/model"

	"github.com/stretchr/testify/assert"
)

func ratingPtr(r model.SelfRating) *model.SelfRating {
	return &r
}

func Test_intervalDays(t *testing.T) {
	tests := []struct {
		name        string
		reviewCount int
		want        int
	}{
		{name: "count=1 は1日", reviewCount: 1, want: 1},
		{name: "count=2 は2日", reviewCount: 2, want: 2},
		{name: "count=3 は4日", reviewCount: 3, want: 4},
		{name: "count=5 は16日", reviewCount: 5, want: 16},
		{name: "count=7 は60日", reviewCount: 7, want: 60},
		{name: "ラダーの末尾を超えても60日のまま", reviewCount: 8, want: 60},
		{name: "count=100 でも60日", reviewCount: 100, want: 60},
		{name: "count=0 は先頭にクランプ", reviewCount: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intervalDays(tt.reviewCount))
		})
	}
}

func Test_NextReview(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		reviewCount int
		status      model.MaterialStatus
		outcome     PracticeOutcome
		wantCount   int
		wantDate    time.Time
		wantStatus  model.MaterialStatus
	}{
		{
			name:        "正常系: good評価でカウント増加と間隔進行",
			reviewCount: 2,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: true},
			wantCount:   3,
			wantDate:    today.AddDate(0, 0, 4),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: 初回練習で unlearned → learning",
			reviewCount: 0,
			status:      model.MaterialStatusUnlearned,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: true},
			wantCount:   1,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: 5回目のgoodで mastered、間隔は16日",
			reviewCount: 4,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: true},
			wantCount:   5,
			wantDate:    today.AddDate(0, 0, 16),
			wantStatus:  model.MaterialStatusMastered,
		},
		{
			name:        "正常系: 5回目でもステージ未完走なら mastered にならない",
			reviewCount: 4,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: false},
			wantCount:   5,
			wantDate:    today.AddDate(0, 0, 16),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: mastered 後も復習は続き間隔が付く",
			reviewCount: 6,
			status:      model.MaterialStatusMastered,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: true},
			wantCount:   7,
			wantDate:    today.AddDate(0, 0, 60),
			wantStatus:  model.MaterialStatusMastered,
		},
		{
			name:        "正常系: fair評価は間隔が半分 (count=4 → 7日の半分3日)",
			reviewCount: 3,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingFair), CompletedAllStages: true},
			wantCount:   4,
			wantDate:    today.AddDate(0, 0, 3),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: fair評価でも最低1日は空く",
			reviewCount: 0,
			status:      model.MaterialStatusUnlearned,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingFair), CompletedAllStages: true},
			wantCount:   1,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: poor評価 + 完走ならカウント半減 (最低1) で翌日再出題",
			reviewCount: 6,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingPoor), CompletedAllStages: true},
			wantCount:   3,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: poor評価 + 完走でもカウントは1未満にならない",
			reviewCount: 1,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingPoor), CompletedAllStages: true},
			wantCount:   1,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: poor評価 + 途中離脱で完全リセット",
			reviewCount: 6,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingPoor), CompletedAllStages: false},
			wantCount:   0,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: is_poor_performance は自己評価より優先される",
			reviewCount: 4,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), IsPoorPerformance: true, CompletedAllStages: true},
			wantCount:   2,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: mastered 教材が poor で learning に降格",
			reviewCount: 7,
			status:      model.MaterialStatusMastered,
			outcome:     PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingPoor), CompletedAllStages: true},
			wantCount:   3,
			wantDate:    today.AddDate(0, 0, 1),
			wantStatus:  model.MaterialStatusLearning,
		},
		{
			name:        "正常系: 自己評価なしは good と同じ扱い",
			reviewCount: 1,
			status:      model.MaterialStatusLearning,
			outcome:     PracticeOutcome{SelfRating: nil, CompletedAllStages: true},
			wantCount:   2,
			wantDate:    today.AddDate(0, 0, 2),
			wantStatus:  model.MaterialStatusLearning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextReview(tt.reviewCount, tt.status, tt.outcome, today)
			assert.Equal(t, tt.wantCount, got.ReviewCount, "review count")
			assert.Equal(t, tt.wantDate, got.NextReviewDate, "next review date")
			assert.Equal(t, tt.wantStatus, got.Status, "status")
		})
	}
}

// 新規教材を good で5回続けると mastered に到達し、5回目の間隔は16日になる
func Test_NextReview_FullLadder(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	outcome := PracticeOutcome{SelfRating: ratingPtr(model.SelfRatingGood), CompletedAllStages: true}

	count := 0
	status := model.MaterialStatusUnlearned
	wantIntervals := []int{1, 2, 4, 7, 16}

	for i, want := range wantIntervals {
		got := NextReview(count, status, outcome, today)
		assert.Equal(t, i+1, got.ReviewCount)
		assert.Equal(t, today.AddDate(0, 0, want), got.NextReviewDate, "interval after practice %d", i+1)
		count = got.ReviewCount
		status = got.Status
	}
	assert.Equal(t, model.MaterialStatusMastered, status)
}
