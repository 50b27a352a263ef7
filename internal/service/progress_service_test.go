package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/testutil"
	"studypulse_backend/internal/util"
)

func TestLevelForXP(t *testing.T) {
	tests := map[int]int{0: 1, 199: 1, 200: 2, 450: 3, -5: 1}
	for xp, want := range tests {
		if got := LevelForXP(xp); got != want {
			t.Errorf("LevelForXP(%d) = %d, want %d", xp, got, want)
		}
	}
}

func TestCompleteLessonIdempotent(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "learner@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	lesson := testutil.SeedLesson(t, db, module.ID, 120)
	svc := NewProgressService(db)

	first, err := svc.CompleteLesson(context.Background(), user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.AlreadyCompleted || first.XPAwarded != 120 || first.NewTotalXP != 120 {
		t.Fatalf("first = %+v", first)
	}

	second, err := svc.CompleteLesson(context.Background(), user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.AlreadyCompleted || second.XPAwarded != 0 || second.NewTotalXP != 120 {
		t.Fatalf("second = %+v", second)
	}

	progress := repository.NewProgressRepository(db)
	if rows, err := progress.CountCompletions(user.Profile.ID); err != nil || rows != 1 {
		t.Fatalf("progress rows = %d err = %v", rows, err)
	}
	if done, err := progress.HasCompleted(user.Profile.ID, lesson.ID); err != nil || !done {
		t.Fatalf("HasCompleted = %v err = %v", done, err)
	}
}

func TestCompleteLessonConcurrent(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "race@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	lesson := testutil.SeedLesson(t, db, module.ID, 30)
	svc := NewProgressService(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CompleteLesson(context.Background(), user.ID, lesson.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("CompleteLesson: %v", err)
	}

	var p model.Profile
	db.First(&p, user.Profile.ID)
	if p.XP != 30 {
		t.Fatalf("xp = %d, want 30", p.XP)
	}
}

func TestCompleteLessonNotFound(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "nf@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	lesson := testutil.SeedLesson(t, db, module.ID, 10)
	svc := NewProgressService(db)

	if _, err := svc.CompleteLesson(context.Background(), 9999, lesson.ID); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
	if _, err := svc.CompleteLesson(context.Background(), user.ID, 9999); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("unknown lesson: %v", err)
	}

	bare := &model.User{Email: "bare@example.com", Username: "bare"}
	if err := db.Create(bare).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteLesson(context.Background(), bare.ID, lesson.ID); !errors.Is(err, util.ErrProfileNotFound) {
		t.Fatalf("no profile: %v", err)
	}
}

func TestTracker(t *testing.T) {
	db := testutil.DB(t)
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	user := testutil.SeedUser(t, db, "tracker@example.com", false)
	other := testutil.SeedUser(t, db, "other@example.com", false)
	module := testutil.SeedModule(t, db, "Algorithms")
	lesson := testutil.SeedLesson(t, db, module.ID, 80)
	quiz := testutil.SeedQuiz(t, db, module.ID, 4, 70, 40)

	progress := NewProgressService(db)
	progress.Now = func() time.Time { return now }
	if _, err := progress.CompleteLesson(context.Background(), user.ID, lesson.ID); err != nil {
		t.Fatal(err)
	}

	quizzes := NewQuizService(db)
	quizzes.Now = func() time.Time { return now.AddDate(0, 0, -1) }
	if _, err := quizzes.Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, 3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := quizzes.Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, 2)}); err != nil {
		t.Fatal(err)
	}

	badge := &model.Badge{Name: "First Steps", Description: "d", IconEmoji: "*"}
	db.Create(badge)
	db.Create(&model.UserBadge{ProfileID: user.Profile.ID, BadgeID: badge.ID, EarnedAt: now})

	data, err := progress.Tracker(context.Background(), user.Profile.ID)
	if err != nil {
		t.Fatalf("Tracker: %v", err)
	}
	if len(data.Leaderboard) != 2 || data.Leaderboard[0].ID != user.Profile.ID || data.Leaderboard[1].ID != other.Profile.ID {
		t.Fatalf("leaderboard = %+v", data.Leaderboard)
	}
	if len(data.MyBadges) != 1 || data.MyBadges[0].Badge.Name != "First Steps" {
		t.Fatalf("badges = %+v", data.MyBadges)
	}
	if len(data.TopicPerformance) != 1 || data.TopicPerformance[0].Topic != "Algorithms" || data.TopicPerformance[0].Performance != 62.5 {
		t.Fatalf("topic performance = %+v", data.TopicPerformance)
	}
	if data.WeeklyGraph.Labels[6] != "Wed" || data.WeeklyGraph.Data[6] != 1 || data.WeeklyGraph.Data[5] != 2 {
		t.Fatalf("weekly = %+v", data.WeeklyGraph)
	}
	if data.MonthlyGraph.Labels[0] != "Oct" || data.MonthlyGraph.Labels[5] != "Mar" || data.MonthlyGraph.Data[5] != 3 {
		t.Fatalf("monthly = %+v", data.MonthlyGraph)
	}

	anon, err := progress.Tracker(context.Background(), 0)
	if err != nil {
		t.Fatalf("anonymous Tracker: %v", err)
	}
	if len(anon.MyBadges) != 0 || anon.MonthlyGraph.Data[5] != 3 {
		t.Fatalf("anonymous = %+v", anon)
	}
}
