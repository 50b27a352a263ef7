package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"studypulse_backend/internal/model"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/testutil"
	"studypulse_backend/internal/util"

	"gorm.io/gorm"
)

func answersFor(quiz *model.Quiz, correct int) []AnswerEntry {
	entries := make([]AnswerEntry, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		choice := testutil.WrongChoice(q)
		if i < correct {
			choice = testutil.CorrectChoice(q)
		}
		entries = append(entries, AnswerEntry{QuestionID: q.ID, ChoiceID: choice})
	}
	return entries
}

func profileXP(t *testing.T, db *gorm.DB, profileID uint) (int, int) {
	t.Helper()
	var p model.Profile
	if err := db.First(&p, profileID).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	return p.XP, p.Level
}

func TestGradeAllCorrect(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "all@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 5, 70, 50)

	svc := NewQuizService(db)
	got, err := svc.Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, 5)})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if *got.Score != 100 || !got.Passed || !got.IsComplete {
		t.Fatalf("score=%v passed=%v complete=%v", *got.Score, got.Passed, got.IsComplete)
	}
	if got.CorrectAnswersCount != 5 || got.TotalQuestions != 5 || len(got.Answers) != 5 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.QuestionCount != 5 {
		t.Fatalf("question_count = %d", got.QuestionCount)
	}
	if xp, _ := profileXP(t, db, user.Profile.ID); xp != 50 {
		t.Fatalf("xp = %d, want 50", xp)
	}

	stored, err := repository.NewQuizRepository(db).FindAttempt(got.ID)
	if err != nil {
		t.Fatalf("FindAttempt: %v", err)
	}
	if !stored.IsComplete || stored.EndTime == nil || *stored.Score != 100 || len(stored.Answers) != 5 {
		t.Fatalf("stored attempt = %+v", stored)
	}
	for _, a := range stored.Answers {
		if !a.IsCorrect {
			t.Fatalf("answer %d not marked correct", a.ID)
		}
	}
}

func TestGradeNoValidAnswers(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "none@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 3, 70, 50)

	got, err := NewQuizService(db).Grade(context.Background(), user.Profile.ID, GradeRequest{
		QuizID:  quiz.ID,
		Answers: []AnswerEntry{{QuestionID: 999999, ChoiceID: 1}},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if *got.Score != 0 || got.Passed || len(got.Answers) != 0 {
		t.Fatalf("score=%v passed=%v answers=%d", *got.Score, got.Passed, len(got.Answers))
	}
	if len(got.Skipped) != 1 || got.Skipped[0].Reason != SkipQuestionNotInQuiz {
		t.Fatalf("skipped = %+v", got.Skipped)
	}
	if xp, _ := profileXP(t, db, user.Profile.ID); xp != 0 {
		t.Fatalf("xp = %d, want 0", xp)
	}
}

func TestGradeThresholdBoundary(t *testing.T) {
	db := testutil.DB(t)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 100, 70, 25)
	svc := NewQuizService(db)

	tests := []struct {
		correct int
		score   float64
		passed  bool
	}{
		{69, 69, false},
		{70, 70, true},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.correct), func(t *testing.T) {
			user := testutil.SeedUser(t, db, "b"+strconv.Itoa(tt.correct)+"@example.com", false)
			got, err := svc.Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, tt.correct)})
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if *got.Score != tt.score || got.Passed != tt.passed {
				t.Fatalf("score=%v passed=%v, want %v %v", *got.Score, got.Passed, tt.score, tt.passed)
			}
		})
	}
}

func TestGradeThreeOfFour(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "three@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 4, 70, 250)

	got, err := NewQuizService(db).Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, 3)})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if *got.Score != 75 || !got.Passed || got.CorrectAnswersCount != 3 {
		t.Fatalf("score=%v passed=%v correct=%d", *got.Score, got.Passed, got.CorrectAnswersCount)
	}
	xp, level := profileXP(t, db, user.Profile.ID)
	if xp != 250 || level != 2 {
		t.Fatalf("xp=%d level=%d, want 250 2", xp, level)
	}
}

func TestGradeRounding(t *testing.T) {
	if got := Score(2, 3); got != 66.67 {
		t.Fatalf("Score(2,3) = %v", got)
	}
	if got := Score(1, 3); got != 33.33 {
		t.Fatalf("Score(1,3) = %v", got)
	}
	if got := Score(1, 32); got != 3.12 {
		t.Fatalf("Score(1,32) = %v, want 3.12", got)
	}
	if got := Score(3, 32); got != 9.38 {
		t.Fatalf("Score(3,32) = %v, want 9.38", got)
	}
	if got := Score(0, 0); got != 0 {
		t.Fatalf("Score(0,0) = %v", got)
	}
}

func TestGradeCrossQuestionChoice(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "cross@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 2, 70, 50)
	q1, q2 := quiz.Questions[0], quiz.Questions[1]

	got, err := NewQuizService(db).Grade(context.Background(), user.Profile.ID, GradeRequest{
		QuizID: quiz.ID,
		Answers: []AnswerEntry{
			// 第二题的正确选项提交在第一题下
			{QuestionID: q1.ID, ChoiceID: testutil.CorrectChoice(q2)},
			{QuestionID: q2.ID, ChoiceID: testutil.CorrectChoice(q2)},
			{QuestionID: q2.ID, ChoiceID: testutil.WrongChoice(q2)},
		},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if got.CorrectAnswersCount != 1 || *got.Score != 50 || len(got.Answers) != 1 {
		t.Fatalf("correct=%d score=%v answers=%d", got.CorrectAnswersCount, *got.Score, len(got.Answers))
	}
	reasons := map[SkipReason]bool{}
	for _, s := range got.Skipped {
		reasons[s.Reason] = true
	}
	if !reasons[SkipChoiceNotInQuestion] || !reasons[SkipDuplicateQuestion] {
		t.Fatalf("skipped = %+v", got.Skipped)
	}
}

func TestGradeErrorsLeaveNoAttempt(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "err@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	empty := &model.Quiz{ModuleID: module.ID, Title: "empty", PassThreshold: 70, XPReward: 10}
	if err := db.Create(empty).Error; err != nil {
		t.Fatal(err)
	}
	svc := NewQuizService(db)

	tests := []struct {
		name string
		req  GradeRequest
		want error
	}{
		{"missing quiz id", GradeRequest{}, util.ErrMissingParameters},
		{"unknown quiz", GradeRequest{QuizID: 424242}, util.ErrQuizNotFound},
		{"empty quiz", GradeRequest{QuizID: empty.ID}, util.ErrEmptyQuiz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Grade(context.Background(), user.Profile.ID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	quizzes := repository.NewQuizRepository(db)
	for _, id := range []uint{empty.ID, 424242} {
		if n, err := quizzes.CountAttempts(id); err != nil || n != 0 {
			t.Fatalf("quiz %d attempts = %d err = %v", id, n, err)
		}
	}
}

func TestGradeUnknownProfile(t *testing.T) {
	db := testutil.DB(t)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 1, 70, 10)

	_, err := NewQuizService(db).Grade(context.Background(), 777, GradeRequest{QuizID: quiz.ID})
	if !errors.Is(err, util.ErrProfileNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestGradeRollsBackOnFailure(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.SeedUser(t, db, "fault@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 2, 50, 40)

	// 经验值写入失败时，答题记录与答案也应回滚
	boom := errors.New("injected failure")
	err := db.Callback().Update().After("gorm:update").Register("test:fail_profiles", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "profiles" {
			tx.AddError(boom)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewQuizService(db).Grade(context.Background(), user.Profile.ID, GradeRequest{QuizID: quiz.ID, Answers: answersFor(quiz, 2)})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}

	_ = db.Callback().Update().Remove("test:fail_profiles")

	attempts, err := repository.NewQuizRepository(db).CountAttempts(quiz.ID)
	if err != nil {
		t.Fatal(err)
	}
	var answers int64
	db.Model(&model.Answer{}).Count(&answers)
	if attempts != 0 || answers != 0 {
		t.Fatalf("attempts=%d answers=%d after rollback", attempts, answers)
	}
	if xp, _ := profileXP(t, db, user.Profile.ID); xp != 0 {
		t.Fatalf("xp = %d after rollback", xp)
	}
}

func TestGetQuizHidesCorrectness(t *testing.T) {
	db := testutil.DB(t)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 2, 70, 10)

	view, err := NewQuizService(db).GetQuiz(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if view.Module != module.ID || len(view.Questions) != 2 || len(view.Questions[0].Choices) != 2 {
		t.Fatalf("view = %+v", view)
	}

	if _, err := NewQuizService(db).GetQuiz(context.Background(), 999); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseSubmission(t *testing.T) {
	req, err := ParseSubmission("7", map[string]interface{}{
		"1":   float64(10),
		"2":   "20",
		"abc": float64(3),
		"3":   "x",
		"4":   1.5,
	})
	if err != nil {
		t.Fatalf("ParseSubmission: %v", err)
	}
	if req.QuizID != 7 {
		t.Fatalf("quiz id = %d", req.QuizID)
	}
	if len(req.Answers) != 2 || req.Answers[0] != (AnswerEntry{1, 10}) || req.Answers[1] != (AnswerEntry{2, 20}) {
		t.Fatalf("answers = %+v", req.Answers)
	}
	if len(req.Skipped) != 3 {
		t.Fatalf("skipped = %+v", req.Skipped)
	}

	if _, err := ParseSubmission(nil, map[string]interface{}{}); !errors.Is(err, util.ErrMissingParameters) {
		t.Fatalf("missing quiz id: %v", err)
	}
	if _, err := ParseSubmission(float64(1), nil); !errors.Is(err, util.ErrMissingParameters) {
		t.Fatalf("missing answers: %v", err)
	}
}
