package service

import (
	"fmt"
	"sort"
	"studypulse_backend/internal/util"
)

type SkipReason string

const (
	SkipInvalidQuestionID   SkipReason = "invalid_question_id"
	SkipInvalidChoiceID     SkipReason = "invalid_choice_id"
	SkipQuestionNotInQuiz   SkipReason = "question_not_in_quiz"
	SkipChoiceNotInQuestion SkipReason = "choice_not_in_question"
	SkipDuplicateQuestion   SkipReason = "duplicate_question"
)

type AnswerEntry struct {
	QuestionID uint `json:"question_id"`
	ChoiceID   uint `json:"choice_id"`
}

// SkippedEntry 记录未计入成绩的答案及原因
type SkippedEntry struct {
	Key    string     `json:"key"`
	Value  string     `json:"value"`
	Reason SkipReason `json:"reason"`
}

type GradeRequest struct {
	QuizID  uint
	Answers []AnswerEntry
	// Skipped carries entries rejected while parsing; grading appends its own.
	Skipped []SkippedEntry
}

// ParseSubmission 把 {"question_id": choice_id} 映射转换为有序的答案列表。
// quiz_id 缺失或 answers 为 nil 时返回 ErrMissingParameters；单条无法解析的答案只记录跳过原因。
func ParseSubmission(rawQuizID interface{}, raw map[string]interface{}) (*GradeRequest, error) {
	if rawQuizID == nil || raw == nil {
		return nil, util.ErrMissingParameters
	}
	quizID, err := util.ParseID(rawQuizID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMissingParameters, err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	req := &GradeRequest{QuizID: quizID, Answers: make([]AnswerEntry, 0, len(raw))}
	for _, k := range keys {
		v := raw[k]
		questionID, err := util.ParseID(k)
		if err != nil {
			req.Skipped = append(req.Skipped, SkippedEntry{Key: k, Value: fmt.Sprint(v), Reason: SkipInvalidQuestionID})
			continue
		}
		choiceID, err := util.ParseID(v)
		if err != nil {
			req.Skipped = append(req.Skipped, SkippedEntry{Key: k, Value: fmt.Sprint(v), Reason: SkipInvalidChoiceID})
			continue
		}
		req.Answers = append(req.Answers, AnswerEntry{QuestionID: questionID, ChoiceID: choiceID})
	}
	return req, nil
}
