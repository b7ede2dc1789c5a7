// Package scoring contains the pure score computations shared by the quiz,
// test, challenge and contest flows. Nothing in here touches storage; every
// function is deterministic for fixed inputs so the services can be tested
// against golden values.
package scoring

import (
	"math"
	"sort"
)

// Question is the answer-key view of a single multiple-choice question.
type Question struct {
	CorrectIndex int
	Marks        int
}

// MCQResult carries the outcome of scoring a multiple-choice answer sheet.
type MCQResult struct {
	Score      int
	TotalMarks int
	Percentage int
	XPEarned   int
}

// ScoreMCQ grades a multiple-choice answer sheet against its key. Answers
// shorter than the question list are treated as unanswered and score zero;
// extra answers are ignored. XP is half the percentage, rounded.
func ScoreMCQ(questions []Question, answers []int) MCQResult {
	result := MCQResult{}
	for i, q := range questions {
		result.TotalMarks += q.Marks
		if i < len(answers) && answers[i] == q.CorrectIndex {
			result.Score += q.Marks
		}
	}

	if result.TotalMarks > 0 {
		result.Percentage = int(math.Round(float64(result.Score) / float64(result.TotalMarks) * 100))
	}
	result.XPEarned = int(math.Round(float64(result.Percentage) * 0.5))

	return result
}

// ChallengeResult carries the reward computed from a judged submission.
type ChallengeResult struct {
	AllPassed    bool
	PointsEarned int
	XPEarned     int
}

// ScoreChallenge applies the all-or-nothing reward rule for coding
// challenges: full points and floor(points*1.5) XP when every test case
// passed, zero otherwise. Partial credit is never awarded.
func ScoreChallenge(points, passedCount, totalCount int) ChallengeResult {
	if totalCount <= 0 || passedCount < totalCount {
		return ChallengeResult{}
	}

	return ChallengeResult{
		AllPassed:    true,
		PointsEarned: points,
		XPEarned:     int(math.Floor(float64(points) * 1.5)),
	}
}

// LessonXP converts a lesson quiz score (0-100) into the XP it is worth,
// proportional to the lesson's reward.
func LessonXP(xpReward, quizScore int) int {
	if quizScore < 0 {
		quizScore = 0
	}
	if quizScore > 100 {
		quizScore = 100
	}
	return int(math.Round(float64(xpReward) * float64(quizScore) / 100))
}

// Level derives a user's level from accumulated XP.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}

// RankByMarks returns the rank for each entry of marks, aligned to the input
// indexes. Entries are ordered descending by marks with a stable sort and
// ranked by position, so exact ties receive consecutive distinct ranks in
// input order: [95,95,80] ranks as [1,2,3]. Tie-sharing is deliberately not
// applied.
func RankByMarks(marks []float64) []int {
	order := make([]int, len(marks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return marks[order[a]] > marks[order[b]]
	})

	ranks := make([]int, len(marks))
	for position, idx := range order {
		ranks[idx] = position + 1
	}
	return ranks
}
