package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// passthroughTx runs the unit directly; the memory repos have no
// transactional state to roll back.
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	} else if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByReferralCode(ctx context.Context, code string) (models.User, error) {
	for _, user := range m.users {
		if user.ReferralCode == code && code != "" {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) AddXP(ctx context.Context, id uint, delta int) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.XP += delta
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) List(ctx context.Context, group string, limit int) ([]models.User, error) {
	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if group != "" && user.Group != group {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].ID < users[j].ID
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

type memoryTestRepo struct {
	tests       map[uint]models.WeeklyTest
	submissions map[uint]models.TestSubmission
	nextID      uint
	nextSubID   uint
}

func newMemoryTestRepo() *memoryTestRepo {
	return &memoryTestRepo{
		tests:       make(map[uint]models.WeeklyTest),
		submissions: make(map[uint]models.TestSubmission),
		nextID:      1,
		nextSubID:   1,
	}
}

func (m *memoryTestRepo) Create(ctx context.Context, test *models.WeeklyTest) error {
	if test.ID == 0 {
		test.ID = m.nextID
		m.nextID++
	} else if test.ID >= m.nextID {
		m.nextID = test.ID + 1
	}
	m.tests[test.ID] = *test
	return nil
}

func (m *memoryTestRepo) GetByID(ctx context.Context, id uint) (models.WeeklyTest, error) {
	test, ok := m.tests[id]
	if !ok {
		return models.WeeklyTest{}, gorm.ErrRecordNotFound
	}
	return test, nil
}

func (m *memoryTestRepo) List(ctx context.Context) ([]models.WeeklyTest, error) {
	tests := make([]models.WeeklyTest, 0, len(m.tests))
	for _, test := range m.tests {
		tests = append(tests, test)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })
	return tests, nil
}

func (m *memoryTestRepo) Update(ctx context.Context, test *models.WeeklyTest) error {
	if _, ok := m.tests[test.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.tests[test.ID] = *test
	return nil
}

func (m *memoryTestRepo) Delete(ctx context.Context, id uint) error {
	delete(m.tests, id)
	return nil
}

func (m *memoryTestRepo) MarkPublished(ctx context.Context, id uint) error {
	test, ok := m.tests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	test.IsResultsPublished = true
	m.tests[id] = test
	return nil
}

func (m *memoryTestRepo) CreateSubmission(ctx context.Context, submission *models.TestSubmission) error {
	for _, existing := range m.submissions {
		if existing.UserID == submission.UserID && existing.TestID == submission.TestID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = m.nextSubID
	m.nextSubID++
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memoryTestRepo) GetSubmission(ctx context.Context, userID, testID uint) (models.TestSubmission, error) {
	for _, submission := range m.submissions {
		if submission.UserID == userID && submission.TestID == testID {
			return submission, nil
		}
	}
	return models.TestSubmission{}, gorm.ErrRecordNotFound
}

func (m *memoryTestRepo) ListSubmissions(ctx context.Context, testID uint) ([]models.TestSubmission, error) {
	submissions := make([]models.TestSubmission, 0)
	for _, submission := range m.submissions {
		if submission.TestID == testID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool {
		a, b := submissions[i], submissions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TimeTakenSeconds != b.TimeTakenSeconds {
			return a.TimeTakenSeconds < b.TimeTakenSeconds
		}
		return a.ID < b.ID
	})
	return submissions, nil
}

func (m *memoryTestRepo) UpdateSubmission(ctx context.Context, submission *models.TestSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

type memoryChallengeRepo struct {
	challenges map[uint]models.CodingChallenge
	graded     map[uint]bool
	nextID     uint
}

func newMemoryChallengeRepo() *memoryChallengeRepo {
	return &memoryChallengeRepo{
		challenges: make(map[uint]models.CodingChallenge),
		graded:     make(map[uint]bool),
		nextID:     1,
	}
}

func (m *memoryChallengeRepo) Create(ctx context.Context, challenge *models.CodingChallenge) error {
	if challenge.ID == 0 {
		challenge.ID = m.nextID
		m.nextID++
	} else if challenge.ID >= m.nextID {
		m.nextID = challenge.ID + 1
	}
	m.challenges[challenge.ID] = *challenge
	return nil
}

func (m *memoryChallengeRepo) GetByID(ctx context.Context, id uint) (models.CodingChallenge, error) {
	challenge, ok := m.challenges[id]
	if !ok {
		return models.CodingChallenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func (m *memoryChallengeRepo) List(ctx context.Context, query repository.ChallengeQuery) ([]models.CodingChallenge, int64, error) {
	challenges := make([]models.CodingChallenge, 0, len(m.challenges))
	for _, challenge := range m.challenges {
		if query.Difficulty != "" && challenge.Difficulty != query.Difficulty {
			continue
		}
		if query.Group != "" && len(challenge.Groups) > 0 && !containsGroup(challenge.Groups, query.Group) {
			continue
		}
		challenges = append(challenges, challenge)
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].ID < challenges[j].ID })
	return challenges, int64(len(challenges)), nil
}

func (m *memoryChallengeRepo) Update(ctx context.Context, challenge *models.CodingChallenge) error {
	if _, ok := m.challenges[challenge.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.challenges[challenge.ID] = *challenge
	return nil
}

func (m *memoryChallengeRepo) Delete(ctx context.Context, id uint) error {
	delete(m.challenges, id)
	return nil
}

func (m *memoryChallengeRepo) IncrementTotalSubmissions(ctx context.Context, id uint) error {
	challenge, ok := m.challenges[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	challenge.TotalSubmissions++
	m.challenges[id] = challenge
	return nil
}

func (m *memoryChallengeRepo) HasGradedSubmissions(ctx context.Context, id uint) (bool, error) {
	return m.graded[id], nil
}

func (m *memoryChallengeRepo) ReplaceTestCases(ctx context.Context, challengeID uint, cases []models.ChallengeTestCase) error {
	challenge, ok := m.challenges[challengeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	challenge.TestCases = cases
	m.challenges[challengeID] = challenge
	return nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.ChallengeSubmission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.ChallengeSubmission), nextID: 1}
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.ChallengeSubmission) error {
	submission.ID = m.nextID
	m.nextID++
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.ChallengeSubmission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.ChallengeSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.ChallengeSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) ListByUserAndChallenge(ctx context.Context, userID, challengeID uint) ([]models.ChallengeSubmission, error) {
	submissions := make([]models.ChallengeSubmission, 0)
	for _, submission := range m.submissions {
		if submission.UserID == userID && submission.ChallengeID == challengeID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID > submissions[j].ID })
	return submissions, nil
}

func (m *memorySubmissionRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.ChallengeSubmission, error) {
	submissions := make([]models.ChallengeSubmission, 0)
	for _, submission := range m.submissions {
		if submission.UserID == userID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID > submissions[j].ID })
	if limit > 0 && len(submissions) > limit {
		submissions = submissions[:limit]
	}
	return submissions, nil
}

type memoryContestRepo struct {
	contests    map[uint]models.Contest
	entries     map[uint]models.ContestEntry
	nextID      uint
	nextEntryID uint
}

func newMemoryContestRepo() *memoryContestRepo {
	return &memoryContestRepo{
		contests:    make(map[uint]models.Contest),
		entries:     make(map[uint]models.ContestEntry),
		nextID:      1,
		nextEntryID: 1,
	}
}

func (m *memoryContestRepo) Create(ctx context.Context, contest *models.Contest) error {
	if contest.ID == 0 {
		contest.ID = m.nextID
		m.nextID++
	} else if contest.ID >= m.nextID {
		m.nextID = contest.ID + 1
	}
	m.contests[contest.ID] = *contest
	return nil
}

func (m *memoryContestRepo) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	contest, ok := m.contests[id]
	if !ok {
		return models.Contest{}, gorm.ErrRecordNotFound
	}
	return contest, nil
}

func (m *memoryContestRepo) List(ctx context.Context) ([]models.Contest, error) {
	contests := make([]models.Contest, 0, len(m.contests))
	for _, contest := range m.contests {
		contests = append(contests, contest)
	}
	sort.Slice(contests, func(i, j int) bool { return contests[i].ID < contests[j].ID })
	return contests, nil
}

func (m *memoryContestRepo) Update(ctx context.Context, contest *models.Contest) error {
	if _, ok := m.contests[contest.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.contests[contest.ID] = *contest
	return nil
}

func (m *memoryContestRepo) Delete(ctx context.Context, id uint) error {
	delete(m.contests, id)
	return nil
}

func (m *memoryContestRepo) MarkPublished(ctx context.Context, id uint) error {
	contest, ok := m.contests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contest.IsResultsPublished = true
	m.contests[id] = contest
	return nil
}

func (m *memoryContestRepo) CreateEntry(ctx context.Context, entry *models.ContestEntry) error {
	for _, existing := range m.entries {
		if existing.UserID == entry.UserID && existing.ContestID == entry.ContestID {
			return gorm.ErrDuplicatedKey
		}
	}
	entry.ID = m.nextEntryID
	m.nextEntryID++
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memoryContestRepo) GetEntry(ctx context.Context, userID, contestID uint) (models.ContestEntry, error) {
	for _, entry := range m.entries {
		if entry.UserID == userID && entry.ContestID == contestID {
			return entry, nil
		}
	}
	return models.ContestEntry{}, gorm.ErrRecordNotFound
}

func (m *memoryContestRepo) GetEntryByID(ctx context.Context, id uint) (models.ContestEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return models.ContestEntry{}, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (m *memoryContestRepo) ListEvaluatedEntries(ctx context.Context, contestID uint) ([]models.ContestEntry, error) {
	entries := make([]models.ContestEntry, 0)
	for _, entry := range m.entries {
		if entry.ContestID == contestID && entry.Marks != nil {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if *a.Marks != *b.Marks {
			return *a.Marks > *b.Marks
		}
		return a.ID < b.ID
	})
	return entries, nil
}

func (m *memoryContestRepo) UpdateEntry(ctx context.Context, entry *models.ContestEntry) error {
	if _, ok := m.entries[entry.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.entries[entry.ID] = *entry
	return nil
}

type memoryCourseRepo struct {
	courses      map[uint]models.Course
	lessons      map[uint]models.Lesson
	nextCourseID uint
	nextLessonID uint
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{
		courses:      make(map[uint]models.Course),
		lessons:      make(map[uint]models.Lesson),
		nextCourseID: 1,
		nextLessonID: 1,
	}
}

func (m *memoryCourseRepo) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == 0 {
		course.ID = m.nextCourseID
		m.nextCourseID++
	} else if course.ID >= m.nextCourseID {
		m.nextCourseID = course.ID + 1
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) GetCourse(ctx context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (m *memoryCourseRepo) UpdateCourse(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) DeleteCourse(ctx context.Context, id uint) error {
	delete(m.courses, id)
	return nil
}

func (m *memoryCourseRepo) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == 0 {
		lesson.ID = m.nextLessonID
		m.nextLessonID++
	} else if lesson.ID >= m.nextLessonID {
		m.nextLessonID = lesson.ID + 1
	}
	m.lessons[lesson.ID] = *lesson
	return nil
}

func (m *memoryCourseRepo) GetLesson(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, ok := m.lessons[id]
	if !ok {
		return models.Lesson{}, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (m *memoryCourseRepo) ListLessons(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	lessons := make([]models.Lesson, 0)
	for _, lesson := range m.lessons {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Position < lessons[j].Position })
	return lessons, nil
}

func (m *memoryCourseRepo) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	if _, ok := m.lessons[lesson.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.lessons[lesson.ID] = *lesson
	return nil
}

func (m *memoryCourseRepo) DeleteLesson(ctx context.Context, id uint) error {
	delete(m.lessons, id)
	return nil
}

func (m *memoryCourseRepo) CountLessons(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	for _, lesson := range m.lessons {
		if lesson.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

type memoryProgressRepo struct {
	rows   map[uint]models.Progress
	nextID uint
}

func newMemoryProgressRepo() *memoryProgressRepo {
	return &memoryProgressRepo{rows: make(map[uint]models.Progress), nextID: 1}
}

func (m *memoryProgressRepo) Get(ctx context.Context, userID uint, itemType string, itemID uint) (models.Progress, error) {
	for _, row := range m.rows {
		if row.UserID == userID && row.ItemType == itemType && row.ItemID == itemID {
			return row, nil
		}
	}
	return models.Progress{}, gorm.ErrRecordNotFound
}

func (m *memoryProgressRepo) Create(ctx context.Context, progress *models.Progress) error {
	for _, row := range m.rows {
		if row.UserID == progress.UserID && row.ItemType == progress.ItemType && row.ItemID == progress.ItemID {
			return gorm.ErrDuplicatedKey
		}
	}
	progress.ID = m.nextID
	m.nextID++
	m.rows[progress.ID] = *progress
	return nil
}

func (m *memoryProgressRepo) Update(ctx context.Context, progress *models.Progress) error {
	if _, ok := m.rows[progress.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rows[progress.ID] = *progress
	return nil
}

func (m *memoryProgressRepo) ListByUser(ctx context.Context, userID uint, itemType string) ([]models.Progress, error) {
	rows := make([]models.Progress, 0)
	for _, row := range m.rows {
		if row.UserID == userID && (itemType == "" || row.ItemType == itemType) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (m *memoryProgressRepo) CountSolvedInRange(ctx context.Context, userID uint, itemType string, from, to time.Time) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.UserID != userID || row.ItemType != itemType || !row.Solved || row.SolvedAt == nil {
			continue
		}
		if row.SolvedAt.Before(from) || !row.SolvedAt.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *memoryProgressRepo) CountSolvedForItems(ctx context.Context, userID uint, itemType string, itemIDs []uint) (int64, error) {
	wanted := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var count int64
	for _, row := range m.rows {
		if row.UserID == userID && row.ItemType == itemType && row.Solved && wanted[row.ItemID] {
			count++
		}
	}
	return count, nil
}

func (m *memoryProgressRepo) HasAnyForItem(ctx context.Context, itemType string, itemID uint) (bool, error) {
	for _, row := range m.rows {
		if row.ItemType == itemType && row.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

type memoryEngagementRepo struct {
	streaks      map[uint]models.DailyStreak
	achievements map[uint]models.Achievement
	nextStreakID uint
	nextAchID    uint
}

func newMemoryEngagementRepo() *memoryEngagementRepo {
	return &memoryEngagementRepo{
		streaks:      make(map[uint]models.DailyStreak),
		achievements: make(map[uint]models.Achievement),
		nextStreakID: 1,
		nextAchID:    1,
	}
}

func (m *memoryEngagementRepo) GetStreak(ctx context.Context, userID uint, date string) (models.DailyStreak, error) {
	for _, streak := range m.streaks {
		if streak.UserID == userID && streak.Date == date {
			return streak, nil
		}
	}
	return models.DailyStreak{}, gorm.ErrRecordNotFound
}

func (m *memoryEngagementRepo) CreateStreak(ctx context.Context, streak *models.DailyStreak) error {
	for _, existing := range m.streaks {
		if existing.UserID == streak.UserID && existing.Date == streak.Date {
			return gorm.ErrDuplicatedKey
		}
	}
	streak.ID = m.nextStreakID
	m.nextStreakID++
	m.streaks[streak.ID] = *streak
	return nil
}

func (m *memoryEngagementRepo) LatestStreak(ctx context.Context, userID uint) (models.DailyStreak, error) {
	var latest models.DailyStreak
	found := false
	for _, streak := range m.streaks {
		if streak.UserID != userID {
			continue
		}
		if !found || streak.Date > latest.Date {
			latest = streak
			found = true
		}
	}
	if !found {
		return models.DailyStreak{}, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *memoryEngagementRepo) GetAchievement(ctx context.Context, userID uint, code string) (models.Achievement, error) {
	for _, achievement := range m.achievements {
		if achievement.UserID == userID && achievement.Code == code {
			return achievement, nil
		}
	}
	return models.Achievement{}, gorm.ErrRecordNotFound
}

func (m *memoryEngagementRepo) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	for _, existing := range m.achievements {
		if existing.UserID == achievement.UserID && existing.Code == achievement.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	achievement.ID = m.nextAchID
	m.nextAchID++
	m.achievements[achievement.ID] = *achievement
	return nil
}

func (m *memoryEngagementRepo) ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	achievements := make([]models.Achievement, 0)
	for _, achievement := range m.achievements {
		if achievement.UserID == userID {
			achievements = append(achievements, achievement)
		}
	}
	sort.Slice(achievements, func(i, j int) bool { return achievements[i].ID < achievements[j].ID })
	return achievements, nil
}

type memoryLeaderboardRepo struct {
	entries map[string]models.LeaderboardEntry
	nextID  uint
}

func newMemoryLeaderboardRepo() *memoryLeaderboardRepo {
	return &memoryLeaderboardRepo{entries: make(map[string]models.LeaderboardEntry), nextID: 1}
}

func leaderboardKey(userID uint, period string) string {
	return fmt.Sprintf("%d#%s", userID, period)
}

func (m *memoryLeaderboardRepo) Get(ctx context.Context, userID uint, period string) (models.LeaderboardEntry, error) {
	entry, ok := m.entries[leaderboardKey(userID, period)]
	if !ok {
		return models.LeaderboardEntry{}, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (m *memoryLeaderboardRepo) ApplySolve(ctx context.Context, userID uint, periods []string, points, xp int, difficulty string) error {
	for _, period := range periods {
		entry, err := m.Get(ctx, userID, period)
		if err != nil {
			entry = models.LeaderboardEntry{ID: m.nextID, UserID: userID, Period: period}
			m.nextID++
		}
		entry.AddSolve(points, xp, difficulty)
		m.entries[leaderboardKey(userID, period)] = entry
	}
	return nil
}

func (m *memoryLeaderboardRepo) TopByPoints(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0)
	for _, entry := range m.entries {
		if entry.Period == period {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type memoryAccessRepo struct {
	codes       map[uint]models.AccessCode
	redemptions map[uint]models.CodeRedemption
	referrals   map[uint]models.Referral
	nextCodeID  uint
	nextRedID   uint
	nextRefID   uint
}

func newMemoryAccessRepo() *memoryAccessRepo {
	return &memoryAccessRepo{
		codes:       make(map[uint]models.AccessCode),
		redemptions: make(map[uint]models.CodeRedemption),
		referrals:   make(map[uint]models.Referral),
		nextCodeID:  1,
		nextRedID:   1,
		nextRefID:   1,
	}
}

func (m *memoryAccessRepo) CreateCode(ctx context.Context, code *models.AccessCode) error {
	if code.ID == 0 {
		code.ID = m.nextCodeID
		m.nextCodeID++
	} else if code.ID >= m.nextCodeID {
		m.nextCodeID = code.ID + 1
	}
	m.codes[code.ID] = *code
	return nil
}

func (m *memoryAccessRepo) GetCode(ctx context.Context, code string) (models.AccessCode, error) {
	for _, existing := range m.codes {
		if existing.Code == code {
			return existing, nil
		}
	}
	return models.AccessCode{}, gorm.ErrRecordNotFound
}

func (m *memoryAccessRepo) ListCodes(ctx context.Context) ([]models.AccessCode, error) {
	codes := make([]models.AccessCode, 0, len(m.codes))
	for _, code := range m.codes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].ID < codes[j].ID })
	return codes, nil
}

func (m *memoryAccessRepo) IncrementRedemptions(ctx context.Context, codeID uint) error {
	code, ok := m.codes[codeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	code.Redemptions++
	m.codes[codeID] = code
	return nil
}

func (m *memoryAccessRepo) CreateRedemption(ctx context.Context, redemption *models.CodeRedemption) error {
	for _, existing := range m.redemptions {
		if existing.UserID == redemption.UserID && existing.CodeID == redemption.CodeID {
			return gorm.ErrDuplicatedKey
		}
	}
	redemption.ID = m.nextRedID
	m.nextRedID++
	m.redemptions[redemption.ID] = *redemption
	return nil
}

func (m *memoryAccessRepo) GetRedemption(ctx context.Context, userID, codeID uint) (models.CodeRedemption, error) {
	for _, redemption := range m.redemptions {
		if redemption.UserID == userID && redemption.CodeID == codeID {
			return redemption, nil
		}
	}
	return models.CodeRedemption{}, gorm.ErrRecordNotFound
}

func (m *memoryAccessRepo) CreateReferral(ctx context.Context, referral *models.Referral) error {
	for _, existing := range m.referrals {
		if existing.ReferredID == referral.ReferredID {
			return gorm.ErrDuplicatedKey
		}
	}
	referral.ID = m.nextRefID
	m.nextRefID++
	m.referrals[referral.ID] = *referral
	return nil
}

func (m *memoryAccessRepo) GetReferralByReferred(ctx context.Context, referredID uint) (models.Referral, error) {
	for _, referral := range m.referrals {
		if referral.ReferredID == referredID {
			return referral, nil
		}
	}
	return models.Referral{}, gorm.ErrRecordNotFound
}
