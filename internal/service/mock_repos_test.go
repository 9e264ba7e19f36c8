package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
	pkgerrors "github.com/alainmurenzi/smart-edu-task-manager/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListStudentsByClass(_ context.Context, classID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleStudent && u.ClassID != nil && *u.ClassID == classID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role model.Role) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
	users   *mockUserRepo
	seq     int
}

func newMockClassRepo(users *mockUserRepo) *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class), users: users}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		m.seq++
		class.ClassID = fmt.Sprintf("class-%d", m.seq)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetByName(_ context.Context, name string) (*model.Class, error) {
	for _, c := range m.classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) CountStudents(ctx context.Context, id string) (int64, error) {
	students, _ := m.users.ListStudentsByClass(ctx, id)
	return int64(len(students)), nil
}

func (m *mockClassRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.classes)), nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects      map[string]*model.Subject
	classSubjects map[string][]string // classID → subjectIDs
	seq           int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{
		subjects:      make(map[string]*model.Subject),
		classSubjects: make(map[string][]string),
	}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		m.seq++
		subject.SubjectID = fmt.Sprintf("subject-%d", m.seq)
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSubjectRepo) ListByClass(_ context.Context, classID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, sid := range m.classSubjects[classID] {
		if s, ok := m.subjects[sid]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) AttachClass(_ context.Context, subjectID, classID string) error {
	for _, sid := range m.classSubjects[classID] {
		if sid == subjectID {
			return nil
		}
	}
	m.classSubjects[classID] = append(m.classSubjects[classID], subjectID)
	return nil
}

func (m *mockSubjectRepo) DetachClass(_ context.Context, subjectID, classID string) error {
	ids := m.classSubjects[classID]
	for i, sid := range ids {
		if sid == subjectID {
			m.classSubjects[classID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockSubjectRepo) CountClasses(_ context.Context, subjectID string) (int64, error) {
	var n int64
	for _, ids := range m.classSubjects {
		for _, sid := range ids {
			if sid == subjectID {
				n++
			}
		}
	}
	return n, nil
}

// ── Mock TeachingRepository ──

type mockTeachingRepo struct {
	facts []model.TeachingAssignment
}

func newMockTeachingRepo() *mockTeachingRepo {
	return &mockTeachingRepo{}
}

func (m *mockTeachingRepo) Add(_ context.Context, ta *model.TeachingAssignment) error {
	for _, f := range m.facts {
		if f.TeacherID == ta.TeacherID && f.ClassID == ta.ClassID && f.SubjectID == ta.SubjectID {
			return nil
		}
	}
	m.facts = append(m.facts, *ta)
	return nil
}

func (m *mockTeachingRepo) Remove(_ context.Context, teacherID, classID, subjectID string) error {
	for i, f := range m.facts {
		if f.TeacherID == teacherID && f.ClassID == classID && f.SubjectID == subjectID {
			m.facts = append(m.facts[:i], m.facts[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockTeachingRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.TeachingAssignment, error) {
	var result []model.TeachingAssignment
	for _, f := range m.facts {
		if f.TeacherID == teacherID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockTeachingRepo) ListByClassAndSubject(_ context.Context, classID, subjectID string) ([]model.TeachingAssignment, error) {
	var result []model.TeachingAssignment
	for _, f := range m.facts {
		if f.ClassID == classID && f.SubjectID == subjectID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockTeachingRepo) ClassIDsOfTeacher(_ context.Context, teacherID string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, f := range m.facts {
		if f.TeacherID == teacherID && !seen[f.ClassID] {
			seen[f.ClassID] = true
			result = append(result, f.ClassID)
		}
	}
	return result, nil
}

func (m *mockTeachingRepo) SubjectIDsOfTeacher(_ context.Context, teacherID string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, f := range m.facts {
		if f.TeacherID == teacherID && !seen[f.SubjectID] {
			seen[f.SubjectID] = true
			result = append(result, f.SubjectID)
		}
	}
	return result, nil
}

func (m *mockTeachingRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	var count int64
	for _, f := range m.facts {
		if f.ClassID == classID {
			count++
		}
	}
	return count, nil
}

func (m *mockTeachingRepo) RemoveByTeacher(_ context.Context, teacherID string) error {
	var kept []model.TeachingAssignment
	for _, f := range m.facts {
		if f.TeacherID != teacherID {
			kept = append(kept, f)
		}
	}
	m.facts = kept
	return nil
}

// ── Mock TaskRepository ──

type mockTaskRepo struct {
	tasks       map[string]*model.Task
	taskClasses map[string][]string // taskID → classIDs
	classes     *mockClassRepo
	seq         int
}

func newMockTaskRepo(classes *mockClassRepo) *mockTaskRepo {
	return &mockTaskRepo{
		tasks:       make(map[string]*model.Task),
		taskClasses: make(map[string][]string),
		classes:     classes,
	}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task) error {
	if task.TaskID == "" {
		m.seq++
		task.TaskID = fmt.Sprintf("task-%d", m.seq)
	}
	if task.Version == 0 {
		task.Version = 1
	}
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	copied.Classes = nil
	for _, cid := range m.taskClasses[id] {
		if c, ok := m.classes.classes[cid]; ok {
			copied.Classes = append(copied.Classes, *c)
		}
	}
	return &copied, nil
}

func (m *mockTaskRepo) List(_ context.Context, _, _ int) ([]model.Task, int64, error) {
	var result []model.Task
	for _, t := range m.tasks {
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTaskRepo) ListByCreator(_ context.Context, creatorID string) ([]model.Task, error) {
	var result []model.Task
	for _, t := range m.tasks {
		if t.CreatedBy == creatorID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) ListByClass(_ context.Context, classID string, after time.Time) ([]model.Task, error) {
	var result []model.Task
	for taskID, classIDs := range m.taskClasses {
		for _, cid := range classIDs {
			if cid != classID {
				continue
			}
			t, ok := m.tasks[taskID]
			if !ok {
				continue
			}
			if !after.IsZero() && !t.Deadline.After(after) {
				continue
			}
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTaskRepo) ListWithCounts(ctx context.Context, offset, limit int) ([]repository.TaskCounts, int64, error) {
	tasks, total, _ := m.List(ctx, offset, limit)
	result := make([]repository.TaskCounts, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, repository.TaskCounts{Task: t})
	}
	return result, total, nil
}

func (m *mockTaskRepo) AddClasses(_ context.Context, taskID string, classIDs []string) error {
	for _, cid := range classIDs {
		exists := false
		for _, c := range m.taskClasses[taskID] {
			if c == cid {
				exists = true
				break
			}
		}
		if !exists {
			m.taskClasses[taskID] = append(m.taskClasses[taskID], cid)
		}
	}
	return nil
}

func (m *mockTaskRepo) Update(_ context.Context, task *model.Task) error {
	existing, ok := m.tasks[task.TaskID]
	if !ok || existing.Version != task.Version {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version++
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string) error {
	delete(m.tasks, id)
	delete(m.taskClasses, id)
	return nil
}

func (m *mockTaskRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.tasks)), nil
}

func (m *mockTaskRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, t := range m.tasks {
		if t.IsOverdue(now) {
			n++
		}
	}
	return n, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment // assignmentID → row
	tasks       *mockTaskRepo
	users       *mockUserRepo
	seq         int
}

func newMockAssignmentRepo(tasks *mockTaskRepo, users *mockUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		tasks:       tasks,
		users:       users,
	}
}

func (m *mockAssignmentRepo) Ensure(_ context.Context, assignment *model.Assignment) (bool, error) {
	for _, a := range m.assignments {
		if a.TaskID == assignment.TaskID && a.StudentID == assignment.StudentID {
			*assignment = *a
			return false, nil
		}
	}
	m.seq++
	assignment.AssignmentID = fmt.Sprintf("assignment-%d", m.seq)
	stored := *assignment
	m.assignments[assignment.AssignmentID] = &stored
	return true, nil
}

// withPreload 模拟 Preload：挂上 Task 与 Student 指针（任务被删时 Task 为 nil）
func (m *mockAssignmentRepo) withPreload(a *model.Assignment) *model.Assignment {
	copied := *a
	if t, ok := m.tasks.tasks[a.TaskID]; ok {
		taskCopy := *t
		copied.Task = &taskCopy
	} else {
		copied.Task = nil
	}
	if u, ok := m.users.users[a.StudentID]; ok {
		copied.Student = u
	}
	return &copied
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return m.withPreload(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) GetByTaskAndStudent(_ context.Context, taskID, studentID string) (*model.Assignment, error) {
	for _, a := range m.assignments {
		if a.TaskID == taskID && a.StudentID == studentID {
			return m.withPreload(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.StudentID == studentID {
			result = append(result, *m.withPreload(a))
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByTask(_ context.Context, taskID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.TaskID == taskID {
			result = append(result, *m.withPreload(a))
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) StudentIDsByTask(_ context.Context, taskID string) ([]string, error) {
	var result []string
	for _, a := range m.assignments {
		if a.TaskID == taskID {
			result = append(result, a.StudentID)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, assignment *model.Assignment) error {
	a, ok := m.assignments[assignment.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = assignment.Status
	a.SubmittedAt = assignment.SubmittedAt
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) DeleteByTask(_ context.Context, taskID string) error {
	for id, a := range m.assignments {
		if a.TaskID == taskID {
			delete(m.assignments, id)
		}
	}
	return nil
}

func (m *mockAssignmentRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for id, a := range m.assignments {
		if a.StudentID == studentID {
			delete(m.assignments, id)
		}
	}
	return nil
}

func (m *mockAssignmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.assignments)), nil
}

func (m *mockAssignmentRepo) CountByStatus(_ context.Context, status model.AssignmentStatus) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions map[string]*model.Submission
	assignments *mockAssignmentRepo
	seq         int
}

func newMockSubmissionRepo(assignments *mockAssignmentRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{
		submissions: make(map[string]*model.Submission),
		assignments: assignments,
	}
}

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	m.seq++
	submission.SubmissionID = fmt.Sprintf("submission-%d", m.seq)
	stored := *submission
	m.submissions[submission.SubmissionID] = &stored
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	s, ok := m.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	if a, ok := m.assignments.assignments[s.AssignmentID]; ok {
		copied.Assignment = m.assignments.withPreload(a)
	}
	return &copied, nil
}

func (m *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID string) ([]model.Submission, error) {
	var result []model.Submission
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) UpdateFeedback(_ context.Context, submission *model.Submission) error {
	s, ok := m.submissions[submission.SubmissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Score = submission.Score
	s.Feedback = submission.Feedback
	s.FeedbackAt = submission.FeedbackAt
	s.GradedBy = submission.GradedBy
	return nil
}

func (m *mockSubmissionRepo) DeleteByAssignments(_ context.Context, assignmentIDs []string) error {
	for id, s := range m.submissions {
		for _, aid := range assignmentIDs {
			if s.AssignmentID == aid {
				delete(m.submissions, id)
				break
			}
		}
	}
	return nil
}

func (m *mockSubmissionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.submissions)), nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.seq++
	notification.NotificationID = fmt.Sprintf("notification-%d", m.seq)
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, notifications []model.Notification) error {
	for i := range notifications {
		if err := m.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, now time.Time, onlyUnread bool) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID || n.IsExpired(now) {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string, now time.Time) (int64, error) {
	items, _ := m.ListByUser(ctx, userID, now, true)
	return int64(len(items)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == notificationID && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) DeleteByUser(_ context.Context, userID string) error {
	var kept []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

// ── 测试用聚合 ──

// ── Mock FileStore ──

type mockFileStore struct {
	files map[string]string
	seq   int
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: make(map[string]string)}
}

func (m *mockFileStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.seq++
	token := fmt.Sprintf("file-%d-%s", m.seq, filename)
	m.files[token] = string(b)
	return token, nil
}

func (m *mockFileStore) Open(_ context.Context, token string) (io.ReadCloser, error) {
	content, ok := m.files[token]
	if !ok {
		return nil, fmt.Errorf("文件不存在: %s", token)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type testRepos struct {
	users         *mockUserRepo
	classes       *mockClassRepo
	subjects      *mockSubjectRepo
	teaching      *mockTeachingRepo
	tasks         *mockTaskRepo
	assignments   *mockAssignmentRepo
	submissions   *mockSubmissionRepo
	notifications *mockNotificationRepo
}

func newTestRepos() (*testRepos, *repository.Repository) {
	users := newMockUserRepo()
	classes := newMockClassRepo(users)
	subjects := newMockSubjectRepo()
	teaching := newMockTeachingRepo()
	tasks := newMockTaskRepo(classes)
	assignments := newMockAssignmentRepo(tasks, users)
	submissions := newMockSubmissionRepo(assignments)
	notifications := newMockNotificationRepo()

	mocks := &testRepos{
		users:         users,
		classes:       classes,
		subjects:      subjects,
		teaching:      teaching,
		tasks:         tasks,
		assignments:   assignments,
		submissions:   submissions,
		notifications: notifications,
	}
	repo := &repository.Repository{
		User:         users,
		Class:        classes,
		Subject:      subjects,
		Teaching:     teaching,
		Task:         tasks,
		Assignment:   assignments,
		Submission:   submissions,
		Notification: notifications,
	}
	return mocks, repo
}
