package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

func TestSubmit_CompletesAssignment(t *testing.T) {
	mocks, repo := newTestRepos()
	assignmentSvc := NewAssignmentService(repo, zap.NewNop())
	svc := NewSubmissionService(repo, nil, zap.NewNop())
	ctx := context.Background()

	class := seedClass(t, mocks, "高一(1)班")
	student := seedStudent(t, mocks, "alice", class.ClassID)
	task := seedTask(t, mocks, "数学作业", time.Now().Add(24*time.Hour), model.PriorityMedium, class.ClassID)
	assignment, _, err := assignmentSvc.Ensure(ctx, task.TaskID, student.UserID)
	if err != nil {
		t.Fatalf("Ensure 失败: %v", err)
	}

	actor := Actor{UserID: student.UserID, Role: model.RoleStudent, ClassID: class.ClassID}
	resp, err := svc.Submit(ctx, actor, assignment.AssignmentID, &dto.SubmitRequest{Content: "我的作答"}, "", nil)
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}
	if resp.Content != "我的作答" {
		t.Errorf("提交内容不符, 实际 %s", resp.Content)
	}

	got, _ := mocks.assignments.GetByID(ctx, assignment.AssignmentID)
	if got.Status != model.StatusCompleted {
		t.Errorf("提交后状态期望 completed, 实际 %s", got.Status)
	}
	if got.SubmittedAt == nil {
		t.Error("提交后 SubmittedAt 应被填充")
	}
}

func TestSubmit_OverdueStillCompletes(t *testing.T) {
	mocks, repo := newTestRepos()
	assignmentSvc := NewAssignmentService(repo, zap.NewNop())
	svc := NewSubmissionService(repo, nil, zap.NewNop())
	ctx := context.Background()
	now := time.Now()

	class := seedClass(t, mocks, "高一(1)班")
	student := seedStudent(t, mocks, "alice", class.ClassID)
	task := seedTask(t, mocks, "过期任务", now.Add(-24*time.Hour), model.PriorityMedium, class.ClassID)
	assignment, _, _ := assignmentSvc.Ensure(ctx, task.TaskID, student.UserID)

	// 先让对账把状态压成 overdue
	if err := assignmentSvc.Reconcile(ctx, student.UserID, now); err != nil {
		t.Fatalf("Reconcile 失败: %v", err)
	}
	got, _ := mocks.assignments.GetByID(ctx, assignment.AssignmentID)
	if got.Status != model.StatusOverdue {
		t.Fatalf("前置条件不满足: 状态应为 overdue, 实际 %s", got.Status)
	}

	// 逾期提交同样无条件完成
	actor := Actor{UserID: student.UserID, Role: model.RoleStudent, ClassID: class.ClassID}
	if _, err := svc.Submit(ctx, actor, assignment.AssignmentID, &dto.SubmitRequest{Content: "迟交"}, "", nil); err != nil {
		t.Fatalf("逾期提交失败: %v", err)
	}

	got, _ = mocks.assignments.GetByID(ctx, assignment.AssignmentID)
	if got.Status != model.StatusCompleted {
		t.Errorf("逾期提交后状态期望 completed, 实际 %s", got.Status)
	}
}

func TestSubmit_AppendOnly(t *testing.T) {
	mocks, repo := newTestRepos()
	assignmentSvc := NewAssignmentService(repo, zap.NewNop())
	svc := NewSubmissionService(repo, nil, zap.NewNop())
	ctx := context.Background()

	class := seedClass(t, mocks, "高一(1)班")
	student := seedStudent(t, mocks, "alice", class.ClassID)
	task := seedTask(t, mocks, "数学作业", time.Now().Add(24*time.Hour), model.PriorityMedium, class.ClassID)
	assignment, _, _ := assignmentSvc.Ensure(ctx, task.TaskID, student.UserID)

	actor := Actor{UserID: student.UserID, Role: model.RoleStudent, ClassID: class.ClassID}
	for _, content := range []string{"第一版", "第二版"} {
		if _, err := svc.Submit(ctx, actor, assignment.AssignmentID, &dto.SubmitRequest{Content: content}, "", nil); err != nil {
			t.Fatalf("Submit 失败: %v", err)
		}
	}

	// 重复提交只追加不覆盖
	submissions, err := svc.ListByAssignment(ctx, actor, assignment.AssignmentID)
	if err != nil {
		t.Fatalf("ListByAssignment 失败: %v", err)
	}
	if len(submissions) != 2 {
		t.Errorf("期望 2 条提交历史, 实际 %d", len(submissions))
	}
}

func TestSubmit_OthersAssignmentDenied(t *testing.T) {
	mocks, repo := newTestRepos()
	assignmentSvc := NewAssignmentService(repo, zap.NewNop())
	svc := NewSubmissionService(repo, nil, zap.NewNop())
	ctx := context.Background()

	class := seedClass(t, mocks, "高一(1)班")
	alice := seedStudent(t, mocks, "alice", class.ClassID)
	bob := seedStudent(t, mocks, "bob", class.ClassID)
	task := seedTask(t, mocks, "数学作业", time.Now().Add(24*time.Hour), model.PriorityMedium, class.ClassID)
	assignment, _, _ := assignmentSvc.Ensure(ctx, task.TaskID, alice.UserID)

	bobActor := Actor{UserID: bob.UserID, Role: model.RoleStudent, ClassID: class.ClassID}
	_, err := svc.Submit(ctx, bobActor, assignment.AssignmentID, &dto.SubmitRequest{Content: "代交"}, "", nil)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("提交他人任务期望 ErrAccessDenied, 实际 %v", err)
	}
}

func TestFeedback_TeacherGrades(t *testing.T) {
	mocks, repo := newTestRepos()
	assignmentSvc := NewAssignmentService(repo, zap.NewNop())
	svc := NewSubmissionService(repo, nil, zap.NewNop())
	ctx := context.Background()

	class := seedClass(t, mocks, "高一(1)班")
	student := seedStudent(t, mocks, "alice", class.ClassID)
	task := seedTask(t, mocks, "数学作业", time.Now().Add(24*time.Hour), model.PriorityMedium, class.ClassID)
	assignment, _, _ := assignmentSvc.Ensure(ctx, task.TaskID, student.UserID)

	studentActor := Actor{UserID: student.UserID, Role: model.RoleStudent, ClassID: class.ClassID}
	submitted, err := svc.Submit(ctx, studentActor, assignment.AssignmentID, &dto.SubmitRequest{Content: "作答"}, "", nil)
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}

	teacher := Actor{UserID: "teacher-1", Role: model.RoleTeacher}
	graded, err := svc.Feedback(ctx, teacher, submitted.ID, &dto.FeedbackRequest{Score: 85, Feedback: "完成得不错"})
	if err != nil {
		t.Fatalf("Feedback 失败: %v", err)
	}
	if graded.Score == nil || *graded.Score != 85 {
		t.Errorf("分数期望 85, 实际 %v", graded.Score)
	}
	if graded.Feedback != "完成得不错" {
		t.Errorf("评语不符, 实际 %s", graded.Feedback)
	}

	// 学生不能评分
	if _, err := svc.Feedback(ctx, studentActor, submitted.ID, &dto.FeedbackRequest{Score: 100}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("学生评分期望 ErrAccessDenied, 实际 %v", err)
	}
}
