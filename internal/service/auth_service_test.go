package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/jwt"
)

func setupTestAuthService() (AuthService, *testRepos) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		Notify: config.NotifyConfig{
			BroadcastExpiry: 168 * time.Hour,
		},
	}

	mocks, repo := newTestRepos()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	logger := zap.NewNop()
	assignmentSvc := NewAssignmentService(repo, logger)

	svc := NewAuthService(cfg, repo, jwtMgr, nil, assignmentSvc, logger)
	return svc, mocks
}

func createTestUser(mocks *testRepos, email, password string, role model.Role) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	_ = mocks.users.Create(context.Background(), user)
	return user
}

// ── 登录 ──

func TestLogin_Success(t *testing.T) {
	svc, mocks := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.local", "password123", model.RoleStudent)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@test.local",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("登录应返回 token 对")
	}
	if result.User.ID != user.UserID {
		t.Errorf("返回用户期望 %s, 实际 %s", user.UserID, result.User.ID)
	}
	if result.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn 期望 900, 实际 %d", result.ExpiresIn)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mocks := setupTestAuthService()
	createTestUser(mocks, "alice@test.local", "password123", model.RoleStudent)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@test.local",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("密码错误期望 ErrInvalidPassword, 实际 %v", err)
	}

	// 用户不存在返回同一错误，不暴露账号是否存在
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@test.local",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("用户不存在期望 ErrInvalidPassword, 实际 %v", err)
	}
}

// ── 注册 ──

func TestRegisterTeacher_Success(t *testing.T) {
	svc, mocks := setupTestAuthService()

	resp, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Name:     "王老师",
		Email:    "wang@test.local",
		Password: "password123",
		Subject:  "数学",
	})
	if err != nil {
		t.Fatalf("教师注册失败: %v", err)
	}
	if resp.Role != string(model.RoleTeacher) {
		t.Errorf("角色期望 teacher, 实际 %s", resp.Role)
	}

	user, err := mocks.users.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("注册后用户应存在: %v", err)
	}
	if user.Subject == nil || *user.Subject != "数学" {
		t.Errorf("科目期望 数学, 实际 %v", user.Subject)
	}
	if user.PasswordHash == "password123" {
		t.Error("密码不应明文存储")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mocks := setupTestAuthService()
	createTestUser(mocks, "dup@test.local", "password123", model.RoleTeacher)

	_, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Name:     "重复",
		Email:    "dup@test.local",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("重复邮箱期望 ErrEmailExists, 实际 %v", err)
	}
}

func TestRegisterStudent_UnknownClass(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.RegisterStudent(context.Background(), &dto.RegisterStudentRequest{
		Name:     "alice",
		Email:    "alice@test.local",
		Password: "password123",
		ClassID:  "class-missing",
	})
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("未知班级期望 ErrClassNotFound, 实际 %v", err)
	}
}

// 注册即分发：班级既有任务（含已截止）在注册时全部落到新学生名下并通知
func TestRegisterStudent_DistributesExistingTasks(t *testing.T) {
	svc, mocks := setupTestAuthService()
	ctx := context.Background()
	now := time.Now()

	class := seedClass(t, mocks, "高一(1)班")
	seedTask(t, mocks, "进行中任务", now.Add(24*time.Hour), model.PriorityMedium, class.ClassID)
	seedTask(t, mocks, "已截止任务", now.Add(-24*time.Hour), model.PriorityHigh, class.ClassID)

	resp, err := svc.RegisterStudent(ctx, &dto.RegisterStudentRequest{
		Name:     "alice",
		Email:    "alice@test.local",
		Password: "password123",
		ClassID:  class.ClassID,
	})
	if err != nil {
		t.Fatalf("学生注册失败: %v", err)
	}

	assignments, _ := mocks.assignments.ListByStudent(ctx, resp.ID)
	if len(assignments) != 2 {
		t.Fatalf("注册分发期望 2 条记录, 实际 %d", len(assignments))
	}
	for _, a := range assignments {
		if a.Status != model.StatusPending {
			t.Errorf("新分发记录状态期望 pending, 实际 %s", a.Status)
		}
	}

	notifs, _ := mocks.notifications.ListByUser(ctx, resp.ID, now, false)
	if len(notifs) != 2 {
		t.Errorf("注册分发期望 2 条通知, 实际 %d", len(notifs))
	}
}

// ── 修改密码 ──

func TestChangePassword(t *testing.T) {
	svc, mocks := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.local", "old-password", model.RoleStudent)
	actor := Actor{UserID: user.UserID, Role: model.RoleStudent}

	err := svc.ChangePassword(context.Background(), actor, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password",
	})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("旧密码错误期望 ErrInvalidPassword, 实际 %v", err)
	}

	err = svc.ChangePassword(context.Background(), actor, &dto.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password",
	})
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	// 新密码立即生效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@test.local",
		Password: "new-password",
	}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
}

// ── Redis 降级 ──

func TestLogout_RedisDegraded(t *testing.T) {
	svc, _ := setupTestAuthService()

	// rdb 为 nil 时登出直接放行，Token 到期自然失效
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Redis 降级时登出应放行: %v", err)
	}
}

func TestRefresh_RedisDegraded(t *testing.T) {
	svc, mocks := setupTestAuthService()
	createTestUser(mocks, "bob@test.local", "password123", model.RoleTeacher)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "bob@test.local",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	// rdb 为 nil 时跳过黑名单检查与旋转拉黑，刷新仍可用
	result, err := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Redis 降级时刷新应可用: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("刷新应返回新的 access token")
	}
}
