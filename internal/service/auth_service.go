package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/dto"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
	"github.com/alainmurenzi/smart-edu-task-manager/internal/repository"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/jwt"
	"github.com/alainmurenzi/smart-edu-task-manager/pkg/redis"
)

// AuthService 注册、登录与会话管理
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将当前 access token 拉黑至其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.RegisterResponse, error)
	// RegisterStudent 注册学生并即时分发其班级范围内的全部既有任务
	RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.RegisterResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg           *config.Config
	repo          *repository.Repository
	jwtMgr        *jwt.Manager
	rdb           *redis.Client
	assignmentSvc AssignmentService
	logger        *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	assignmentSvc AssignmentService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:           cfg,
		repo:          repo,
		jwtMgr:        jwtMgr,
		rdb:           rdb,
		assignmentSvc: assignmentSvc,
		logger:        logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分“用户不存在”与“密码错误”
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	resp, err := s.issueTokens(user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户登录",
		zap.String("user_id", user.UserID),
		zap.String("role", string(user.Role)),
	)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	// Redis 降级运行时跳过拉黑，Token 到期自然失效
	if s.rdb == nil {
		s.logger.Warn("Redis 不可用，跳过登出拉黑", zap.String("jti", jti))
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, ttl)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, jwt.ErrTokenInvalid
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if blacklisted {
			return nil, jwt.ErrTokenInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 旧 refresh token 一次性使用，旋转后即拉黑
	if s.rdb != nil && claims.ExpiresAt != nil {
		if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(user, claims.RememberMe)
}

func (s *authService) RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.RegisterResponse, error) {
	user := &model.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  model.RoleTeacher,
	}
	if req.Subject != "" {
		user.Subject = &req.Subject
	}

	if err := s.register(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return toRegisterResponse(user), nil
}

func (s *authService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.RegisterResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	user := &model.User{
		Name:    req.Name,
		Email:   req.Email,
		Role:    model.RoleStudent,
		ClassID: &req.ClassID,
	}
	if err := s.register(ctx, user, req.Password); err != nil {
		return nil, err
	}

	// 注册即分发：班级范围内的全部既有任务，含已过截止时间的
	if err := s.assignmentSvc.DistributeOnRegistration(ctx, user); err != nil {
		return nil, err
	}

	return toRegisterResponse(user), nil
}

func (s *authService) register(ctx context.Context, user *model.User, password string) error {
	existing, err := s.repo.User.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	if err := s.repo.User.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("用户注册",
		zap.String("user_id", user.UserID),
		zap.String("role", string(user.Role)),
	)
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.repo.User.Update(ctx, user)
}

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	classID := ""
	if user.ClassID != nil {
		classID = *user.ClassID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role), classID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, string(user.Role), classID, rememberMe)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

func toRegisterResponse(user *model.User) *dto.RegisterResponse {
	return &dto.RegisterResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}
