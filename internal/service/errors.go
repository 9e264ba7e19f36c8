package service

import "errors"

// ── 公共业务错误 ──

var (
	ErrAccessDenied = errors.New("无权操作")

	ErrUserNotFound         = errors.New("用户不存在")
	ErrClassNotFound        = errors.New("班级不存在")
	ErrSubjectNotFound      = errors.New("科目不存在")
	ErrTaskNotFound         = errors.New("任务不存在")
	ErrAssignmentNotFound   = errors.New("个人任务不存在")
	ErrSubmissionNotFound   = errors.New("提交记录不存在")

	ErrEmailExists     = errors.New("邮箱已被注册")
	ErrClassNameExists = errors.New("班级名称已存在")
	ErrClassNotEmpty   = errors.New("班级下仍有学生或授课关系，不能删除")
	ErrSubjectInUse    = errors.New("科目仍挂在班级下，不能删除")
	ErrSelfDelete      = errors.New("不能删除自己")

	ErrInvalidPriority   = errors.New("非法的优先级取值")
	ErrInvalidPassword   = errors.New("邮箱或密码错误")
	ErrNotTeacher        = errors.New("目标用户不是教师")
	ErrSubjectNotInClass = errors.New("科目不属于该班级")
)
