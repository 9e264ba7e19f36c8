package service

import (
	"sort"
	"strings"

	"github.com/alainmurenzi/smart-edu-task-manager/internal/model"
)

// SortAssignments 按 (优先级权重, 截止时间升序) 对个人任务稳定排序。
// 纯函数，不修改 Task；缺失 Task 的记录排在最后。
func SortAssignments(assignments []model.Assignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		ti, tj := assignments[i].Task, assignments[j].Task
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		ri, rj := ti.Priority.Rank(), tj.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return ti.Deadline.Before(tj.Deadline)
	})
}

// ── 优先级建议（关键词规则） ──

// suggestRules 按优先级从高到低匹配，命中即返回
var suggestRules = []struct {
	priority model.Priority
	keywords []string
}{
	{model.PriorityUrgentImportant, []string{"urgent", "asap", "immediately", "exam", "final", "紧急", "考试"}},
	{model.PriorityImportantNotUrgent, []string{"important", "essay", "project", "report", "重要", "论文", "项目"}},
	{model.PriorityUrgentNotImportant, []string{"today", "tomorrow", "deadline", "今天", "明天"}},
	{model.PriorityHigh, []string{"quiz", "test", "presentation", "测验", "汇报"}},
	{model.PriorityGroupTask, []string{"group", "team", "together", "小组", "协作"}},
	{model.PriorityLongTerm, []string{"semester", "month", "research", "学期", "研究"}},
	{model.PriorityOptional, []string{"optional", "extra", "bonus", "选做", "加分"}},
	{model.PriorityLow, []string{"review", "reading", "practice", "复习", "阅读", "练习"}},
}

// SuggestPriority 根据任务描述给出建议优先级。
// 仅供参考：调用方未显式指定优先级时才使用，绝不覆盖显式取值。
func SuggestPriority(text string) model.Priority {
	lower := strings.ToLower(text)
	for _, rule := range suggestRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.priority
			}
		}
	}
	return model.PriorityMedium
}
