package model

import "strings"

type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

func (l Language) IsValid() bool {
	return l == LangEnglish || l == LangChinese
}

// ParseLanguage accepts locale-ish values like "zh_CN" and falls back to English.
func ParseLanguage(raw string) Language {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "zh") {
		return LangChinese
	}
	return LangEnglish
}

type WorkflowID string

const (
	WorkflowInbox   WorkflowID = "inbox"
	WorkflowNext    WorkflowID = "next"
	WorkflowWaiting WorkflowID = "waiting"
	WorkflowSomeday WorkflowID = "someday"
)

type Workflow struct {
	ID     WorkflowID
	Icon   string
	Labels map[Language]string
	// Heading text containing any Native keyword, or any English keyword
	// case-insensitively, names this workflow.
	Native  []string
	English []string
}

var workflows = []Workflow{
	{
		ID:      WorkflowInbox,
		Icon:    "📥",
		Labels:  map[Language]string{LangEnglish: "Inbox", LangChinese: "收件箱"},
		Native:  []string{"收件箱"},
		English: []string{"inbox"},
	},
	{
		ID:      WorkflowNext,
		Icon:    "⚡",
		Labels:  map[Language]string{LangEnglish: "Next Actions", LangChinese: "下一步行动"},
		Native:  []string{"下一步"},
		English: []string{"next action"},
	},
	{
		ID:      WorkflowWaiting,
		Icon:    "⏳",
		Labels:  map[Language]string{LangEnglish: "Waiting For", LangChinese: "等待确认"},
		Native:  []string{"等待"},
		English: []string{"waiting"},
	},
	{
		ID:      WorkflowSomeday,
		Icon:    "☕",
		Labels:  map[Language]string{LangEnglish: "Someday/Maybe", LangChinese: "将来/也许"},
		Native:  []string{"将来", "未来也许"},
		English: []string{"someday", "maybe"},
	},
}

func Workflows() []Workflow {
	out := make([]Workflow, len(workflows))
	copy(out, workflows)
	return out
}

func WorkflowByID(id WorkflowID) (Workflow, bool) {
	for _, w := range workflows {
		if w.ID == id {
			return w, true
		}
	}
	return Workflow{}, false
}

func (w Workflow) Label(lang Language) string {
	if label, ok := w.Labels[lang]; ok {
		return label
	}
	return w.Labels[LangEnglish]
}

func (w Workflow) Heading(lang Language) string {
	return w.Icon + " " + w.Label(lang)
}

func (w Workflow) Matches(name string) bool {
	for _, k := range w.Native {
		if strings.Contains(name, k) {
			return true
		}
	}
	lower := strings.ToLower(name)
	for _, k := range w.English {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func MatchWorkflow(name string) (Workflow, bool) {
	for _, w := range workflows {
		if w.Matches(name) {
			return w, true
		}
	}
	return Workflow{}, false
}

func DisplayName(name string, lang Language) string {
	if w, ok := MatchWorkflow(name); ok {
		return w.Label(lang)
	}
	return name
}

// ReservedPath reports whether path is the top-level heading of a workflow in any language.
func ReservedPath(path string) (Workflow, bool) {
	for _, w := range workflows {
		for lang := range w.Labels {
			if path == w.Heading(lang) {
				return w, true
			}
		}
	}
	return Workflow{}, false
}

type LabelKey string

const (
	LabelNewProject    LabelKey = "new_project"
	LabelUncategorized LabelKey = "uncategorized"
	LabelSampleTask    LabelKey = "sample_task"
)

var labels = map[LabelKey]map[Language]string{
	LabelNewProject:    {LangEnglish: "New Project", LangChinese: "新建项目"},
	LabelUncategorized: {LangEnglish: "Uncategorized", LangChinese: "未分类"},
	LabelSampleTask:    {LangEnglish: "Sample task (delete it or start adding your own)", LangChinese: "示例任务（可删除或开始添加）"},
}

func Label(key LabelKey, lang Language) string {
	set, ok := labels[key]
	if !ok {
		return string(key)
	}
	if s, ok := set[lang]; ok {
		return s
	}
	return set[LangEnglish]
}
