package lang

// Vocabulary is the pre-resolved phrasing a normalizer needs for one language.
// It carries no logic of its own; see VocabularyFor.
type Vocabulary struct {
	Language Language

	Add      string
	Remove   string
	Rename   string
	Update   string
	Fix      string
	Optimize string
	Document string
	Test     string

	And           string
	ListSeparator string
	ExpandLead    string
	TokensLead    string

	ActionTemplate  string
	DetailTemplate  string
	DepsTemplate    string
	GeneralTemplate string

	// ActionVerbs are the words a body line may start with to count as imperative.
	ActionVerbs []string
	// GenericPhrases are subjects that say nothing about the change.
	GenericPhrases []string
}

var englishActionVerbs = []string{
	"add", "remove", "delete", "drop", "update", "fix", "refactor", "rename", "move",
	"improve", "implement", "introduce", "support", "document", "test", "clean", "simplify",
	"extract", "replace", "bump", "upgrade", "downgrade", "optimize", "handle", "enable",
	"disable", "use", "allow", "ensure", "prevent", "wire", "expose", "adjust", "change",
	"create", "merge", "split", "convert", "migrate", "revert", "cache", "validate", "tweak",
	"rework", "restore", "reduce", "increase", "set", "make", "build", "configure", "format",
}

var chineseActionVerbs = []string{
	"新增", "添加", "增加", "删除", "移除", "更新", "修复", "重构", "重命名", "优化", "实现",
	"支持", "调整", "完善", "补充", "改进", "引入", "清理", "简化", "替换", "升级", "迁移",
	"修改", "提取", "合并", "拆分", "处理", "暴露", "配置",
}

var englishGenericPhrases = []string{
	"update", "updates", "changes", "wip", "fix", "fixes", "stuff", "misc", "cleanup",
	"update code", "update files", "code changes", "minor changes", "minor fixes",
	"various changes", "various fixes", "some changes", "small changes", "fix bugs",
	"bug fixes", "improvements", "refactor code", "update implementation",
	"updated implementation details", "multiple files", "update multiple files",
}

var chineseGenericPhrases = []string{
	"更新", "修改", "更新代码", "修改代码", "修改文件", "更新文件", "多个文件", "若干修改",
	"代码优化", "一些修改", "小修改", "修复问题", "代码调整",
}

// VocabularyFor resolves the vocabulary for a language from the catalog.
func VocabularyFor(l Language) Vocabulary {
	return DefaultCatalog.Vocabulary(l)
}

// Vocabulary resolves a Vocabulary for the language from this catalog.
func (c Catalog) Vocabulary(l Language) Vocabulary {
	if !l.IsValid() {
		l = DefaultLanguage()
	}
	v := Vocabulary{
		Language:        l,
		Add:             c.Lookup(l, "verb.add"),
		Remove:          c.Lookup(l, "verb.remove"),
		Rename:          c.Lookup(l, "verb.rename"),
		Update:          c.Lookup(l, "verb.update"),
		Fix:             c.Lookup(l, "verb.fix"),
		Optimize:        c.Lookup(l, "verb.optimize"),
		Document:        c.Lookup(l, "verb.document"),
		Test:            c.Lookup(l, "verb.test"),
		And:             c.Lookup(l, "join.and"),
		ListSeparator:   c.Lookup(l, "join.list"),
		ExpandLead:      c.Lookup(l, "lead.expand"),
		TokensLead:      c.Lookup(l, "lead.tokens"),
		ActionTemplate:  c.Lookup(l, "phrase.action"),
		DetailTemplate:  c.Lookup(l, "phrase.detail"),
		DepsTemplate:    c.Lookup(l, "phrase.deps"),
		GeneralTemplate: c.Lookup(l, "phrase.general"),
		ActionVerbs:     englishActionVerbs,
		GenericPhrases:  englishGenericPhrases,
	}
	if l == ChineseSimplified {
		// Models answering in Chinese still mix in English verbs and phrases.
		v.ActionVerbs = append(append([]string{}, chineseActionVerbs...), englishActionVerbs...)
		v.GenericPhrases = append(append([]string{}, chineseGenericPhrases...), englishGenericPhrases...)
	}
	return v
}
