package lang

import "strings"

// Catalog maps a language and message key to a template string.
// Templates use {placeholder} markers that Format substitutes.
type Catalog map[Language]map[string]string

// DefaultCatalog holds the phrasing used by subject and body synthesis.
var DefaultCatalog = Catalog{
	English: {
		"verb.add":       "add",
		"verb.remove":    "remove",
		"verb.rename":    "rename",
		"verb.update":    "update",
		"verb.fix":       "fix",
		"verb.optimize":  "optimize",
		"verb.document":  "document",
		"verb.test":      "test",
		"join.and":       " and ",
		"join.list":      ", ",
		"lead.expand":    " — ",
		"lead.tokens":    "; touches ",
		"phrase.action":  "{verb} {target}",
		"phrase.detail":  "{file}: {verb} {details}",
		"phrase.deps":    "update dependencies in {files}",
		"phrase.general": "update {target}",
		"prompt.lang":    "Write the commit message in English.",
	},
	ChineseSimplified: {
		"verb.add":       "新增",
		"verb.remove":    "删除",
		"verb.rename":    "重命名",
		"verb.update":    "更新",
		"verb.fix":       "修复",
		"verb.optimize":  "优化",
		"verb.document":  "完善文档",
		"verb.test":      "补充测试",
		"join.and":       " 与 ",
		"join.list":      "、",
		"lead.expand":    "，涉及: ",
		"lead.tokens":    "；关键词: ",
		"phrase.action":  "{verb} {target}",
		"phrase.detail":  "{file}: {verb} {details}",
		"phrase.deps":    "更新 {files} 依赖",
		"phrase.general": "更新 {target}",
		"prompt.lang":    "请使用简体中文撰写提交信息（type 与 scope 保持英文）。",
	},
}

// Lookup returns the raw template for key, falling back to English.
func (c Catalog) Lookup(l Language, key string) string {
	if msgs, ok := c[l]; ok {
		if tmpl, ok := msgs[key]; ok {
			return tmpl
		}
	}
	return c[English][key]
}

// Format resolves key for the language and substitutes {placeholder} values.
func (c Catalog) Format(l Language, key string, params map[string]string) string {
	return Fill(c.Lookup(l, key), params)
}

// Fill substitutes {placeholder} values in tmpl. Unknown placeholders are left untouched.
func Fill(tmpl string, params map[string]string) string {
	if len(params) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
