// Package util provides common utility functions
// Package util 提供通用工具函数
package util

import "regexp"

// WikiRef represents a wiki-style reference extracted from body text // WikiRef 表示从正文中提取的维基风格引用
type WikiRef struct {
	Title      string // Referenced title text // 引用的标题文本
	ExplicitID string // Optional explicit entity ID from [[Title|id]] // 可选的显式实体 ID
	IsEmbed    bool   // True for ![[Title]] embeds // ![[Title]] 嵌入为 true
	RangeStart int    // Byte offset of the token start // token 起始的字节偏移
	RangeEnd   int    // Byte offset just past the closing "]]" // "]]" 之后的字节偏移
}

// wikiRefRegex matches [[Title]], [[Title|explicit-id]] and ![[Title]] patterns
// Group 1: optional embed bang // 可选的嵌入感叹号
// Group 2: title text // 标题文本
// Group 3: optional explicit ID // 可选的显式 ID
// "[" is excluded from the title class so an unterminated token cannot
// swallow the next valid one
// wikiRefRegex 匹配 [[Title]]、[[Title|explicit-id]] 和 ![[Title]] 模式
var wikiRefRegex = regexp.MustCompile(`(!?)\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

// ParseWikiRefs extracts [[Title]] and [[Title|explicit-id]] references from body text
// Returns every occurrence in document order with its byte range
// Pure and deterministic, malformed input degrades to an empty result
// ParseWikiRefs 从正文中提取 [[Title]] 和 [[Title|explicit-id]] 引用
// 按文档顺序返回每个出现位置及其字节范围
func ParseWikiRefs(body string) []WikiRef {
	if body == "" {
		return nil
	}

	idx := wikiRefRegex.FindAllStringSubmatchIndex(body, -1)
	if len(idx) == 0 {
		return nil
	}

	refs := make([]WikiRef, 0, len(idx))
	for _, m := range idx {
		ref := WikiRef{
			Title:      body[m[4]:m[5]],
			IsEmbed:    m[3] > m[2],
			RangeStart: m[0],
			RangeEnd:   m[1],
		}
		if m[6] >= 0 {
			ref.ExplicitID = body[m[6]:m[7]]
		}
		refs = append(refs, ref)
	}

	return refs
}
