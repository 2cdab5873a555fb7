// Package richtext parses the lightweight markup used in free-text document fields:
// dash/star bullet lines and inline **bold**, *italic*, __underline__ and _underline_ markers.
package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlockKind distinguishes paragraphs from bullet lists.
type BlockKind string

const (
	Paragraph BlockKind = "paragraph"
	List      BlockKind = "list"
)

// Block is one paragraph or one list. Text and Items still carry inline markers;
// use Spans or Strip to consume them.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// Parse 将文本按行拆分为段落与列表块，块顺序与源文本行顺序一致。
// 连续的列表行合并为一个列表，连续的普通行合并为一个段落（以换行连接），空行分隔块。
func Parse(src string) []Block {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var (
		blocks    []Block
		paragraph []string
		items     []string
	)
	flushParagraph := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, Block{Kind: Paragraph, Text: strings.Join(paragraph, "\n")})
			paragraph = nil
		}
	}
	flushList := func() {
		if len(items) > 0 {
			blocks = append(blocks, Block{Kind: List, Items: items})
			items = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushParagraph()
			flushList()
			continue
		}
		if item, ok := listItem(trimmed); ok {
			flushParagraph()
			items = append(items, item)
			continue
		}
		flushList()
		paragraph = append(paragraph, trimmed)
	}
	flushParagraph()
	flushList()

	return blocks
}

// listItem recognizes "- text" and "* text". The marker must be followed by whitespace so
// that a line opening with *italic* stays a paragraph.
func listItem(line string) (string, bool) {
	if len(line) < 2 || (line[0] != '-' && line[0] != '*') {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(line[1:])
	if !unicode.IsSpace(r) {
		return "", false
	}
	item := strings.TrimSpace(line[1:])
	if item == "" {
		return "", false
	}
	return item, true
}

// IsBlank reports whether src has no renderable text at all.
func IsBlank(src string) bool {
	return strings.TrimSpace(src) == ""
}

// PlainBlocks parses src and strips inline markers from every paragraph and item.
func PlainBlocks(src string) []Block {
	blocks := Parse(src)
	for i := range blocks {
		switch blocks[i].Kind {
		case Paragraph:
			blocks[i].Text = Strip(blocks[i].Text)
		case List:
			items := make([]string, len(blocks[i].Items))
			for j, it := range blocks[i].Items {
				items[j] = Strip(it)
			}
			blocks[i].Items = items
		}
	}
	return blocks
}
