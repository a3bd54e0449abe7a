// Package htmltext converts rich-text event descriptions into plain text.
//
// The converter walks the markup with a streaming tokenizer and keeps the
// little state it needs (list mode, item counter, pending link target) in a
// single struct, so structure such as paragraphs, lists and links survives
// the conversion while all other markup is dropped.
package htmltext

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

const bullet = "• "

var excessNewlines = regexp.MustCompile(`\n{3,}`)

type listMode int

const (
	listNone listMode = iota
	listBullet
	listNumbered
)

// converter accumulates plain text while tokens are fed to it.
type converter struct {
	out      strings.Builder
	list     listMode
	itemNum  int
	skipText bool
	inLink   bool
	linkHref string
}

// Convert turns an HTML fragment into plain text, preserving line breaks,
// paragraphs, list markers and link targets.
func Convert(markup string) string {
	if markup == "" {
		return ""
	}

	markup = strings.ReplaceAll(markup, "&nbsp;", " ")
	markup = collapseSpace(markup)

	c := &converter{}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		// io.EOF ends the input; any other tokenizer error keeps the text
		// collected so far.
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.StartTagToken:
			c.start(tok)
		case html.EndTagToken:
			c.end(tok.Data)
		case html.SelfClosingTagToken:
			c.start(tok)
			c.end(tok.Data)
		case html.TextToken:
			c.text(tok.Data)
		}
	}

	text := excessNewlines.ReplaceAllString(c.out.String(), "\n\n")
	return strings.TrimSpace(text)
}

func (c *converter) start(tok html.Token) {
	switch tok.Data {
	case "br":
		c.out.WriteString("\n")
	case "p":
		if c.out.Len() > 0 && !strings.HasSuffix(c.out.String(), "\n") {
			c.out.WriteString("\n")
		}
	case "ul":
		c.list = listBullet
		c.out.WriteString("\n")
	case "ol":
		c.list = listNumbered
		c.itemNum = 1
		c.out.WriteString("\n")
	case "li":
		switch c.list {
		case listBullet:
			c.out.WriteString("\n" + bullet)
		case listNumbered:
			c.out.WriteString("\n" + strconv.Itoa(c.itemNum) + ". ")
			c.itemNum++
		}
	case "a":
		c.inLink = true
		for _, attr := range tok.Attr {
			if attr.Key == "href" {
				c.linkHref = attr.Val
			}
		}
	case "script", "style":
		c.skipText = true
	}
}

func (c *converter) end(tag string) {
	switch tag {
	case "p":
		c.out.WriteString("\n")
	case "ul", "ol":
		c.list = listNone
		c.out.WriteString("\n")
	case "a":
		if c.inLink && c.linkHref != "" {
			c.out.WriteString(" (" + c.linkHref + ")")
		}
		c.inLink = false
		c.linkHref = ""
	case "script", "style":
		c.skipText = false
	}
}

func (c *converter) text(data string) {
	if !c.skipText {
		c.out.WriteString(data)
	}
}

// collapseSpace replaces every run of whitespace with a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
