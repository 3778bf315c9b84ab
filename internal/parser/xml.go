// internal/parser/xml.go
package parser

import (
	"strings"

	"warpc/internal/node"
	"warpc/internal/op"
)

// ParseXML is the separate entry point from spec.md §4.1: it turns a
// restricted XML-like syntax into the same Node shapes the main parser
// produces, with attributes carried as Key nodes whose left side is a
// Symbol prefixed with "." (e.g. `.class`).
func ParseXML(source, file string) *node.Node {
	x := &xmlParser{src: source, file: file}
	x.skipSpace()
	if x.atEnd() {
		return node.NewEmpty()
	}
	return x.parseElement()
}

type xmlParser struct {
	src string
	pos int
	file string
}

func (x *xmlParser) atEnd() bool { return x.pos >= len(x.src) }

func (x *xmlParser) skipSpace() {
	for !x.atEnd() && (x.src[x.pos] == ' ' || x.src[x.pos] == '\n' || x.src[x.pos] == '\t' || x.src[x.pos] == '\r') {
		x.pos++
	}
}

func (x *xmlParser) parseElement() *node.Node {
	if x.atEnd() || x.src[x.pos] != '<' {
		return x.parseText()
	}
	x.pos++ // '<'
	name := x.readName()
	attrs := []*node.Node{}
	x.skipSpace()
	for !x.atEnd() && x.src[x.pos] != '>' && x.src[x.pos] != '/' {
		attrName := x.readName()
		x.skipSpace()
		var val string
		if !x.atEnd() && x.src[x.pos] == '=' {
			x.pos++
			val = x.readQuoted()
		}
		attrs = append(attrs, node.NewKey(node.NewSymbol("."+attrName), op.Colon, node.NewText(val)))
		x.skipSpace()
	}
	selfClosing := false
	if !x.atEnd() && x.src[x.pos] == '/' {
		selfClosing = true
		x.pos++
	}
	if !x.atEnd() && x.src[x.pos] == '>' {
		x.pos++
	}
	children := append([]*node.Node{}, attrs...)
	if !selfClosing {
		closeTag := "</" + name + ">"
		for !x.atEnd() && !strings.HasPrefix(x.src[x.pos:], closeTag) {
			if x.src[x.pos] == '<' {
				children = append(children, x.parseElement())
			} else {
				children = append(children, x.parseText())
			}
		}
		if strings.HasPrefix(x.src[x.pos:], closeTag) {
			x.pos += len(closeTag)
		}
	}
	return node.NewList(append([]*node.Node{node.NewSymbol(name)}, children...), node.Angle, node.SpaceSep)
}

func (x *xmlParser) parseText() *node.Node {
	start := x.pos
	for !x.atEnd() && x.src[x.pos] != '<' {
		x.pos++
	}
	return node.NewText(strings.TrimSpace(x.src[start:x.pos]))
}

func (x *xmlParser) readName() string {
	start := x.pos
	for !x.atEnd() && x.src[x.pos] != ' ' && x.src[x.pos] != '>' && x.src[x.pos] != '/' && x.src[x.pos] != '=' && x.src[x.pos] != '\n' {
		x.pos++
	}
	return x.src[start:x.pos]
}

func (x *xmlParser) readQuoted() string {
	if x.atEnd() || (x.src[x.pos] != '"' && x.src[x.pos] != '\'') {
		return ""
	}
	quote := x.src[x.pos]
	x.pos++
	start := x.pos
	for !x.atEnd() && x.src[x.pos] != quote {
		x.pos++
	}
	val := x.src[start:x.pos]
	if !x.atEnd() {
		x.pos++
	}
	return val
}

