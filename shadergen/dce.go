package shadergen

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnbalanced is returned when a function body has no matching closing
// brace.
var ErrUnbalanced = errors.New("unbalanced braces")

var fnDecl = regexp.MustCompile(`(?m)^fn ([A-Za-z_][A-Za-z0-9_]*)\(`)

// EliminateDeadCode removes top-level functions whose name occurs nowhere
// but on their own definition line, repeating until nothing changes.
// Functions directly preceded by an @compute attribute line are kept.
func EliminateDeadCode(src string) (string, error) {
	for {
		out, removed, err := removeOne(src)
		if err != nil {
			return src, err
		}
		if !removed {
			return out, nil
		}
		src = out
	}
}

func removeOne(src string) (string, bool, error) {
	for _, m := range fnDecl.FindAllStringSubmatchIndex(src, -1) {
		start, name := m[0], src[m[2]:m[3]]
		if isEntry(src, start) {
			continue
		}
		lineEnd := strings.IndexByte(src[start:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src) - start
		}
		word := regexp.MustCompile(`\b` + name + `\b`)
		uses := len(word.FindAllStringIndex(src, -1))
		own := len(word.FindAllStringIndex(src[start:start+lineEnd], -1))
		if uses > own {
			continue
		}
		end, err := blockEnd(src, start)
		if err != nil {
			return src, false, err
		}
		// Drop the blank line that separated the block from the next one.
		for end < len(src) && src[end] == '\n' {
			end++
		}
		return src[:start] + src[end:], true, nil
	}
	return src, false, nil
}

func isEntry(src string, start int) bool {
	prev := strings.TrimRight(src[:start], "\n")
	line := prev[strings.LastIndexByte(prev, '\n')+1:]
	return strings.HasPrefix(strings.TrimSpace(line), "@compute")
}

// blockEnd returns the index just past the closing brace of the function
// declared at start.
func blockEnd(src string, start int) (int, error) {
	open := strings.IndexByte(src[start:], '{')
	if open < 0 {
		return 0, ErrUnbalanced
	}
	depth := 0
	for i := start + open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, ErrUnbalanced
}
