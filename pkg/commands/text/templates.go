// Package text provides text formatting utilities for CLI commands.
package text

import (
	"strings"
)

// Indentation is the standard indentation for CLI help text.
const Indentation = `  `

// LongDesc normalizes a command's long description: the indentation shared by all lines, which
// comes from writing the text as an indented raw string, is removed together with surrounding
// blank lines.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}

	return strings.Join(dedent(lines(s)), "\n")
}

// Examples normalizes a command's examples: dedented like LongDesc, then every non-blank line is
// indented by Indentation.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}

	ls := dedent(lines(s))
	for i, l := range ls {
		if l != "" {
			ls[i] = Indentation + l
		}
	}

	return strings.Join(ls, "\n")
}

// lines splits s and drops the blank lines around it.
func lines(s string) []string {
	ls := strings.Split(strings.Trim(s, "\n"), "\n")
	for len(ls) > 0 && strings.TrimSpace(ls[0]) == "" {
		ls = ls[1:]
	}
	for len(ls) > 0 && strings.TrimSpace(ls[len(ls)-1]) == "" {
		ls = ls[:len(ls)-1]
	}

	return ls
}

func dedent(ls []string) []string {
	prefix := -1
	for _, l := range ls {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}

	out := make([]string, len(ls))
	for i, l := range ls {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out[i] = strings.TrimRight(l[prefix:], " \t")
	}

	return out
}
