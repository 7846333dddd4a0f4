package console

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// splitWords splits a command line into words the way a POSIX shell would,
// honoring quotes and backslash escapes. Nothing is expanded: parameters,
// command substitutions and arithmetic are kept as they were typed. Lines the
// parser rejects, such as ones with an unbalanced quote, are split on white
// space instead.
func splitWords(line string) []string {
	var words []string
	printer := syntax.NewPrinter()
	err := syntax.NewParser().Words(strings.NewReader(line), func(w *syntax.Word) bool {
		var sb strings.Builder
		for _, part := range w.Parts {
			writePart(&sb, printer, part)
		}
		words = append(words, sb.String())
		return true
	})
	if err != nil {
		logger.Debug("splitting on white space", "line", line, "err", err)
		return strings.Fields(line)
	}
	return words
}

func writePart(sb *strings.Builder, printer *syntax.Printer, part syntax.WordPart) {
	switch part := part.(type) {
	case *syntax.Lit:
		sb.WriteString(unescape(part.Value, false))
	case *syntax.SglQuoted:
		if part.Dollar {
			printer.Print(sb, part)
			return
		}
		sb.WriteString(part.Value)
	case *syntax.DblQuoted:
		if part.Dollar {
			printer.Print(sb, part)
			return
		}
		for _, inner := range part.Parts {
			if lit, ok := inner.(*syntax.Lit); ok {
				sb.WriteString(unescape(lit.Value, true))
			} else {
				printer.Print(sb, inner)
			}
		}
	default:
		printer.Print(sb, part)
	}
}

// unescape removes backslash escapes from a literal. Inside double quotes a
// backslash only escapes $, `, ", \ and newline.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch {
		case next == '\n':
			i++
		case !quoted || strings.IndexByte("$`\"\\", next) >= 0:
			sb.WriteByte(next)
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
