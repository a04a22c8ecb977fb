package shell

import "strings"

// ParseCommand splits line into words. A word starting with a double quote
// runs to the matching unescaped quote and may contain spaces; inside it a
// backslash escapes the next character. Unquoted words end at whitespace.
// An unterminated quote runs to the end of the line.
func ParseCommand(line string) []string {
	var (
		args []string
		i    int
	)
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			return args
		}

		if line[i] != '"' {
			start := i
			for i < len(line) && !isSpace(line[i]) {
				i++
			}
			args = append(args, line[start:i])
			continue
		}

		var word strings.Builder
		for i++; i < len(line); i++ {
			c := line[i]
			if c == '\\' && i+1 < len(line) {
				i++
				word.WriteByte(line[i])
				continue
			}
			if c == '"' {
				i++
				break
			}
			word.WriteByte(c)
		}
		args = append(args, word.String())
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
