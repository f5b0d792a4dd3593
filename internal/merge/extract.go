package merge

import "strings"

type extractState uint8

const (
	stateOutside extractState = iota
	stateEntering
	stateInside
)

// Extract returns the inner body of every top-level block opened by a line
// starting with keyword. The wrapper's own opening brace line and its closing
// line are dropped; every other line inside is kept, terminator included.
// A file without such a block yields nil.
func Extract(lines []string, keyword string) []string {
	var (
		body  []string
		state = stateOutside
		depth int
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch state {
		case stateOutside:
			if !strings.HasPrefix(trimmed, keyword) {
				continue
			}
			state = stateEntering
			depth = 0
			// "namespace X {" opens on the keyword line itself.
			if strings.ContainsRune(trimmed, '{') {
				depth = braceDelta(trimmed)
				if depth <= 0 {
					state = stateOutside
				} else {
					state = stateInside
				}
			}
			continue

		case stateEntering:
			if !strings.ContainsAny(trimmed, "{}") {
				continue
			}
			state = stateInside
		}

		depth += braceDelta(trimmed)
		if depth <= 0 {
			state = stateOutside
			depth = 0
			continue
		}
		if depth == 1 && trimmed == "{" {
			continue
		}
		body = append(body, line)
	}
	return body
}

func braceDelta(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}
