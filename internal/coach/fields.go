package coach

import "strings"

// ParseFields pulls labeled fields such as "PRAISE: Well done!" out of a
// free-form reply. Labels match case-insensitively and may be wrapped in
// markdown bullets or bold markers. A line without a known label continues
// the previous field. Missing fields come back empty; the map always holds
// every key.
func ParseFields(text string, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = ""
	}

	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimLeft(line, "-*•> \t")
		if line == "" {
			continue
		}

		if key, value, ok := labeled(line, keys); ok {
			current = key
			if out[key] == "" {
				out[key] = value
			}
			continue
		}

		if current != "" {
			out[current] = strings.TrimSpace(out[current] + " " + strings.Trim(line, "*_ "))
		}
	}
	return out
}

func labeled(line string, keys []string) (key, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	label := strings.Trim(line[:i], "*_ ")
	for _, k := range keys {
		if strings.EqualFold(label, k) {
			return k, strings.Trim(line[i+1:], "*_ \t\""), true
		}
	}
	return "", "", false
}

// Compose joins the coach fields into the sentence that is spoken back:
// "<correct>. <praise> <question>", skipping empty parts.
func Compose(correct, praise, question string) string {
	var parts []string
	if c := strings.TrimSpace(correct); c != "" {
		if !strings.ContainsAny(c[len(c)-1:], ".!?") {
			c += "."
		}
		parts = append(parts, c)
	}
	for _, p := range []string{praise, question} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
