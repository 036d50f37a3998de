package scaffold

import "strings"

// mergeGitignore appends every pattern of add that existing does not
// already list. Comments and blank lines of add are not carried over.
func mergeGitignore(existing, add []byte) []byte {
	out := string(existing)
	for line := range strings.SplitSeq(string(add), "\n") {
		entry := strings.TrimSpace(line)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		if hasGitignoreEntry(out, entry) {
			continue
		}
		out = appendGitignoreEntry(out, entry)
	}
	return []byte(out)
}

func appendGitignoreEntry(data, entry string) string {
	if data == "" {
		return entry + "\n"
	}
	if data[len(data)-1] != '\n' {
		return data + "\n" + entry + "\n"
	}
	return data + entry + "\n"
}

func hasGitignoreEntry(data, entry string) bool {
	entrySlash := "/" + strings.TrimPrefix(entry, "/")
	entry = strings.TrimPrefix(entry, "/")
	for line := range strings.SplitSeq(data, "\n") {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		if matchesEntry(trim, entry) || matchesEntry(trim, entrySlash) {
			return true
		}
	}
	return false
}

func matchesEntry(line, entry string) bool {
	if !strings.HasPrefix(line, entry) {
		return false
	}
	rest := strings.TrimSpace(line[len(entry):])
	return rest == "" || strings.HasPrefix(rest, "#") || rest == "/"
}
