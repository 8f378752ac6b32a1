package discovery

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const headerPrefix = "//"

// ProblemURL returns the URL in the first line comment of source, if any.
// A missing file is an error; a file without the comment yields "".
func ProblemURL(source string) (string, error) {
	f, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", source, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return parseHeader(line), nil
}

func parseHeader(line string) string {
	line = strings.TrimPrefix(line, "\ufeff")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, headerPrefix) {
		return ""
	}
	url := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
	if strings.ContainsAny(url, " \t") || !strings.Contains(url, "://") {
		return ""
	}
	return url
}

// PrependURL writes url as a first line comment of source, creating the file if needed.
// Nothing is written when source already starts with that comment.
func PrependURL(source, url string) error {
	content, err := os.ReadFile(source)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading file %s: %w", source, err)
	}

	first, _, _ := strings.Cut(string(content), "\n")
	if parseHeader(first) == url {
		return nil
	}

	header := headerPrefix + url + "\n"
	if err := os.WriteFile(source, append([]byte(header), content...), 0644); err != nil {
		return fmt.Errorf("error writing file %s: %w", source, err)
	}
	return nil
}
