package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProblemURL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "url comment", content: "//https://codeforces.com/contest/1/problem/A\nint main(){}", want: "https://codeforces.com/contest/1/problem/A"},
		{name: "spaced comment", content: "  // https://codeforces.com/x  \r\n", want: "https://codeforces.com/x"},
		{name: "byte order mark", content: "\ufeff//https://codeforces.com/x", want: "https://codeforces.com/x"},
		{name: "plain comment", content: "// solution for problem A\n", want: ""},
		{name: "not first line", content: "#include <cstdio>\n//https://codeforces.com/x\n", want: ""},
		{name: "empty file", content: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := filepath.Join(t.TempDir(), "a.cpp")
			if err := os.WriteFile(source, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write source: %v", err)
			}
			got, err := ProblemURL(source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := ProblemURL(filepath.Join(t.TempDir(), "missing.cpp")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrependURL(t *testing.T) {
	url := "https://codeforces.com/contest/1/problem/A"
	source := filepath.Join(t.TempDir(), "a.cpp")
	if err := os.WriteFile(source, []byte("int main(){}\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := PrependURL(source, url); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	content, _ := os.ReadFile(source)
	want := "//" + url + "\nint main(){}\n"
	if string(content) != want {
		t.Errorf("expected %q, got %q", want, content)
	}

	created := filepath.Join(t.TempDir(), "new.cpp")
	if err := PrependURL(created, url); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := ProblemURL(created); got != url {
		t.Errorf("expected created file to carry the url, got %q", got)
	}
}
