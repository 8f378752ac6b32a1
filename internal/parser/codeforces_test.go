package parser

import (
	"errors"
	"strings"
	"testing"
)

const legacyPage = `<html><body>
<div class="problem-statement">
<div class="sample-tests"><div class="section-title">Examples</div>
<div class="sample-test">
<div class="input"><div class="title">Input</div><pre>3<br />1 2 3<br /></pre></div>
<div class="output"><div class="title">Output</div><pre>6<br /></pre></div>
<div class="input"><div class="title">Input</div><pre>1<br />5</pre></div>
<div class="output"><div class="title">Output</div><pre>5</pre></div>
</div></div></div>
</body></html>`

const linedPage = `<html><body>
<div class="sample-test">
<div class="input"><div class="title">Input</div><pre>
<div class="test-example-line test-example-line-even test-example-line-0">2</div><div class="test-example-line test-example-line-odd test-example-line-1">a &lt; b</div></pre></div>
<div class="output"><div class="title">Output</div><pre>
YES
NO
</pre></div>
</div>
</body></html>`

func TestCodeforcesParser_Parse(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		wantInputs []string
		wantOutput []string
	}{
		{
			name:       "br separated",
			page:       legacyPage,
			wantInputs: []string{"3\n1 2 3\n", "1\n5\n"},
			wantOutput: []string{"6\n", "5\n"},
		},
		{
			name:       "line divs",
			page:       linedPage,
			wantInputs: []string{"2\na < b\n"},
			wantOutput: []string{"YES\nNO\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases, err := NewCodeforcesParser().Parse(strings.NewReader(tt.page))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cases) != len(tt.wantInputs) {
				t.Fatalf("expected %d cases, got %d", len(tt.wantInputs), len(cases))
			}
			for i, tc := range cases {
				if tc.Input != tt.wantInputs[i] {
					t.Errorf("case %d: expected input %q, got %q", i, tt.wantInputs[i], tc.Input)
				}
				if tc.ExpectedOutput != tt.wantOutput[i] {
					t.Errorf("case %d: expected output %q, got %q", i, tt.wantOutput[i], tc.ExpectedOutput)
				}
			}
		})
	}
}

func TestCodeforcesParser_Errors(t *testing.T) {
	_, err := NewCodeforcesParser().Parse(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}

	mismatched := `<div class="input"><pre>1</pre></div>`
	if _, err := NewCodeforcesParser().Parse(strings.NewReader(mismatched)); err == nil {
		t.Error("expected error for unpaired sample")
	}
}

func TestIsCodeforcesURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://codeforces.com/problemset/problem/4/A", true},
		{"http://codeforces.com/contest/1/problem/A", true},
		{"https://m1.codeforces.com/contest/1/problem/A", true},
		{"  https://codeforces.com/gym/1/problem/A  ", true},
		{"https://atcoder.jp/contests/abc1/tasks/a", false},
		{"https://codeforces.com.evil.org/problem", false},
		{"ftp://codeforces.com/x", false},
		{"codeforces.com/problem", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCodeforcesURL(tt.url); got != tt.want {
			t.Errorf("IsCodeforcesURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
