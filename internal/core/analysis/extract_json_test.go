package analysis

import "testing"

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			"bare object",
			`{"score": 90}`,
			`{"score": 90}`,
			true,
		},
		{
			"prose wrapped",
			"Here is the analysis you asked for:\n{\"score\": 85}\nLet me know!",
			`{"score": 85}`,
			true,
		},
		{
			"markdown fenced",
			"```json\n{\"score\": 70, \"issues\": []}\n```",
			`{"score": 70, "issues": []}`,
			true,
		},
		{
			"nested objects",
			`{"position": {"start": 0, "end": 10}, "score": 50}`,
			`{"position": {"start": 0, "end": 10}, "score": 50}`,
			true,
		},
		{
			"braces inside strings",
			`{"text": "use {braces} and \"quotes\" freely"}`,
			`{"text": "use {braces} and \"quotes\" freely"}`,
			true,
		},
		{
			"stops at first balanced object",
			`{"a": 1} {"b": 2}`,
			`{"a": 1}`,
			true,
		},
		{
			"no object",
			"sorry, I cannot help with that",
			"",
			false,
		},
		{
			"unbalanced",
			`{"score": 90`,
			"",
			false,
		},
		{
			"stray close before open",
			`} {"score": 10}`,
			`{"score": 10}`,
			true,
		},
		{
			"empty input",
			"",
			"",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("firstJSONObject(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
