package dockerfile

import "testing"

func TestExpandVars(t *testing.T) {
	lookup := func(name string) (string, bool) {
		vals := map[string]string{
			"FOO": "bar",
			"BAZ": "qux",
		}
		v, ok := vals[name]
		return v, ok
	}

	tests := []struct {
		name, in, want string
	}{
		{"simple var", "$FOO", "bar"},
		{"braced var", "${FOO}", "bar"},
		{"embedded", "pre-$FOO-post", "pre-bar-post"},
		{"two vars", "$FOO/$BAZ", "bar/qux"},
		{"unbound var drops", "$UNKNOWN", ""},
		{"single quoted not expanded", "'$FOO'", "'$FOO'"},
		{"double quoted expanded", `"$FOO"`, `"bar"`},
		{"escaped dollar not expanded", `\$FOO`, "$FOO"},
		{"malformed brace passthrough", "${FOO", "${FOO"},
		{"no dollar", "plain text", "plain text"},
		{"dollar alone", "$", "$"},
		{"dollar non-var-char", "$ hi", "$ hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandVars(tt.in, lookup); got != tt.want {
				t.Errorf("expandVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidVarName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"FOO", true},
		{"_FOO", true},
		{"FOO_2", true},
		{"2FOO", false},
		{"", false},
		{"FOO-BAR", false},
	}
	for _, tt := range tests {
		if got := isValidVarName(tt.name); got != tt.want {
			t.Errorf("isValidVarName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
