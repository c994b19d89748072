package spell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		delims Delimiters
		want   []string
	}{
		{
			name:   "default keeps comma joined fields",
			line:   "Command Failed on: node-127,node-234",
			delims: DefaultDelimiters,
			want:   []string{"Command", "Failed", "on:", "node-127,node-234"},
		},
		{
			name:   "punctuation splits commas and slashes",
			line:   `Command Failed on: node-127,node-234 /var/log\app`,
			delims: PunctuationDelimiters,
			want:   []string{"Command", "Failed", "on:", "node-127", "node-234", "var", "log", "app"},
		},
		{
			name:   "repeated delimiters produce no empty tokens",
			line:   "a  b\t\tc",
			delims: DefaultDelimiters,
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "surrounding whitespace is trimmed",
			line:   "   padded line \n",
			delims: NewDelimiters(' '),
			want:   []string{"padded", "line"},
		},
		{
			name:   "empty line",
			line:   "",
			delims: DefaultDelimiters,
			want:   []string{},
		},
		{
			name:   "blank line",
			line:   " \t ",
			delims: DefaultDelimiters,
			want:   []string{},
		},
		{
			name:   "default splits every unicode space",
			line:   "a\vb\fc\rd\u00a0e\u2003f",
			delims: DefaultDelimiters,
			want:   []string{"a", "b", "c", "d", "e", "f"},
		},
		{
			name:   "default keeps punctuation inside tokens",
			line:   "path=/var/log\\app,x;y",
			delims: DefaultDelimiters,
			want:   []string{"path=/var/log\\app,x;y"},
		},
		{
			name:   "explicit space set ignores other whitespace",
			line:   "a\u00a0b c",
			delims: NewDelimiters(' '),
			want:   []string{"a\u00a0b", "c"},
		},
		{
			name:   "custom set keeps spaces inside tokens",
			line:   "a b,c d",
			delims: NewDelimiters(','),
			want:   []string{"a b", "c d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line, tt.delims)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []rune
		wantErr bool
	}{
		{"plain runes", ",;", []rune{',', ';'}, false},
		{"space escape", `\s,`, []rune{' ', ','}, false},
		{"tab escape", `\t`, []rune{'\t'}, false},
		{"backslash escape", `\\/`, []rune{'\\', '/'}, false},
		{"trailing backslash is literal", `,\`, []rune{',', '\\'}, false},
		{"duplicates collapse", ",,", []rune{','}, false},
		{"whitespace escape lists no runes", `\u,`, []rune{','}, false},
		{"unknown escape", `\q`, nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDelimiters(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDelimiters(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got.Runes()); diff != "" {
				t.Errorf("ParseDelimiters(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseDelimitersWhitespace(t *testing.T) {
	d, err := ParseDelimiters(`\u`)
	if err != nil {
		t.Fatalf("ParseDelimiters() error = %v", err)
	}
	if d != DefaultDelimiters {
		t.Errorf("ParseDelimiters(%q) = %q, want the default set", `\u`, d.String())
	}
	if !d.Whitespace() || !d.Contains('\u00a0') || d.Contains(',') {
		t.Errorf("ParseDelimiters(%q) does not match exactly Unicode whitespace", `\u`)
	}

	plain, _ := ParseDelimiters(`\s`)
	if plain.Whitespace() || plain.Contains('\v') {
		t.Errorf("ParseDelimiters(%q) should only contain a space", `\s`)
	}
}

func TestDelimitersStringRoundTrip(t *testing.T) {
	for _, d := range []Delimiters{DefaultDelimiters, PunctuationDelimiters, NewDelimiters(';')} {
		parsed, err := ParseDelimiters(d.String())
		if err != nil {
			t.Fatalf("ParseDelimiters(%q) error = %v", d.String(), err)
		}
		if parsed != d {
			t.Errorf("round trip of %q = %q", d.String(), parsed.String())
		}
	}
}
