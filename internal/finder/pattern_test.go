package finder

import "testing"

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantKind Kind
		wantErr bool
	}{
		{"plain wildcard", "*.go", KindWildcard, false},
		{"regex prefix", "r:^foo.*bar$", KindRegex, false},
		{"escaped regex prefix is literal wildcard", `\r:foo`, KindWildcard, false},
		{"invalid regex", "r:(unclosed", KindRegex, true},
		{"empty alternative", "*.go;;*.txt", KindWildcard, true},
		{"unknown escape", `foo\qbar`, KindWildcard, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got none", tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.pattern, err)
			}
			if expr.Kind() != tt.wantKind {
				t.Errorf("Parse(%q).Kind() = %v, want %v", tt.pattern, expr.Kind(), tt.wantKind)
			}
		})
	}
}

func TestParseEscapedLiteral(t *testing.T) {
	expr, err := Parse(`\r:literal`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Kind() != KindWildcard {
		t.Fatalf("expected wildcard kind")
	}
	f := NewFinder(expr, true).(*WildcardFinder)
	if !f.Matches("r:literal") {
		t.Errorf("expected escaped pattern to match literal %q", "r:literal")
	}
}

func TestSplitAlternativesEscaping(t *testing.T) {
	expr, err := Parse(`a\;b;c`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := NewFinder(expr, true).(*WildcardFinder)
	if !f.Matches("a;b") {
		t.Errorf("expected %q to match escaped semicolon alternative", "a;b")
	}
	if !f.Matches("c") {
		t.Errorf("expected second alternative %q to match", "c")
	}
}
