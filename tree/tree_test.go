package tree

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Node
		wantErr bool
	}{
		{
			name: "simple",
			line: "((SENT (NP (DET le) (N chat)) (VN (V dort))))",
			want: &Node{Label: "SENT", Children: []*Node{
				{Label: "NP", Children: []*Node{
					{Label: "DET", Word: "le"},
					{Label: "N", Word: "chat"},
				}},
				{Label: "VN", Children: []*Node{
					{Label: "V", Word: "dort"},
				}},
			}},
		},
		{
			name:    "missing wrapper",
			line:    "(SENT (NP (DET le)))",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			line:    "((SENT (NP (DET le))",
			wantErr: true,
		},
		{
			name:    "trailing garbage",
			line:    "((SENT (DET le))) extra",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = nil error, want error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestBracketRoundTrip(t *testing.T) {
	line := "((SENT (NP (DET le) (N chat)) (VN (V dort))))"
	n, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := "(SENT (NP (DET le) (N chat)) (VN (V dort)))"
	if got := n.Bracket(); got != want {
		t.Errorf("Bracket() = %q, want %q", got, want)
	}
}
