package looper

import (
	"errors"
	"testing"
)

func positions(t *testing.T, seq any) []*Pos {
	t.Helper()

	l, err := New(seq)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out []*Pos

	for pair := range l.All() {
		p, ok := pair.([]any)
		if !ok || len(p) != 2 {
			t.Fatalf("All() yielded %#v, want a pair", pair)
		}

		pos, ok := p[0].(*Pos)
		if !ok {
			t.Fatalf("All() yielded %T, want *Pos", p[0])
		}

		if pos.Item != p[1] {
			t.Errorf("Pos.Item = %v, want %v", pos.Item, p[1])
		}

		out = append(out, pos)
	}

	return out
}

func TestLooper(t *testing.T) {
	seq := []string{"apple", "asparagus", "Banana", "orange"}

	got := positions(t, seq)
	if len(got) != len(seq) {
		t.Fatalf("len = %d, want %d", len(got), len(seq))
	}

	for i, p := range got {
		if p.Number != i+1 || p.Index != i {
			t.Errorf("pos %d: Number = %d, Index = %d", i, p.Number, p.Index)
		}

		if p.Item != seq[i] {
			t.Errorf("pos %d: Item = %v, want %v", i, p.Item, seq[i])
		}

		if p.Length != len(seq) {
			t.Errorf("pos %d: Length = %d, want %d", i, p.Length, len(seq))
		}

		if p.First != (i == 0) || p.Last != (i == len(seq)-1) {
			t.Errorf("pos %d: First = %v, Last = %v", i, p.First, p.Last)
		}

		if p.Odd != (i%2 == 0) || p.Even == p.Odd {
			t.Errorf("pos %d: Odd = %v, Even = %v", i, p.Odd, p.Even)
		}
	}

	if got[0].Previous != nil || got[0].Next != "asparagus" {
		t.Errorf("first: Previous = %v, Next = %v", got[0].Previous, got[0].Next)
	}

	if got[3].Previous != "Banana" || got[3].Next != nil {
		t.Errorf("last: Previous = %v, Next = %v", got[3].Previous, got[3].Next)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		seq  any
		want int
		err  bool
	}{
		{name: "slice", seq: []int{1, 2, 3}, want: 3},
		{name: "array", seq: [2]string{"a", "b"}, want: 2},
		{name: "string", seq: "héllo", want: 5},
		{name: "any slice", seq: []any{}, want: 0},
		{name: "int", seq: 7, err: true},
		{name: "nil", seq: nil, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.seq)
			if tt.err {
				if !errors.Is(err, ErrNotSequence) {
					t.Fatalf("New() error = %v, want ErrNotSequence", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			if l.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", l.Len(), tt.want)
			}
		})
	}
}

type fruit struct {
	Name  string
	Color string `expr:"color"`
}

func (f fruit) Initial() string { return f.Name[:1] }

func TestGroups(t *testing.T) {
	fruits := []fruit{
		{Name: "apple", Color: "red"},
		{Name: "avocado", Color: "green"},
		{Name: "banana", Color: "yellow"},
		{Name: "cherry", Color: "red"},
	}

	tests := []struct {
		name      string
		seq       any
		getter    any
		wantFirst []bool
		wantLast  []bool
	}{
		{
			name:      "item",
			seq:       []int{1, 1, 2, 2, 2, 3},
			wantFirst: []bool{true, false, true, false, false, true},
			wantLast:  []bool{false, true, false, false, true, true},
		},
		{
			name:      "method",
			seq:       fruits,
			getter:    ".Initial()",
			wantFirst: []bool{true, false, true, true},
			wantLast:  []bool{false, true, true, true},
		},
		{
			name:      "tagged field",
			seq:       fruits,
			getter:    ".color",
			wantFirst: []bool{true, true, true, true},
			wantLast:  []bool{true, true, true, true},
		},
		{
			name:      "func",
			seq:       []string{"a", "ab", "b", "bc"},
			getter:    func(s string) int { return len(s) },
			wantFirst: []bool{true, true, true, true},
			wantLast:  []bool{true, true, true, true},
		},
		{
			name:      "map key",
			seq:       []map[string]int{{"k": 1}, {"k": 1}, {"k": 2}},
			getter:    "k",
			wantFirst: []bool{true, false, true},
			wantLast:  []bool{false, true, true},
		},
		{
			name:      "index",
			seq:       [][]int{{0, 1}, {0, 2}, {1, 2}},
			getter:    0,
			wantFirst: []bool{true, false, true},
			wantLast:  []bool{false, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, p := range positions(t, tt.seq) {
				first, err := p.FirstGroup(tt.getter)
				if err != nil {
					t.Fatalf("FirstGroup() error = %v", err)
				}

				last, err := p.LastGroup(tt.getter)
				if err != nil {
					t.Fatalf("LastGroup() error = %v", err)
				}

				if first != tt.wantFirst[i] {
					t.Errorf("pos %d: FirstGroup() = %v, want %v", i, first, tt.wantFirst[i])
				}

				if last != tt.wantLast[i] {
					t.Errorf("pos %d: LastGroup() = %v, want %v", i, last, tt.wantLast[i])
				}
			}
		})
	}
}

func TestGroupErrors(t *testing.T) {
	p := positions(t, []int{1, 2})[1]

	for _, getter := range []any{".Missing", ".Missing()", "key", func(a, b int) int { return a }} {
		if _, err := p.FirstGroup(getter); err == nil {
			t.Errorf("FirstGroup(%#v) error = nil, want error", getter)
		}
	}
}
