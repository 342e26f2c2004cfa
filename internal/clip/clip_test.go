package clip

import (
	"reflect"
	"testing"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		name  string
		block [][]string
		want  string
	}{
		{
			name:  "single cell",
			block: [][]string{{"a"}},
			want:  "a",
		},
		{
			name:  "rectangle",
			block: [][]string{{"a", "b"}, {"c", "d"}},
			want:  "a\tb\nc\td",
		},
		{
			name:  "empty cells preserved",
			block: [][]string{{"", "x", ""}},
			want:  "\tx\t",
		},
		{
			name:  "tabs and newlines flattened",
			block: [][]string{{"a\tb", "c\nd"}},
			want:  "a b\tc d",
		},
		{
			name:  "crlf flattened to one space",
			block: [][]string{{"a\r\nb"}},
			want:  "a b",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Encode(tc.block); got != tc.want {
				t.Errorf("Encode(%v) = %q, want %q", tc.block, got, tc.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "rectangle",
			text: "a\tb\nc\td",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "trailing newline dropped",
			text: "a\tb\n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "crlf line endings",
			text: "a\tb\r\nc\td\r\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "empty cells",
			text: "\tx\t",
			want: [][]string{{"", "x", ""}},
		},
		{
			name: "ragged rows kept ragged",
			text: "a\tb\tc\nd",
			want: [][]string{{"a", "b", "c"}, {"d"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decode(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Decode(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	block := [][]string{
		{"name", "note", ""},
		{"alice", "likes spaces", "x"},
	}
	if got := Decode(Encode(block)); !reflect.DeepEqual(got, block) {
		t.Errorf("round trip = %v, want %v", got, block)
	}
}
