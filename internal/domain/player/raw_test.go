package player

import "testing"

func TestFormatID(t *testing.T) {
	cases := []struct {
		in     any
		want   string
		wantOK bool
	}{
		{nil, "", false},
		{"", "", false},
		{"  ", "", false},
		{" 281 ", "281", true},
		{float64(281), "281", true},
		{float64(0), "0", true},
		{1.5, "1.5", true},
		{true, "", false},
		{[]any{1}, "", false},
	}
	for _, tc := range cases {
		got, ok := FormatID(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("FormatID(%#v): want (%q, %v), got (%q, %v)", tc.in, tc.want, tc.wantOK, got, ok)
		}
	}
}

func TestRaw_Text(t *testing.T) {
	raw := Raw{"name": "Bukayo Saka", "position": nil, "shirt": float64(7)}

	if got := raw.Text("name", "N/A"); got != "Bukayo Saka" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := raw.Text("position", "N/A"); got != "N/A" {
		t.Fatalf("null should use fallback, got %q", got)
	}
	if got := raw.Text("missing", "N/A"); got != "N/A" {
		t.Fatalf("missing should use fallback, got %q", got)
	}
	if got := raw.Text("shirt", "N/A"); got != "7" {
		t.Fatalf("numbers should render, got %q", got)
	}
}
