package main

import "testing"

func TestParseBounds(t *testing.T) {
	b, err := parseBounds("-5,5,0,12.5")
	if err != nil {
		t.Fatalf("parseBounds: %v", err)
	}
	if b.XMin != -5 || b.XMax != 5 || b.YMin != 0 || b.YMax != 12.5 {
		t.Errorf("got %+v", b)
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := parseBounds(bad); err == nil {
			t.Errorf("parseBounds(%q) should fail", bad)
		}
	}
}

func TestDefaultOutputName(t *testing.T) {
	cases := map[string]string{
		"scans/back yard.asc": "back_yard-yardmap.png",
		"cloud.asc":           "cloud-yardmap.png",
		"":                    "unknown-yardmap.png",
	}
	for in, want := range cases {
		if got := defaultOutputName(in); got != want {
			t.Errorf("defaultOutputName(%q) = %q, want %q", in, got, want)
		}
	}
}
