package binding

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("json: %v", err)
	}
	return v
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada","tags":["x","y"]},"count":3,"ratio":0.25}`)
	cases := map[string]string{
		"Hello ${user.name}":           "Hello Ada",
		"${ user.tags[1] }":            "y",
		"n=${count} r=${ratio}":        "n=3 r=0.25",
		"missing ${user.age} stays":    "missing ${user.age} stays",
		"out of range ${user.tags[5]}": "out of range ${user.tags[5]}",
		"no placeholders":              "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Errorf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Errorf("nil data should leave placeholders, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	data := decode(t, `{"load":[{"label":"cpu","value":1}],"grid":[[1,2],[3,4]]}`)
	if v, ok := Lookup(data, "load[0].label"); !ok || v != "cpu" {
		t.Fatalf("load[0].label = %v, %v", v, ok)
	}
	if v, ok := Lookup(data, "grid[1][0]"); !ok || v != 3.0 {
		t.Fatalf("grid[1][0] = %v, %v", v, ok)
	}
	for _, path := range []string{"", "load.", "load[x]", "nope", "load[0].label.deeper"} {
		if _, ok := Lookup(data, path); ok {
			t.Errorf("Lookup(%q) should fail", path)
		}
	}
}
