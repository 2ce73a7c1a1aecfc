package engine

import (
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"
)

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"simple keyword",
			`(abenics :teeth 20)`,
			`(abenics "__kw_teeth" 20)`,
		},
		{
			"hyphenated keyword",
			`(abenics :pressure-angle 20)`,
			`(abenics "__kw_pressure-angle" 20)`,
		},
		{
			"keyword inside string untouched",
			`(abenics :name "keep :this")`,
			`(abenics "__kw_name" "keep :this")`,
		},
		{
			"escaped quote in string",
			`(f "a\"b" :k 1)`,
			`(f "a\"b" "__kw_k" 1)`,
		},
		{
			"semicolon comment",
			"; hello\n(f 1)",
			"// hello\n(f 1)",
		},
		{
			"double semicolon comment",
			";; hello\n(f 1)",
			"// hello\n(f 1)",
		},
		{
			"semicolon inside string untouched",
			`(f "a;b")`,
			`(f "a;b")`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := preprocessSource(tc.in); got != tc.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsKW(t *testing.T) {
	if name, ok := isKW(&zygo.SexpStr{S: kwPrefix + "teeth"}); !ok || name != "teeth" {
		t.Errorf("isKW keyword string: name=%q ok=%v", name, ok)
	}
	if _, ok := isKW(&zygo.SexpStr{S: "plain"}); ok {
		t.Error("plain string recognized as keyword")
	}
	if _, ok := isKW(&zygo.SexpInt{Val: 3}); ok {
		t.Error("integer recognized as keyword")
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpStr{S: kwPrefix + "teeth"},
		&zygo.SexpInt{Val: 20},
		&zygo.SexpStr{S: kwPrefix + "name"},
		&zygo.SexpStr{S: "demo"},
		&zygo.SexpStr{S: kwPrefix + "flag"},
	}
	pa := parseArgs(args)

	if v, ok := pa.kw["teeth"]; !ok {
		t.Error("teeth missing")
	} else if n, err := toInt(v); err != nil || n != 20 {
		t.Errorf("teeth = %v (%v)", n, err)
	}
	if v, ok := pa.kw["name"]; !ok {
		t.Error("name missing")
	} else if s, err := toString(v); err != nil || s != "demo" {
		t.Errorf("name = %q (%v)", s, err)
	}
	if v, ok := pa.kw["flag"]; !ok || v != zygo.SexpNull {
		t.Errorf("trailing flag = %v, want SexpNull", v)
	}
}

func TestNumericCoercions(t *testing.T) {
	if f, err := toFloat64(&zygo.SexpInt{Val: 7}); err != nil || f != 7 {
		t.Errorf("toFloat64(int) = %v, %v", f, err)
	}
	if f, err := toFloat64(&zygo.SexpFloat{Val: 2.5}); err != nil || f != 2.5 {
		t.Errorf("toFloat64(float) = %v, %v", f, err)
	}
	if _, err := toFloat64(&zygo.SexpStr{S: "x"}); err == nil {
		t.Error("toFloat64(string) should fail")
	}
	if _, err := toInt(&zygo.SexpFloat{Val: 2.5}); err == nil {
		t.Error("toInt(float) should fail")
	}
	if _, err := toString(&zygo.SexpInt{Val: 1}); err == nil {
		t.Error("toString(int) should fail")
	}
}

func TestDefaultJobSane(t *testing.T) {
	job := defaultJob()
	if job.Name == "" {
		t.Error("default job has no name")
	}
	if job.Params.Module <= 0 || job.Params.TeethDrive < 4 || job.Params.Steps < 4 {
		t.Errorf("default params out of range: %+v", job.Params)
	}
	if strings.Contains(job.Name, " ") {
		t.Errorf("default name %q is not filename safe", job.Name)
	}
}
