package runner

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestFormatJSON(t *testing.T) {
	s := testService(t, Config{})

	res, err := s.Format(`{"b":1,"a":2}`, JSON)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	want := "{\n  \"b\": 1,\n  \"a\": 2\n}"
	if res.Code != want {
		t.Errorf("code = %q, want %q", res.Code, want)
	}
	if len(res.Changes) != 1 || res.Changes[0] != "Formatted JSON with proper indentation" {
		t.Errorf("changes = %v", res.Changes)
	}
}

func TestFormatJSONRoundTrip(t *testing.T) {
	s := testService(t, Config{})

	original := `{"name":"x","nested":{"list":[1,2,3],"ok":true}}`
	res, err := s.Format(original, JSON)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var before, after any
	if err := json.Unmarshal([]byte(original), &before); err != nil {
		t.Fatalf("unmarshal original: %v", err)
	}
	if err := json.Unmarshal([]byte(res.Code), &after); err != nil {
		t.Fatalf("unmarshal formatted: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("formatting changed the value: %v != %v", before, after)
	}
}

func TestFormatJSONMalformed(t *testing.T) {
	s := testService(t, Config{})

	// Format is the one operation allowed to fail hard.
	if _, err := s.Format(`{"broken":`, JSON); err == nil {
		t.Fatal("expected parser error for malformed JSON")
	}
}

func TestFormatJavaScript(t *testing.T) {
	s := testService(t, Config{})

	res, err := s.Format("const x = 1", JavaScript)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if res.Code != "const x = 1;" {
		t.Errorf("code = %q, want trailing semicolon", res.Code)
	}
	if len(res.Changes) != 1 {
		t.Errorf("changes = %v, want one entry", res.Changes)
	}

	for _, code := range []string{"const x = 1;", "function f() {}", ""} {
		res, err := s.Format(code, JavaScript)
		if err != nil {
			t.Fatalf("Format(%q): %v", code, err)
		}
		if res.Code != code || len(res.Changes) != 0 {
			t.Errorf("Format(%q) = %+v, want identity", code, res)
		}
	}
}

func TestFormatHTML(t *testing.T) {
	s := testService(t, Config{})

	res, err := s.Format("<div><p>x</p></div>", HTML)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if res.Code != "<div>\n<p>x</p>\n</div>" {
		t.Errorf("code = %q", res.Code)
	}
	if len(res.Changes) != 1 {
		t.Errorf("changes = %v", res.Changes)
	}
}

func TestFormatCSS(t *testing.T) {
	s := testService(t, Config{})

	res, err := s.Format("body{color:red;}", CSS)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if res.Code != "body {\ncolor:red;\n}" {
		t.Errorf("code = %q", res.Code)
	}
	if len(res.Changes) != 2 {
		t.Errorf("changes = %v, want both brace normalizations", res.Changes)
	}
}

func TestFormatIdempotent(t *testing.T) {
	s := testService(t, Config{})

	cases := map[Language]string{
		JSON:       `{"b":1,"a":[true,null]}`,
		HTML:       "<ul><li>a</li><li>b</li></ul>",
		CSS:        "h1{font-size:2rem;}\np { margin: 0; }",
		JavaScript: "let n = 1",
	}

	for lang, code := range cases {
		first, err := s.Format(code, lang)
		if err != nil {
			t.Fatalf("Format(%s) first pass: %v", lang, err)
		}
		second, err := s.Format(first.Code, lang)
		if err != nil {
			t.Fatalf("Format(%s) second pass: %v", lang, err)
		}
		if len(second.Changes) != 0 {
			t.Errorf("Format(%s) not idempotent: second pass changes = %v", lang, second.Changes)
		}
		if second.Code != first.Code {
			t.Errorf("Format(%s) second pass altered code:\n%q\n%q", lang, first.Code, second.Code)
		}
	}
}

func TestFormatIdentityLanguages(t *testing.T) {
	s := testService(t, Config{})

	for _, lang := range []Language{TypeScript, Python, Markdown} {
		code := "anything at all"
		res, err := s.Format(code, lang)
		if err != nil {
			t.Fatalf("Format(%s): %v", lang, err)
		}
		if res.Code != code || len(res.Changes) != 0 {
			t.Errorf("Format(%s) should be identity, got %+v", lang, res)
		}
	}
}

func TestFormatUnknownLanguage(t *testing.T) {
	s := testService(t, Config{})

	_, err := s.Format("x", "pascal")
	if err == nil || !strings.Contains(err.Error(), "unsupported language") {
		t.Errorf("err = %v, want unsupported-language error", err)
	}
}
