package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestExecuteJavaScript(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `console.log("hi"); 2+2`,
		Language: JavaScript,
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Output != "hi\n4" {
		t.Errorf("output = %q, want %q", res.Output, "hi\n4")
	}
	if res.Language != JavaScript {
		t.Errorf("language = %q, want %q", res.Language, JavaScript)
	}
	if res.ExecutionTimeMs < 0 {
		t.Errorf("execution time = %d, want >= 0", res.ExecutionTimeMs)
	}
}

func TestExecuteConsoleLevels(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `console.log("a"); console.warn("b"); console.error("c"); console.info("d"); console.debug("e")`,
		Language: JavaScript,
	})

	want := "a\n[warn] b\n[error] c\n[info] d\n[debug] e"
	if res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
}

func TestExecuteObjectFormatting(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `console.log(null, undefined); ({value: 1})`,
		Language: JavaScript,
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	lines := strings.SplitN(res.Output, "\n", 2)
	if lines[0] != "null undefined" {
		t.Errorf("first line = %q, want %q", lines[0], "null undefined")
	}
	if len(lines) < 2 || !strings.Contains(lines[1], `"value": 1`) {
		t.Errorf("expected indented object serialization, got %q", res.Output)
	}
}

func TestExecuteInputBinding(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `input.toUpperCase()`,
		Language: JavaScript,
		Input:    "hello",
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Output != "HELLO" {
		t.Errorf("output = %q, want %q", res.Output, "HELLO")
	}
}

func TestExecuteRuntimeFaultPreservesOutput(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `console.log("before"); missing()`,
		Language: JavaScript,
	})

	if res.Success {
		t.Fatal("expected failure for undefined function call")
	}
	if res.Output != "before" {
		t.Errorf("partial output = %q, want %q", res.Output, "before")
	}
	if !strings.Contains(res.Error, "missing") {
		t.Errorf("error = %q, want mention of the missing identifier", res.Error)
	}
}

func TestExecuteTimeout(t *testing.T) {
	s := testService(t, Config{ExecutionTimeout: 100 * time.Millisecond})

	start := time.Now()
	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `console.log("spinning"); while(true){}`,
		Language: JavaScript,
	})
	elapsed := time.Since(start)

	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("error = %q, want timeout indication", res.Error)
	}
	if res.Output != "spinning" {
		t.Errorf("partial output = %q, want %q", res.Output, "spinning")
	}
	if elapsed > 2*time.Second {
		t.Errorf("execution took %s, want prompt abort after the 100ms budget", elapsed)
	}
}

func TestExecuteContextCancellation(t *testing.T) {
	s := testService(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := s.Execute(ctx, ExecutionRequest{
		Code:     `while(true){}`,
		Language: JavaScript,
	})

	if res.Success {
		t.Fatal("expected failure after context deadline")
	}
}

func TestExecuteIsolation(t *testing.T) {
	s := testService(t, Config{})

	// None of these host-reaching primitives exist inside the sandbox; each
	// attempt must fail as a runtime fault, never succeed.
	for _, code := range []string{
		`require("fs")`,
		`process.exit(1)`,
		`fetch("http://example.com")`,
		`eval("1+1")`,
		`new Function("return 1")()`,
	} {
		res := s.Execute(context.Background(), ExecutionRequest{Code: code, Language: JavaScript})
		if res.Success {
			t.Errorf("Execute(%q) succeeded, want runtime fault", code)
		}
	}
}

func TestExecuteDeterminism(t *testing.T) {
	s := testService(t, Config{})

	req := ExecutionRequest{
		Code:     `var total = 0; for (var i = 1; i <= 10; i++) { total += i } console.log(total); total`,
		Language: JavaScript,
	}

	first := s.Execute(context.Background(), req)
	second := s.Execute(context.Background(), req)

	if first.Output != second.Output || first.Success != second.Success {
		t.Errorf("non-deterministic results: %+v vs %+v", first, second)
	}
	if first.Output != "55\n55" {
		t.Errorf("output = %q, want %q", first.Output, "55\n55")
	}
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{Code: "x", Language: "cobol"})

	if res.Success {
		t.Fatal("expected failure for unknown language")
	}
	if !strings.Contains(res.Error, "unsupported language") {
		t.Errorf("error = %q, want unsupported-language message", res.Error)
	}
}

func TestExecuteCodeTooLong(t *testing.T) {
	s := testService(t, Config{MaxCodeLength: 10})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     strings.Repeat("a", 11),
		Language: JavaScript,
	})

	if res.Success {
		t.Fatal("expected failure for oversized source")
	}
	if !strings.Contains(res.Error, "maximum length") {
		t.Errorf("error = %q, want length-limit message", res.Error)
	}
}

func TestExecuteTypeScript(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     "const n: number = 21;\nconsole.log(n * 2)",
		Language: TypeScript,
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if res.Output != "42" {
		t.Errorf("output = %q, want %q", res.Output, "42")
	}
}

func TestExecutePythonStub(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `print("hi")`,
		Language: Python,
		Input:    "stdin-ish",
	})

	if !res.Success {
		t.Fatalf("python stub must report success, got error: %s", res.Error)
	}
	if !strings.HasPrefix(res.Output, pythonNotice) {
		t.Errorf("output should begin with the fixed notice, got %q", res.Output)
	}
	if !strings.Contains(res.Output, `print("hi")`) {
		t.Errorf("output should echo the code, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "stdin-ish") {
		t.Errorf("output should echo the input, got %q", res.Output)
	}
}

func TestExecuteJSON(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{
		Code:     `{"b":1,"a":2}`,
		Language: JSON,
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	want := "{\n  \"b\": 1,\n  \"a\": 2\n}"
	if res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
}

func TestExecuteJSONInvalid(t *testing.T) {
	s := testService(t, Config{})

	res := s.Execute(context.Background(), ExecutionRequest{Code: "{", Language: JSON})

	if res.Success {
		t.Fatal("expected parse failure")
	}
	if res.Error == "" {
		t.Fatal("expected parser message in error")
	}
}

func TestExecuteMarkupPreview(t *testing.T) {
	s := testService(t, Config{})

	for _, lang := range []Language{HTML, CSS, Markdown} {
		res := s.Execute(context.Background(), ExecutionRequest{Code: "content", Language: lang})
		if !res.Success {
			t.Errorf("Execute(%s) failed: %s", lang, res.Error)
			continue
		}
		if !strings.HasPrefix(res.Output, "```"+string(lang)+"\n") {
			t.Errorf("Execute(%s) output = %q, want fenced preview", lang, res.Output)
		}
		if !strings.Contains(res.Output, "content") {
			t.Errorf("Execute(%s) output should contain the source", lang)
		}
	}
}

func TestListLanguages(t *testing.T) {
	s := testService(t, Config{})

	infos := s.ListLanguages()
	if len(infos) != len(Languages) {
		t.Fatalf("ListLanguages returned %d entries, want %d", len(infos), len(Languages))
	}
	for i, info := range infos {
		if info.ID != Languages[i] {
			t.Errorf("entry %d = %q, want %q", i, info.ID, Languages[i])
		}
		if info.Name == "" || info.Version == "" || info.Icon == "" {
			t.Errorf("entry %q has empty descriptor fields: %+v", info.ID, info)
		}
	}
}

func TestTemplate(t *testing.T) {
	s := testService(t, Config{})

	for _, lang := range Languages {
		snippet, err := s.Template(lang)
		if err != nil {
			t.Errorf("Template(%s): %v", lang, err)
		}
		if snippet == "" {
			t.Errorf("Template(%s) is empty", lang)
		}
	}

	if _, err := s.Template("cobol"); err == nil {
		t.Error("Template for unknown language should fail")
	}
}

func TestParseLanguage(t *testing.T) {
	if lang, err := ParseLanguage(" JavaScript "); err != nil || lang != JavaScript {
		t.Errorf("ParseLanguage = %q, %v", lang, err)
	}
	if _, err := ParseLanguage("brainfuck"); err == nil {
		t.Error("ParseLanguage should reject unknown identifiers")
	}
}
