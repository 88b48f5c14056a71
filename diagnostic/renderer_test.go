// Copyright © 2024 The moqls authors

package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, errors.New("not found: " + name)
			}
			return []byte(s), nil
		},
	}
}

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

const fooTests = `var mock = new Mock<IFoo>();
mock.Setup(x => x.Do(1, "a")).Callback((string a) => { });
mock.Setup(x => x.Run("b")).Callback((int n, int m) => { });`

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{"FooTests.cs": fooTests})

	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Code:     "callback-type",
		Message:  "callback parameter 1 is string, but the mocked method passes int",
		Spans: []Span{
			{File: "FooTests.cs", Line: 2, Col: 41, EndCol: 46, Label: "expected int"},
		},
	})

	assert.Contains(t, got, "warning[callback-type]: callback parameter 1 is string, but the mocked method passes int")
	assert.Contains(t, got, "--> FooTests.cs:2:41")
	assert.Contains(t, got, `mock.Setup(x => x.Do(1, "a")).Callback((string a) => { });`)
	assert.Contains(t, got, strings.Repeat(" ", 40)+"^^^^^^ expected int")
}

func TestRenderNoCode(t *testing.T) {
	r := testRenderer(nil)
	got := render(t, r, Diagnostic{Severity: SeverityError, Message: "cannot read FooTests.cs"})
	assert.True(t, strings.HasPrefix(got, "error: cannot read FooTests.cs\n"), got)
	assert.NotContains(t, got, "-->")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)

	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans:    []Span{{File: "<stdin>", Line: 5, Col: 3}},
	})

	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderLineOutOfRange(t *testing.T) {
	r := testRenderer(map[string]string{"FooTests.cs": fooTests})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "stale position",
		Spans:    []Span{{File: "FooTests.cs", Line: 40, Col: 1}},
	})
	assert.NotContains(t, got, "^")
}

func TestRenderNotesAndHelp(t *testing.T) {
	r := testRenderer(map[string]string{"FooTests.cs": fooTests})

	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Code:     "callback-arity",
		Message:  "callback should take 1 parameter to match the mocked method, but takes 2",
		Spans:    []Span{{File: "FooTests.cs", Line: 3, Col: 38}},
		Notes:    []string{"a callback may also take no parameters"},
		Help:     "(string name)",
	})

	assert.Contains(t, got, "= note: a callback may also take no parameters")
	assert.Contains(t, got, "= help: (string name)")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	tests := []struct {
		name string
		line string
		col  int
		want string
	}{
		{"identifier", "Callback((string a) => { });", 11, "^^^^^^"},
		{"stops at generic", "new Mock<IFoo>();", 5, "^^^^"},
		{"stops at member access", "mock.Setup(x => x.Run());", 1, "^^^^"},
		{"punctuation", "Callback((string a) => { });", 9, "^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRenderer(map[string]string{"a.cs": tt.line})
			got := render(t, r, Diagnostic{
				Severity: SeverityWarning,
				Message:  "m",
				Spans:    []Span{{File: "a.cs", Line: 1, Col: tt.col}},
			})
			underline := strings.Repeat(" ", tt.col-1) + tt.want + "\n"
			assert.Contains(t, got, underline)
			assert.NotContains(t, got, tt.want+"^")
		})
	}
}

func TestRenderTabs(t *testing.T) {
	r := testRenderer(map[string]string{"a.cs": "\tmock.Verify();"})
	got := render(t, r, Diagnostic{
		Severity: SeverityNote,
		Message:  "m",
		Spans:    []Span{{File: "a.cs", Line: 1, Col: 2, EndCol: 5}},
	})
	assert.Contains(t, got, "      mock.Verify();")
	assert.Contains(t, got, "      ^^^^\n")
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 5, displayWidth("a\t"))
	assert.Equal(t, 4, displayWidth("日本"))
	assert.Equal(t, 7, displayWidth("Mock<T>"))
}

func TestRenderCachesSources(t *testing.T) {
	reads := 0
	r := &Renderer{
		Color: ColorNever,
		SourceReader: func(string) ([]byte, error) {
			reads++
			return []byte(fooTests), nil
		},
	}
	diags := []Diagnostic{
		{Severity: SeverityWarning, Message: "first", Spans: []Span{{File: "FooTests.cs", Line: 2, Col: 1}}},
		{Severity: SeverityWarning, Message: "second", Spans: []Span{{File: "FooTests.cs", Line: 3, Col: 1}}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	assert.Equal(t, 1, reads)

	parts := strings.Split(buf.String(), "\n\n")
	assert.Len(t, parts, 2)
	assert.Contains(t, parts[0], "first")
	assert.Contains(t, parts[1], "second")
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityError, Code: "callback-arity", Message: "m"})
	assert.Contains(t, got, "\033[1;31m")
	assert.Contains(t, got, "error[callback-arity]")
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "ALWAYS": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "note", SeverityNote.String())
	assert.Equal(t, "help", SeverityHelp.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
