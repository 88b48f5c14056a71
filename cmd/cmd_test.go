// Copyright © 2024 The moqls authors

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/rjmurillo/moq.autocomplete/lint"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooTests = `using System;
using Moq;

namespace App
{
    public interface IFoo
    {
        int Do(int a, string b);
    }

    public class FooTests
    {
        public void Test()
        {
            var mock = new Mock<IFoo>();
            mock.Setup(x => x.Do(1, "a")).Callback((int a) => { });
        }
    }
}
`

var cleanTests = strings.Replace(fooTests, "Callback((int a)", "Callback((int a, string b)", 1)

type output struct {
	stdout, stderr bytes.Buffer
}

// run executes a command built by factory with the default configuration.
func run(t *testing.T, factory func(...Option) *cobra.Command, stdin string, args ...string) (*output, error) {
	t.Helper()
	out := &output{}
	c := factory(WithConfig(config.Default()), WithOutput(&out.stdout, &out.stderr))
	c.SetArgs(args)
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(&out.stdout)
	c.SetErr(&out.stderr)
	return out, c.Execute()
}

func TestLint_Findings(t *testing.T) {
	dir := writeTree(t, map[string]string{"FooTests.cs": fooTests})
	out, err := run(t, LintCommand, "", filepath.Join(dir, "FooTests.cs"))
	require.ErrorIs(t, err, errFindings)
	assert.Empty(t, out.stdout.String())
	text := out.stderr.String()
	assert.Contains(t, text, "warning[callback-arity]: callback should take 2 parameters to match the mocked method, but takes 1")
	assert.Contains(t, text, "FooTests.cs:16:")
	assert.Contains(t, text, `"// nolint:callback-arity"`)
}

func TestLint_Clean(t *testing.T) {
	dir := writeTree(t, map[string]string{"FooTests.cs": cleanTests})
	out, err := run(t, LintCommand, "", dir+"/...")
	require.NoError(t, err)
	assert.Empty(t, out.stderr.String())
}

func TestLint_JSON(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a/FooTests.cs": fooTests,
		"b/BarTests.cs": fooTests,
		"c/Clean.cs":    cleanTests,
	})
	out, err := run(t, LintCommand, "", "--json", "-j", "2", dir+"/...")
	require.ErrorIs(t, err, errFindings)

	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal(out.stdout.Bytes(), &diags))
	require.Len(t, diags, 2)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(diags[0].Pos.File), "a/FooTests.cs"))
	assert.True(t, strings.HasSuffix(filepath.ToSlash(diags[1].Pos.File), "b/BarTests.cs"))
	for _, d := range diags {
		assert.Equal(t, "callback-arity", d.Analyzer)
		assert.Equal(t, lint.SeverityWarning, d.Severity)
		assert.Equal(t, 16, d.Pos.Line)
		assert.NotEmpty(t, d.Fingerprint)
	}
	assert.NotEqual(t, diags[0].Fingerprint, diags[1].Fingerprint)
}

func TestLint_Exclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"obj/FooTests.cs": fooTests,
		"Clean.cs":        cleanTests,
	})
	_, err := run(t, LintCommand, "", "--exclude", "obj", dir+"/...")
	assert.NoError(t, err)
}

func TestLint_Stdin(t *testing.T) {
	out, err := run(t, LintCommand, fooTests, "--json")
	require.ErrorIs(t, err, errFindings)
	assert.Contains(t, out.stdout.String(), `"file": "<stdin>"`)
}

func TestLint_Checks(t *testing.T) {
	_, err := run(t, LintCommand, fooTests, "--checks", "callback-type")
	assert.NoError(t, err)

	_, err = run(t, LintCommand, fooTests, "--checks", "callback-arity, nope")
	assert.ErrorContains(t, err, "unknown check: ")
}

func TestLint_List(t *testing.T) {
	out, err := run(t, LintCommand, "", "--list")
	require.NoError(t, err)
	assert.Equal(t, "callback-arity\ncallback-type\n", out.stdout.String())
}

func TestLint_MissingFile(t *testing.T) {
	_, err := run(t, LintCommand, "", filepath.Join(t.TempDir(), "Missing.cs"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, errFindings))
}

func TestComplete_Text(t *testing.T) {
	src := strings.Replace(fooTests, ".Callback((int a) => { })", ".Callback()", 1)
	dir := writeTree(t, map[string]string{"FooTests.cs": src})
	file := filepath.Join(dir, "FooTests.cs")
	offset := strings.Index(src, ".Callback(") + len(".Callback(")

	out, err := run(t, CompleteCommand, "", file, strconv.Itoa(offset))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "() => { }", lines[0][2:])
	assert.Equal(t, "(int a, string b) => { }", lines[1][2:])
	assert.Equal(t, 1, strings.Count(out.stdout.String(), "*"))

	// The same position as FILE:LINE:COL.
	line := strings.Count(src[:offset], "\n") + 1
	col := offset - strings.LastIndex(src[:offset], "\n")
	again, err := run(t, CompleteCommand, "", file+":"+strconv.Itoa(line)+":"+strconv.Itoa(col))
	require.NoError(t, err)
	assert.Equal(t, out.stdout.String(), again.stdout.String())
}

func TestComplete_ByteColumn(t *testing.T) {
	src := strings.Replace(fooTests, `mock.Setup(x => x.Do(1, "a")).Callback((int a) => { });`,
		`/* café 😀 */ mock.Setup(x => x.Do(1, "a")).Callback();`, 1)
	dir := writeTree(t, map[string]string{"FooTests.cs": src})
	file := filepath.Join(dir, "FooTests.cs")
	offset := strings.Index(src, ".Callback(") + len(".Callback(")
	line := strings.Count(src[:offset], "\n") + 1
	col := offset - strings.LastIndex(src[:offset], "\n")

	out, err := run(t, CompleteCommand, "", file+":"+strconv.Itoa(line)+":"+strconv.Itoa(col))
	require.NoError(t, err)
	assert.Equal(t, "  () => { }\n* (int a, string b) => { }\n", out.stdout.String())
}

func TestComplete_JSON(t *testing.T) {
	src := strings.Replace(fooTests, `x.Do(1, "a")).Callback((int a) => { })`, "x.Do()", 1)
	dir := writeTree(t, map[string]string{"FooTests.cs": src})
	offset := strings.Index(src, "x.Do(") + len("x.Do(")

	out, err := run(t, CompleteCommand, "", "--json", filepath.Join(dir, "FooTests.cs"), strconv.Itoa(offset))
	require.NoError(t, err)
	var got []completion
	require.NoError(t, json.Unmarshal(out.stdout.Bytes(), &got))
	require.NotEmpty(t, got)
	assert.Equal(t, "It.IsAny<int>(), It.IsAny<string>()", got[0].Text)
	assert.Equal(t, "matcher", got[0].Kind)
}

func TestComplete_BadPosition(t *testing.T) {
	dir := writeTree(t, map[string]string{"FooTests.cs": fooTests})
	file := filepath.Join(dir, "FooTests.cs")
	_, err := run(t, CompleteCommand, "", file, "x")
	assert.ErrorContains(t, err, "invalid offset")
	_, err = run(t, CompleteCommand, "", file, "0:3")
	assert.ErrorContains(t, err, "invalid line")
	_, err = run(t, CompleteCommand, "", file)
	assert.ErrorContains(t, err, "want FILE POSITION")
}

func TestSplitPosition(t *testing.T) {
	tests := []struct {
		args      []string
		file, pos string
		wantErr   bool
	}{
		{args: []string{"Foo.cs", "42"}, file: "Foo.cs", pos: "42"},
		{args: []string{"Foo.cs:3:7"}, file: "Foo.cs", pos: "3:7"},
		{args: []string{`C:\src\Foo.cs:3:7`}, file: `C:\src\Foo.cs`, pos: "3:7"},
		{args: []string{"Foo.cs:3"}, wantErr: true},
		{args: []string{"Foo.cs"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			file, pos, err := splitPosition(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.pos, pos)
		})
	}
}

func TestRules(t *testing.T) {
	out, err := run(t, RulesCommand, "")
	require.NoError(t, err)
	assert.Contains(t, out.stdout.String(), "## callback-arity")
	assert.Contains(t, out.stdout.String(), "## callback-type")

	out, err = run(t, RulesCommand, "", "callback-type")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.stdout.String(), "callback-type (default severity: warning)"))
	assert.Contains(t, out.stdout.String(), "    .Callback((string a, string b) => { });    // a should be int")
	assert.NotContains(t, out.stdout.String(), "## ")

	_, err = run(t, RulesCommand, "", "nope")
	assert.ErrorContains(t, err, `unknown rule "nope"`)
}

func TestWrapMarkdown(t *testing.T) {
	md := "# Title\n\nOne two three\nfour five six.\n\n```csharp\nvar averyveryverylongidentifier = 1;\n```\n- item one two three four\n"
	got := wrapMarkdown(md, 10)
	assert.Equal(t,
		"# Title\n\nOne two\nthree four\nfive six.\n\n```csharp\nvar averyveryverylongidentifier = 1;\n```\n- item one two three four\n",
		got)
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 1, exitStatus(errFindings))
	assert.Equal(t, 2, exitStatus(errors.New("boom")))
}
