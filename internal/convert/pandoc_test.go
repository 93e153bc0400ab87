// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// fakeExecutor implements executor for testing. It records invocations and
// returns canned output or errors.
type fakeExecutor struct {
	lookPathErr error
	runErr      error
	stdout      string
	stderr      string

	gotDir  string
	gotName string
	gotArgs []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) RunPiped(dir, name string, args []string, stdout, stderr io.Writer) error {
	f.gotDir = dir
	f.gotName = name
	f.gotArgs = args
	io.WriteString(stdout, f.stdout)
	io.WriteString(stderr, f.stderr)
	return f.runErr
}

func TestNewPandocConverter_Missing(t *testing.T) {
	fe := &fakeExecutor{lookPathErr: errors.New("executable file not found in $PATH")}

	_, err := newPandocConverter(fe)
	if err == nil {
		t.Fatal("expected error when pandoc is absent")
	}
	if !strings.Contains(err.Error(), "pandoc") {
		t.Errorf("error %q does not name the missing dependency", err)
	}
}

func TestConvert(t *testing.T) {
	fe := &fakeExecutor{stdout: "# Title\n\nBody.\n"}
	c, err := newPandocConverter(fe)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Convert("/tmp/src", "/tmp/src/main.tex", "gfm")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != "# Title\n\nBody.\n" {
		t.Errorf("output = %q", got)
	}
	if fe.gotDir != "/tmp/src" {
		t.Errorf("workdir = %q", fe.gotDir)
	}
	if fe.gotName != "pandoc" {
		t.Errorf("binary = %q", fe.gotName)
	}
	want := []string{"-s", "/tmp/src/main.tex", "-t", "gfm", "--wrap=none"}
	if fmt.Sprint(fe.gotArgs) != fmt.Sprint(want) {
		t.Errorf("args = %v, want %v", fe.gotArgs, want)
	}
}

func TestConvert_DefaultFormat(t *testing.T) {
	fe := &fakeExecutor{stdout: "ok"}
	c, _ := newPandocConverter(fe)

	if _, err := c.Convert("d", "m.tex", ""); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(fe.gotArgs) != fmt.Sprint([]string{"-s", "m.tex", "-t", DefaultFormat, "--wrap=none"}) {
		t.Errorf("args = %v", fe.gotArgs)
	}
}

func TestConvert_Failure(t *testing.T) {
	fe := &fakeExecutor{
		runErr: errors.New("exit status 64"),
		stderr: "[WARNING] note\nError at main.tex line 3: unexpected \\foo\n",
	}
	c, _ := newPandocConverter(fe)

	_, err := c.Convert("d", "main.tex", "gfm")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unexpected \\foo") {
		t.Errorf("error %q does not surface pandoc stderr", err)
	}
}

func TestConvert_EmptyOutput(t *testing.T) {
	fe := &fakeExecutor{stdout: ""}
	c, _ := newPandocConverter(fe)

	if _, err := c.Convert("d", "main.tex", "gfm"); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"markdown", "md"},
		{"markdown_mmd", "md"},
		{"gfm", "md"},
		{"commonmark", "md"},
		{"plain", "txt"},
		{"rst", "txt"},
		{"", "txt"},
	}
	for _, tt := range tests {
		if got := Extension(tt.format); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
