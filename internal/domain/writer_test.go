package domain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo.cc", "foo_cc"},
		{"SolidityEndToEndTest.cpp", "solidityendtoendtest_cpp"},
		{"my-test file.v2.hyp", "my_test_file_v2_hyp"},
		{"already_clean", "already_clean"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}

	t.Run("idempotent on clean names", func(t *testing.T) {
		once := SanitizeFilename("A.b-c d")
		assert.Equal(t, once, SanitizeFilename(once))
	})

	t.Run("case variants collide", func(t *testing.T) {
		assert.Equal(t, SanitizeFilename("Foo.cc"), SanitizeFilename("foo.CC"))
	})
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"four spaces", "    a\n    b", "a\nb"},
		{"eight spaces keep four", "        a", "    a"},
		{"fewer than four untouched", "   a\n  b", "   a\n  b"},
		{"tabs untouched", "\ta", "\ta"},
		{"mixed lines", "line one\n    line two", "line one\nline two"},
		{"trailing newline preserved", "abc\n", "abc\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedent(tt.in))
		})
	}
}

func TestContentHashAndOutputName(t *testing.T) {
	body := "line one\n    line two"
	want := fmt.Sprintf("%x", sha256.Sum256([]byte(body)))

	assert.Equal(t, want, ContentHash(body))
	assert.Len(t, ContentHash(""), 64)
	assert.Equal(t, "test_"+want+"_foo_cc.hyp", OutputName(want, "foo_cc"))
}

func TestWriter_WriteCases(t *testing.T) {
	t.Run("hash is taken before dedent", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWriter(adapter.NewLocalSourceFSAdapter(), m.Path(dir))

		body := "line one\n    line two"
		written, err := w.WriteCases("foo.cc", []m.TestCase{{Body: body, Terminated: true}})
		require.NoError(t, err)
		require.Len(t, written, 1)

		wantName := fmt.Sprintf("test_%x_foo_cc.hyp", sha256.Sum256([]byte(body)))
		assert.Equal(t, m.Path(filepath.Join(dir, wantName)), written[0])

		got, err := os.ReadFile(filepath.Join(dir, wantName))
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", string(got))
	})

	t.Run("one file per case", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWriter(adapter.NewLocalSourceFSAdapter(), m.Path(dir))

		written, err := w.WriteCases("Multi-Case.cpp", []m.TestCase{
			{Body: "contract A {}\n"},
			{Body: "contract B {}\n"},
		})
		require.NoError(t, err)
		require.Len(t, written, 2)
		assert.NotEqual(t, written[0], written[1])

		for _, p := range written {
			assert.Contains(t, string(p), "_multi_case_cpp.hyp")
		}
	})

	t.Run("identical content and name overwrite silently", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWriter(adapter.NewLocalSourceFSAdapter(), m.Path(dir))

		cases := []m.TestCase{{Body: "same\n"}, {Body: "same\n"}}
		written, err := w.WriteCases("a.cpp", cases)
		require.NoError(t, err)
		require.Len(t, written, 2)
		assert.Equal(t, written[0], written[1])

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("write failure is returned", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing")
		w := NewWriter(adapter.NewLocalSourceFSAdapter(), m.Path(dir))

		_, err := w.WriteCases("a.cpp", []m.TestCase{{Body: "x"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty dir defaults to working directory", func(t *testing.T) {
		w := NewWriter(adapter.NewLocalSourceFSAdapter(), "")
		assert.Equal(t, m.Path("."), w.(*writer).dir)
	})
}
