package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hypisolate.dev/pkg/hypisolate/internal/adapter"
	"hypisolate.dev/pkg/hypisolate/internal/controller"
	"hypisolate.dev/pkg/hypisolate/internal/domain"
	domainmocks "hypisolate.dev/pkg/hypisolate/internal/domain/mocks"
	m "hypisolate.dev/pkg/hypisolate/internal/model"
)

func TestListCmd_Estimate(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Estimate", mock.Anything, domain.EstimateArgs{
		Root:      m.Path("tree"),
		SkipDirs:  []string{"vendor"},
		NativeExt: ".hyp",
	}).Return(nil)

	cmd.SetArgs([]string{"list", "--skip-dir", "vendor", "--log-file", filepath.Join(t.TempDir(), "log"), "tree"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestListCmd_RequiresRoot(t *testing.T) {
	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"list"})
	require.Error(t, cmd.Execute())
}

func TestListCmd_DoesNotWrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.cpp"), []byte("R\"(\ncontract A {}\n)\";\n"), 0o644))

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = domain.NewWorkflow(adapter.NewLocalSourceFSAdapter(), controller.NewUI(cmd, false))
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"list", "--log-file", filepath.Join(t.TempDir(), "log"), root})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, output.String(), "a.cpp")
	assert.Contains(t, output.String(), "marker-scan")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
