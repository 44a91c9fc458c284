package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorMintAndInspect(t *testing.T) {
	mintCmd := NewCursorCommand()
	var minted bytes.Buffer
	mintCmd.SetOut(&minted)
	mintCmd.SetArgs([]string{"mint", "--secret", "cli-secret", "--position", "4", "--context", `{"user_id":7}`})
	require.NoError(t, mintCmd.Execute())

	token := strings.TrimSpace(minted.String())
	require.NotEmpty(t, token)

	inspectCmd := NewCursorCommand()
	var inspected bytes.Buffer
	inspectCmd.SetOut(&inspected)
	inspectCmd.SetArgs([]string{"inspect", token, "--secret", "cli-secret"})
	require.NoError(t, inspectCmd.Execute())

	require.Contains(t, inspected.String(), `"position": 4`)
	require.Contains(t, inspected.String(), `"user_id": 7`)
}

func TestCursorInspectRequiresSecret(t *testing.T) {
	cmd := NewCursorCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"inspect", "some-token", "--secret", ""})
	require.Error(t, cmd.Execute())
}
