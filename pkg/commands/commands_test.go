package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr)

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
}

func TestCommands_Transfers(t *testing.T) {
	t.Parallel()

	cmd, err := New(logger.Nop()).Transfers()

	require.NoError(t, err)
	assert.Equal(t, "transfers", cmd.Use)

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		uses = append(uses, sub.Use)
	}
	assert.ElementsMatch(t, []string{"run", "status", "identity"}, uses)
}

func TestCommands_Transfers_RequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Transfers()

	require.ErrorContains(t, err, "missing required fields: Logger")
}

func TestCommands_Root(t *testing.T) {
	t.Parallel()

	root, err := New(logger.Nop()).Root("v1.2.3")

	require.NoError(t, err)
	assert.Equal(t, "datasync-transfer", root.Use)
	assert.Equal(t, "v1.2.3", root.Version)
	assert.True(t, root.SilenceUsage)

	sub, _, err := root.Find([]string{"transfers", "run"})
	require.NoError(t, err)
	assert.Equal(t, "run", sub.Use)

	// the group is also reachable by its singular alias
	sub, _, err = root.Find([]string{"transfer", "status"})
	require.NoError(t, err)
	assert.Equal(t, "status", sub.Use)
}
