package admin

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	i := 0
	readPassword = func(int) ([]byte, error) {
		a := answers[i%len(answers)]
		i++
		return []byte(a), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func run(t *testing.T, workDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(append([]string{"--work-dir", workDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndSeed(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "administrator sysadmin created")

	out, err = run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")

	out, err = run(t, dir, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "sysadmin")
	assert.Contains(t, out, "SA")
}

func TestPasswd(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "seed")
	require.NoError(t, err)

	stubPasswords(t, "n3w-secret")
	out, err := run(t, dir, "passwd", common.AdministratorID)
	require.NoError(t, err)
	assert.Contains(t, out, "password of sysadmin changed")

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.WorkDir = dir
	cfg.Resolve()
	db, st, err := server.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = st.Authenticate(context.Background(), common.AdministratorID, "n3w-secret")
	require.NoError(t, err)
}

func TestPasswd_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "seed")
	require.NoError(t, err)

	stubPasswords(t, "one", "two")
	_, err = run(t, dir, "passwd", common.AdministratorID)
	require.ErrorIs(t, err, errPasswordMismatch)

	_, err = run(t, dir, "passwd", "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = run(t, dir, "passwd")
	require.Error(t, err)
}
