package lines

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTrimsAndSkipsBlankLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := Source{
		AccountsPath: writeFile(t, dir, "wallets.txt", "0xA\r\n\n  0xB  \n# retired\n0xC"),
		ProxiesPath:  writeFile(t, dir, "proxy.txt", "http://p1:8080\n\nsocks5://p2:1080\n"),
	}

	roster, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountIdentity{"0xA", "0xB", "0xC"}, roster.Accounts)
	assert.Equal(t, []domain.ProxyEndpoint{"http://p1:8080", "socks5://p2:1080"}, roster.Proxies)
}

func TestLoadWithoutProxyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := Source{
		AccountsPath: writeFile(t, dir, "wallets.txt", "0xA\n0xB\n"),
		ProxiesPath:  filepath.Join(dir, "proxy.txt"),
	}

	roster, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, roster.Accounts, 2)
	assert.Empty(t, roster.Proxies)
}

func TestLoadEmptyAccountsFileYieldsNoAccounts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	roster, err := Source{AccountsPath: writeFile(t, dir, "wallets.txt", "\n \n")}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roster.Accounts)
}

func TestLoadMissingAccountsFileFails(t *testing.T) {
	t.Parallel()

	_, err := Source{AccountsPath: filepath.Join(t.TempDir(), "wallets.txt")}.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLinesRejectsOversizedLine(t *testing.T) {
	t.Parallel()

	_, err := parseLines(strings.NewReader(strings.Repeat("x", 70*1024)))
	assert.Error(t, err)
}

func TestReadAccountsAndProxies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	accounts, err := ReadAccounts(writeFile(t, dir, "more.txt", "0xD\n\n0xE\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountIdentity{"0xD", "0xE"}, accounts)

	proxies, err := ReadProxies(writeFile(t, dir, "more-proxies.txt", "# office\nsocks4://p3:1080\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.ProxyEndpoint{"socks4://p3:1080"}, proxies)

	_, err = ReadProxies(filepath.Join(dir, "absent.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
