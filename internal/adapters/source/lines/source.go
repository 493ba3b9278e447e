package lines

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
)

// Source reads one account per line and one proxy per line from two plain
// files. Blank lines and lines starting with # are skipped.
type Source struct {
	AccountsPath string
	// ProxiesPath is optional; a missing file means no proxies.
	ProxiesPath string
}

var _ ports.RosterSource = Source{}

func (s Source) Load(ctx context.Context) (ports.Roster, error) {
	if err := ctx.Err(); err != nil {
		return ports.Roster{}, err
	}

	accounts, err := readLines(s.AccountsPath)
	if err != nil {
		return ports.Roster{}, fmt.Errorf("read accounts file: %w", err)
	}

	var proxies []string
	if s.ProxiesPath != "" {
		proxies, err = readLines(s.ProxiesPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return ports.Roster{}, fmt.Errorf("read proxies file: %w", err)
		}
	}

	roster := ports.Roster{
		Accounts: make([]domain.AccountIdentity, 0, len(accounts)),
		Proxies:  make([]domain.ProxyEndpoint, 0, len(proxies)),
	}
	for _, line := range accounts {
		roster.Accounts = append(roster.Accounts, domain.AccountIdentity(line))
	}
	for _, line := range proxies {
		roster.Proxies = append(roster.Proxies, domain.ProxyEndpoint(line))
	}
	return roster, nil
}

// ReadAccounts returns the non-blank entries of an accounts file.
func ReadAccounts(path string) ([]domain.AccountIdentity, error) {
	entries, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	accounts := make([]domain.AccountIdentity, 0, len(entries))
	for _, entry := range entries {
		accounts = append(accounts, domain.AccountIdentity(entry))
	}
	return accounts, nil
}

// ReadProxies returns the non-blank entries of a proxies file.
func ReadProxies(path string) ([]domain.ProxyEndpoint, error) {
	entries, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read proxies file: %w", err)
	}
	proxies := make([]domain.ProxyEndpoint, 0, len(entries))
	for _, entry := range entries {
		proxies = append(proxies, domain.ProxyEndpoint(entry))
	}
	return proxies, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return parseLines(file)
}

func parseLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
