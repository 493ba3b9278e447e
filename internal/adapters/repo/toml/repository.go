package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	rosterFileMode  = 0o600
	rosterDirMode   = 0o700
	tempFilePattern = ".fleet-*.toml.tmp"
)

// Repository stores the fleet roster in a single TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.RosterRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("fleet file path is empty")
	}
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	return &Repository{path: normalized, mu: lockForPath(normalized)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Load returns an empty roster when the file does not exist yet.
func (r *Repository) Load(ctx context.Context) (ports.Roster, error) {
	if err := ctx.Err(); err != nil {
		return ports.Roster{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return ports.Roster{}, err
	}
	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, roster ports.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(toSchema(roster))
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read fleet file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode fleet file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), rosterDirMode); err != nil {
		return fmt.Errorf("create fleet directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode fleet file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp fleet file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp fleet file: %w", err)
	}
	if err := tempFile.Chmod(rosterFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp fleet file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp fleet file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace fleet file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve fleet file path: %w", err)
	}
	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(roster ports.Roster) fileSchema {
	file := fileSchema{
		Accounts: make([]accountSchema, 0, len(roster.Accounts)),
		Proxies:  make([]string, 0, len(roster.Proxies)),
	}
	for _, account := range roster.Accounts {
		file.Accounts = append(file.Accounts, accountSchema{Address: string(account)})
	}
	for _, endpoint := range roster.Proxies {
		file.Proxies = append(file.Proxies, string(endpoint))
	}
	return file
}

// fromSchema drops blank entries.
func fromSchema(file fileSchema) ports.Roster {
	var roster ports.Roster
	for _, account := range file.Accounts {
		address := strings.TrimSpace(account.Address)
		if address == "" {
			continue
		}
		roster.Accounts = append(roster.Accounts, domain.AccountIdentity(address))
	}
	for _, endpoint := range file.Proxies {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			roster.Proxies = append(roster.Proxies, domain.ProxyEndpoint(trimmed))
		}
	}
	return roster
}
