// Package migrations manages the on-disk migration directory: one
// timestamped subdirectory per migration, each holding the rendered SQL
// script (its byte-exact checksum is computed when it is written or
// listed, not stored), and a migration_lock.toml recording
// which dialect the directory was generated for (spec §4.7). This
// supplements the live reconciler/differ with the durable, file-based
// workflow the modeling-language toolchain also supports, grounded on the
// teacher's atomic write-then-rename state file (internal/state/state.go)
// and on the on-disk migration/version scheme of another example ORM's
// migration package.
package migrations

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LockFileName is the directory-level file recording the dialect every
// migration in the directory was generated for; mixing dialects inside
// one migrations directory is a user error caught at load time.
const LockFileName = "migration_lock.toml"

// ScriptFileName is the file inside each migration subdirectory holding
// the rendered SQL.
const ScriptFileName = "migration.sql"

// Lock is migration_lock.toml's shape.
type Lock struct {
	Dialect string `toml:"dialect"`
}

// Migration is one directory entry: <timestamp>_<slug>/migration.sql.
type Migration struct {
	Name      string // directory name, e.g. "20231015103000_add_users"
	Timestamp string
	Slug      string
	Script    string
	Checksum  string // hex sha256 of Script, byte-exact (no newline normalization)
}

var dirNamePattern = regexp.MustCompile(`^(\d{14})_(.+)$`)

// Checksum computes the byte-exact sha256 of a migration script. Exact
// byte content is hashed deliberately, with no newline normalization: the
// checksum exists to detect any edit to an already-applied migration
// file, including ones that would be invisible under normalization.
func Checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

// NewDirectoryName builds the "<timestamp>_<slug>" directory name for a
// new migration, given the moment it's created and a human-readable name.
func NewDirectoryName(at time.Time, name string) string {
	return at.UTC().Format("20060102150405") + "_" + slugify(name)
}

func slugify(name string) string {
	var b strings.Builder
	lastWasUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasUnderscore = false
		default:
			if !lastWasUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastWasUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Write creates a new migration subdirectory under dir containing
// migration.sql, returning the created Migration. It does not update
// migration_lock.toml; callers call EnsureLock separately so multiple
// Write calls in one session don't repeatedly rewrite the lock file.
func Write(dir string, at time.Time, name, script string) (Migration, error) {
	dirName := NewDirectoryName(at, name)
	full := filepath.Join(dir, dirName)
	if err := os.MkdirAll(full, 0755); err != nil {
		return Migration{}, fmt.Errorf("creating migration directory %s: %w", full, err)
	}

	scriptPath := filepath.Join(full, ScriptFileName)
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return Migration{}, fmt.Errorf("writing %s: %w", scriptPath, err)
	}

	sub := dirNamePattern.FindStringSubmatch(dirName)
	return Migration{
		Name: dirName, Timestamp: sub[1], Slug: sub[2],
		Script: script, Checksum: Checksum(script),
	}, nil
}

// List reads every migration subdirectory under dir in timestamp order.
func List(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var out []Migration
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := dirNamePattern.FindStringSubmatch(e.Name())
		if sub == nil {
			continue
		}
		scriptPath := filepath.Join(dir, e.Name(), ScriptFileName)
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", scriptPath, err)
		}
		out = append(out, Migration{
			Name: e.Name(), Timestamp: sub[1], Slug: sub[2],
			Script: string(data), Checksum: Checksum(string(data)),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// EnsureLock writes migration_lock.toml if it doesn't exist yet, or
// verifies the existing one matches dialect if it does. A mismatch means
// the directory was generated for a different database flavor than the
// one now in use, which is a user configuration error rather than
// anything the toolchain can reconcile automatically.
func EnsureLock(dir, dialect string) error {
	path := filepath.Join(dir, LockFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating migrations directory %s: %w", dir, err)
		}
		out, err := toml.Marshal(Lock{Dialect: dialect})
		if err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		return writeAtomic(path, out)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var lock Lock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if lock.Dialect != dialect {
		return fmt.Errorf("migrations directory %s was generated for %q, but the active dialect is %q", dir, lock.Dialect, dialect)
	}
	return nil
}

// writeAtomic writes data to path via a temp-file-then-rename, the same
// crash-safety pattern the teacher's state.Save uses.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
