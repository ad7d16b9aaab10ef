package cli

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/pkg/adapters/file"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/adapters/redis"
	"github.com/aretw0/chatdialog/pkg/adapters/sql"
	"github.com/aretw0/chatdialog/pkg/persistence/middleware"
	"github.com/aretw0/chatdialog/pkg/ports"
	"github.com/aretw0/chatdialog/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(fill byte) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat(string(fill), 32)))
}

func TestOpenBackend_Memory(t *testing.T) {
	b, err := OpenBackend(StorageConfig{Backend: BackendMemory}, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Store{}, b.Storage)
	assert.IsType(t, &session.LocalLocker{}, b.Locker)
	assert.Empty(t, b.Middlewares)
	ports.RunStorageContract(t, b.Storage)
}

func TestOpenBackend_File(t *testing.T) {
	b, err := OpenBackend(StorageConfig{Backend: BackendFile, DSN: t.TempDir()}, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &file.Store{}, b.Storage)
	assert.IsType(t, &session.LocalLocker{}, b.Locker)
	ports.RunStorageContract(t, b.Storage)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := OpenBackend(StorageConfig{Backend: BackendRedis, Address: mr.Addr(), Prefix: "test:"}, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &redis.Store{}, b.Storage)
	assert.IsType(t, &redis.Locker{}, b.Locker)
	ports.RunStorageContract(t, b.Storage)
}

func TestOpenBackend_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "chat.db")

	b, err := OpenBackend(StorageConfig{Backend: BackendSQLite, DSN: dsn}, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &sql.Store{}, b.Storage)
	ports.RunStorageContract(t, b.Storage)
}

func TestOpenBackend_Encryption(t *testing.T) {
	b, err := OpenBackend(StorageConfig{
		Backend:       BackendMemory,
		EncryptionKey: testKey('a'),
		FallbackKeys:  []string{testKey('b')},
	}, logging.NewNop())
	require.NoError(t, err)
	require.Len(t, b.Middlewares, 1)

	ports.RunStorageContract(t, middleware.Chain(b.Storage, b.Middlewares...))
}

func TestOpenBackend_Errors(t *testing.T) {
	_, err := OpenBackend(StorageConfig{Backend: "etcd"}, logging.NewNop())
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = OpenBackend(StorageConfig{Backend: BackendMemory, EncryptionKey: "%%%"}, logging.NewNop())
	assert.ErrorContains(t, err, "not valid base64")

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = OpenBackend(StorageConfig{Backend: BackendMemory, EncryptionKey: short}, logging.NewNop())
	assert.ErrorContains(t, err, "must decode to 32 bytes, got 5")

	_, err = OpenBackend(StorageConfig{Backend: BackendMemory, EncryptionKey: testKey('a'), FallbackKeys: []string{short}}, logging.NewNop())
	assert.ErrorContains(t, err, "fallback key 0")
}
