package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeZip 在临时目录生成 zip 文件，成员按 members 键的字典序写入。
func writeZip(t *testing.T, name string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	names := make([]string, 0, len(members))
	for member := range members {
		names = append(names, member)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, member := range names {
		w, err := zw.Create(member)
		require.NoError(t, err)
		_, err = w.Write([]byte(members[member]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// memArchive 是测试用的内存归档，记录每次 Read 调用。
type memArchive struct {
	members map[string][]byte
	reads   []string
	closed  bool
}

func (m *memArchive) Read(name string) ([]byte, error) {
	m.reads = append(m.reads, name)
	data, ok := m.members[name]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return data, nil
}

func (m *memArchive) Close() error {
	m.closed = true
	return nil
}
