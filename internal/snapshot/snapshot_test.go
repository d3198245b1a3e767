package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "things.yaml")
	in := []record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	require.NoError(t, Write(path, "things", 3, in))

	doc, err := Read[record](path, "things")
	require.NoError(t, err)
	require.Equal(t, Version, doc.Version)
	require.Equal(t, int64(3), doc.NextID)
	require.Equal(t, in, doc.Records)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
}

func TestWrite_Concurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "things.yaml")

	var wg sync.WaitGroup
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			recs := make([]record, n)
			for j := range recs {
				recs[j] = record{ID: int64(j + 1), Name: strings.Repeat("x", 200)}
			}
			assert.NoError(t, Write(path, "things", int64(n+1), recs))
		}(i)
	}
	wg.Wait()

	// whichever write landed last, the file is one complete document
	doc, err := Read[record](path, "things")
	require.NoError(t, err)
	require.Equal(t, int64(len(doc.Records)+1), doc.NextID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWrite_EmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, Write[record](path, "things", 1, nil))

	doc, err := Read[record](path, "things")
	require.NoError(t, err)
	require.Empty(t, doc.Records)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read[record](filepath.Join(t.TempDir(), "nope.yaml"), "things")
	require.ErrorIs(t, err, ErrNotExist)
}

func TestRead_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		body string
		want error
	}{
		"garbage":      {body: "\x00\x01not yaml: [", want: nil},
		"wrong kind":   {body: "version: 1\nkind: other\nnext_id: 1\nrecords: []\n", want: ErrKindMismatch},
		"future":       {body: "version: 9\nkind: things\nnext_id: 1\nrecords: []\n", want: ErrVersionUnknown},
		"zero next id": {body: "version: 1\nkind: things\nnext_id: 0\nrecords: []\n", want: nil},
		"extra field":  {body: "version: 1\nkind: things\nnext_id: 1\nbogus: 1\nrecords: []\n", want: nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o600))
			_, err := Read[record](path, "things")
			require.Error(t, err)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.yaml")
	require.NoError(t, Remove(path))
	require.NoError(t, Write[record](path, "things", 1, nil))
	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
