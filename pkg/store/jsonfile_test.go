package store

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voidshard/ledgerview/pkg/domain"
)

func TestJSONFilePutGet(t *testing.T) {
	jf := NewJSONFile(filepath.Join(t.TempDir(), "state.json"))

	_, err := jf.Get("transactions")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, jf.Put("transactions", []byte(`[{"id":"1"}]`)))
	require.NoError(t, jf.Put("other", []byte("x")))

	data, err := jf.Get("transactions")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))

	// overwrite
	require.NoError(t, jf.Put("transactions", []byte(`[]`)))
	data, err = jf.Get("transactions")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestJSONFileCorruptIsReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, ioutil.WriteFile(path, []byte("{not json"), 0600))

	jf := NewJSONFile(path)
	_, err := jf.Get("transactions")
	assert.Error(t, err)

	require.NoError(t, jf.Put("transactions", []byte(`[]`)))
	data, err := jf.Get("transactions")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestWrite(t *testing.T) {
	jf := NewJSONFile(filepath.Join(t.TempDir(), "export.json"))

	err := jf.Write([]*domain.Transaction{
		&domain.Transaction{ID: "1"},
		&domain.Transaction{ID: "2"},
	})
	require.NoError(t, err)

	data, err := jf.Get(ExportKey)
	require.NoError(t, err)

	txns, err := domain.ParseTransactions(data)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestEncrypted(t *testing.T) {
	inner := NewMemory()
	enc := NewEncrypted(inner, "0123456789abcdef0123456789abcdef", "fedcba9876543210fedcba9876543210")

	require.NoError(t, enc.Put("transactions", []byte(`[{"id":"1"}]`)))

	raw, err := inner.Get("transactions")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"id"`)

	data, err := enc.Get("transactions")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))

	_, err = enc.Get("missing")
	assert.ErrorIs(t, err, ErrNoKey)
}
