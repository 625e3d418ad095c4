package tsv

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordfreq/pkg/contract"
)

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	entries := []contract.Entry{{Token: "the", Count: 2}, {Token: "caf\xe9", Count: 1}}
	require.NoError(t, New(nil).Encode(&buf, entries))
	assert.Equal(t, "the\t2\ncaf\xe9\t1\n", buf.String())
}

func TestEncodeHeaderAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&Options{Header: true}).Encode(&buf, nil))
	assert.Equal(t, "token\tcount\n", buf.String())

	buf.Reset()
	require.NoError(t, New(nil).Encode(&buf, nil))
	assert.Empty(t, buf.String())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestEncodeWriteError(t *testing.T) {
	err := New(nil).Encode(failWriter{}, []contract.Entry{{Token: "x", Count: 1}})
	require.Error(t, err)
}
