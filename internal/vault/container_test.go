package vault_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
)

func sampleFile() vault.File {
	return vault.File{
		Header: vault.Header{
			Version:   vault.FormatVersion,
			CreatedAt: time.Date(2024, 5, 17, 9, 30, 0, 123456789, time.UTC),
			Salt:      []byte("0123456789abcdef"),
			Nonce:     []byte("nonce-12byte"),
		},
		Ciphertext: []byte("opaque ciphertext bytes"),
	}
}

func TestContainerRoundTrip(t *testing.T) {
	f := sampleFile()
	data, err := vault.MarshalFile(f)
	require.NoError(t, err)

	got, err := vault.UnmarshalFile(data)
	require.NoError(t, err)
	assert.Equal(t, f.Header.Version, got.Header.Version)
	assert.True(t, f.Header.CreatedAt.Equal(got.Header.CreatedAt))
	assert.Equal(t, f.Header.Salt, got.Header.Salt)
	assert.Equal(t, f.Header.Nonce, got.Header.Nonce)
	assert.Equal(t, f.Ciphertext, got.Ciphertext)
}

func TestContainerLayout(t *testing.T) {
	data, err := vault.MarshalFile(sampleFile())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "header")
	require.Contains(t, raw, "data")

	hdr := raw["header"].(map[string]any)
	assert.EqualValues(t, 1, hdr["version"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")), hdr["salt"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("nonce-12byte")), hdr["nonce"])

	created := hdr["creation_date"].(map[string]any)
	assert.EqualValues(t, time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC).Unix(), created["secs_since_epoch"])
	assert.EqualValues(t, 123456789, created["nanos_since_epoch"])

	assert.True(t, strings.HasPrefix(string(data), "{\n  \"header\""))
}

func container(version uint32, created, salt, nonce, data string) []byte {
	return []byte(fmt.Sprintf(`{"header":{"version":%d,"creation_date":%s,"salt":%q,"nonce":%q},"data":%q}`,
		version, created, salt, nonce, data))
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

const epoch = `{"secs_since_epoch":1700000000,"nanos_since_epoch":5}`

func TestUnmarshalAcceptsRFC3339Date(t *testing.T) {
	f, err := vault.UnmarshalFile(container(1, `"2023-11-14T22:13:20Z"`, b64("0123456789abcdef"), b64("nonce-12byte"), b64("x")))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), f.Header.CreatedAt.Unix())
}

func TestUnmarshalRejectsShortNonce(t *testing.T) {
	_, err := vault.UnmarshalFile(container(1, epoch, b64("0123456789abcdef"), b64("0123456789"), b64("x")))
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrFormat)
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	salt, nonce := b64("0123456789abcdef"), b64("nonce-12byte")
	cases := map[string][]byte{
		"not json":       []byte("not json"),
		"empty object":   []byte(`{}`),
		"no data":        []byte(`{"header":{"version":1,"creation_date":` + epoch + `,"salt":"` + salt + `","nonce":"` + nonce + `"}}`),
		"no salt":        []byte(`{"header":{"version":1,"creation_date":` + epoch + `,"nonce":"` + nonce + `"},"data":""}`),
		"bad base64":     container(1, epoch, "!!!", nonce, b64("x")),
		"bad data":       container(1, epoch, salt, nonce, "%%%"),
		"short salt":     container(1, epoch, b64("short"), nonce, b64("x")),
		"long nonce":     container(1, epoch, salt, b64("nonce-13bytes"), b64("x")),
		"bad date":       container(1, `"yesterday"`, salt, nonce, b64("x")),
		"partial date":   container(1, `{"secs_since_epoch":1}`, salt, nonce, b64("x")),
		"negative nanos": container(1, `{"secs_since_epoch":1,"nanos_since_epoch":-1}`, salt, nonce, b64("x")),
	}
	for name, data := range cases {
		_, err := vault.UnmarshalFile(data)
		assert.ErrorIs(t, err, vault.ErrFormat, name)
	}
}

func TestUnmarshalRejectsUnknownVersion(t *testing.T) {
	_, err := vault.UnmarshalFile(container(2, epoch, b64("0123456789abcdef"), b64("nonce-12byte"), b64("x")))
	assert.ErrorIs(t, err, vault.ErrUnsupportedVersion)
	assert.ErrorIs(t, err, vault.ErrFormat)
}

func TestMarshalRejectsPreEpochDate(t *testing.T) {
	f := sampleFile()
	f.Header.CreatedAt = time.Time{}
	_, err := vault.MarshalFile(f)
	assert.ErrorIs(t, err, vault.ErrFormat)
}
