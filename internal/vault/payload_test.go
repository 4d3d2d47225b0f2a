package vault_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
)

func cred(service, login, password string) vault.Credential {
	return vault.Credential{Service: service, Login: login, Password: secret.FromString(password)}
}

func TestPayloadRoundTrip(t *testing.T) {
	sets := map[string]vault.CredentialSet{
		"empty":  {},
		"single": {cred("github", "alice", "s3cr3t")},
		"many": {
			cred("github", "alice", "s3cr3t"),
			cred("mail", "alice@example.com", `quote"back\slash`),
			cred("bank", "ключ", "line\nbreak\x01"),
			cred("github", "alice", "duplicate records are allowed"),
		},
	}
	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			defer set.Wipe()

			data := vault.EncodePayload(set)
			assert.True(t, json.Valid(data))

			got, err := vault.DecodePayload(data)
			require.NoError(t, err)
			defer got.Wipe()

			require.Len(t, got, len(set))
			assert.True(t, set.Equal(got))
		})
	}
}

func TestEncodePayloadShape(t *testing.T) {
	set := vault.CredentialSet{cred("github", "alice", "s3cr3t")}
	defer set.Wipe()

	assert.Equal(t, `[{"service":"github","login":"alice","password":"s3cr3t"}]`, string(vault.EncodePayload(set)))
	assert.Equal(t, `[]`, string(vault.EncodePayload(nil)))
}

func TestEncodePayloadIsSizedExactly(t *testing.T) {
	set := vault.CredentialSet{cred("a", "b", "c\td"), cred("e\"", "f", "g")}
	defer set.Wipe()

	data := vault.EncodePayload(set)
	assert.Equal(t, len(data), cap(data))
}

func TestDecodePayloadMissingPassword(t *testing.T) {
	got, err := vault.DecodePayload([]byte(`[{"service":"github","login":"alice"}]`))
	require.NoError(t, err)
	defer got.Wipe()

	require.Len(t, got, 1)
	assert.Equal(t, "github", got[0].Service)
	assert.True(t, got[0].Password.Empty())
}

func TestDecodePayloadLeavesInputIntact(t *testing.T) {
	in := []byte(`[{"service":"s","login":"l","password":"p"}]`)
	orig := string(in)
	got, err := vault.DecodePayload(in)
	require.NoError(t, err)
	got.Wipe()
	assert.Equal(t, orig, string(in))
}

func TestDecodePayloadRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		``,
		`null`,
		`{}`,
		`[{"service":"s"}]`,
		`[{"login":"l","password":"p"}]`,
		`[{"service":"s","login":"l","password":42}]`,
		`[{"service":"s","login":"l","password":"p"}`,
		`[null]`,
	} {
		_, err := vault.DecodePayload([]byte(in))
		assert.ErrorIs(t, err, vault.ErrFormat, in)
	}
}

func TestCredentialHelpers(t *testing.T) {
	c := cred("svc", "me", "pw")
	assert.True(t, c.Complete())

	clone := c.Clone()
	assert.True(t, c.Equal(clone))

	c.Wipe()
	assert.Nil(t, c.Password)
	assert.False(t, c.Complete())
	assert.Equal(t, "pw", string(clone.Password.Bytes()))
	clone.Wipe()

	assert.False(t, vault.Credential{Service: "s", Login: "l"}.Complete())
}
