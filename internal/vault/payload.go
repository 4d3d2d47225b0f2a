package vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
)

const (
	fieldService  = `{"service":`
	fieldLogin    = `,"login":`
	fieldPassword = `,"password":`
)

// EncodePayload serializes set into the byte string that gets encrypted.
// The set is borrowed. The result holds every password in the clear: the
// caller owns it and must wipe it with secret.Wipe once encrypted.
func EncodePayload(set CredentialSet) []byte {
	size := 2
	for i, c := range set {
		if i > 0 {
			size++
		}
		size += len(fieldService) + len(fieldLogin) + len(fieldPassword) + 1
		size += secret.QuotedLen([]byte(c.Service))
		size += secret.QuotedLen([]byte(c.Login))
		size += secret.QuotedLen(c.Password.Bytes())
	}

	out := make([]byte, 0, size)
	out = append(out, '[')
	for i, c := range set {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, fieldService...)
		out = secret.AppendJSONString(out, []byte(c.Service))
		out = append(out, fieldLogin...)
		out = secret.AppendJSONString(out, []byte(c.Login))
		out = append(out, fieldPassword...)
		out = secret.AppendJSONString(out, c.Password.Bytes())
		out = append(out, '}')
	}
	return append(out, ']')
}

type wireCredential struct {
	Service  *string         `json:"service"`
	Login    *string         `json:"login"`
	Password json.RawMessage `json:"password"`
}

// DecodePayload parses a decrypted payload. The input is borrowed and left
// untouched; every password is moved into its own secret.Buffer and all
// intermediate copies are wiped. A record without a password field decodes
// to an empty password.
func DecodePayload(data []byte) (CredentialSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: payload is not a list", ErrFormat)
	}

	var records []wireCredential
	defer func() {
		for _, r := range records {
			secret.Wipe(r.Password)
		}
	}()
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", ErrFormat, err)
	}

	set := make(CredentialSet, 0, len(records))
	for i, r := range records {
		if r.Service == nil || r.Login == nil {
			set.Wipe()
			return nil, fmt.Errorf("%w: record %d lacks service or login", ErrFormat, i)
		}
		pw, err := decodePassword(r.Password)
		if err != nil {
			set.Wipe()
			return nil, fmt.Errorf("%w: record %d: %w", ErrFormat, i, err)
		}
		set = append(set, Credential{Service: *r.Service, Login: *r.Login, Password: pw})
	}
	return set, nil
}

func decodePassword(raw json.RawMessage) (*secret.Buffer, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return secret.New(nil), nil
	}
	plain, err := secret.UnquoteJSON(raw)
	if err != nil {
		return nil, err
	}
	return secret.New(plain), nil
}
