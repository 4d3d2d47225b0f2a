package vault

import "github.com/Hussein-Mazeh/shroombrella/internal/secret"

// Credential is one stored record. Its identity is its index in the set.
// The Credential owns Password.
type Credential struct {
	Service  string
	Login    string
	Password *secret.Buffer
}

// Complete reports whether every field is non-empty.
func (c Credential) Complete() bool {
	return c.Service != "" && c.Login != "" && !c.Password.Empty()
}

// Clone returns a deep copy with its own password buffer.
func (c Credential) Clone() Credential {
	return Credential{Service: c.Service, Login: c.Login, Password: c.Password.Clone()}
}

// Equal compares two credentials, the password in constant time.
func (c Credential) Equal(other Credential) bool {
	return c.Service == other.Service && c.Login == other.Login && c.Password.Equal(other.Password)
}

// Wipe destroys the password. Service and login are not secret.
func (c *Credential) Wipe() {
	c.Password.Destroy()
	c.Password = nil
}

// CredentialSet is the ordered list that gets encrypted as one payload.
type CredentialSet []Credential

// Clone deep-copies every credential.
func (s CredentialSet) Clone() CredentialSet {
	out := make(CredentialSet, len(s))
	for i, c := range s {
		out[i] = c.Clone()
	}
	return out
}

// Equal reports whether both sets hold the same records in the same order.
func (s CredentialSet) Equal(other CredentialSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Wipe destroys every password in the set.
func (s CredentialSet) Wipe() {
	for i := range s {
		s[i].Wipe()
	}
}
