package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type wireHeader struct {
	Version      *uint32    `json:"version"`
	CreationDate *timestamp `json:"creation_date"`
	Salt         *string    `json:"salt"`
	Nonce        *string    `json:"nonce"`
}

type wireFile struct {
	Header *wireHeader `json:"header"`
	Data   *string     `json:"data"`
}

// MarshalFile renders f as the indented JSON container written to disk.
func MarshalFile(f File) ([]byte, error) {
	if f.Header.CreatedAt.Before(time.Unix(0, 0)) {
		return nil, fmt.Errorf("%w: creation date before 1970", ErrFormat)
	}
	version := f.Header.Version
	created := timestamp(f.Header.CreatedAt)
	salt := base64.StdEncoding.EncodeToString(f.Header.Salt)
	nonce := base64.StdEncoding.EncodeToString(f.Header.Nonce)
	data := base64.StdEncoding.EncodeToString(f.Ciphertext)

	out, err := json.MarshalIndent(wireFile{
		Header: &wireHeader{
			Version:      &version,
			CreationDate: &created,
			Salt:         &salt,
			Nonce:        &nonce,
		},
		Data: &data,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode container: %w", err)
	}
	return out, nil
}

// UnmarshalFile parses a container and validates its header. A malformed
// container always yields an error wrapping ErrFormat.
func UnmarshalFile(data []byte) (File, error) {
	var w wireFile
	if err := json.Unmarshal(data, &w); err != nil {
		return File{}, fmt.Errorf("%w: decode container: %w", ErrFormat, err)
	}
	if w.Header == nil || w.Data == nil {
		return File{}, fmt.Errorf("%w: missing header or data", ErrFormat)
	}
	h := w.Header
	if h.Version == nil || h.CreationDate == nil || h.Salt == nil || h.Nonce == nil {
		return File{}, fmt.Errorf("%w: incomplete header", ErrFormat)
	}

	salt, err := base64.StdEncoding.DecodeString(*h.Salt)
	if err != nil {
		return File{}, fmt.Errorf("%w: salt: %w", ErrFormat, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(*h.Nonce)
	if err != nil {
		return File{}, fmt.Errorf("%w: nonce: %w", ErrFormat, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(*w.Data)
	if err != nil {
		return File{}, fmt.Errorf("%w: data: %w", ErrFormat, err)
	}

	f := File{
		Header: Header{
			Version:   *h.Version,
			CreatedAt: time.Time(*h.CreationDate),
			Salt:      salt,
			Nonce:     nonce,
		},
		Ciphertext: ciphertext,
	}
	if err := f.Header.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// timestamp is encoded as seconds and nanoseconds since the Unix epoch.
// RFC 3339 strings are accepted when reading.
type timestamp time.Time

type epochTime struct {
	Secs  *uint64 `json:"secs_since_epoch"`
	Nanos *uint32 `json:"nanos_since_epoch"`
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	secs := uint64(tt.Unix())
	nanos := uint32(tt.Nanosecond())
	return json.Marshal(epochTime{Secs: &secs, Nanos: &nanos})
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*t = timestamp(parsed.UTC())
		return nil
	}

	var e epochTime
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	if e.Secs == nil || e.Nanos == nil {
		return errors.New("creation_date needs secs_since_epoch and nanos_since_epoch")
	}
	if *e.Nanos >= 1e9 || *e.Secs > 1<<62 {
		return errors.New("creation_date out of range")
	}
	*t = timestamp(time.Unix(int64(*e.Secs), int64(*e.Nanos)).UTC())
	return nil
}
