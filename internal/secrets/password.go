// Package secrets obfuscates the sudo password stored in the config file.
// Base64 is not encryption; this only keeps the password out of casual view,
// matching the behavior of the desktop tool nfsync replaced.
package secrets

import (
	"encoding/base64"
	"errors"
)

var ErrBadEncoding = errors.New("stored password is not valid base64")

func Encode(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

func Decode(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadEncoding
	}
	return string(raw), nil
}
