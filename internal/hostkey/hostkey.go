// Package hostkey loads the server's SSH host key material.
package hostkey

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// Load reads and parses the OpenSSH private key at path. Errors here
// are fatal at startup: the server must not begin listening without a
// host key.
func Load(path string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("host key not found at %s, generate host keys first: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read host key at %s: %w", path, err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host key at %s: %w", path, err)
	}

	return signer, nil
}
