// Package password hashes and verifies passwords with argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
//
// Verify reports StateValidRehashed when a stored hash matches but was produced
// with parameters other than the current defaults; callers should then store a
// fresh Hash of the plain password.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// State is the outcome of Verify.
type State int

const (
	StateInvalid State = iota
	StateValid
	StateValidRehashed
)

// IsValid reports whether the password matched.
func (s State) IsValid() bool {
	return s == StateValid || s == StateValidRehashed
}

var (
	ErrMalformedHash = errors.New("password: malformed hash")
	ErrUnsupported   = errors.New("password: unsupported algorithm or version")
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follow the OWASP argon2id baseline.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash returns the PHC encoded argon2id hash of plain.
func Hash(plain string) (string, error) {
	return HashWith(plain, DefaultParams)
}

// HashWith hashes plain with explicit parameters.
func HashWith(plain string, p Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks plain against an encoded hash.
func Verify(encoded, plain string) (State, error) {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return StateInvalid, err
	}

	other := argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if subtle.ConstantTimeCompare(key, other) != 1 {
		return StateInvalid, nil
	}

	if p.Memory != DefaultParams.Memory || p.Iterations != DefaultParams.Iterations ||
		p.Parallelism != DefaultParams.Parallelism || p.KeyLength != DefaultParams.KeyLength {
		return StateValidRehashed, nil
	}
	return StateValid, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrUnsupported
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, ErrUnsupported
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, errors.Join(ErrMalformedHash, err)
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

// Entropy estimates the strength of plain in bits as length times
// log2 of the character pool the password draws from.
func Entropy(plain string) float64 {
	var lower, upper, digit, symbol, other bool
	n := 0
	for _, r := range plain {
		n++
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r < unicode.MaxASCII && unicode.IsPrint(r):
			symbol = true
		default:
			other = true
		}
	}

	pool := 0
	if lower {
		pool += 26
	}
	if upper {
		pool += 26
	}
	if digit {
		pool += 10
	}
	if symbol {
		pool += 33
	}
	if other {
		pool += 100
	}
	if pool == 0 {
		return 0
	}
	return float64(n) * math.Log2(float64(pool))
}
