package marvel_client

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/jonboulle/clockwork"
)

// Signer computes the per-request hash the catalog service expects.
type Signer struct {
	publicKey  string
	privateKey string
	clock      clockwork.Clock
}

func NewSigner(publicKey, privateKey string, clock clockwork.Clock) *Signer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Signer{
		publicKey:  publicKey,
		privateKey: privateKey,
		clock:      clock,
	}
}

// Sign returns md5(ts + privateKey + publicKey) as lowercase hex.
func (s *Signer) Sign(ts string) string {
	sum := md5.Sum([]byte(ts + s.privateKey + s.publicKey))
	return hex.EncodeToString(sum[:])
}

// Timestamp is the current unix time in seconds.
func (s *Signer) Timestamp() string {
	return strconv.FormatInt(s.clock.Now().Unix(), 10)
}

// AuthParams returns a fresh ts/apikey/hash triple for one request.
func (s *Signer) AuthParams() (ts, apiKey, hash string) {
	ts = s.Timestamp()
	return ts, s.publicKey, s.Sign(ts)
}
