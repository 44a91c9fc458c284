// Package cursor implements the opaque continuation token carrying a
// resume position across requests. Cursors are stateless on the server:
// any instance holding the shared secret can decode a cursor issued by any
// other instance.
package cursor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/partstream/partstream/pkg/encoder"
	"github.com/partstream/partstream/pkg/encrypter"
)

var (
	// ErrInvalidCursor indicates a malformed, tampered or structurally
	// unexpected cursor. Client-caused.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrCursorExpired indicates an authentic cursor past its time-to-live.
	// Client-caused, but distinct from ErrInvalidCursor so callers can
	// retry from scratch rather than report a bug.
	ErrCursorExpired = errors.New("cursor has expired")
)

// DefaultMaxTokenSize bounds the cursor strings the codec will even attempt
// to decode. A cheap guard against oversized garbage.
const DefaultMaxTokenSize = 1024

// Payload is the continuation state a cursor carries. Position is the index
// of the next part to evaluate. Context holds small caller-supplied values
// (a user id, filter state) carried through to subsequent cursors verbatim.
type Payload struct {
	Position int            `json:"position"`
	IssuedAt int64          `json:"issued_at,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// Codec encodes Payloads into authenticated, optionally expiring tokens and
// decodes them back. The zero value is not usable; construct with NewCodec.
type Codec struct {
	pipeline     encoder.Encoder
	ttl          time.Duration
	maxTokenSize int
	now          func() time.Time
}

// Opt configures a Codec.
type Opt func(*Codec)

// WithTTL sets the cursor time-to-live. Cursors encoded by a codec with a
// TTL embed their issue timestamp; decoding past the TTL fails with
// ErrCursorExpired. Zero means cursors never expire.
func WithTTL(ttl time.Duration) Opt {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// WithMaxTokenSize overrides the decode-side size bound.
func WithMaxTokenSize(n int) Opt {
	return func(c *Codec) {
		c.maxTokenSize = n
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Opt {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec builds a Codec keyed from the given application secret.
func NewCodec(secret string, opts ...Opt) (*Codec, error) {
	gcm, err := encrypter.NewGCMEncrypter(secret)
	if err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	c := &Codec{
		pipeline:     encoder.NewTokenEncoder(gcm, encoder.NewBase64Encoder()),
		maxTokenSize: DefaultMaxTokenSize,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.ttl < 0 {
		return nil, fmt.Errorf("cursor: ttl must not be negative, got %v", c.ttl)
	}
	if c.maxTokenSize <= 0 {
		return nil, fmt.Errorf("cursor: max token size must be positive, got %d", c.maxTokenSize)
	}

	return c, nil
}

// TTL reports the codec's configured time-to-live.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode serializes and seals the given payload. If the codec carries a TTL
// and the payload has no issue timestamp yet, the current time is stamped in.
func (c *Codec) Encode(p Payload) (string, error) {
	if p.Position < 0 {
		return "", fmt.Errorf("cursor: position must not be negative, got %d", p.Position)
	}
	if c.ttl > 0 && p.IssuedAt == 0 {
		p.IssuedAt = c.now().Unix()
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("cursor: marshal payload: %w", err)
	}

	return c.pipeline.Encode(raw)
}

// Decode opens and validates a token. It returns exactly the payload that
// was encoded, or fails with ErrInvalidCursor or ErrCursorExpired. Missing
// fields are never silently defaulted for a corrupted token: any
// authentication or structural failure rejects the whole cursor.
func (c *Codec) Decode(token string) (Payload, error) {
	if token == "" {
		return Payload{}, fmt.Errorf("%w: empty token", ErrInvalidCursor)
	}
	if len(token) > c.maxTokenSize {
		return Payload{}, fmt.Errorf("%w: token exceeds %d bytes", ErrInvalidCursor, c.maxTokenSize)
	}

	raw, err := c.pipeline.Decode(token)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var p Payload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: unexpected payload structure", ErrInvalidCursor)
	}
	if p.Position < 0 {
		return Payload{}, fmt.Errorf("%w: negative position", ErrInvalidCursor)
	}

	if c.ttl > 0 && p.IssuedAt > 0 {
		age := c.now().Sub(time.Unix(p.IssuedAt, 0))
		if age > c.ttl {
			return Payload{}, fmt.Errorf("%w: issued %v ago", ErrCursorExpired, age.Truncate(time.Second))
		}
	}

	return p, nil
}

// IsValid is the non-throwing probe: it reports whether Decode would succeed.
func (c *Codec) IsValid(token string) bool {
	_, err := c.Decode(token)
	return err == nil
}
