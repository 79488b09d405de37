// Package synth implements the client for the streaming synthesis protocol.
// A generic client library for the same endpoint re-escapes markup-reserved
// characters and corrupts already-escaped payloads, so the rendered markup
// must travel as literal bytes; this client sends it verbatim.
package synth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/LuckVd/AIVoice/internal/config"
	"github.com/LuckVd/AIVoice/internal/observability"
	"github.com/LuckVd/AIVoice/internal/ssml"
)

const (
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	secGECVersion      = "1-131.0.2903.99"

	pathConfig  = "control.config"
	pathSSML    = "ssml"
	pathAudio   = "audio"
	pathTurnEnd = "turn.end"

	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeSSML = "application/ssml+xml"
)

// ErrNoAudio indicates the stream closed before any audio frame arrived.
var ErrNoAudio = errors.New("stream closed before any audio frame was received")

// Client talks to the remote synthesis endpoint. One connection is opened
// per call; the handshake is cheap relative to synthesis time, and reuse
// risks cross-request framing corruption.
type Client struct {
	endpoint       string
	outputFormat   string
	connectTimeout time.Duration
	readTimeout    time.Duration
	log            zerolog.Logger
}

// New creates a protocol client from service configuration.
func New(cfg *config.Config) *Client {
	return &Client{
		endpoint:       cfg.SynthEndpoint,
		outputFormat:   cfg.SynthOutputFormat,
		connectTimeout: time.Duration(cfg.SynthConnectTimeout) * time.Second,
		readTimeout:    time.Duration(cfg.SynthReadTimeout) * time.Second,
		log:            observability.GetLogger().With().Str("component", "synth").Logger(),
	}
}

// Synthesize sends one markup document and returns the concatenated audio
// payload bytes, in arrival order.
func (c *Client) Synthesize(ctx context.Context, markup string) ([]byte, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("synthesis connect failed: %w", err)
	}
	defer conn.Close()

	if err := c.sendConfig(conn); err != nil {
		return nil, fmt.Errorf("config frame failed: %w", err)
	}
	if err := c.sendMarkup(conn, markup); err != nil {
		return nil, fmt.Errorf("markup frame failed: %w", err)
	}

	return c.readAudio(ctx, conn)
}

// SynthesizePlain is the degraded path: plain text with one flat voice,
// rate and pitch, no per-sentence prosody.
func (c *Client) SynthesizePlain(ctx context.Context, text, voice, rate, pitch string) ([]byte, error) {
	return c.Synthesize(ctx, ssml.PlainDocument(text, voice, rate, pitch))
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  c.connectTimeout,
		EnableCompression: true,
	}

	headers := http.Header{}
	headers.Set("Pragma", "no-cache")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Origin", "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfoldm")
	headers.Set("Accept-Encoding", "gzip, deflate, br")
	headers.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Set("X-MMS-Client-User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.2903.99")
	headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.2903.99")

	conn, resp, err := dialer.DialContext(ctx, c.connectionURL(), headers)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (c *Client) connectionURL() string {
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep +
		"TrustedClientToken=" + trustedClientToken +
		"&ConnectionId=" + connectionID() +
		"&Sec-MS-GEC=" + secGECToken(time.Now()) +
		"&Sec-MS-GEC-Version=" + secGECVersion
}

func (c *Client) sendConfig(conn *websocket.Conn) error {
	cfg, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"synthesis": map[string]any{
				"audio": map[string]any{
					"outputFormat": c.outputFormat,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	frame := requestFrame(connectionID(), contentTypeJSON, timestamp(), pathConfig, string(cfg))
	return conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (c *Client) sendMarkup(conn *websocket.Conn, markup string) error {
	frame := requestFrame(connectionID(), contentTypeSSML, timestamp(), pathSSML, markup)
	return conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// readAudio drains frames until the turn ends or the connection closes,
// collecting audio-path payload bytes in arrival order.
func (c *Client) readAudio(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	var audio []byte
	received := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if received && isStreamEnd(err) {
				return audio, nil
			}
			if !received {
				return nil, fmt.Errorf("%w: %w", ErrNoAudio, err)
			}
			return nil, fmt.Errorf("synthesis stream read failed: %w", err)
		}

		var frame Frame
		var ok bool
		switch messageType {
		case websocket.TextMessage:
			frame, ok = parseTextFrame(data)
		case websocket.BinaryMessage:
			frame, ok = parseBinaryFrame(data)
		}
		if !ok {
			c.log.Debug().Int("type", messageType).Int("len", len(data)).Msg("skipping unparseable frame")
			continue
		}

		switch frame.Path() {
		case pathAudio:
			audio = append(audio, frame.Payload...)
			received = true
		case pathTurnEnd:
			if !received {
				return nil, ErrNoAudio
			}
			return audio, nil
		}
	}
}

func isStreamEnd(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}

func connectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// secGECToken derives the time-based connection token: the SHA-256 of the
// current Windows file time, floored to a five-minute boundary, followed by
// the trusted client token.
func secGECToken(now time.Time) string {
	const epochShift = 11644473600 // seconds between 1601-01-01 and 1970-01-01

	ticks := now.UTC().Unix() + epochShift
	ticks -= ticks % 300
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%s", ticks*10_000_000, trustedClientToken)))
	return fmt.Sprintf("%X", sum)
}
