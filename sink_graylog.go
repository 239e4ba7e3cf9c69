package logrich

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"net"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"
)

// GraylogProtocol selects the GELF transport.
type GraylogProtocol int

const (
	// GraylogUDP sends gzip-compressed, chunked GELF datagrams.
	GraylogUDP GraylogProtocol = iota
	// GraylogTCP sends null-terminated GELF frames over a persistent
	// connection.
	GraylogTCP
)

// gelfChunkSize is the GELF UDP chunk payload size, excluding the 12-byte
// chunk header. It is larger than a typical 1500-byte Ethernet MTU.
const gelfChunkSize = 8192

// gelfMaxChunks is the GELF protocol's hard limit on chunks per message.
const gelfMaxChunks = 128

// GraylogOptions configures a GraylogBackend.
type GraylogOptions struct {
	Address   string
	Protocol  GraylogProtocol
	Facility  string
	RateLimit rate.Limit // messages/sec; zero disables throttling
	RateBurst int

	// Threshold is the minimum LogLevel forwarded to Graylog. Zero
	// defaults to WarningLevel: GELF backends are typically reserved for
	// noteworthy conditions rather than full debug/info volume.
	Threshold LogLevel
}

// GraylogBackend forwards events to a Graylog server using the GELF
// format, either as chunked/gzipped UDP datagrams or as null-framed TCP
// messages.
type GraylogBackend struct {
	thresholdGate
	opts    GraylogOptions
	conn    net.Conn
	limiter *rate.Limiter
}

// NewGraylogBackend dials addr per opts.Protocol and returns a ready
// GraylogBackend.
func NewGraylogBackend(opts GraylogOptions) (*GraylogBackend, error) {
	network := "udp"
	if opts.Protocol == GraylogTCP {
		network = "tcp"
	}
	conn, err := net.Dial(network, opts.Address)
	if err != nil {
		return nil, fmt.Errorf("logrich: dial graylog: %w", err)
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = WarningLevel
	}
	gb := &GraylogBackend{thresholdGate: newThresholdGate(threshold), opts: opts, conn: conn}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		gb.limiter = rate.NewLimiter(opts.RateLimit, burst)
	}
	return gb, nil
}

// Name implements SinkPort.
func (gb *GraylogBackend) Name() string { return "graylog" }

type gelfMessage struct {
	Version      string
	Host         string
	ShortMessage string
	Timestamp    float64
	Level        int
	Facility     string
	LoggerName   string
	EventID      string
	// Additional carries contextAndExtraFields(ev) run through
	// underscorePrefixKeys,
	// GELF's convention for anything outside the fixed message fields
	// above.
	Additional map[string]string
}

// MarshalJSON flattens gelfMessage into a single GELF object: fixed fields
// plus every entry of Additional, with the fixed fields taking precedence
// on key collision so a caller-supplied extra field can never shadow
// _logger_name or _event_id.
func (m gelfMessage) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Additional)+7)
	for k, v := range m.Additional {
		out[k] = v
	}
	out["version"] = m.Version
	out["host"] = m.Host
	out["short_message"] = m.ShortMessage
	out["timestamp"] = m.Timestamp
	out["level"] = m.Level
	if m.Facility != "" {
		out["facility"] = m.Facility
	}
	out["_logger_name"] = m.LoggerName
	out["_event_id"] = m.EventID
	return json.Marshal(out)
}

// Write implements SinkPort.
func (gb *GraylogBackend) Write(ctx context.Context, ev LogEvent) error {
	if gb.limiter != nil {
		if err := gb.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("logrich: graylog rate limit: %w", err)
		}
	}

	msg := gelfMessage{
		Version:      "1.1",
		Host:         ev.Context.Hostname,
		ShortMessage: ev.Message,
		Timestamp:    float64(ev.Timestamp.UnixNano()) / 1e9,
		Level:        ev.Level.Syslog(),
		Facility:     gb.opts.Facility,
		LoggerName:   ev.LoggerName,
		EventID:      ev.EventID,
		Additional:   underscorePrefixKeys(contextAndExtraFields(ev)),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("logrich: marshal gelf message: %w", err)
	}

	if gb.opts.Protocol == GraylogTCP {
		return gb.writeTCP(payload)
	}
	return gb.writeUDP(payload)
}

func (gb *GraylogBackend) writeTCP(payload []byte) error {
	framed := append(append([]byte{}, payload...), 0)
	if _, err := gb.conn.Write(framed); err != nil {
		return fmt.Errorf("logrich: graylog tcp write: %w", err)
	}
	return nil
}

// gelfMagic marks each chunk of a chunked GELF UDP message per spec.
var gelfMagic = [2]byte{0x1e, 0x0f}

func (gb *GraylogBackend) writeUDP(payload []byte) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return fmt.Errorf("logrich: gzip gelf payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("logrich: close gzip writer: %w", err)
	}
	compressed := buf.Bytes()

	if len(compressed) <= gelfChunkSize {
		_, err := gb.conn.Write(compressed)
		if err != nil {
			return fmt.Errorf("logrich: graylog udp write: %w", err)
		}
		return nil
	}

	total := (len(compressed) + gelfChunkSize - 1) / gelfChunkSize
	if total > gelfMaxChunks {
		return fmt.Errorf("logrich: gelf message too large: %d chunks exceeds %d", total, gelfMaxChunks)
	}
	msgID := make([]byte, 8)
	if _, err := rand.Read(msgID); err != nil {
		return fmt.Errorf("logrich: generate gelf message id: %w", err)
	}
	for i := 0; i < total; i++ {
		start := i * gelfChunkSize
		end := start + gelfChunkSize
		if end > len(compressed) {
			end = len(compressed)
		}
		chunk := make([]byte, 0, 12+end-start)
		chunk = append(chunk, gelfMagic[0], gelfMagic[1])
		chunk = append(chunk, msgID...)
		chunk = append(chunk, byte(i), byte(total))
		chunk = append(chunk, compressed[start:end]...)
		if _, err := gb.conn.Write(chunk); err != nil {
			return fmt.Errorf("logrich: graylog udp chunk write: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (gb *GraylogBackend) Close() error {
	if gb.conn == nil {
		return nil
	}
	return gb.conn.Close()
}
