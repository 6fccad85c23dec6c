// Package retro implements a client for the emulator's UDP network command
// interface. Commands are single ASCII datagrams; replies (when a command
// produces one) are single ASCII datagrams echoing the command name.
//
// Every request owns a fresh socket for the lifetime of that call, so retries
// are independent and a stale reply from an earlier attempt can never be
// delivered to a later one.
package retro

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultPort        = 55355
	defaultTimeout     = 1 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 50 * time.Millisecond

	// Large enough for the longest memory-read reply we issue
	// (100-byte party record = 300 bytes of hex plus header).
	replyBufferSize = 8192
)

// errSentinel is what the emulator sends when it cannot service a command.
const errSentinel = "-1"

// Config holds configuration for the emulator client.
type Config struct {
	// Host is the emulator hostname or IP. Defaults to "127.0.0.1".
	Host string

	// Port is the emulator's network command port. Defaults to 55355.
	Port int

	// Timeout is the per-attempt reply deadline. Defaults to 1s.
	Timeout time.Duration

	// MaxAttempts is the total number of send attempts per request.
	// Defaults to 3.
	MaxAttempts int

	// RetryDelay is the fixed pause between attempts. Defaults to 50ms.
	RetryDelay time.Duration

	// Logger overrides the default "[RETRO]" logger.
	Logger *log.Logger
}

// Client sends framed text commands to a fixed emulator peer.
type Client struct {
	cfg    Config
	addr   string
	logger *log.Logger
}

// NewClient creates a client for the configured peer. The hostname is
// resolved once here: resolution inside the retry loop is slow and, on some
// hosts, flaky. If resolution fails the literal hostname is kept and the OS
// resolver gets another chance on each dial.
func NewClient(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[RETRO] ", log.LstdFlags)
	}

	return &Client{
		cfg:    cfg,
		addr:   net.JoinHostPort(resolveHost(cfg.Host, logger), strconv.Itoa(cfg.Port)),
		logger: logger,
	}
}

// Addr returns the resolved peer address.
func (c *Client) Addr() string {
	return c.addr
}

// Request sends command as a single datagram and blocks for one reply
// datagram. Timeouts, socket errors, and malformed reply frames all consume
// an attempt: a garbled datagram is as useless as none at all, so both are
// retried up to MaxAttempts total attempts with a fixed delay between them.
// After that a TimeoutError wrapping the last failure is returned.
func (c *Client) Request(ctx context.Context, command string) ([]byte, error) {
	var reply []byte
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxAttempts-1), retry.NewConstant(c.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		payload, err := c.exchange(command)
		if err == nil {
			err = validateReply(command, payload)
		}
		if err != nil {
			c.logger.Printf("attempt %d/%d %q: %v", attempts, c.cfg.MaxAttempts, firstToken(command), err)
			return retry.RetryableError(err)
		}
		reply = payload
		return nil
	})
	if err != nil {
		return nil, &TimeoutError{Command: firstToken(command), Attempts: attempts, Err: err}
	}
	return reply, nil
}

// validateReply checks a reply frame for commands whose reply format is
// known, so a sentinel or corrupted datagram is rejected while its attempt
// can still be retried.
func validateReply(command string, reply []byte) error {
	if firstToken(command) != "READ_CORE_MEMORY" {
		return nil
	}
	_, err := ParseMemoryReply(reply)
	return err
}

// SendOnly fires command at the peer without waiting for a reply. Used for
// input injection, where a reply is never produced.
func (c *Client) SendOnly(command string) error {
	conn, err := net.Dial("udp", c.addr)
	if err != nil {
		return fmt.Errorf("retro: open socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		return fmt.Errorf("retro: send %q: %w", firstToken(command), err)
	}
	return nil
}

// exchange performs a single send-and-receive on its own socket.
func (c *Client) exchange(command string) ([]byte, error) {
	conn, err := net.Dial("udp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("open socket: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.cfg.Timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	buf := make([]byte, replyBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return buf[:n:n], nil
}

// ParseMemoryReply decodes a memory-read reply into its payload bytes.
// The frame is "<CMD> <ADDR> <hh> <hh> ..." with two-digit hex byte values.
// A bare "-1" token, either as the whole reply or in place of the payload,
// means the peer could not service the read.
func ParseMemoryReply(reply []byte) ([]byte, error) {
	fields := strings.Fields(string(reply))
	if len(fields) == 0 {
		return nil, &MalformedReplyError{Reply: string(reply)}
	}
	if fields[0] == errSentinel {
		return nil, &MalformedReplyError{Reply: string(reply)}
	}
	if len(fields) < 3 || fields[2] == errSentinel {
		return nil, &MalformedReplyError{Reply: string(reply)}
	}

	data := make([]byte, 0, len(fields)-2)
	for _, tok := range fields[2:] {
		if len(tok) != 2 {
			return nil, &MalformedReplyError{Reply: string(reply)}
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, &MalformedReplyError{Reply: string(reply)}
		}
		data = append(data, byte(v))
	}
	return data, nil
}

func resolveHost(host string, logger *log.Logger) string {
	if net.ParseIP(host) != nil {
		return host
	}
	addrs, err := net.LookupHost(host)
	if err != nil || len(addrs) == 0 {
		logger.Printf("resolving %q failed (%v), falling back to literal hostname", host, err)
		return host
	}
	return addrs[0]
}

func firstToken(command string) string {
	if i := strings.IndexByte(command, ' '); i > 0 {
		return command[:i]
	}
	return command
}
