package viiper

import (
	"bytes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	handshakeMagic   = "eVI1\x00"
	nonceSize        = 32
	authContext      = "VIIPER-Auth-v1"
	sessionContext   = "VIIPER-Session-v1"
	pbkdf2Iterations = 100000
	pbkdf2Salt       = "VIIPER-Key-v1"
	maxPacketSize    = 2 * 1024 * 1024
)

// ErrUnauthorized is returned when the server rejects the password.
var ErrUnauthorized = Problem{Status: 401, Title: "Unauthorized", Detail: "invalid password"}

// deriveKey stretches a password to a 32 byte key.
func deriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	return pbkdf2.Key(sha256.New, password, []byte(pbkdf2Salt), pbkdf2Iterations, 32)
}

func deriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte(sessionContext))
	return h.Sum(nil)
}

// clientHandshake authenticates on conn and returns the encrypted session.
func clientHandshake(conn net.Conn, key []byte) (net.Conn, error) {
	clientNonce := make([]byte, nonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, fmt.Errorf("generate client nonce: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)

	msg := append([]byte(handshakeMagic), clientNonce...)
	msg = append(msg, mac.Sum(nil)...)
	if _, err := conn.Write(msg); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}

	prefix := make([]byte, 3)
	if _, err := io.ReadFull(conn, prefix); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(prefix) != "OK\x00" {
		rest, _ := io.ReadAll(conn)
		line := strings.TrimSuffix(string(append(prefix, rest...)), "\n")
		var p Problem
		if err := json.Unmarshal([]byte(line), &p); err == nil && (p.Status != 0 || p.Title != "") {
			return nil, p
		}
		return nil, fmt.Errorf("invalid handshake response from server: %s", line)
	}

	serverNonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(conn, serverNonce); err != nil {
		return nil, fmt.Errorf("read server nonce: %w", err)
	}
	return wrapConn(conn, deriveSessionKey(key, serverNonce, clientNonce))
}

// sealedConn frames every write as [len u32][nonce 12][ciphertext] using
// ChaCha20-Poly1305 with a counter nonce.
type sealedConn struct {
	net.Conn
	aead    cipher.AEAD
	sendCtr uint64
	recvBuf bytes.Buffer
	mu      sync.Mutex
}

func wrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &sealedConn{Conn: conn, aead: aead}, nil
}

func (s *sealedConn) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], s.sendCtr)
	s.sendCtr++

	ct := s.aead.Seal(nil, nonce, p, nil)
	frame := make([]byte, 4, 4+len(nonce)+len(ct))
	binary.BigEndian.PutUint32(frame, uint32(len(nonce)+len(ct)))
	frame = append(frame, nonce...)
	frame = append(frame, ct...)
	if _, err := s.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *sealedConn) Read(p []byte) (int, error) {
	if s.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxPacketSize || length < chacha20poly1305.NonceSize {
			return 0, io.ErrUnexpectedEOF
		}
		pkt := make([]byte, length)
		if _, err := io.ReadFull(s.Conn, pkt); err != nil {
			return 0, err
		}
		pt, err := s.aead.Open(nil, pkt[:chacha20poly1305.NonceSize], pkt[chacha20poly1305.NonceSize:], nil)
		if err != nil {
			return 0, err
		}
		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}
