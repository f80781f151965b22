package viiper

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHandshake plays the server side of the handshake on conn.
func serveHandshake(t *testing.T, conn net.Conn, key []byte) (net.Conn, error) {
	r := bufio.NewReader(conn)
	magic := make([]byte, len(handshakeMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	clientNonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, err
	}
	clientAuth := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, clientAuth); err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(authContext))
	mac.Write(clientNonce)
	if !hmac.Equal(mac.Sum(nil), clientAuth) {
		_, _ = conn.Write([]byte(`{"status":401,"title":"Unauthorized","detail":"invalid password"}` + "\n"))
		return nil, ErrUnauthorized
	}
	serverNonce := make([]byte, nonceSize)
	_, _ = rand.Read(serverNonce)
	if _, err := conn.Write(append([]byte("OK\x00"), serverNonce...)); err != nil {
		return nil, err
	}
	return wrapConn(conn, deriveSessionKey(key, serverNonce, clientNonce))
}

func TestHandshakeAndSealedRoundTrip(t *testing.T) {
	key, err := deriveKey("hunter2")
	require.NoError(t, err)

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	srvCh := make(chan net.Conn, 1)
	go func() {
		sc, err := serveHandshake(t, server, key)
		assert.NoError(t, err)
		srvCh <- sc
	}()

	cc, err := clientHandshake(client, key)
	require.NoError(t, err)
	sc := <-srvCh
	require.NotNil(t, sc)

	go func() { _, _ = cc.Write([]byte("bus/list\x00")) }()
	buf := make([]byte, 32)
	n, err := sc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "bus/list\x00", string(buf[:n]))

	go func() { _, _ = sc.Write([]byte(`{"buses":[]}`)) }()
	n, err = cc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, `{"buses":[]}`, string(buf[:n]))
}

func TestHandshakeWrongPassword(t *testing.T) {
	good, err := deriveKey("right")
	require.NoError(t, err)
	bad, err := deriveKey("wrong")
	require.NoError(t, err)

	client, server := net.Pipe()
	go func() {
		_, _ = serveHandshake(t, server, good)
		_ = server.Close()
	}()
	_, err = clientHandshake(client, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeriveKeyRejectsEmpty(t *testing.T) {
	_, err := deriveKey("")
	assert.Error(t, err)
}

func TestSealedConnRejectsTamperedFrame(t *testing.T) {
	key := make([]byte, 32)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc, err := wrapConn(client, key)
	require.NoError(t, err)
	other := make([]byte, 32)
	other[0] = 1
	sc, err := wrapConn(server, other)
	require.NoError(t, err)

	go func() { _, _ = cc.Write([]byte("hello")) }()
	_, err = sc.Read(make([]byte, 16))
	assert.Error(t, err)
}
