package viiper

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Client issues VIIPER management API calls.
type Client struct{ transport *Transport }

// New creates a client for the API server at addr.
func New(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransport(addr, cfg)}
}

// BusList returns the ids of all virtual buses.
func (c *Client) BusList(ctx context.Context) (*BusListResponse, error) {
	raw, err := c.transport.Do(ctx, "bus/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[BusListResponse](raw)
}

// BusCreate creates the bus with the given id.
func (c *Client) BusCreate(ctx context.Context, busID uint32) (*BusCreateResponse, error) {
	raw, err := c.transport.Do(ctx, "bus/create", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[BusCreateResponse](raw)
}

// BusRemove removes a bus and every device on it.
func (c *Client) BusRemove(ctx context.Context, busID uint32) (*BusRemoveResponse, error) {
	raw, err := c.transport.Do(ctx, "bus/remove", fmt.Sprintf("%d", busID), nil)
	if err != nil {
		return nil, err
	}
	return parse[BusRemoveResponse](raw)
}

// DeviceAdd adds a device of devType ("keyboard", "mouse") to a bus.
func (c *Client) DeviceAdd(ctx context.Context, busID uint32, devType string) (*Device, error) {
	raw, err := c.transport.Do(ctx, "bus/{id}/add", deviceCreateRequest{Type: &devType},
		map[string]string{"id": fmt.Sprintf("%d", busID)})
	if err != nil {
		return nil, err
	}
	return parse[Device](raw)
}

// DeviceRemove removes a device from a bus.
func (c *Client) DeviceRemove(ctx context.Context, busID uint32, devID string) (*DeviceRemoveResponse, error) {
	raw, err := c.transport.Do(ctx, "bus/{id}/remove", devID,
		map[string]string{"id": fmt.Sprintf("%d", busID)})
	if err != nil {
		return nil, err
	}
	return parse[DeviceRemoveResponse](raw)
}

// DeviceStream is the input channel of one device.
type DeviceStream struct {
	BusID uint32
	DevID string

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// OpenStream connects to the stream of an existing device.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(fmt.Sprintf("bus/%d/%s\x00", busID, devID))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{BusID: busID, DevID: devID, conn: conn}, nil
}

// AddDeviceAndConnect creates a device and opens its stream.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, devType string) (*DeviceStream, *Device, error) {
	dev, err := c.DeviceAdd(ctx, busID, devType)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.OpenStream(ctx, busID, dev.DevId)
	if err != nil {
		return nil, dev, err
	}
	return stream, dev, nil
}

// WriteBinary marshals v and writes it as one report.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	_, err = s.conn.Write(data)
	return err
}

// Close closes the stream.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem Problem
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
