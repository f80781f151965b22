package udp

// ServerConfig configures the datagram listener.
type ServerConfig struct {
	Addr       string `help:"Listen address for datagrams and the liveness probe" default:":5005" env:"GYROMOUSE_ADDR"`
	ReadBuffer int    `help:"Maximum datagram size in bytes" default:"1024" env:"GYROMOUSE_READ_BUFFER"`
}
