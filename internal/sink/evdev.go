package sink

// EvdevConfig configures the uinput virtual device.
type EvdevConfig struct {
	Name    string `help:"Name of the virtual uinput device" default:"gyromouse" env:"GYROMOUSE_EVDEV_NAME"`
	Uinput  string `help:"Path of the uinput character device" default:"/dev/uinput" env:"GYROMOUSE_EVDEV_UINPUT"`
	Vendor  uint16 `help:"USB vendor id reported by the virtual device" default:"1"`
	Product uint16 `help:"USB product id reported by the virtual device" default:"1"`
}
