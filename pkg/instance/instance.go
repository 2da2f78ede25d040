package instance

import "os"

// EnvDeviceID overrides the device identifier attached to log lines.
const EnvDeviceID = "STOREFRONT_DEVICE_ID"

// ID returns the device identifier, falling back to the hostname and then "device-0".
func ID() string {
	if id := os.Getenv(EnvDeviceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "device-0"
}
