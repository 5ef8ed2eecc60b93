package transport

import (
	"fmt"
	"net"
)

// LookupInterfaceAddr resolves a named network interface ("eth0", "en0")
// to a local IP address usable for binding an outbound socket. IPv4
// addresses are preferred; link-local addresses are skipped unless nothing
// else is available.
func LookupInterfaceAddr(name string) (net.IP, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("interface %q: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("interface %q addresses: %w", name, err)
	}

	var fallback net.IP
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLinkLocalUnicast() {
			if fallback == nil {
				fallback = ip
			}
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		if fallback == nil {
			fallback = ip
		}
	}

	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("interface %q has no usable address", name)
}
