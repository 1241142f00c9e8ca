package nets

import (
	"context"
	"net"
	"net/netip"
	"os"
	"strings"
)

// IsLocalAddr reports whether addr should bypass the proxy: loopback and
// private addresses (a local Ollama server) and hosts listed in NO_PROXY.
type IsLocalAddr func(ctx context.Context, addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	noProxy := splitNoProxy(os.Getenv("NO_PROXY") + "," + os.Getenv("no_proxy"))
	return func(ctx context.Context, addr string) (bool, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		host = strings.ToLower(strings.Trim(host, "[]"))

		if host == "localhost" || strings.HasSuffix(host, ".localhost") {
			return true, nil
		}
		for _, suffix := range noProxy {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true, nil
			}
		}
		if ip, err := netip.ParseAddr(host); err == nil {
			return isLocalIP(ip), nil
		}

		ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			// unresolvable here, let the proxy try
			return false, nil
		}
		for _, ip := range ips {
			if isLocalIP(ip) {
				return true, nil
			}
		}
		return false, nil
	}
}

func isLocalIP(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate()
}

func splitNoProxy(s string) (ret []string) {
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" && part != "*" {
			ret = append(ret, part)
		}
	}
	return
}
