package nets

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"sync"

	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/modes"
	"github.com/reusee/metaloop/vars"
	"golang.org/x/net/proxy"
)

var proxyFlag = cmds.Var[string]("-proxy", "proxy for LLM endpoints, socks5:// or http://")

type ProxyAddr string

var proxyEnvKeys = []string{
	"ALL_PROXY", "all_proxy",
	"SOCKS_PROXY", "socks_proxy",
	"HTTPS_PROXY", "https_proxy",
	"HTTP_PROXY", "http_proxy",
}

func (Module) ProxyAddr(
	mode modes.Mode,
	loader configs.Loader,
	logger logs.Logger,
) ProxyAddr {
	// tests talk to httptest servers only
	if mode == modes.ModeDevelopment {
		return ""
	}

	addr := vars.FirstNonZero(
		ProxyAddr(*proxyFlag),
		configs.First[ProxyAddr](loader, "proxy_addr"),
		configs.First[ProxyAddr](loader, "proxy_address"),
		configs.First[ProxyAddr](loader, "socks_proxy"),
		configs.First[ProxyAddr](loader, "http_proxy"),
	)
	for _, key := range proxyEnvKeys {
		if addr != "" {
			break
		}
		addr = ProxyAddr(os.Getenv(key))
	}
	if addr != "" {
		logger.Info("proxy", "addr", addr)
	}
	return addr
}

type GetProxyURL func() (*url.URL, error)

func (Module) GetProxyURL(
	proxyAddr ProxyAddr,
) GetProxyURL {
	return sync.OnceValues(func() (*url.URL, error) {
		if proxyAddr == "" {
			return nil, nil
		}
		u, err := url.Parse(string(proxyAddr))
		if err != nil {
			return nil, fmt.Errorf("proxy address %q: %w", proxyAddr, err)
		}
		switch u.Scheme {
		case "socks", "socks5h":
			u.Scheme = "socks5"
		case "socks5", "http", "https":
		default:
			return nil, fmt.Errorf("proxy address %q: unsupported scheme %q", proxyAddr, u.Scheme)
		}
		return u, nil
	})
}

type GetProxyDialer func() (Dialer, error)

func (Module) GetProxyDialer(
	getURL GetProxyURL,
) GetProxyDialer {
	direct := new(net.Dialer)
	return sync.OnceValues(func() (Dialer, error) {
		u, err := getURL()
		if err != nil {
			return nil, err
		}
		if u == nil || isHTTPProxy(u) {
			// http proxies are handled by the transport
			return direct, nil
		}
		via, err := proxy.FromURL(u, direct)
		if err != nil {
			return nil, err
		}
		dialer, ok := via.(Dialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer for %s does not support contexts", u.Redacted())
		}
		return dialer, nil
	})
}

func isHTTPProxy(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
