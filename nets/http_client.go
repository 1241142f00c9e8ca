package nets

import (
	"net/http"
	"net/url"
	"time"
)

type HTTPClient = *http.Client

// HTTPClient has no overall timeout; generation calls are bounded per request by context.
func (Module) HTTPClient(
	dialer Dialer,
	getProxyURL GetProxyURL,
	isLocalAddr IsLocalAddr,
) HTTPClient {
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
		ExpectContinueTimeout: time.Second,
	}
	if u, err := getProxyURL(); err == nil && u != nil && isHTTPProxy(u) {
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			local, err := isLocalAddr(req.Context(), req.URL.Host)
			if err != nil || local {
				return nil, err
			}
			return u, nil
		}
	}
	return &http.Client{
		Transport: transport,
	}
}
