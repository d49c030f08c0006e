package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// New returns a client whose HTTP/2 connections are health checked with a
// ping after pingInterval of read inactivity. timeout bounds a whole request.
func New(timeout, pingInterval time.Duration) (*http.Client, error) {
	t1 := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// make http2.Transport use proxy
	t2, err := http2.ConfigureTransports(t1)
	if err != nil {
		return nil, fmt.Errorf("failed to configure http2: %w", err)
	}
	t2.ReadIdleTimeout = pingInterval
	return &http.Client{
		Transport: t1,
		Timeout:   timeout,
	}, nil
}
