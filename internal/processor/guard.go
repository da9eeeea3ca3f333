package processor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/lox/transcriptfmt/internal/httputil"
)

// ErrPrivateHost is returned for URLs that resolve to loopback, private,
// link-local (cloud metadata) or unspecified addresses.
var ErrPrivateHost = errors.New("refusing to fetch private or loopback address")

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsUnspecified())
}

type lookupFunc func(ctx context.Context, host string) ([]net.IPAddr, error)

// checkHost fails unless every address host resolves to is public.
func checkHost(ctx context.Context, lookup lookupFunc, host string) error {
	addrs, err := lookup(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve %s: no addresses", host)
	}
	for _, a := range addrs {
		if !publicIP(a.IP) {
			return fmt.Errorf("%s: %w", host, ErrPrivateHost)
		}
	}
	return nil
}

// publicOnlyClient re-checks the address at dial time, so a name that
// resolves differently after checkHost still cannot reach a private host.
// Proxies are disabled for the same reason.
func publicOnlyClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			ip := net.ParseIP(host)
			if ip == nil || !publicIP(ip) {
				return ErrPrivateHost
			}
			return nil
		},
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	client := httputil.NewClient(timeout)
	client.Transport = transport
	return client
}
