package browser

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/wirepair/gcd"
)

// SocketLeaser leases browsers from a leasing service listening on a unix
// socket, for running chrome outside of the scanning process
type SocketLeaser struct {
	leaserClient http.Client
}

// NewSocketLeaser talking to the service at sock
func NewSocketLeaser(sock string) *SocketLeaser {
	s := &SocketLeaser{}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", sock)
			},
		},
	}
	return s
}

func (s *SocketLeaser) get(path string) (string, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return "", err
	}

	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return strings.TrimSpace(string(body)), nil
	case http.StatusNotFound:
		return "", ErrBrowserNotFound
	}
	return "", errors.Errorf("leaser returned %d: %s", resp.StatusCode, body)
}

// Acquire a browser from the service and connect to it
func (s *SocketLeaser) Acquire() (*gcd.Gcd, string, error) {
	port, err := s.get("/acquire")
	if err != nil {
		return nil, "", errors.Wrap(err, "acquiring browser")
	}

	b := gcd.NewChromeDebugger()
	if err := b.ConnectToInstance("localhost", port); err != nil {
		s.Return(port)
		return nil, "", errors.Wrap(err, "connecting to leased browser")
	}
	return b, port, nil
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	_, err := s.get("/return?port=" + port)
	return err
}

// Cleanup asks the service to kill its old browser processes
func (s *SocketLeaser) Cleanup() error {
	_, err := s.get("/cleanup")
	return err
}
