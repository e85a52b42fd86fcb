package browser

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/wirepair/gcd"
)

// ErrBrowserNotFound returned when returning a browser that was never leased
var ErrBrowserNotFound = errors.New("browser not found")

// LocalLeaser starts chrome processes on this host, keyed by debugger port
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	chrome      string
	tmp         string
}

// NewLocalLeaser using chrome, an empty path uses FindChrome
func NewLocalLeaser(chrome string) *LocalLeaser {
	found, tmp := FindChrome()
	if chrome == "" {
		chrome = found
	}
	return &LocalLeaser{
		browsers: make(map[string]*gcd.Gcd),
		chrome:   chrome,
		tmp:      tmp,
	}
}

// Acquire starts a new chrome process and returns it with its port
func (s *LocalLeaser) Acquire() (*gcd.Gcd, string, error) {
	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()

	profileDir, err := randProfile(s.tmp)
	if err != nil {
		return nil, "", err
	}
	port := randPort()

	b.AddFlags(startupFlags)
	if err := b.StartProcess(s.chrome, profileDir, port); err != nil {
		return nil, "", errors.Wrap(err, "starting chrome")
	}
	s.browserLock.Lock()
	s.browsers[port] = b
	s.browserLock.Unlock()

	return b, port, nil
}

// Count of running browsers
func (s *LocalLeaser) Count() int {
	s.browserLock.RLock()
	defer s.browserLock.RUnlock()
	return len(s.browsers)
}

// Return stops the browser on port
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	if b, ok := s.browsers[port]; ok {
		delete(s.browsers, port)
		return b.ExitProcess()
	}

	return ErrBrowserNotFound
}

// Cleanup removes stale profile directories
func (s *LocalLeaser) Cleanup() error {
	return RemoveTmpContents(s.tmp)
}

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-sync",
	"--disable-background-networking",
	"--disable-default-apps",
	"--disable-extensions",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-first-run",
	"--no-sandbox",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--password-store=basic",
	"--headless",
	"about:blank",
}
