package browser

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// Leaser hands out chrome instances keyed by their debugger port
type Leaser interface {
	Acquire() (*gcd.Gcd, string, error)
	Return(port string) error
	Cleanup() error
}

func randPort() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, randPort, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return randPort
}

func randProfile(tmp string) (string, error) {
	if err := os.MkdirAll(tmp, 0700); err != nil {
		return "", errors.Wrap(err, "creating profile root")
	}

	profile, err := ioutil.TempDir(tmp, "phishker")
	if err != nil {
		return "", errors.Wrap(err, "creating profile directory")
	}
	// an empty profile would have chrome delete from the working directory on exit
	if profile == "" {
		return "", errors.New("empty profile directory")
	}
	return profile, nil
}

// RemoveTmpContents deletes profile directories left behind by earlier runs
func RemoveTmpContents(tmp string) error {
	files, err := filepath.Glob(filepath.Join(tmp, "phishker*"))
	if err != nil {
		return err
	}
	for _, file := range files {
		err = os.RemoveAll(file)
		if err != nil {
			return err
		}
	}
	return nil
}
