// Package storage resolves dataset roots to filesystems and lists the data files beneath them.
package storage

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-sif/dataset/errors"
	"github.com/spf13/afero"
)

var (
	memoryLock sync.RWMutex
	memoryFs   = make(map[string]afero.Fs)
)

// RegisterMemory makes fs reachable through URIs of the form mem://name/path
func RegisterMemory(name string, fs afero.Fs) {
	memoryLock.Lock()
	defer memoryLock.Unlock()
	memoryFs[name] = fs
}

// UnregisterMemory removes a filesystem registered with RegisterMemory
func UnregisterMemory(name string) {
	memoryLock.Lock()
	defer memoryLock.Unlock()
	delete(memoryFs, name)
}

// Resolve returns the filesystem implied by uri, and the path of the dataset root within it.
// Plain paths and file:// URIs resolve to the local filesystem. The returned filesystem is read-only.
func Resolve(uri string) (afero.Fs, string, error) {
	if !strings.Contains(uri, "://") {
		return afero.NewReadOnlyFs(afero.NewOsFs()), uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", err
	}
	switch u.Scheme {
	case "file":
		return afero.NewReadOnlyFs(afero.NewOsFs()), u.Path, nil
	case "mem":
		memoryLock.RLock()
		fs, ok := memoryFs[u.Host]
		memoryLock.RUnlock()
		if !ok {
			return nil, "", errors.UnsupportedSchemeError{Scheme: "mem://" + u.Host}
		}
		p := u.Path
		if p == "" {
			p = "/"
		}
		return afero.NewReadOnlyFs(fs), p, nil
	default:
		return nil, "", errors.UnsupportedSchemeError{Scheme: u.Scheme}
	}
}
