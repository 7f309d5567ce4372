// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrNotFound is returned by a Source when the named file does not exist.
var ErrNotFound = errors.New("data file not found")

// Source opens data files by name (e.g. "Econometrica_2021.csv").
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// HTTPSource reads data files below a base URL.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
	opts   httputil.RequestOptions
}

// NewHTTPSource returns a source rooted at base (e.g. "https://example.org/data/").
func NewHTTPSource(base string, client *http.Client, opts httputil.RequestOptions) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing data root %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("data root %q is not an http(s) URL", base)
	}
	return &HTTPSource{base: u, client: client, opts: opts}, nil
}

// Open fetches base/name. A 404 is reported as ErrNotFound.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	target := s.base.JoinPath(name).String()
	resp, err := httputil.Get(ctx, s.client, target, s.opts)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return resp.Body, nil
}

// DirSource reads data files from a filesystem.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource returns a source reading from the local directory dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir)}
}

// NewFSSource returns a source reading from fsys.
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Open opens name. A missing file is reported as ErrNotFound.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// NewSource picks an HTTPSource for http(s) roots and a DirSource otherwise.
// token, when set, is sent as a bearer token to HTTP roots.
func NewSource(cfg types.DataConfig, token string) (Source, error) {
	root := cfg.Root
	if root == "" {
		root = "data"
	}
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		return NewHTTPSource(root, httputil.NewClient(cfg.HTTPConfig), httputil.RequestOptions{
			UserAgent:   cfg.UserAgent,
			BearerToken: token,
			MaxRetries:  cfg.MaxRetries,
		})
	}
	return NewDirSource(root), nil
}
