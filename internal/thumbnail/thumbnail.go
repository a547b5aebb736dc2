// Package thumbnail renders route preview images with the Google Static Maps
// API and stores them on disk.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	staticMapsURL   = "https://maps.googleapis.com/maps/api/staticmap"
	defaultSize     = "390x280"
	placeholderName = "placeholder-image.jpg"
)

var errNoAPIKey = errors.New("no maps api key configured")

// Marker is one labelled pin on the map.
type Marker struct {
	Lat float64
	Lng float64
}

type Generator struct {
	apiKey     string
	dir        string
	publicPath string
	endpoint   string
	client     *http.Client
}

// New returns a Generator that writes into dir and serves files under
// publicPath. An empty apiKey makes every thumbnail the placeholder.
func New(apiKey, dir, publicPath string) *Generator {
	return &Generator{
		apiKey:     apiKey,
		dir:        dir,
		publicPath: strings.TrimRight(publicPath, "/"),
		endpoint:   staticMapsURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *Generator) Placeholder() string {
	return path.Join(g.publicPath, placeholderName)
}

// Create renders markers and returns the public path of the stored image.
// Any failure yields the placeholder path.
func (g *Generator) Create(ctx context.Context, markers []Marker) string {
	img, err := g.fetch(ctx, markers)
	if err != nil {
		if !errors.Is(err, errNoAPIKey) {
			logrus.WithError(err).Warn("Thumbnail: static map request failed, using placeholder")
		}
		return g.Placeholder()
	}

	name := uuid.NewString() + ".png"
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		logrus.WithError(err).Error("Thumbnail: could not create directory")
		return g.Placeholder()
	}
	if err := os.WriteFile(filepath.Join(g.dir, name), img, 0o644); err != nil {
		logrus.WithError(err).Error("Thumbnail: could not write image")
		return g.Placeholder()
	}
	return path.Join(g.publicPath, name)
}

func (g *Generator) fetch(ctx context.Context, markers []Marker) ([]byte, error) {
	if g.apiKey == "" {
		return nil, errNoAPIKey
	}

	q := url.Values{}
	q.Set("size", defaultSize)
	q.Set("key", g.apiKey)
	for i, m := range markers {
		q.Add("markers", fmt.Sprintf("color:red|label:%d|%s,%s",
			i,
			strconv.FormatFloat(m.Lat, 'f', -1, 64),
			strconv.FormatFloat(m.Lng, 'f', -1, 64),
		))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("static maps returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Remove deletes a stored thumbnail. The placeholder and paths outside the
// public directory are left alone.
func (g *Generator) Remove(publicPath *string) {
	if publicPath == nil || *publicPath == "" || *publicPath == g.Placeholder() {
		return
	}
	if path.Dir(*publicPath) != g.publicPath {
		return
	}
	full := filepath.Join(g.dir, path.Base(*publicPath))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).WithField("path", full).Warn("Thumbnail: could not remove image")
		return
	}
	logrus.WithField("path", full).Debug("Thumbnail removed")
}
