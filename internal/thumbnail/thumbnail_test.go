package thumbnail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := New("key", t.TempDir(), "/assets/route-thumbnails")
	g.endpoint = srv.URL
	g.client = srv.Client()
	return g
}

func TestCreateWritesImage(t *testing.T) {
	var markers []string
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		markers = r.URL.Query()["markers"]
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		w.Write([]byte("png-bytes"))
	})

	public := g.Create(context.Background(), []Marker{{Lat: 1.5, Lng: 2}, {Lat: -3, Lng: 4.25}})
	assert.Equal(t, []string{"color:red|label:0|1.5,2", "color:red|label:1|-3,4.25"}, markers)
	assert.Equal(t, "/assets/route-thumbnails", path.Dir(public))
	assert.NotEqual(t, g.Placeholder(), public)

	data, err := os.ReadFile(filepath.Join(g.dir, path.Base(public)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	g.Remove(&public)
	_, err = os.Stat(filepath.Join(g.dir, path.Base(public)))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateFallsBackToPlaceholder(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	})
	assert.Equal(t, "/assets/route-thumbnails/placeholder-image.jpg", g.Create(context.Background(), []Marker{{Lat: 1, Lng: 1}}))

	noKey := New("", t.TempDir(), "/assets/route-thumbnails/")
	assert.Equal(t, "/assets/route-thumbnails/placeholder-image.jpg", noKey.Create(context.Background(), nil))
}

func TestRemoveIgnoresForeignPaths(t *testing.T) {
	g := New("", t.TempDir(), "/assets/route-thumbnails")
	outside := filepath.Join(t.TempDir(), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	placeholder := g.Placeholder()
	g.Remove(&placeholder)
	g.Remove(nil)
	foreign := "/etc/" + filepath.Base(outside)
	g.Remove(&foreign)

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
