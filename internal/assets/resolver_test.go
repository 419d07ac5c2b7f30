package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fairguide/internal/companies"
)

// transparentPNG encodes a w x h image whose left half is opaque red and
// right half fully transparent.
func transparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h RGBA
// image with no pixel data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk := append([]byte("IHDR"), ihdr...)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

const minimalPDF = "%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n"

// mediaHost serves files by path and counts requests.
func mediaHost(t *testing.T, files map[string][]byte, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestResolver(t *testing.T, baseURL string) *Resolver {
	t.Helper()
	r, err := NewResolver(Config{BaseURL: baseURL, CacheDir: t.TempDir()}, nil)
	require.NoError(t, err)
	return r
}

func TestResolve_MissingAssetUsesPlaceholder(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{}, nil)
	r := newTestResolver(t, srv.URL)

	body, ok, err := r.Fetch(context.Background(), "ACME", "png")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, body)

	ref, err := r.Resolve(context.Background(), "ACME", KindLogo)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)
	assert.FileExists(t, ref.Path)

	ref, err = r.Resolve(context.Background(), "ACME", KindAd)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)
	assert.FileExists(t, ref.Path)
}

func TestResolve_LogoIsDownscaledAndFlattened(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/Big_Logo_AG.png": transparentPNG(t, 4096, 1024)}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "Big Logo AG", KindLogo)
	require.NoError(t, err)
	assert.False(t, ref.Placeholder)
	assert.Equal(t, "Big_Logo_AG.png", filepath.Base(ref.Path))

	f, err := os.Open(ref.Path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 2048, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())

	_, isRGB := img.(*image.RGBA)
	assert.True(t, isRGB, "flattened PNG should decode without an alpha channel, got %T", img)

	r0, g0, b0, _ := img.At(2000, 256).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r0, g0, b0}, "transparent area must become white")

	r1, g1, b1, _ := img.At(10, 256).RGBA()
	assert.Equal(t, uint32(0xffff), r1)
	assert.Less(t, g1, uint32(0x1000))
	assert.Less(t, b1, uint32(0x1000))
}

func TestResolve_SmallLogoKeepsSize(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/Small.png": transparentPNG(t, 300, 100)}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "Small", KindLogo)
	require.NoError(t, err)

	f, err := os.Open(ref.Path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestResolve_UndecodableLogoUsesPlaceholder(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/Broken.png": []byte("<html>not an image</html>")}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "Broken", KindLogo)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)
}

func TestPrepareImage_RejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	_, err := PrepareImage(pngHeader(100000, 100000), DefaultMaxDimension, DefaultMaxPixels)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResolve_HugeLogoUsesPlaceholder(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/Huge.png": pngHeader(100000, 100000)}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "Huge", KindLogo)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)
	assert.NoFileExists(t, r.cachePath("Huge", KindLogo))
}

func TestResolve_OversizedBodyUsesPlaceholder(t *testing.T) {
	big := append([]byte(minimalPDF), bytes.Repeat([]byte("%"), 256)...)
	srv := mediaHost(t, map[string][]byte{"/Big.pdf": big, "/Fits.pdf": []byte(minimalPDF)}, nil)
	r, err := NewResolver(Config{BaseURL: srv.URL, CacheDir: t.TempDir(), MaxBytes: int64(len(minimalPDF))}, nil)
	require.NoError(t, err)

	_, ok, err := r.Fetch(context.Background(), "Big", "pdf")
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.False(t, ok)

	ref, err := r.Resolve(context.Background(), "Big", KindAd)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)

	ref, err = r.Resolve(context.Background(), "Fits", KindAd)
	require.NoError(t, err)
	assert.False(t, ref.Placeholder, "a body of exactly MaxBytes is accepted")
}

func TestResolve_AdStoredVerbatim(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/ACME_AG.pdf": []byte(minimalPDF)}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "ACME AG", KindAd)
	require.NoError(t, err)
	assert.False(t, ref.Placeholder)

	data, err := os.ReadFile(ref.Path)
	require.NoError(t, err)
	assert.Equal(t, minimalPDF, string(data))
}

func TestResolve_NonPDFAdUsesPlaceholder(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/ACME.pdf": []byte("<html>error page</html>")}, nil)
	r := newTestResolver(t, srv.URL)

	ref, err := r.Resolve(context.Background(), "ACME", KindAd)
	require.NoError(t, err)
	assert.True(t, ref.Placeholder)
}

func TestResolve_UsesCache(t *testing.T) {
	var hits int32
	srv := mediaHost(t, map[string][]byte{"/ACME.pdf": []byte(minimalPDF)}, &hits)
	r := newTestResolver(t, srv.URL)

	first, err := r.Resolve(context.Background(), "ACME", KindAd)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "ACME", KindAd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	require.NoError(t, r.Purge())
	_, err = r.Resolve(context.Background(), "ACME", KindAd)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestResolve_ConcurrentCallersShareFile(t *testing.T) {
	srv := mediaHost(t, map[string][]byte{"/ACME.pdf": []byte(minimalPDF)}, nil)
	r := newTestResolver(t, srv.URL)

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := r.Resolve(context.Background(), "ACME", KindAd)
			assert.NoError(t, err)
			paths[i] = ref.Path
		}(i)
	}
	wg.Wait()

	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}
	entries, err := os.ReadDir(filepath.Dir(paths[0]))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestResolve_CancelledCallerDoesNotAbortSharedDownload(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			close(started)
		}
		<-release
		_, _ = w.Write([]byte(minimalPDF))
	}))
	t.Cleanup(srv.Close)
	r := newTestResolver(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, "ACME", KindAd)
		first <- err
	}()
	<-started

	second := make(chan companies.AssetRef, 1)
	go func() {
		ref, err := r.Resolve(context.Background(), "ACME", KindAd)
		assert.NoError(t, err)
		second <- ref
	}()

	cancel()
	close(release)

	assert.NoError(t, <-first)
	ref := <-second
	assert.False(t, ref.Placeholder)
	assert.FileExists(t, ref.Path)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolve_TransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	r := newTestResolver(t, base)
	_, err := r.Resolve(context.Background(), "ACME", KindLogo)
	require.Error(t, err)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestURL_EscapesKey(t *testing.T) {
	r := newTestResolver(t, "https://media.example/logos/")
	assert.Equal(t, "https://media.example/logos/Z%C3%BChlke.png", r.URL("Zühlke", "png"))
	assert.Equal(t, "https://media.example/logos/A_B.pdf", r.URL("A_B", "pdf"))
}

func TestEnsurePlaceholders(t *testing.T) {
	dir := t.TempDir()
	logo, ad, err := EnsurePlaceholders(dir, "", "")
	require.NoError(t, err)

	logoData, err := os.ReadFile(logo)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(logoData))
	assert.NoError(t, err)

	adData, err := os.ReadFile(ad)
	require.NoError(t, err)
	_, err = CheckDocument(adData)
	assert.NoError(t, err)

	_, _, err = EnsurePlaceholders(dir, filepath.Join(dir, "missing.png"), "")
	assert.Error(t, err)
}
