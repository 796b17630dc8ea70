package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/upix/service/internal/render"
	"github.com/upix/service/internal/stats"
	"github.com/upix/service/internal/storage"
)

const testCDN = "https://cdn.example.com"

func newTestService(t *testing.T) (*Service, *storage.MemoryStorage, *stats.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStorage(testCDN)
	st := stats.NewMemoryStore()
	return NewService(store, st), store, st
}

// makeJPEG encodes a small valid JPEG payload.
func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

// keyOf strips the CDN base from a returned public URL.
func keyOf(t *testing.T, url string) string {
	t.Helper()
	if !strings.HasPrefix(url, testCDN+"/") {
		t.Fatalf("url %q not under CDN base", url)
	}
	return strings.TrimPrefix(url, testCDN+"/")
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("writes three renditions under one folder", func(t *testing.T) {
		svc, store, _ := newTestService(t)
		raw := makeJPEG(t)

		res, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(raw))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		originKey := keyOf(t, res.Original)
		webpKey := keyOf(t, res.Webp)
		thumbKey := keyOf(t, res.Thumb)

		folder := strings.TrimSuffix(originKey, "/origin.jpg")
		if !strings.Contains(folder, res.ID) {
			t.Errorf("folder %q does not contain upload id %q", folder, res.ID)
		}
		for _, k := range []string{webpKey, thumbKey} {
			if !strings.HasPrefix(k, folder+"/") {
				t.Errorf("key %q not under folder %q", k, folder)
			}
		}

		// Round-trip: served bytes equal written bytes, origin equals raw.
		got, err := store.Get(ctx, originKey)
		if err != nil {
			t.Fatalf("get origin: %v", err)
		}
		if !bytes.Equal(got, raw) {
			t.Error("origin bytes differ from upload")
		}
		for _, k := range []string{webpKey, thumbKey} {
			if _, err := store.Get(ctx, k); err != nil {
				t.Errorf("get %q: %v", k, err)
			}
		}

		if ct, _ := store.ContentType(originKey); ct != "image/jpeg" {
			t.Errorf("origin content type %q, want image/jpeg", ct)
		}
		if ct, _ := store.ContentType(webpKey); ct != "image/webp" {
			t.Errorf("webp content type %q, want image/webp", ct)
		}

		if ok, _ := regexp.MatchString(`^\d+\.\d{2}$`, res.SizeMB); !ok {
			t.Errorf("sizeMB %q not a two-decimal string", res.SizeMB)
		}
	})

	t.Run("strips data-URI prefix", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(makeJPEG(t))
		if _, err := svc.Ingest(ctx, "u1", payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("updates user stats", func(t *testing.T) {
		svc, _, st := newTestService(t)
		res, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(makeJPEG(t)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec, _ := st.Get(ctx, "u1")
		if rec.Total != 1 {
			t.Errorf("total = %d, want 1", rec.Total)
		}
		if rec.LastUpload == 0 {
			t.Error("last_upload not set")
		}
		if len(rec.Files) != 1 || rec.Files[0].ID != res.ID || rec.Files[0].URL != res.Original {
			t.Errorf("history entry mismatch: %+v", rec.Files)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.Ingest(ctx, "u1", ""); !errors.Is(err, ErrMissingFile) {
			t.Fatalf("got %v, want ErrMissingFile", err)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.Ingest(ctx, "u1", "!!not-base64!!"); !errors.Is(err, ErrBadEncoding) {
			t.Fatalf("got %v, want ErrBadEncoding", err)
		}
	})

	t.Run("undecodable image", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		junk := base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))
		if _, err := svc.Ingest(ctx, "u1", junk); !errors.Is(err, render.ErrDecode) {
			t.Fatalf("got %v, want render.ErrDecode", err)
		}
	})
}

func TestIngestRateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects second upload within a second", func(t *testing.T) {
		svc, _, st := newTestService(t)
		st.Seed("u1", stats.Stats{LastUpload: time.Now().UnixMilli()})

		_, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(makeJPEG(t)))
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("got %v, want ErrRateLimited", err)
		}
	})

	t.Run("accepts after the interval", func(t *testing.T) {
		svc, _, st := newTestService(t)
		st.Seed("u1", stats.Stats{LastUpload: time.Now().Add(-2 * time.Second).UnixMilli(), Total: 3})

		if _, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(makeJPEG(t))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec, _ := st.Get(ctx, "u1")
		if rec.Total != 4 {
			t.Errorf("total = %d, want 4", rec.Total)
		}
	})

	t.Run("back-to-back uploads", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		payload := base64.StdEncoding.EncodeToString(makeJPEG(t))
		if _, err := svc.Ingest(ctx, "u1", payload); err != nil {
			t.Fatalf("first upload: %v", err)
		}
		if _, err := svc.Ingest(ctx, "u1", payload); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("second upload: got %v, want ErrRateLimited", err)
		}
	})

	t.Run("zero record never rate-limits", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.Ingest(ctx, "new-user", base64.StdEncoding.EncodeToString(makeJPEG(t))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestIngestSizeGuard(t *testing.T) {
	ctx := context.Background()

	// A valid JPEG padded with trailing bytes still decodes; decoders stop at
	// the end-of-image marker. That makes the boundary testable with real
	// payloads.
	pad := func(t *testing.T, total int) []byte {
		t.Helper()
		jpg := makeJPEG(t)
		if len(jpg) > total {
			t.Fatalf("test jpeg already larger than %d bytes", total)
		}
		return append(jpg, make([]byte, total-len(jpg))...)
	}

	t.Run("exactly 8 MiB passes", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		payload := base64.StdEncoding.EncodeToString(pad(t, 8*1024*1024))
		res, err := svc.Ingest(ctx, "u1", payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.SizeMB != "8.00" {
			t.Errorf("sizeMB = %q, want 8.00", res.SizeMB)
		}
	})

	t.Run("one byte over fails", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		payload := base64.StdEncoding.EncodeToString(pad(t, 8*1024*1024+1))
		if _, err := svc.Ingest(ctx, "u1", payload); !errors.Is(err, ErrTooLarge) {
			t.Fatalf("got %v, want ErrTooLarge", err)
		}
	})
}

func TestIngestPartialFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, st := newTestService(t)
	store.FailPut = func(key string) error {
		if strings.HasSuffix(key, "/image.webp") {
			return fmt.Errorf("storage unavailable")
		}
		return nil
	}

	_, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(makeJPEG(t)))
	if err == nil {
		t.Fatal("expected failure when a rendition write fails")
	}

	// The metadata update must not run after a failed write phase.
	rec, _ := st.Get(ctx, "u1")
	if rec.Total != 0 || rec.LastUpload != 0 {
		t.Errorf("stats mutated on failed upload: %+v", rec)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	res, err := svc.Ingest(ctx, "u1", base64.StdEncoding.EncodeToString(makeJPEG(t)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	t.Run("removes all three renditions", func(t *testing.T) {
		deleted, err := svc.Delete(ctx, res.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleted) != 3 {
			t.Fatalf("deleted %d keys, want 3: %v", len(deleted), deleted)
		}
		for _, k := range deleted {
			if !strings.Contains(k, res.ID) {
				t.Errorf("deleted key %q does not contain id", k)
			}
			if _, err := store.Get(ctx, k); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("key %q still present after delete", k)
			}
		}
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		if _, err := svc.Delete(ctx, res.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}

func TestFolderFor(t *testing.T) {
	at := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	got := folderFor(at, "abc-123")
	// Month and day single-digit: no zero padding.
	if got != "uploads/2024/3/5/abc-123" {
		t.Errorf("folderFor = %q, want uploads/2024/3/5/abc-123", got)
	}
}
