package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
)

func stagedFile(id, name string, content []byte) models.UploadFile {
	return models.UploadFile{
		ID:      id,
		Name:    name,
		Size:    int64(len(content)),
		Type:    "video/mp4",
		Payload: models.BytesPayload(content),
	}
}

// drain collects every progress event until the channel is closed.
func drain(ch <-chan Progress) <-chan []Progress {
	done := make(chan []Progress, 1)
	go func() {
		var got []Progress
		for p := range ch {
			got = append(got, p)
		}
		done <- got
	}()
	return done
}

func TestUploadService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewUploadService("", nil)

			if srv.baseURL != shared.ServerURL {
				t.Errorf("expected default baseURL %s, got %s", shared.ServerURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			srv := NewUploadService("http://example.com/api/", nil)
			if srv.baseURL != "http://example.com/api" {
				t.Errorf("unexpected baseURL %s", srv.baseURL)
			}
		})
	})

	t.Run("Upload", func(t *testing.T) {
		t.Run("Sends Multipart Fields In Order", func(t *testing.T) {
			content := []byte(strings.Repeat("v", 4096))

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/api/files" {
					t.Errorf("expected path /api/files, got %s", r.URL.Path)
				}
				if r.ContentLength <= int64(len(content)) {
					t.Errorf("expected exact content length above payload size, got %d", r.ContentLength)
				}

				mr, err := r.MultipartReader()
				if err != nil {
					t.Errorf("expected multipart body: %v", err)
					return
				}

				var names []string
				values := map[string]string{}
				for {
					part, err := mr.NextPart()
					if err == io.EOF {
						break
					}
					if err != nil {
						t.Errorf("failed to read part: %v", err)
						return
					}
					data, _ := io.ReadAll(part)
					names = append(names, part.FormName())
					values[part.FormName()] = string(data)

					if part.FormName() == FieldFile {
						if part.FileName() != "clip.mp4" {
							t.Errorf("expected file name clip.mp4, got %s", part.FileName())
						}
						if ct := part.Header.Get("Content-Type"); ct != "video/mp4" {
							t.Errorf("expected part content type video/mp4, got %s", ct)
						}
					}
				}

				if strings.Join(names, ",") != "file,fileId,nameVideo" {
					t.Errorf("unexpected field order %v", names)
				}
				if values[FieldFile] != string(content) {
					t.Errorf("payload corrupted: got %d bytes", len(values[FieldFile]))
				}
				if values[FieldFileID] != "id-1" {
					t.Errorf("expected fileId id-1, got %s", values[FieldFileID])
				}
				if values[FieldNameVideo] != "clip.mp4" {
					t.Errorf("expected nameVideo clip.mp4, got %s", values[FieldNameVideo])
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(models.UploadResponse{
					Message:   "ok",
					Status:    200,
					Borrowing: []models.Borrowing{{TitleLicense: "Film", TitlePiracy: "clip.mp4"}},
				})
			}))
			defer server.Close()

			srv := NewUploadService(server.URL+"/api", nil)
			resp, err := srv.Upload(context.Background(), stagedFile("id-1", "clip.mp4", content), "/files", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if resp.Message != "ok" || resp.Status != 200 {
				t.Errorf("unexpected response %+v", resp)
			}
			if len(resp.Borrowing) != 1 || resp.Borrowing[0].TitleLicense != "Film" {
				t.Errorf("unexpected borrowings %+v", resp.Borrowing)
			}
		})

		t.Run("Reports Increasing Progress Ending At 100", func(t *testing.T) {
			content := []byte(strings.Repeat("x", 256<<10))

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.Write([]byte(`{"message":"ok","status":200,"borrowing":[]}`))
			}))
			defer server.Close()

			ch := make(chan Progress)
			done := drain(ch)

			srv := NewUploadService(server.URL, nil)
			_, err := srv.Upload(context.Background(), stagedFile("id-2", "big.mp4", content), "/files", ch)
			close(ch)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			events := <-done
			if len(events) == 0 {
				t.Fatal("expected progress events")
			}

			last := 0
			for _, e := range events {
				if e.FileID != "id-2" {
					t.Errorf("unexpected file id %s", e.FileID)
				}
				if e.Percent <= last && last != 0 {
					t.Errorf("progress should strictly increase, got %d after %d", e.Percent, last)
				}
				if e.Percent < 0 || e.Percent > 100 {
					t.Errorf("progress out of range: %d", e.Percent)
				}
				last = e.Percent
			}
			if last != 100 {
				t.Errorf("expected final progress 100, got %d", last)
			}
		})

		t.Run("Non-2xx Is A StatusError", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("boom"))
			}))
			defer server.Close()

			srv := NewUploadService(server.URL, nil)
			_, err := srv.Upload(context.Background(), stagedFile("id-3", "a.mp4", []byte("abc")), "/files", nil)

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "boom" {
				t.Errorf("unexpected status error %+v", statusErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("status errors should wrap ErrAPIRequest")
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			srv := NewUploadService(server.URL, nil)
			_, err := srv.Upload(context.Background(), stagedFile("id-4", "a.mp4", []byte("abc")), "/files", nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Network Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			url := server.URL
			server.Close()

			srv := NewUploadService(url, nil)
			_, err := srv.Upload(context.Background(), stagedFile("id-5", "a.mp4", []byte("abc")), "/files", nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Missing Payload", func(t *testing.T) {
			srv := NewUploadService("http://example.com", nil)
			file := models.UploadFile{ID: "id-6", Name: "a.mp4"}

			if _, err := srv.Upload(context.Background(), file, "/files", nil); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewUploadService(server.URL, nil)
			_, err := srv.Upload(ctx, stagedFile("id-7", "a.mp4", []byte("abc")), "/files", make(chan Progress))
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	})
}

func TestProgressReader(t *testing.T) {
	t.Run("Floors And Deduplicates", func(t *testing.T) {
		ch := make(chan Progress, 10)
		p := &progressReader{
			ctx:      context.Background(),
			r:        strings.NewReader(strings.Repeat("a", 300)),
			total:    300,
			fileID:   "f",
			progress: ch,
		}

		buf := make([]byte, 1)
		for range 2 {
			p.Read(buf)
		}
		// 2/300 floors to 0, nothing reported yet
		if len(ch) != 0 {
			t.Fatalf("expected no events, got %d", len(ch))
		}

		p.Read(buf)
		if got := <-ch; got.Percent != 1 {
			t.Errorf("expected 1%%, got %d", got.Percent)
		}

		big := make([]byte, 297)
		p.Read(big)
		if got := <-ch; got.Percent != 100 {
			t.Errorf("expected 100%%, got %d", got.Percent)
		}
	})

	t.Run("Saturates At 100", func(t *testing.T) {
		ch := make(chan Progress, 10)
		p := &progressReader{
			ctx:      context.Background(),
			r:        strings.NewReader("abcdef"),
			total:    3,
			fileID:   "f",
			progress: ch,
		}

		io.ReadAll(p)
		close(ch)
		for e := range ch {
			if e.Percent > 100 {
				t.Errorf("progress above 100: %d", e.Percent)
			}
		}
	})
}

func TestFileDisposition(t *testing.T) {
	t.Run("Plain Name", func(t *testing.T) {
		got := fileDisposition(FieldFile, "clip.mp4")
		want := `form-data; name="file"; filename="clip.mp4"`
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("Escapes Quotes And Backslashes", func(t *testing.T) {
		name := `my "best" clip\cut.mp4`
		_, params, err := mime.ParseMediaType(fileDisposition(FieldFile, name))
		if err != nil {
			t.Fatalf("failed to parse disposition: %v", err)
		}
		if params["name"] != FieldFile {
			t.Errorf("expected field %q, got %q", FieldFile, params["name"])
		}
		if params["filename"] != name {
			t.Errorf("expected filename %q, got %q", name, params["filename"])
		}
	})
}
