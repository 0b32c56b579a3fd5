package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	tu "github.com/desertthunder/mrx/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("URL Resolution", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			tests := map[string]string{
				"/member/tracks":            "http://example.com/member/tracks",
				"files/a.mp3":               "http://example.com/files/a.mp3",
				"https://cdn.example/a.mp3": "https://cdn.example/a.mp3",
			}
			for in, want := range tests {
				if got := srv.URL(in); got != want {
					t.Errorf("URL(%q) = %q, want %q", in, got, want)
				}
			}
		})
	})

	t.Run("Raw", func(t *testing.T) {
		t.Run("Returns Non-2xx Responses As-Is", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Custom-Header", "test-value")
				w.WriteHeader(http.StatusTeapot)
				w.Write([]byte(`{"message":"short and stout"}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Raw(context.Background(), http.MethodGet, "/test", nil)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusTeapot {
				t.Errorf("expected status 418, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected custom header 'test-value', got %s", resp.Headers.Get("X-Custom-Header"))
			}
		})

		t.Run("Non-JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Raw(context.Background(), http.MethodGet, "/test", nil)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Raw(context.Background(), http.MethodGet, "/test\x00invalid", nil)

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
			srv := NewAPIService("http://example.com", client)
			_, err := srv.Raw(context.Background(), http.MethodGet, "/test", nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Raw(context.Background(), http.MethodGet, "/test", nil)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Raw(ctx, http.MethodGet, "/test", nil); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("JSON Helpers", func(t *testing.T) {
		t.Run("Post Encodes Body And Decodes Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}

				var data map[string]string
				json.NewDecoder(r.Body).Decode(&data)
				if data["test"] != "data" {
					t.Errorf("expected request data 'test:data', got %v", data)
				}

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]string{"id": "123"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var out map[string]string
			if err := srv.Post(context.Background(), "/test", map[string]string{"test": "data"}, &out); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out["id"] != "123" {
				t.Errorf("expected id 123, got %v", out)
			}
		})

		t.Run("Empty Success Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var out map[string]string
			if err := srv.Delete(context.Background(), "/x"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := srv.Put(context.Background(), "/x", map[string]int{"a": 1}, &out); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Malformed Success Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var out map[string]string
			err := srv.Get(context.Background(), "/x", &out)
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})

	t.Run("APIError", func(t *testing.T) {
		tests := []struct {
			name     string
			status   int
			body     string
			message  string
			sentinel error
		}{
			{"Message Field", http.StatusBadRequest, `{"message":"Email already registered"}`, "Email already registered", shared.ErrAPIRequest},
			{"Error Field", http.StatusForbidden, `{"error":"nope"}`, "nope", shared.ErrForbidden},
			{"Non-String Message", http.StatusNotFound, `{"message":{"code":1}}`, "", shared.ErrNotFound},
			{"Non-JSON Body", http.StatusUnauthorized, `gateway`, "", shared.ErrSessionRejected},
			{"Unavailable", http.StatusServiceUnavailable, ``, "", shared.ErrServiceUnavailable},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				}))
				defer server.Close()

				srv := NewAPIService(server.URL, nil)
				err := srv.Get(context.Background(), "/x", nil)

				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *APIError, got %v", err)
				}
				if apiErr.Status != tc.status {
					t.Errorf("expected status %d, got %d", tc.status, apiErr.Status)
				}
				if apiErr.Message != tc.message {
					t.Errorf("expected message %q, got %q", tc.message, apiErr.Message)
				}
				if !errors.Is(err, tc.sentinel) {
					t.Errorf("expected %v, got %v", tc.sentinel, err)
				}
			})
		}
	})

	t.Run("MessageOf", func(t *testing.T) {
		if got := MessageOf(nil, "fallback"); got != "" {
			t.Errorf("expected empty message for nil error, got %q", got)
		}
		if got := MessageOf(&APIError{Status: 400, Message: "bad email"}, "Login failed"); got != "bad email" {
			t.Errorf("expected server message, got %q", got)
		}
		if got := MessageOf(&APIError{Status: 500}, "Login failed"); got != "Login failed" {
			t.Errorf("expected fallback, got %q", got)
		}
		if got := MessageOf(errors.New("dial tcp: refused"), "Failed to load form data"); got != "Failed to load form data" {
			t.Errorf("expected fallback for transport error, got %q", got)
		}
		err := fmt.Errorf("%w: title is required", shared.ErrMissingArgument)
		if got := MessageOf(err, "x"); got != err.Error() {
			t.Errorf("expected validation message, got %q", got)
		}
	})

	t.Run("Download", func(t *testing.T) {
		t.Run("Streams Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("audio-bytes"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var sb strings.Builder
			n, err := srv.Download(context.Background(), "/files/1.mp3", &sb)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n != int64(len("audio-bytes")) || sb.String() != "audio-bytes" {
				t.Errorf("unexpected download %d %q", n, sb.String())
			}
		})

		t.Run("Error Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"gone"}`, http.StatusNotFound)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			_, err := srv.Download(context.Background(), "/files/1.mp3", io.Discard)
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Failed Writer", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("audio-bytes"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			_, err := srv.Download(context.Background(), "/files/1.mp3", &tu.FWriter{})
			if err == nil || !strings.Contains(err.Error(), "failed to write download") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("Lists", func(t *testing.T) {
		bodies := map[string]string{
			"Bare Array":     `[{"id":"1","name":"Jazz"}]`,
			"Data Envelope":  `{"data":[{"id":"1","name":"Jazz"}]}`,
			"Items Envelope": `{"items":[{"id":"1","name":"Jazz"}]}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(body))
				}))
				defer server.Close()

				got, err := NewAPIService(server.URL, nil).Genres(context.Background())
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(got) != 1 || got[0].Name != "Jazz" {
					t.Errorf("unexpected genres %+v", got)
				}
			})
		}

		t.Run("Null Is Empty", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			}))
			defer server.Close()

			got, err := NewAPIService(server.URL, nil).Countries(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", got)
			}
		})
	})
}

func TestEndpoints(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   map[string]any
	}

	newServer := func(t *testing.T, status int, reply string) (*APIService, *seen) {
		t.Helper()
		s := &seen{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.method, s.path = r.Method, r.URL.Path
			if r.Header.Get("Content-Type") == "application/json" {
				json.NewDecoder(r.Body).Decode(&s.body)
			}
			w.WriteHeader(status)
			w.Write([]byte(reply))
		}))
		t.Cleanup(server.Close)
		return NewAPIService(server.URL, nil), s
	}

	t.Run("Login", func(t *testing.T) {
		srv, s := newServer(t, http.StatusOK, `{"token":"tok","user":{"id":"u1","email":"a@b.c","role":"MEMBER"},"expiresIn":3600}`)
		res, err := srv.Login(context.Background(), "a@b.c", "pw")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.method != http.MethodPost || s.path != "/auth/login" {
			t.Errorf("unexpected request %s %s", s.method, s.path)
		}
		if s.body["email"] != "a@b.c" || s.body["password"] != "pw" {
			t.Errorf("unexpected body %v", s.body)
		}
		if res.Token != "tok" || res.User.Role != models.RoleMember || res.ExpiresIn != 3600 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("Register", func(t *testing.T) {
		srv, s := newServer(t, http.StatusCreated, ``)
		if err := srv.RegisterLicensee(context.Background(), "a@b.c", "pw"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.path != "/auth/register/licensee" {
			t.Errorf("unexpected path %s", s.path)
		}
		if err := srv.RegisterMember(context.Background(), "a@b.c", "pw"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.path != "/auth/register/member" {
			t.Errorf("unexpected path %s", s.path)
		}
	})

	t.Run("Set Status", func(t *testing.T) {
		srv, s := newServer(t, http.StatusOK, `{}`)
		if err := srv.SetTrackStatus(context.Background(), "t/1", models.StatusApproved); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.method != http.MethodPatch || s.path != "/admin/tracks/t/1/status" {
			t.Errorf("unexpected request %s %s", s.method, s.path)
		}
		if s.body["status"] != "approved" {
			t.Errorf("unexpected body %v", s.body)
		}

		if err := srv.SetMemberStatus(context.Background(), "m1", models.Status("archived")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Assign Codes", func(t *testing.T) {
		srv, s := newServer(t, http.StatusOK, `{}`)
		if err := srv.AssignISRC(context.Background(), "t1", " usabc2400001 "); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.path != "/admin/tracks/t1/isrc" || s.body["isrc"] != "USABC2400001" {
			t.Errorf("unexpected request %s %v", s.path, s.body)
		}
		if err := srv.AssignIPI(context.Background(), "m1", "00012345678"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.path != "/admin/members/m1/ipi" || s.body["ipi"] != "00012345678" {
			t.Errorf("unexpected request %s %v", s.path, s.body)
		}
		if err := srv.AssignIPI(context.Background(), "", "1"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Create Invoice", func(t *testing.T) {
		srv, s := newServer(t, http.StatusCreated, `{"id":"i1","amount":120.5,"currency":"EUR"}`)
		in := InvoiceInput{LicenseID: "l1", Amount: 120.5, Currency: "eur", DueDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)}
		inv, err := srv.CreateInvoice(context.Background(), in)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.body["currency"] != "EUR" || s.body["licenseId"] != "l1" {
			t.Errorf("unexpected body %v", s.body)
		}
		if inv.ID != "i1" {
			t.Errorf("unexpected invoice %+v", inv)
		}

		for name, bad := range map[string]InvoiceInput{
			"Missing License": {Amount: 1, Currency: "EUR", DueDate: time.Now()},
			"Zero Amount":     {LicenseID: "l1", Currency: "EUR", DueDate: time.Now()},
			"Bad Currency":    {LicenseID: "l1", Amount: 1, Currency: "EURO", DueDate: time.Now()},
			"No Due Date":     {LicenseID: "l1", Amount: 1, Currency: "EUR"},
		} {
			if _, err := srv.CreateInvoice(context.Background(), bad); err == nil {
				t.Errorf("%s: expected validation error", name)
			}
		}
	})

	t.Run("Request License", func(t *testing.T) {
		srv, s := newServer(t, http.StatusCreated, `{"id":"l1","status":"pending"}`)
		lic, err := srv.RequestLicense(context.Background(), LicenseRequest{TrackID: "t1", Usage: " film "})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.path != "/licensee/licenses" || s.body["usage"] != "film" {
			t.Errorf("unexpected request %s %v", s.path, s.body)
		}
		if lic.Status != models.StatusPending {
			t.Errorf("unexpected licence %+v", lic)
		}
		if _, err := srv.RequestLicense(context.Background(), LicenseRequest{TrackID: "t1"}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Parse Resource", func(t *testing.T) {
		for in, want := range map[string]Resource{"member": ResourceMember, "Tracks": ResourceTrack, "license": ResourceLicense, "licensee": ResourceLicensee} {
			got, err := ParseResource(in)
			if err != nil || got != want {
				t.Errorf("ParseResource(%q) = %q, %v", in, got, err)
			}
		}
		if _, err := ParseResource("invoice"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestUploads(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	type upload struct {
		method string
		path   string
		fields map[string]string
		files  map[string]string
	}

	newServer := func(t *testing.T) (*APIService, *upload) {
		t.Helper()
		u := &upload{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u.method, u.path = r.Method, r.URL.Path
			u.fields, u.files = map[string]string{}, map[string]string{}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("failed to parse multipart form: %v", err)
			}
			for k, v := range r.MultipartForm.Value {
				u.fields[k] = v[0]
			}
			for k, v := range r.MultipartForm.File {
				u.files[k] = v[0].Filename
			}
			w.Write([]byte(`{"id":"t1","title":"Song"}`))
		}))
		t.Cleanup(server.Close)
		return NewAPIService(server.URL, nil), u
	}

	t.Run("Upload Track", func(t *testing.T) {
		srv, u := newServer(t)
		track, err := srv.UploadTrack(context.Background(), TrackInput{Title: " Song ", Genre: "Jazz", Language: "en", File: audio})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.method != http.MethodPost || u.path != "/member/tracks" {
			t.Errorf("unexpected request %s %s", u.method, u.path)
		}
		if u.fields["title"] != "Song" || u.fields["genre"] != "Jazz" || u.fields["language"] != "en" {
			t.Errorf("unexpected fields %v", u.fields)
		}
		if u.files["file"] != "song.mp3" {
			t.Errorf("unexpected files %v", u.files)
		}
		if track.ID != "t1" {
			t.Errorf("unexpected track %+v", track)
		}
	})

	t.Run("Upload Requires File", func(t *testing.T) {
		srv, u := newServer(t)
		_, err := srv.UploadTrack(context.Background(), TrackInput{Title: "Song", Genre: "Jazz", Language: "en"})
		if !errors.Is(err, shared.ErrFileNotSelected) {
			t.Errorf("expected ErrFileNotSelected, got %v", err)
		}
		if u.path != "" {
			t.Error("expected no request to be issued")
		}
	})

	t.Run("Edit Without File", func(t *testing.T) {
		srv, u := newServer(t)
		if _, err := srv.UpdateTrack(context.Background(), "t1", TrackInput{Title: "Song", Genre: "Jazz", Language: "en"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.method != http.MethodPut || u.path != "/member/tracks/t1" {
			t.Errorf("unexpected request %s %s", u.method, u.path)
		}
		if _, ok := u.files["file"]; ok {
			t.Error("expected no file part")
		}
	})

	t.Run("Missing File On Disk", func(t *testing.T) {
		srv, u := newServer(t)
		_, err := srv.UpdateTrack(context.Background(), "t1", TrackInput{Title: "Song", Genre: "Jazz", Language: "en", File: filepath.Join(dir, "nope.mp3")})
		if !errors.Is(err, shared.ErrFileNotSelected) {
			t.Errorf("expected ErrFileNotSelected, got %v", err)
		}
		if u.path != "" {
			t.Error("expected no request to be issued")
		}
	})

	t.Run("Documents", func(t *testing.T) {
		srv, u := newServer(t)
		if err := srv.UploadDocuments(context.Background(), DocumentsInput{IDDocument: audio, PassportPhoto: audio}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if u.path != "/member/documents" {
			t.Errorf("unexpected path %s", u.path)
		}
		if _, ok := u.files["idDocument"]; !ok {
			t.Errorf("expected idDocument part, got %v", u.files)
		}
		if _, ok := u.files["passportPhoto"]; !ok {
			t.Errorf("expected passportPhoto part, got %v", u.files)
		}
		if _, ok := u.files["bankDocument"]; ok {
			t.Error("expected no bankDocument part")
		}

		if err := srv.UploadDocuments(context.Background(), DocumentsInput{}); !errors.Is(err, shared.ErrFileNotSelected) {
			t.Errorf("expected ErrFileNotSelected, got %v", err)
		}
	})
}
