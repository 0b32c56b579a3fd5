// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/mrx/internal/models"
)

// FakeAuth is a test double for the remote login and registration endpoints.
type FakeAuth struct {
	mu sync.Mutex

	Result *models.LoginResult
	Err    error

	Calls []AuthCall
}

// AuthCall records the arguments of one [FakeAuth] call.
type AuthCall struct {
	Op       string
	Email    string
	Password string
}

func (f *FakeAuth) record(op, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, AuthCall{Op: op, Email: email, Password: password})
}

func (f *FakeAuth) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	f.record("login", email, password)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

func (f *FakeAuth) RegisterMember(ctx context.Context, email, password string) error {
	f.record("register-member", email, password)
	return f.Err
}

func (f *FakeAuth) RegisterLicensee(ctx context.Context, email, password string) error {
	f.record("register-licensee", email, password)
	return f.Err
}

// Notes records notifications in order.
type Notes struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *Notes) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, msg)
}

func (n *Notes) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, msg)
}

// Redirects records hard redirects.
type Redirects struct {
	mu    sync.Mutex
	Paths []string
}

func (r *Redirects) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Paths = append(r.Paths, path)
}

// Count returns the number of redirects issued.
func (r *Redirects) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Paths)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Respond builds a response with status and body for req.
func Respond(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
