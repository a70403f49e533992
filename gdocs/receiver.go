package gdocs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// CodeReceiver obtains the authorization code once the user has consented.
type CodeReceiver interface {
	// Start prepares the receiver and returns the redirect URL to send with
	// the authorization request.
	Start(redirectURI string) (string, error)
	// Wait shows authURL to the user and blocks until a code arrives.
	Wait(ctx context.Context, authURL, state string) (string, error)
	Close() error
}

// receiverFor picks a loopback listener for empty or loopback redirect URIs
// and falls back to a copy-paste prompt otherwise.
func receiverFor(redirectURI string) CodeReceiver {
	if redirectURI == "" || isLoopback(redirectURI) {
		return &LoopbackReceiver{Out: os.Stdout}
	}
	return &PromptReceiver{In: os.Stdin, Out: os.Stdout}
}

func isLoopback(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

type codeResult struct {
	code string
	err  error
}

// LoopbackReceiver listens on the redirect URI's host and port and captures
// the code Google redirects the browser to. An empty redirect URI listens on
// an ephemeral 127.0.0.1 port.
type LoopbackReceiver struct {
	Out io.Writer

	srv     *http.Server
	path    string
	results chan codeResult

	mu    sync.Mutex
	state string
}

func (r *LoopbackReceiver) Start(redirectURI string) (string, error) {
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:0/"
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	if !isLoopback(redirectURI) {
		return "", fmt.Errorf("redirect URI %q is not a loopback address", redirectURI)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}
	ln, err := net.Listen("tcp", host)
	if err != nil {
		return "", err
	}
	if u.Port() == "" || u.Port() == "0" {
		u.Host = net.JoinHostPort(u.Hostname(), fmt.Sprint(ln.Addr().(*net.TCPAddr).Port))
	}
	r.path = u.Path
	if r.path == "" {
		r.path = "/"
	}
	r.results = make(chan codeResult, 1)
	r.srv = &http.Server{Handler: http.HandlerFunc(r.handle)}
	go func() { _ = r.srv.Serve(ln) }()
	return u.String(), nil
}

func (r *LoopbackReceiver) handle(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != r.path {
		http.NotFound(w, req)
		return
	}
	q := req.URL.Query()
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()
	var res codeResult
	switch {
	case q.Get("error") == "access_denied":
		res.err = ErrAccessDenied
	case q.Get("error") != "":
		res.err = fmt.Errorf("authorization error: %s", q.Get("error"))
	case q.Get("state") != state:
		res.err = errors.New("authorization response state mismatch")
	case q.Get("code") == "":
		res.err = errors.New("authorization response has no code")
	default:
		res.code = q.Get("code")
	}
	if res.err != nil {
		http.Error(w, res.err.Error(), http.StatusBadRequest)
	} else {
		_, _ = io.WriteString(w, "Authorization complete. You can close this window.\n")
	}
	select {
	case r.results <- res:
	default:
	}
}

func (r *LoopbackReceiver) Wait(ctx context.Context, authURL, state string) (string, error) {
	if r.srv == nil {
		return "", errors.New("loopback receiver not started")
	}
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "Open the following URL in your browser to authorize access:\n\n%s\n\n", authURL)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.results:
		return res.code, res.err
	}
}

func (r *LoopbackReceiver) Close() error {
	if r.srv == nil {
		return nil
	}
	return r.srv.Close()
}

// PromptReceiver asks the user to paste the authorization code.
type PromptReceiver struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptReceiver) Start(redirectURI string) (string, error) {
	return redirectURI, nil
}

func (p *PromptReceiver) Wait(ctx context.Context, authURL, _ string) (string, error) {
	fmt.Fprintf(p.Out, "Open the following URL in your browser, then paste the authorization code:\n\n%s\n\ncode: ", authURL)
	lines := make(chan codeResult, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			err = nil
		}
		lines <- codeResult{code: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-lines:
		if res.err != nil {
			return "", fmt.Errorf("reading authorization code: %w", res.err)
		}
		if res.code == "" {
			return "", ErrAccessDenied
		}
		return res.code, nil
	}
}

func (p *PromptReceiver) Close() error { return nil }
