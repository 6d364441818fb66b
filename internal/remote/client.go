package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultCSRFCookie = "csrftoken"

	maxBodyBytes = 4 << 20
)

type Config struct {
	BaseURL string
	// Cookie is a raw Cookie header ("sessionid=...; csrftoken=...") used to seed the jar.
	Cookie     string
	CSRFCookie string
	// Timeout bounds each request. Zero waits for the server indefinitely.
	Timeout time.Duration
	// RateLimit caps outgoing requests per second. Zero or less disables limiting.
	RateLimit float64

	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to the medical-records server: it loads server-rendered pages and
// issues visit cancellations.
type Client struct {
	base       *url.URL
	http       *http.Client
	jar        http.CookieJar
	csrfCookie string
	timeout    time.Duration
	limiter    *rate.Limiter
	log        zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("remote: missing base url")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported base url scheme %q", base.Scheme)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	} else {
		cp := *hc
		hc = &cp
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}
	if seed := parseCookieHeader(cfg.Cookie); len(seed) > 0 {
		hc.Jar.SetCookies(base, seed)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	c := &Client{
		base:       base,
		http:       hc,
		jar:        hc.Jar,
		csrfCookie: strings.TrimSpace(cfg.CSRFCookie),
		timeout:    cfg.Timeout,
		limiter:    rate.NewLimiter(limit, 1),
		log:        zerolog.Nop(),
	}
	if c.csrfCookie == "" {
		c.csrfCookie = DefaultCSRFCookie
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "remote").Logger()
	}
	return c, nil
}

// BaseURL returns the server root (always with a trailing slash).
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) resolve(path string) *url.URL {
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
}

// CSRFToken reads the anti-forgery token from the cookies the client would send to
// the server.
func (c *Client) CSRFToken() (string, error) {
	v, ok := CookieValue(cookieHeader(c.jar.Cookies(c.base)), c.csrfCookie)
	if !ok || v == "" {
		return "", missingTokenError{cookie: c.csrfCookie}
	}
	return v, nil
}

type cancelRequest struct {
	Reason string `json:"motivo"`
}

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CancelVisit asks the server to move a visit to the cancelled state. A nil error
// means the server acknowledged with success=true.
func (c *Client) CancelVisit(ctx context.Context, visitID, reason string) error {
	const op = "cancel visit"
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return errors.New("cancel visit: missing visit id")
	}
	token, err := c.CSRFToken()
	if err != nil {
		// Django sets the cookie on any page load; try once before giving up.
		if _, ferr := c.get(ctx, "", "csrf bootstrap"); ferr == nil {
			token, err = c.CSRFToken()
		}
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	body, err := json.Marshal(cancelRequest{Reason: reason})
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	u := c.resolve("consultas/" + visitID + "/cancelar/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-CSRFToken", token)
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Referer", c.base.String())

	log := c.log.With().Str("visit", visitID).Str("request_id", reqID).Logger()
	log.Debug().Str("url", u.String()).Msg("cancel request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("cancel transport failure")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var out cancelResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Int("status", resp.StatusCode).Msg("cancel response is not json")
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("response is not JSON")}
	}
	if !out.Success || resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Info().Int("status", resp.StatusCode).Str("message", out.Message).Msg("cancel rejected")
		return &RejectedError{Op: op, StatusCode: resp.StatusCode, Message: out.Message}
	}
	log.Info().Int("status", resp.StatusCode).Msg("cancel acknowledged")
	return nil
}

// get loads a server-rendered page and returns its body.
func (c *Client) get(ctx context.Context, path, op string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	u := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", u.String()).Msg("page transport failure")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	c.log.Debug().Str("url", u.String()).Int("bytes", len(raw)).Msg("page loaded")
	return raw, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}
