// Package verify submits community verdicts on detections.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"

	"github.com/hellasfirewatch/firewatch/internal/feed"
	"github.com/hellasfirewatch/firewatch/internal/fingerprint"
	"github.com/hellasfirewatch/firewatch/internal/httputil"
	"github.com/hellasfirewatch/firewatch/internal/metrics"
)

// Verdict is a community judgment on a detection.
type Verdict string

const (
	VerdictConfirm Verdict = "confirm"
	VerdictDeny    Verdict = "deny"
	VerdictUnsure  Verdict = "unsure"
)

// ParseVerdict validates a user-supplied verdict string.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictConfirm, VerdictDeny, VerdictUnsure:
		return Verdict(s), nil
	}
	return "", fmt.Errorf("unknown verdict %q", s)
}

// ErrSubmissionInFlight reports a second activation of a control whose
// submission is still outstanding.
var ErrSubmissionInFlight = fmt.Errorf("a submission for this control is already in flight")

// RefreshFunc is the controller-owned callback fired after a successful
// submission so tallies and layers resynchronize.
type RefreshFunc func()

// Submitter posts verdicts to the Firewatch API. At most one submission per
// control (detection id + verdict) may be outstanding; submissions for
// different detections run concurrently without interaction.
type Submitter struct {
	httpClient *http.Client
	baseURL    string
	token      fingerprint.TokenFunc
	refresh    RefreshFunc

	mu       sync.Mutex
	inflight map[string]bool
}

// NewSubmitter creates a submitter. refresh is injected by the controller at
// construction and fired exactly once per successful submission; it may be
// nil in tests.
func NewSubmitter(baseURL string, token fingerprint.TokenFunc, refresh RefreshFunc) *Submitter {
	return &Submitter{
		httpClient: httputil.NewClient(),
		baseURL:    baseURL,
		token:      token,
		refresh:    refresh,
		inflight:   make(map[string]bool),
	}
}

// Submit posts a verdict, with an optional photo, for one detection and
// returns the server-reported detection status. Failures never touch any
// other detection's state, and no retry is attempted.
func (s *Submitter) Submit(ctx context.Context, detectionID string, verdict Verdict, photo *Photo) (string, error) {
	key := detectionID + "/" + string(verdict)
	if !s.acquire(key) {
		return "", ErrSubmissionInFlight
	}
	defer s.release(key)

	if photo != nil {
		if err := photo.check(); err != nil {
			return "", err
		}
	}

	status, err := s.post(ctx, detectionID, verdict, photo)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues(string(verdict), "error").Inc()
		return "", err
	}

	metrics.VerificationsTotal.WithLabelValues(string(verdict), "ok").Inc()
	if s.refresh != nil {
		s.refresh()
	}
	return status, nil
}

func (s *Submitter) post(ctx context.Context, detectionID string, verdict Verdict, photo *Photo) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("verdict", string(verdict)); err != nil {
		return "", fmt.Errorf("write verdict field: %w", err)
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", photo.Name)
		if err != nil {
			return "", fmt.Errorf("create photo part: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return "", fmt.Errorf("write photo: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	u := fmt.Sprintf("%s/api/detections/%s/verify", s.baseURL, url.PathEscape(detectionID))
	req, err := http.NewRequestWithContext(ctx, "POST", u, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("User-Agent", httputil.UserAgent)
	if s.token != nil {
		if tok := s.token(); tok != "" {
			req.AddCookie(&http.Cookie{Name: fingerprint.CookieName, Value: tok})
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &feed.NetworkError{Op: "submit verification", Err: err}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Detail string `json:"detail"`
		}
		json.Unmarshal(payload, &detail)
		return "", &feed.HTTPError{Status: resp.StatusCode, Detail: detail.Detail}
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Status, nil
}

func (s *Submitter) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Submitter) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
