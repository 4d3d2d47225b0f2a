package auth

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// HIBPBaseURL is the Pwned Passwords range API.
	HIBPBaseURL   = "https://api.pwnedpasswords.com"
	hibpUserAgent = "shroombrella/1.0"
	hibpTimeout   = 4 * time.Second
)

// HIBPResult captures whether a password hash suffix was found in the HIBP dataset.
type HIBPResult struct {
	Found bool
	Count int
}

// BreachChecker queries a Pwned Passwords compatible range API.
type BreachChecker struct {
	client *resty.Client
}

// NewBreachChecker returns a checker for baseURL; empty means HIBPBaseURL.
func NewBreachChecker(baseURL string, timeout time.Duration) *BreachChecker {
	if baseURL == "" {
		baseURL = HIBPBaseURL
	}
	if timeout <= 0 {
		timeout = hibpTimeout
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", hibpUserAgent)
	return &BreachChecker{client: cli}
}

// CheckHIBP queries the public HIBP range API with default settings.
func CheckHIBP(ctx context.Context, pw []byte) (HIBPResult, error) {
	return NewBreachChecker("", 0).Check(ctx, pw)
}

// Check looks pw up using k-anonymity: only the first 5 hex characters of
// SHA1(pw) leave the process. The response is padded, and padding rows
// (count 0) never count as a match. Network and HTTP errors are returned
// wrapped; callers decide whether to fail open or closed.
func (c *BreachChecker) Check(ctx context.Context, pw []byte) (HIBPResult, error) {
	var result HIBPResult

	sum := sha1.Sum(pw)
	hashHex := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix := hashHex[:5]
	suffix := hashHex[5:]

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Add-Padding", "true").
		Get("/range/" + prefix)
	if err != nil {
		return result, fmt.Errorf("hibp query: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return result, fmt.Errorf("hibp query: unexpected status %s", resp.Status())
	}

	scanner := bufio.NewScanner(bytes.NewReader(resp.Body()))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		partIdx := strings.IndexByte(line, ':')
		if partIdx == -1 {
			continue
		}

		lineSuffix := line[:partIdx]
		countStr := strings.TrimSpace(line[partIdx+1:])
		if !strings.EqualFold(lineSuffix, suffix) {
			continue
		}

		count, err := strconv.Atoi(countStr)
		if err != nil {
			return result, fmt.Errorf("hibp parse count: %w", err)
		}
		if count == 0 {
			return result, nil
		}

		result.Found = true
		result.Count = count
		return result, nil
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("hibp read response: %w", err)
	}

	return result, nil
}
