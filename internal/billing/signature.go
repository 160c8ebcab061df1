// Package billing processes payment-processor webhooks that drive
// subscription state on user profiles.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the webhook signature header name.
const SignatureHeader = "X-Billing-Signature"

// DefaultTolerance bounds how old a signed timestamp may be. Replays outside
// the window are rejected even with a valid MAC.
const DefaultTolerance = 5 * time.Minute

// Sign produces the signature header value for a payload at the given time:
// "t=<unix>,v1=<hex hmac-sha256 of "<unix>.<payload>">".
func Sign(secret []byte, payload []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := computeMAC(secret, ts, payload)
	return "t=" + ts + ",v1=" + mac
}

// VerifySignature checks a webhook signature header against the payload.
// The MAC comparison is constant-time. An empty secret never verifies.
func VerifySignature(secret []byte, payload []byte, header string, now time.Time, tolerance time.Duration) error {
	if len(secret) == 0 {
		return fmt.Errorf("webhook secret not configured")
	}
	ts, mac, err := parseHeader(header)
	if err != nil {
		return err
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid signature timestamp")
	}
	age := now.Sub(time.Unix(unix, 0))
	if age < 0 {
		age = -age
	}
	if tolerance > 0 && age > tolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	expected := computeMAC(secret, ts, payload)
	if !hmac.Equal([]byte(expected), []byte(mac)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func computeMAC(secret []byte, ts string, payload []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(ts))
	h.Write([]byte("."))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func parseHeader(header string) (ts, mac string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			mac = value
		}
	}
	if ts == "" || mac == "" {
		return "", "", fmt.Errorf("malformed signature header")
	}
	return ts, mac, nil
}
