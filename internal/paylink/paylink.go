// Package paylink builds payment-request URIs for person ledger entries.
// Links are only constructed; nothing here verifies that a payment happens.
package paylink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/theirongolddev/stipend/internal/model"
)

// DefaultScheme is the URI scheme UPI apps register for pay requests.
const DefaultScheme = "upi"

// ErrPaymentIDMissing is returned when the owner has not configured a payment id.
var ErrPaymentIDMissing = errors.New("no payment id configured: set one with `stipend profile --payment-id <id>`")

type options struct {
	scheme string
}

// Option configures Build.
type Option func(*options)

// WithScheme overrides the URI scheme.
func WithScheme(scheme string) Option {
	return func(o *options) {
		if scheme != "" {
			o.scheme = scheme
		}
	}
}

// Build returns a pay-request URI asking for pt.Amount to be paid to ownerPaymentID.
// pa is the recipient, am the amount and tn the note. All values are query-escaped.
func Build(pt model.PersonTransaction, ownerPaymentID string, opts ...Option) (string, error) {
	ownerPaymentID = strings.TrimSpace(ownerPaymentID)
	if ownerPaymentID == "" {
		return "", ErrPaymentIDMissing
	}

	o := options{scheme: DefaultScheme}
	for _, opt := range opts {
		opt(&o)
	}

	// url.Values.Encode sorts keys; UPI apps expect pa first, so build the query by hand.
	var q strings.Builder
	q.WriteString("pa=")
	q.WriteString(url.QueryEscape(ownerPaymentID))
	q.WriteString("&am=")
	q.WriteString(url.QueryEscape(pt.Amount.String()))
	q.WriteString("&tn=")
	q.WriteString(url.QueryEscape(pt.Notes))

	u := url.URL{Scheme: o.scheme, Host: "pay", RawQuery: q.String()}
	return u.String(), nil
}

// Open hands link to the platform's default URI handler. The handler is
// detached: it keeps running after ctx is done, so ctx only gates the start.
func Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", link)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.Command("xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", link, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
