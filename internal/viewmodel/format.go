package viewmodel

import (
	"net/url"
	"strings"

	"github.com/zendhq/zend-site/internal/models"
)

// TruncateHash shortens a transaction hash to its first 6 and last 4
// characters. Hashes of 10 characters or fewer are returned unchanged.
func TruncateHash(hash string) string {
	return truncate(hash, 10, 6, 4)
}

// TruncateAddress shortens an account address to its first 10 and last 6
// characters. Addresses of 20 characters or fewer are returned unchanged.
func TruncateAddress(address string) string {
	return truncate(address, 20, 10, 6)
}

// ShortID is the table form of a transaction id: its last 8 characters.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[len(r)-8:])
}

func truncate(s string, keepBelow, head, tail int) string {
	r := []rune(s)
	if len(r) <= keepBelow {
		return s
	}
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

// Tone is the badge style a transaction status renders with.
type Tone string

// Badge tones.
const (
	ToneSuccess   Tone = "success"
	ToneWarning   Tone = "warning"
	ToneSecondary Tone = "secondary"
)

// StatusTone maps a status onto its badge style. Unknown statuses get the
// secondary style.
func StatusTone(status models.TransactionStatus) Tone {
	switch models.TransactionStatus(strings.ToLower(string(status))) {
	case models.StatusCompleted:
		return ToneSuccess
	case models.StatusPending:
		return ToneWarning
	default:
		return ToneSecondary
	}
}

// ExplorerURL links a transaction hash to the block explorer rooted at base.
func ExplorerURL(base, hash string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(hash)
}
