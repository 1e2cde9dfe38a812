package words

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// DefaultDictionaryURL is the free dictionary API entries endpoint.
const DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

const maxDictionaryBody = 1 << 20

// DictionaryAPI looks words up at BaseURL/{word}. A word is known when the
// response is a non-empty JSON array whose first element carries a "word" string.
type DictionaryAPI struct {
	BaseURL    string
	Client     *http.Client
	Timeout    time.Duration
	MaxRetries uint
	// InitialBackoff is the first retry delay; it grows exponentially.
	InitialBackoff time.Duration
}

// NewDictionaryAPI returns a client for baseURL with the given lookup timeout and
// number of retries after the first attempt.
func NewDictionaryAPI(baseURL string, timeout time.Duration, retries uint) *DictionaryAPI {
	return &DictionaryAPI{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Client:         &http.Client{},
		Timeout:        timeout,
		MaxRetries:     retries,
		InitialBackoff: 200 * time.Millisecond,
	}
}

type retryableStatus int

func (e retryableStatus) Error() string {
	return fmt.Sprintf("dictionary returned %d", int(e))
}

// Known reports whether the dictionary has an entry for word. Network errors,
// 429 and 5xx responses are retried; other non-2xx responses mean "not a word".
func (d *DictionaryAPI) Known(ctx context.Context, word string) (bool, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	endpoint := d.BaseURL + "/" + url.PathEscape(word)

	b := backoff.NewExponentialBackOff()
	if d.InitialBackoff > 0 {
		b.InitialInterval = d.InitialBackoff
	}
	attempt := 0
	return backoff.Retry(ctx, func() (bool, error) {
		attempt++
		return d.lookup(ctx, endpoint)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(d.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug().Err(err).Str("word", word).Int("attempt", attempt).Dur("retry_in", next).Msg("dictionary lookup retry")
		}),
	)
}

func (d *DictionaryAPI) lookup(ctx context.Context, endpoint string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, retryableStatus(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDictionaryBody))
	if err != nil {
		return false, err
	}
	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		log.Debug().Err(err).Str("url", endpoint).Msg("malformed dictionary response")
		return false, nil
	}
	if len(entries) == 0 {
		return false, nil
	}
	w, ok := entries[0]["word"].(string)
	return ok && w != "", nil
}
