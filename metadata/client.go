// Package metadata queries the remote card metadata service (Scryfall).
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	scryfall "github.com/BlueMonday/go-scryfall"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/jeandeaual/mtga-setswapper/log"
)

const (
	// DefaultBaseURL is the Scryfall API endpoint.
	DefaultBaseURL = "https://api.scryfall.com"
	// DefaultDelay is the delay between two requests.
	// See https://scryfall.com/docs/api#rate-limits-and-good-citizenship
	DefaultDelay = 100 * time.Millisecond
)

// ErrNotFound is returned when the service doesn't know a card or a set.
var ErrNotFound = errors.New("not found on the metadata service")

// Client wraps a Scryfall client with a fixed delay between requests.
type Client struct {
	baseURL    string
	scryfall   *scryfall.Client
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL changes the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets the client used for direct fetches and downloads.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithDelay sets the delay enforced between two requests. Zero disables it.
func WithDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// NewClient creates a new metadata client.
func NewClient(options ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Every(DefaultDelay), 1),
	}

	for _, option := range options {
		option(c)
	}

	client, err := scryfall.NewClient(scryfall.WithBaseURL(c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("couldn't create the Scryfall client: %w", err)
	}
	c.scryfall = client

	return c, nil
}

// BaseURL returns the API endpoint used by the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// SearchByName returns the first printing whose name is exactly name.
func (c *Client) SearchByName(ctx context.Context, name string) (scryfall.Card, error) {
	if err := c.wait(ctx); err != nil {
		return scryfall.Card{}, err
	}

	resp, err := c.scryfall.SearchCards(ctx, `!"`+name+`"`, scryfall.SearchCardsOptions{})
	if err != nil {
		return scryfall.Card{}, wrapError(err, "couldn't search for "+name)
	}

	if len(resp.Cards) == 0 {
		return scryfall.Card{}, fmt.Errorf("%w: no card named %s", ErrNotFound, name)
	}

	return resp.Cards[0], nil
}

// SearchSet returns every printing of a set, following the result pages.
func (c *Client) SearchSet(ctx context.Context, setCode string) ([]scryfall.Card, error) {
	var cards []scryfall.Card

	query := "set:" + strings.ToLower(strings.TrimSpace(setCode))

	for page := 1; ; page++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		log.Debugf("Querying page %d of %s", page, query)

		resp, err := c.scryfall.SearchCards(ctx, query, scryfall.SearchCardsOptions{Page: page})
		if err != nil {
			return nil, wrapError(err, "couldn't fetch set "+setCode)
		}

		cards = append(cards, resp.Cards...)

		if !resp.HasMore {
			break
		}
	}

	log.Infof("Fetched %d printings from set %s", len(cards), strings.ToUpper(setCode))

	return cards, nil
}

// Fetch returns the printing a locator points to.
// Locators can be API URLs (by ID or by set and collector number) or
// Scryfall web page URLs.
func (c *Client) Fetch(ctx context.Context, locator string) (scryfall.Card, error) {
	apiURL, id, err := ParseLocator(locator, c.baseURL)
	if err != nil {
		return scryfall.Card{}, err
	}

	if err := c.wait(ctx); err != nil {
		return scryfall.Card{}, err
	}

	if id != "" {
		log.Debugf("Querying card %s", id)
		card, err := c.scryfall.GetCard(ctx, id)
		if err != nil {
			return card, wrapError(err, "couldn't fetch card "+id)
		}
		return card, nil
	}

	return c.fetchURL(ctx, apiURL)
}

func (c *Client) fetchURL(ctx context.Context, apiURL string) (card scryfall.Card, err error) {
	log.Debugf("Querying %s", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		err = fmt.Errorf("couldn't create request for %s: %w", apiURL, err)
		return
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("couldn't query %s: %w", apiURL, err)
		return
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		err = fmt.Errorf("%w: %s", ErrNotFound, apiURL)
		return
	} else if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("bad status for %s: %s", apiURL, resp.Status)
		return
	}

	if err = json.NewDecoder(resp.Body).Decode(&card); err != nil {
		err = fmt.Errorf("couldn't decode the response from %s: %w", apiURL, err)
	}

	return
}

// Download saves the resource at url to path on fs.
func (c *Client) Download(ctx context.Context, fs afero.Fs, url, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("couldn't create request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error while downloading %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// Check server response
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status for %s: %s", url, resp.Status)
	}

	output, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("error while creating %s: %w", path, err)
	}
	defer func() {
		if cerr := output.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := io.Copy(output, resp.Body)
	if err != nil {
		return fmt.Errorf("error while downloading %s: %w", url, err)
	}

	log.Debugf("Downloaded file %s to %s (%d bytes)", url, path, n)

	return nil
}

// ParseLocator converts a card locator to an API URL. If the locator
// addresses a card by its Scryfall ID, the ID is returned as well.
func ParseLocator(locator, baseURL string) (apiURL string, id string, err error) {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid card locator %q", locator)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	// Web page URL: https://scryfall.com/card/<set>/<number>/<slug>
	if (u.Host == "scryfall.com" || u.Host == "www.scryfall.com") && len(segments) >= 3 && segments[0] == "card" {
		return strings.TrimSuffix(baseURL, "/") + "/cards/" + segments[1] + "/" + segments[2], "", nil
	}

	u.RawQuery = ""
	u.Fragment = ""

	if len(segments) == 2 && segments[0] == "cards" {
		if parsed, perr := uuid.Parse(segments[1]); perr == nil {
			return u.String(), parsed.String(), nil
		}
	}

	return u.String(), "", nil
}

func wrapError(err error, msg string) error {
	var sfErr *scryfall.Error
	if errors.As(err, &sfErr) && sfErr.Status == http.StatusNotFound {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// ImageURL returns the image to download for a printing: the art crop, or the
// full card image when fullCard is set. Double-faced cards use their front face.
func ImageURL(c scryfall.Card, fullCard bool) string {
	uris := c.ImageURIs
	if uris == nil && len(c.CardFaces) > 0 {
		uris = &c.CardFaces[0].ImageURIs
	}

	if uris == nil {
		log.Warnw("No image data available", "card", c.Name)
		return ""
	}

	if fullCard {
		return uris.PNG
	}
	return uris.ArtCrop
}

// PageURL returns the web page of a printing, without the tracking query.
func PageURL(c scryfall.Card) string {
	if i := strings.IndexByte(c.ScryfallURI, '?'); i >= 0 {
		return c.ScryfallURI[:i]
	}
	return c.ScryfallURI
}

// SetNumber is a convenience for logging a printing.
func SetNumber(c scryfall.Card) string {
	return strings.ToUpper(c.Set) + "-" + c.CollectorNumber
}
