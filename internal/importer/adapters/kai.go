package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/seiseki/internal/domain/games"
	"github.com/okian/seiseki/internal/importer/convert"
	"github.com/okian/seiseki/internal/importer/ugs"
)

// KaiSDVX imports a user's SDVX play history from a Kai-family score API
// (FLO, EAG, MIN). Pages are fetched lazily as the iterator advances, so a
// large history does not sit in memory all at once.
type KaiSDVX struct {
	conv    *convert.Converter
	client  *http.Client
	baseURL string
	token   string
	service string
}

// NewKaiSDVX creates an adapter for the Kai network at baseURL. service is
// the network's display name, recorded on every score. client may be nil to
// use http.DefaultClient.
func NewKaiSDVX(conv *convert.Converter, client *http.Client, baseURL, token, service string) *KaiSDVX {
	if client == nil {
		client = http.DefaultClient
	}
	return &KaiSDVX{
		conv:    conv,
		client:  client,
		baseURL: baseURL,
		token:   token,
		service: service,
	}
}

func (k *KaiSDVX) ImportType() string { return "api/kai-sdvx" }

func (k *KaiSDVX) Game() games.Game { return games.SDVX }

// kaiPage is one page of the play-history endpoint. Links.Next is empty on
// the last page.
type kaiPage struct {
	Items []*convert.KaiSDVXScore `json:"_items"`
	Links struct {
		Next string `json:"_next"`
	} `json:"_links"`
}

func (k *KaiSDVX) Parse(ctx context.Context) (Iterator, error) {
	first := k.baseURL + "/api/sdvx/v1/play_history"
	page, err := k.fetchPage(ctx, first)
	if err != nil {
		return nil, convert.Fatal("fetching kai play history: %v", err)
	}
	return &kaiIterator{adapter: k, page: page}, nil
}

func (k *KaiSDVX) fetchPage(ctx context.Context, url string) (*kaiPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+k.token)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kai api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var page kaiPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("malformed kai page: %w", err)
	}
	return &page, nil
}

// kaiIterator walks pages, fetching the next when the current is drained.
type kaiIterator struct {
	adapter *KaiSDVX
	page    *kaiPage
	i       int
}

func (it *kaiIterator) Next(ctx context.Context) (interface{}, bool, error) {
	for it.i >= len(it.page.Items) {
		if it.page.Links.Next == "" {
			return nil, false, nil
		}
		page, err := it.adapter.fetchPage(ctx, it.page.Links.Next)
		if err != nil {
			return nil, false, fmt.Errorf("fetching kai page: %w", err)
		}
		it.page = page
		it.i = 0
	}

	item := it.page.Items[it.i]
	it.i++
	return item, true, nil
}

func (k *KaiSDVX) Convert(ctx context.Context, raw interface{}) (*convert.Output, error) {
	rec, ok := raw.(*convert.KaiSDVXScore)
	if !ok {
		return nil, convert.Internal(raw, "kai adapter received foreign record type %T", raw)
	}
	return k.conv.KaiSDVX(ctx, rec, k.service)
}

func (k *KaiSDVX) ClassHandler() ugs.ClassHandler { return nil }
