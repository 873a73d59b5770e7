package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

const (
	listsTable    = "list-shopping"
	profilesTable = "profile"
)

// HTTPClientConfig configures the REST remote store client.
type HTTPClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type httpRemoteStore struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPRemoteStore builds a [RemoteStore] speaking a PostgREST-style REST
// API (two tables: "profile" and "list-shopping"). The item collection of a
// list is stored as a JSON string inside the row, matching the remote schema.
func NewHTTPRemoteStore(cfg HTTPClientConfig, log *logger.Logger) RemoteStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	if cfg.APIKey != "" {
		cli.SetHeader("apikey", cfg.APIKey)
		cli.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &httpRemoteStore{client: cli, logger: log}
}

// listRow is the remote wire representation of a shopping list. Items travel
// as a JSON string inside the row, not as a nested array.
type listRow struct {
	ID        string          `json:"id,omitempty"`
	ProfileID string          `json:"profile_id,omitempty"`
	Items     json.RawMessage `json:"items,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}

func (h *httpRemoteStore) FetchLists(ctx context.Context, profileID string) ([]models.List, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("profile_id", "eq."+profileID).
		SetQueryParam("order", "created_at.desc").
		Get("/rest/v1/" + listsTable)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch lists request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var rows []listRow
	if err = json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("%w: decode lists response: %v", ErrRemote, err)
	}

	lists := make([]models.List, 0, len(rows))
	for _, row := range rows {
		list, err := rowToList(row)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, nil
}

func (h *httpRemoteStore) CreateList(ctx context.Context, profileID string, items []models.Item) (models.List, error) {
	payload, err := encodeItems(items)
	if err != nil {
		return models.List{}, err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetBody([]listRow{{ProfileID: profileID, Items: payload}}).
		Post("/rest/v1/" + listsTable)
	if err != nil {
		return models.List{}, fmt.Errorf("%w: create list request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.List{}, err
	}

	return decodeSingleList(resp.Body())
}

func (h *httpRemoteStore) UpdateList(ctx context.Context, listID string, items []models.Item) (models.List, error) {
	payload, err := encodeItems(items)
	if err != nil {
		return models.List{}, err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+listID).
		SetBody(listRow{Items: payload}).
		Patch("/rest/v1/" + listsTable)
	if err != nil {
		return models.List{}, fmt.Errorf("%w: update list request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.List{}, err
	}

	return decodeSingleList(resp.Body())
}

func (h *httpRemoteStore) DeleteList(ctx context.Context, listID string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+listID).
		Delete("/rest/v1/" + listsTable)
	if err != nil {
		return fmt.Errorf("%w: delete list request: %v", ErrRemote, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) FetchProfiles(ctx context.Context) ([]models.Profile, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("order", "created_at.asc").
		Get("/rest/v1/" + profilesTable)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch profiles request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var profiles []models.Profile
	if err = json.Unmarshal(resp.Body(), &profiles); err != nil {
		return nil, fmt.Errorf("%w: decode profiles response: %v", ErrRemote, err)
	}
	return profiles, nil
}

func (h *httpRemoteStore) CreateProfile(ctx context.Context, name string) (models.Profile, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetBody([]models.Profile{{Name: name}}).
		Post("/rest/v1/" + profilesTable)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: create profile request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Profile{}, err
	}

	var profiles []models.Profile
	if err = json.Unmarshal(resp.Body(), &profiles); err != nil {
		return models.Profile{}, fmt.Errorf("%w: decode profile response: %v", ErrRemote, err)
	}
	if len(profiles) == 0 {
		return models.Profile{}, fmt.Errorf("%w: empty create profile representation", ErrRemote)
	}
	return profiles[0], nil
}

func (h *httpRemoteStore) FetchProfile(ctx context.Context, id string) (models.Profile, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Get("/rest/v1/" + profilesTable)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: fetch profile request: %v", ErrRemote, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Profile{}, err
	}

	var profiles []models.Profile
	if err = json.Unmarshal(resp.Body(), &profiles); err != nil {
		return models.Profile{}, fmt.Errorf("%w: decode profile response: %v", ErrRemote, err)
	}
	if len(profiles) == 0 {
		return models.Profile{}, fmt.Errorf("fetch profile %s: %w", id, ErrNotFound)
	}
	return profiles[0], nil
}

func (h *httpRemoteStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Head("/rest/v1/" + profilesTable)
	if err != nil {
		return fmt.Errorf("%w: ping request: %v", ErrRemote, err)
	}

	return mapHTTPError(resp)
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	if code == http.StatusNotFound {
		return fmt.Errorf("http %d: %w", code, ErrNotFound)
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}
	return fmt.Errorf("%w: http %d: %s", ErrRemote, code, body)
}

// decodeSingleList parses a return=representation body. PostgREST answers
// writes with an array; an empty array on PATCH means the filter matched no
// row.
func decodeSingleList(body []byte) (models.List, error) {
	var rows []listRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return models.List{}, fmt.Errorf("%w: decode list representation: %v", ErrRemote, err)
	}
	if len(rows) == 0 {
		return models.List{}, fmt.Errorf("write representation empty: %w", ErrNotFound)
	}
	return rowToList(rows[0])
}

func rowToList(row listRow) (models.List, error) {
	items, err := decodeItems(row.Items)
	if err != nil {
		return models.List{}, err
	}
	return models.List{
		ID:        row.ID,
		ProfileID: row.ProfileID,
		Items:     items,
		CreatedAt: row.CreatedAt,
	}, nil
}

// encodeItems serialises items as a JSON string value, the shape the remote
// schema stores in its text column.
func encodeItems(items []models.Item) (json.RawMessage, error) {
	if items == nil {
		items = []models.Item{}
	}
	inner, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	outer, err := json.Marshal(string(inner))
	if err != nil {
		return nil, fmt.Errorf("encode items column: %w", err)
	}
	return outer, nil
}

// decodeItems accepts both encodings seen in the wild: a JSON string wrapping
// the array (the stored form) and a plain array.
func decodeItems(raw json.RawMessage) ([]models.Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []models.Item{}, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return []models.Item{}, nil
		}
		raw = json.RawMessage(asString)
	}

	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decode items column: %v", ErrRemote, err)
	}
	return items, nil
}
