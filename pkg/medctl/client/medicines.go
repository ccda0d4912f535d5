package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

type MedicineService struct {
	client *Client
}

func (c *Client) Medicines() *MedicineService {
	return &MedicineService{client: c}
}

// Create posts doc to the collection. The document is sent byte for byte.
func (m *MedicineService) Create(ctx context.Context, doc json.RawMessage) (*Response, error) {
	if len(doc) == 0 {
		return nil, errors.New("request document is empty")
	}
	return m.client.do(ctx, http.MethodPost, "", nil, doc)
}

func (m *MedicineService) List(ctx context.Context) (*Response, error) {
	return m.client.do(ctx, http.MethodGet, "", nil, nil)
}

func (m *MedicineService) Get(ctx context.Context, id int64) (*Response, error) {
	return m.client.do(ctx, http.MethodGet, strconv.FormatInt(id, 10), nil, nil)
}

func (m *MedicineService) Update(ctx context.Context, id int64, doc json.RawMessage) (*Response, error) {
	if len(doc) == 0 {
		return nil, errors.New("request document is empty")
	}
	return m.client.do(ctx, http.MethodPut, strconv.FormatInt(id, 10), nil, doc)
}

func (m *MedicineService) Delete(ctx context.Context, id int64) (*Response, error) {
	return m.client.do(ctx, http.MethodDelete, strconv.FormatInt(id, 10), nil, nil)
}

func (m *MedicineService) Search(ctx context.Context, name string) (*Response, error) {
	return m.client.do(ctx, http.MethodGet, "search", url.Values{"name": []string{name}}, nil)
}

// CountItems returns the number of elements in a JSON array body.
func CountItems(resp *Response) (int, error) {
	var items []json.RawMessage
	if err := resp.Decode(&items); err != nil {
		return 0, err
	}
	return len(items), nil
}
