// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/wirebind/wirebind/rest/endpoint"
	"github.com/wirebind/wirebind/wire"
)

// Item is the resource served by this service.
type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// ItemList is a page of items.
type ItemList struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type store struct {
	log *slog.Logger

	mu     sync.Mutex
	nextID int
	items  map[int]Item
}

func newStore(h slog.Handler) *store {
	return &store{
		log:    slog.New(h),
		nextID: 1,
		items:  make(map[int]Item),
	}
}

func (s *store) create(item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item
}

func (s *store) get(id int) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	return item, ok
}

func (s *store) delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *store) list(limit, offset int) ItemList {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	list := ItemList{
		Items: make([]Item, 0, limit),
		Total: len(ids),
	}
	for _, id := range ids {
		if offset > 0 {
			offset--
			continue
		}
		if len(list.Items) == limit {
			break
		}
		list.Items = append(list.Items, s.items[id])
	}
	return list
}

// GetItemRequest binds the item id from the path and an optional
// verbosity flag from the query string.
type GetItemRequest struct {
	ID      int  `path:"id"`
	Verbose bool `query:"verbose" default:"false"`
}

type getItemHandler struct {
	store *store
}

func (h getItemHandler) Handle(ctx context.Context, req GetItemRequest) (Item, error) {
	item, ok := h.store.get(req.ID)
	if !ok {
		return Item{}, endpoint.NewHttpError(404, "item not found")
	}

	if req.Verbose {
		h.store.log.InfoContext(ctx, "fetched item",
			slog.Int("id", item.ID),
			slog.String("name", item.Name),
		)
	}
	return item, nil
}

// ListItemsRequest binds paging parameters from the query string.
type ListItemsRequest struct {
	Limit  int `query:"limit" default:"10"`
	Offset int `query:"offset" default:"0"`
}

type listItemsHandler struct {
	store *store
}

func (h listItemsHandler) Handle(ctx context.Context, req ListItemsRequest) (ItemList, error) {
	return h.store.list(req.Limit, req.Offset), nil
}

// CreateItemRequest binds the new item from the request body. The raw
// request is also injected for logging the callers user agent.
type CreateItemRequest struct {
	Item Item
	Req  *wire.Request
}

type createItemHandler struct {
	store *store
}

func (h createItemHandler) Handle(ctx context.Context, req CreateItemRequest) (Item, error) {
	if req.Item.Name == "" {
		return Item{}, endpoint.NewHttpError(422, "item name must not be empty")
	}

	item := h.store.create(req.Item)
	userAgent, _ := req.Req.Headers.Get("User-Agent")
	h.store.log.InfoContext(ctx, "created item",
		slog.Int("id", item.ID),
		slog.Any("user_agent", userAgent),
	)
	return item, nil
}

// DeleteItemRequest binds the item id from the path and requires an
// Authorization header.
type DeleteItemRequest struct {
	ID   int    `path:"id"`
	Auth string `header:"Authorization"`
}

type deleteItemHandler struct {
	store *store
}

func (h deleteItemHandler) Handle(ctx context.Context, req DeleteItemRequest) (endpoint.Empty, error) {
	if req.Auth == "" {
		return endpoint.Empty{}, endpoint.NewHttpError(401, "missing authorization")
	}

	ok := h.store.delete(req.ID)
	if !ok {
		return endpoint.Empty{}, endpoint.NewHttpError(404, "item not found")
	}
	return endpoint.Empty{}, nil
}

// WhoAmIRequest binds the callers session from a cookie.
type WhoAmIRequest struct {
	Session string `cookie:"session" default:"anonymous"`
}

// WhoAmIResponse echoes the callers session back.
type WhoAmIResponse struct {
	Session string `json:"session"`
}

type whoAmIHandler struct{}

func (whoAmIHandler) Handle(ctx context.Context, req WhoAmIRequest) (WhoAmIResponse, error) {
	return WhoAmIResponse{Session: req.Session}, nil
}
