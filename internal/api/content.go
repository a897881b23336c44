package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
)

// ListResult carries a fetched entity list. Degraded is true when the
// rows came from the static fallback documents instead of the API.
type ListResult[T any] struct {
	Items    []T
	Degraded bool
}

// List fetches all records of an entity. When the server is unreachable
// it falls back to the static JSON document for that entity; any other
// failure is returned as-is. Mutations never fall back.
func List[T any](ctx context.Context, c *Client, entity string) (ListResult[T], error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/"+entity, nil)
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			items, fbErr := c.readFallback(entity)
			if fbErr != nil {
				return ListResult[T]{}, err
			}
			var out []T
			if decErr := json.Unmarshal(items, &out); decErr != nil {
				return ListResult[T]{}, err
			}
			logger.Warn("Serving entity from static fallback", logger.F("entity", entity))
			return ListResult[T]{Items: out, Degraded: true}, nil
		}
		return ListResult[T]{}, err
	}

	var out []T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return ListResult[T]{}, fmt.Errorf("failed to decode %s list: %w", entity, err)
	}
	return ListResult[T]{Items: out}, nil
}

// Create creates a record and returns the server's copy.
func Create[T any](ctx context.Context, c *Client, entity string, record T) (T, error) {
	var out T
	env, err := c.do(ctx, http.MethodPost, "/api/v1/"+entity, record)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode created %s: %w", entity, err)
	}
	return out, nil
}

// Update replaces a record by ID and returns the server's copy.
func Update[T any](ctx context.Context, c *Client, entity, id string, record T) (T, error) {
	var out T
	env, err := c.do(ctx, http.MethodPut, "/api/v1/"+entity+"/"+id, record)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode updated %s: %w", entity, err)
	}
	return out, nil
}

// Delete removes a record by ID.
func Delete(ctx context.Context, c *Client, entity, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/"+entity+"/"+id, nil)
	return err
}

// MarkMessageRead flags a contact message as read.
func (c *Client) MarkMessageRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/messages/"+id+"/read", nil)
	return err
}

// readFallback loads the static fallback document for an entity. The
// documents use the same envelope shape the API returns.
func (c *Client) readFallback(entity string) (json.RawMessage, error) {
	if c.fallbackDir == "" {
		return nil, errors.New("no fallback directory configured")
	}

	data, err := os.ReadFile(filepath.Join(c.fallbackDir, entity+".json"))
	if err != nil {
		return nil, err
	}

	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad fallback document for %s: %w", entity, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("fallback document for %s marked unsuccessful", entity)
	}
	return env.Data, nil
}
