package onepassword

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetItemOptions narrows an item lookup.
type GetItemOptions struct {
	IncludeTrash bool
	Vault        string
}

// Client reads items through the 1Password CLI.
type Client struct {
	runner *Runner
}

// NewClient creates a client with its own Runner.
func NewClient(cfg Config) *Client {
	return &Client{runner: NewRunner(cfg)}
}

// Runner returns the runner the client executes through.
func (c *Client) Runner() *Runner {
	return c.runner
}

// GetItem fetches the item identified by id with `op get item`.
func (c *Client) GetItem(ctx context.Context, id string, opts GetItemOptions) (*Item, error) {
	args := []string{"item"}
	if opts.IncludeTrash {
		args = append(args, "--include-trash")
	}
	if opts.Vault != "" {
		args = append(args, "--vault", opts.Vault)
	}
	args = append(args, id)

	out, err := c.runner.RunCommand(ctx, "get", args...)
	if err != nil {
		return nil, err
	}

	var item Item
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		return nil, fmt.Errorf("failed to parse 1Password item %q: %w", id, err)
	}
	item.raw = json.RawMessage(out)
	return &item, nil
}

// Close releases the session token.
func (c *Client) Close() {
	c.runner.Close()
}
