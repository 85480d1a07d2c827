package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okra-platform/utilfn/internal/functions"
)

// Invoke runs one operation locally and writes the JSON body to out. An error
// result is still written before Invoke returns an error for it.
func (c *Controller) Invoke(ctx context.Context, params functions.Params, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := c.logger("invoke")
	logger.Debug().Interface("params", params).Msg("invoking operation")

	result := functions.NewDispatcher().Dispatch(params)

	data, err := json.Marshal(result.Body)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if result.IsError() {
		return fmt.Errorf("operation failed with status %d: %v", result.Status, result.Body["error"])
	}
	return nil
}
