package commands

import (
	"context"
)

// Dev runs the function like Serve and reloads the config file on change
func (c *Controller) Dev(ctx context.Context, opts ...ServeOptions) error {
	var options ServeOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	options.Watch = true

	return c.Serve(ctx, options)
}
