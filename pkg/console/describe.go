package console

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-toolform/internal/apidoc"
	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/orchestrator"
)

// Describe builds the API document for tools, fetching each tool's form.
// Tools whose details cannot be loaded are listed without a schema.
func (c *Console) Describe(ctx context.Context, tools []client.Tool) (*openapi3.T, error) {
	entries := make([]apidoc.Tool, 0, len(tools))
	for _, tool := range tools {
		entry := apidoc.Tool{ID: tool.ID, Name: tool.Name, Description: tool.Description}
		built, err := c.forms.Form(ctx, orchestrator.Request{ToolID: tool.ID})
		if err != nil {
			c.logger.Warn().Err(err).Str("tool", tool.ID).Msg("describe: skip tool schema")
		} else {
			form := built.Form
			entry.Form = &form
		}
		entries = append(entries, entry)
	}
	info := apidoc.Info{Title: "Tool backend"}
	if base, ok := c.backend.(interface{ BaseURL() string }); ok {
		info.ServerURL = base.BaseURL()
	}
	return apidoc.Build(ctx, info, entries)
}
