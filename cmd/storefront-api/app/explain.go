package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/service/storefront"
)

// providerRequest is the printable form of a catalog.SearchRequest
type providerRequest struct {
	Query      string          `json:"query"`
	Collection string          `json:"collection,omitempty"`
	SortKey    catalog.SortKey `json:"sortKey"`
	Reverse    bool            `json:"reverse"`
}

// explanation is what the explain command prints
type explanation struct {
	Path          string                `json:"path"`
	State         filters.State         `json:"state"`
	FreeText      string                `json:"freeText,omitempty"`
	Sort          catalog.SortOption    `json:"sort"`
	Refined       bool                  `json:"refined"`
	Filtered      providerRequest       `json:"filtered"`
	Universe      *providerRequest      `json:"universe,omitempty"`
	ActiveFilters []filters.FilterValue `json:"activeFilters"`
	ClearAllHref  string                `json:"clearAllHref,omitempty"`
}

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [query string]",
		Short: "Show how a storefront request translates into provider searches",
		Long: `Parse a raw storefront query string and listing path and print the derived
filter state, the provider requests a search would send and the active filter chips.
No provider is contacted.`,
		Example: `  storefront-api explain 'tag=gold&option:Ring%20Size=7&minPrice=10' --path /search/rings`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("path")
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			return writeExplanation(cmd.OutOrStdout(), explain(raw, path), format)
		},
	}
	cmd.Flags().String("path", "/search", "Listing path; /search/<handle> scopes to a collection")
	cmd.Flags().String("format", "json", "Output format (json or yaml)")
	return cmd
}

func explain(raw, path string) explanation {
	params := filters.ParseQuery(raw)
	plan := storefront.PlanSearch(params, path)

	out := explanation{
		Path:          path,
		State:         plan.State,
		FreeText:      plan.FreeText,
		Sort:          plan.Sort,
		Refined:       plan.Refined,
		Filtered:      toProviderRequest(plan.Filtered),
		ActiveFilters: filters.ActiveFilters(plan.State),
	}
	if out.ActiveFilters == nil {
		out.ActiveFilters = []filters.FilterValue{}
	}
	if plan.Refined {
		universe := toProviderRequest(plan.Universe)
		out.Universe = &universe
	}
	if !plan.State.IsEmpty() {
		next, clearPath := filters.ClearAll(params, path)
		out.ClearAllHref = filters.Href(clearPath, next)
	}
	return out
}

func toProviderRequest(req catalog.SearchRequest) providerRequest {
	return providerRequest{
		Query:      req.Query,
		Collection: req.Collection,
		SortKey:    req.SortKey,
		Reverse:    req.Reverse,
	}
}

// writeExplanation renders e as JSON, or as YAML converted from the JSON form
// so both formats share the same field names.
func writeExplanation(w io.Writer, e explanation, format string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode explanation: %w", err)
	}

	switch format {
	case "json", "":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to convert explanation: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to encode explanation as YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported format %q (expected json or yaml)", format)
	}
}
