// Package mcpapi provides a stateless MCP streamable-HTTP adapter over the preview snapshot.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/nametag/internal/adapters/server/common"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing read-only nametag tools.
func NewHandler(cfg Config, preview common.PreviewService) (*Handler, error) {
	if preview == nil {
		return nil, fmt.Errorf("preview service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerSummaryTool(mcpSrv, preview)
	registerCompetitorTools(mcpSrv, preview)
	registerPageTools(mcpSrv, preview)
	registerRoundTools(mcpSrv, preview)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "nametag"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerSummaryTool registers `nametag.get_summary`.
func registerSummaryTool(srv *mcpserver.MCPServer, preview common.PreviewService) {
	srv.AddTool(
		mcp.NewTool(
			"nametag.get_summary",
			mcp.WithDescription("Return headline counts, layout, and warning totals for the built name tags."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summary, err := preview.Summary(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_summary", summary)
		},
	)
	srv.AddTool(
		mcp.NewTool(
			"nametag.list_diagnostics",
			mcp.WithDescription("List aggregated build warnings by kind with sample details."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			diags, err := preview.Diagnostics(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_diagnostics", map[string]any{"items": diags})
		},
	)
}

// registerCompetitorTools registers competitor list and lookup tools.
func registerCompetitorTools(srv *mcpserver.MCPServer, preview common.PreviewService) {
	srv.AddTool(
		mcp.NewTool(
			"nametag.list_competitors",
			mcp.WithDescription("List competitors in print order with optional filters."),
			mcp.WithString("query", mcp.Description("Case-insensitive name substring or exact WCA id")),
			mcp.WithString("country", mcp.Description("ISO2 country code")),
			mcp.WithString("role", mcp.Description("Declared role or assigned duty")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows (0 = all)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items, err := preview.ListCompetitors(ctx, common.ListCompetitorsRequest{
				Query:   req.GetString("query", ""),
				Country: req.GetString("country", ""),
				Role:    req.GetString("role", ""),
				Limit:   req.GetInt("limit", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_competitors", map[string]any{"items": items})
		},
	)
	srv.AddTool(
		mcp.NewTool(
			"nametag.get_competitor",
			mcp.WithDescription("Return one competitor with grouped round duties."),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based print index")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			index, err := req.RequireInt("index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			detail, err := preview.GetCompetitor(ctx, index)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_competitor", detail)
		},
	)
}

// registerPageTools registers page list and lookup tools.
func registerPageTools(srv *mcpserver.MCPServer, preview common.PreviewService) {
	srv.AddTool(
		mcp.NewTool(
			"nametag.list_pages",
			mcp.WithDescription("List printed pages with slot and placeholder counts. Pass number for one page's slots."),
			mcp.WithNumber("number", mcp.Description("Optional 1-based page number")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if number := req.GetInt("number", 0); number != 0 {
				detail, err := preview.GetPage(ctx, number)
				if err != nil {
					return toolResultFromError(err), nil
				}
				return jsonResult("list_pages", detail)
			}
			pages, err := preview.ListPages(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_pages", map[string]any{"items": pages})
		},
	)
}

// registerRoundTools registers `nametag.list_rounds`.
func registerRoundTools(srv *mcpserver.MCPServer, preview common.PreviewService) {
	srv.AddTool(
		mcp.NewTool(
			"nametag.list_rounds",
			mcp.WithDescription("List round windows in canonical event order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rounds, err := preview.ListRounds(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_rounds", map[string]any{"items": rounds})
		},
	)
}

func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps adapter errors into MCP tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrNotReady):
		return mcp.NewToolResultError("not_ready: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
