package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tabletcanvas/internal/capture"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with tools for canvas operations, so a
// notebook agent can pull tablet sketches without touching the web UI.
func NewServer(svc *capture.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Tablet Canvas",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: capture_diagram - Run the capture-and-present action
	s.AddTool(
		mcp.NewTool("capture_diagram",
			mcp.WithDescription("Capture the newest tablet screenshot into the diagram folder and return ready-to-paste Markdown. Use this after the user has drawn something on their tablet."),
			mcp.WithString("source",
				mcp.Description("Optional capture source: 'adb' (USB), 'screen' (grab this machine's display), 'folder' (newest OS screenshot) or 'auto' (default from config)"),
			),
		),
		handleCaptureDiagram(svc),
	)

	// Tool: latest_screenshot - Locate without copying
	s.AddTool(
		mcp.NewTool("latest_screenshot",
			mcp.WithDescription("Return the path of the most recently modified screenshot (.png, .jpg, .jpeg) in the screenshot directory, without copying it."),
			mcp.WithString("dir",
				mcp.Description("Optional directory to scan (default: the configured screenshot directory)"),
			),
		),
		handleLatestScreenshot(svc),
	)

	// Tool: list_diagrams - List captured diagrams
	s.AddTool(
		mcp.NewTool("list_diagrams",
			mcp.WithDescription("List previously captured diagrams in the diagram folder, newest first."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of diagrams to return (default: 20)"),
			),
		),
		handleListDiagrams(svc),
	)

	// Tool: canvas_config - Show the active configuration
	s.AddTool(
		mcp.NewTool("canvas_config",
			mcp.WithDescription("Show the active canvas configuration: tablet UI URL, screenshot directory, diagram directory and capture source."),
		),
		handleCanvasConfig(svc),
	)

	return s
}

func handleCaptureDiagram(svc *capture.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		src := capture.Source(req.GetString("source", ""))

		c, err := svc.CaptureFrom(ctx, src)
		if errors.Is(err, capture.ErrNoScreenshot) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"no screenshot found in %s; take an OS screenshot as .png, .jpg or .jpeg first",
				svc.Config().ScreenshotDir,
			)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("capture failed: %v", err)), nil
		}

		data, _ := json.MarshalIndent(c, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleLatestScreenshot(svc *capture.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := req.GetString("dir", "")
		if dir == "" {
			dir = svc.Config().ScreenshotDir
		}

		path, err := capture.LatestScreenshot(dir)
		if errors.Is(err, capture.ErrNoScreenshot) {
			return mcp.NewToolResultError(fmt.Sprintf("no screenshot found in %s", dir)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to locate screenshot: %v", err)), nil
		}

		data, _ := json.MarshalIndent(map[string]string{"path": path}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleListDiagrams(svc *capture.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)

		diagrams, err := svc.ListDiagrams(limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list diagrams: %v", err)), nil
		}
		if diagrams == nil {
			diagrams = []capture.Diagram{}
		}

		data, _ := json.MarshalIndent(diagrams, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCanvasConfig(svc *capture.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, _ := json.MarshalIndent(svc.Config(), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
