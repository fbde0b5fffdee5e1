// Package server exposes the scan pipeline as MCP tools so agent hosts can
// scan and redact text over stdio without linking the library directly.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	phiscan "github.com/grailhealth/phiscan-go"
	"github.com/grailhealth/phiscan-go/core"
)

// Version reported in the MCP handshake.
const Version = "1.0.0"

// New builds the MCP server with the scan_text, scan_batch and redact_text
// tools registered against the given engine.
func New(engine *phiscan.Engine) *server.MCPServer {
	s := server.NewMCPServer("phiscan", Version)

	scanText := mcp.NewTool("scan_text",
		mcp.WithDescription("Scan a piece of text for Protected Health Information and return findings with a risk score"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to scan"),
		),
		mcp.WithString("name",
			mcp.Description("Logical file name for the text, used in results"),
		),
	)
	s.AddTool(scanText, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := request.Params.Arguments["text"].(string)
		if !ok {
			return mcp.NewToolResultError("text argument is required"), nil
		}
		name, _ := request.Params.Arguments["name"].(string)
		if name == "" {
			name = "mcp-input.txt"
		}

		summary, err := engine.ScanFile(ctx, core.FileInput{FileName: name, Content: &text})
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if len(summary.FileResults) == 0 {
			return mcp.NewToolResultError("scan produced no result"), nil
		}
		return jsonResult(summary.FileResults[0])
	})

	scanBatch := mcp.NewTool("scan_batch",
		mcp.WithDescription("Scan a batch of files described as JSON and return the scan summary with folder rollups"),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description(`JSON array of file descriptors: [{"file_name":..., "logical_path":..., "content":...}]; omit content for metadata-only scans`),
		),
		mcp.WithString("root_path",
			mcp.Description("Logical root folder for files without a parent path"),
		),
	)
	s.AddTool(scanBatch, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, ok := request.Params.Arguments["files"].(string)
		if !ok {
			return mcp.NewToolResultError("files argument is required"), nil
		}
		rootPath, _ := request.Params.Arguments["root_path"].(string)

		var files []core.FileInput
		if err := json.Unmarshal([]byte(raw), &files); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid files payload: %v", err)), nil
		}

		summary, err := engine.ScanBatch(ctx, files, rootPath)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		return jsonResult(summary)
	})

	redactText := mcp.NewTool("redact_text",
		mcp.WithDescription("Replace every detected PHI span in the text with a category tag"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to redact"),
		),
	)
	s.AddTool(redactText, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, ok := request.Params.Arguments["text"].(string)
		if !ok {
			return mcp.NewToolResultError("text argument is required"), nil
		}
		return mcp.NewToolResultText(engine.Redact(text)), nil
	})

	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the host closes
// the stream.
func ServeStdio(engine *phiscan.Engine) error {
	return server.ServeStdio(New(engine))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
