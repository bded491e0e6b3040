package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cwbudde/sswave"
)

// toolServer exposes the list and export commands as MCP tools.
type toolServer struct {
	codec *sswave.Codec
}

func runMCP(args []string) error {
	var common commonFlags

	flagSet := newFlagSet("mcp", &common)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	// stdout carries the protocol; the codec logger writes to stderr.
	codec, err := common.codec()
	if err != nil {
		return err
	}

	return server.ServeStdio(newMCPServer(codec))
}

func newMCPServer(codec *sswave.Codec) *server.MCPServer {
	ts := &toolServer{codec: codec}

	s := server.NewMCPServer("sswave", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("sswave_list-wavetables",
		mcp.WithDescription("List the index and name of every wavetable in a Shapeshifter firmware image."),
		mcp.WithString("firmware", mcp.Required(), mcp.Description("Path to the firmware image")),
	), ts.listWavetables)

	s.AddTool(mcp.NewTool("sswave_export-wavetable",
		mcp.WithDescription("Export a wavetable of a firmware image as audio files."),
		mcp.WithString("firmware", mcp.Required(), mcp.Description("Path to the firmware image")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Wavetable name, surrounding spaces ignored")),
		mcp.WithBoolean("singles", mcp.DefaultBool(false), mcp.Description("Write one looped file per waveform")),
		mcp.WithString("path", mcp.Description("Output directory, defaults to the working directory")),
		mcp.WithString("format", mcp.Description("wav or aiff, defaults to wav")),
	), ts.exportWavetable)

	return s
}

func (ts *toolServer) listWavetables(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	firmware, err := req.RequireString("firmware")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	img, err := sswave.LoadImage(firmware)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names, err := ts.codec.DecodeNames(img)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	for i, name := range names {
		fmt.Fprintf(&sb, "%d\t%s\n", i, name.Key())
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (ts *toolServer) exportWavetable(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	firmware, err := req.RequireString("firmware")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := exportOptions{
		singles: req.GetBool("singles", false),
		dir:     req.GetString("path", "."),
		format:  req.GetString("format", "wav"),
	}

	paths, misses, err := exportWavetables(ts.codec, firmware, []string{name}, opts)
	if err != nil {
		for _, miss := range misses {
			err = fmt.Errorf("%w; %v", err, miss)
		}

		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("wrote " + strings.Join(paths, ", ")), nil
}
