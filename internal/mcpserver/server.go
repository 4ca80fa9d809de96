// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the curation dashboard as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
	"github.com/starford/snapcurator/internal/views"
)

const guideURI = "snapcurator://curation-guide"

// Server wraps the MCP server with curation tools.
type Server struct {
	mcp    *server.MCPServer
	client *request.Client
}

// New creates a new MCP server with all tools registered. Every call builds
// its own view on client, so calls never share state.
func New(client *request.Client, version string) *Server {
	s := &Server{client: client}

	s.mcp = server.NewMCPServer(
		"snapcurator",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the recommendation categories with their ids and descriptions."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_category_snaps",
		mcp.WithDescription("List the recommended snaps of one category, in rank order."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category id: popular, recent, trending or top_rated")),
	), s.listCategorySnaps)

	s.mcp.AddTool(mcp.NewTool("exclude_snap",
		mcp.WithDescription("Exclude a snap from one category's recommendations."),
		mcp.WithString("snap_id", mcp.Required(), mcp.Description("Snap id")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category id")),
	), s.excludeSnap)

	s.mcp.AddTool(mcp.NewTool("include_snap",
		mcp.WithDescription("Undo an exclusion so the snap can be recommended in the category again."),
		mcp.WithString("snap_id", mcp.Required(), mcp.Description("Snap id")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category id")),
	), s.includeSnap)

	s.mcp.AddTool(mcp.NewTool("list_excluded_snaps",
		mcp.WithDescription("List excluded snaps grouped by category."),
	), s.listExcludedSnaps)

	s.mcp.AddTool(mcp.NewTool("list_editorial_slices",
		mcp.WithDescription("List editorial slices with their snap counts."),
	), s.listEditorialSlices)

	s.mcp.AddTool(mcp.NewTool("get_editorial_slice",
		mcp.WithDescription("Get one editorial slice with its snaps."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Slice id")),
	), s.getEditorialSlice)

	s.mcp.AddTool(mcp.NewTool("create_editorial_slice",
		mcp.WithDescription("Create an editorial slice. The id is derived from the name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Slice name")),
		mcp.WithString("description", mcp.Description("Optional description")),
	), s.createEditorialSlice)

	s.mcp.AddTool(mcp.NewTool("add_snap_to_slice",
		mcp.WithDescription("Add a snap to an editorial slice by package name."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Slice id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Snap package name")),
	), s.addSnapToSlice)

	s.mcp.AddTool(mcp.NewTool("remove_snap_from_slice",
		mcp.WithDescription("Remove a snap from an editorial slice by package name."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Slice id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Snap package name")),
	), s.removeSnapFromSlice)

	s.mcp.AddTool(mcp.NewTool("collector_status",
		mcp.WithDescription("Show the last run of every data collection pipeline step."),
	), s.collectorStatus)

	s.mcp.AddTool(mcp.NewTool("run_pipeline_step",
		mcp.WithDescription("Trigger one pipeline step on the backend."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Step id: collect, filter, extra_fields or score")),
	), s.runPipelineStep)

	s.mcp.AddTool(mcp.NewTool("list_featured",
		mcp.WithDescription("List the featured snaps in display order."),
	), s.listFeatured)

	s.mcp.AddTool(mcp.NewTool("search_store",
		mcp.WithDescription("Search the snap store for candidates to feature."),
		mcp.WithString("query", mcp.Required(), mcp.Description("At least 3 characters")),
	), s.searchStore)

	s.mcp.AddTool(mcp.NewTool("get_curation_guide",
		mcp.WithDescription("Returns the curation vocabulary: categories, slices, pipeline steps and featured rules."),
	), s.getCurationGuide)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Curation Guide",
			mcp.WithResourceDescription("Categories, slices, pipeline steps and featured list rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// result turns an outcome into a tool result: data as JSON on success, the
// normalized message otherwise.
func (s *Server) result(data any, out *request.Failure) *mcp.CallToolResult {
	if out != nil {
		if out.Kind == request.FailureUnauthenticated {
			return mcp.NewToolResultError(fmt.Sprintf("session expired: log in at %s", s.client.LoginURL()))
		}
		return mcp.NewToolResultError(request.Message(out))
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(raw))
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := views.NewCategories(s.client)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(v.Items(), out.Failure), nil
}

func (s *Server) listCategorySnaps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := views.NewCategoryList(s.client, category)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(v.Snaps(), out.Failure), nil
}

func (s *Server) excludeSnap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setExclusion(ctx, req, true)
}

func (s *Server) includeSnap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setExclusion(ctx, req, false)
}

func (s *Server) setExclusion(ctx context.Context, req mcp.CallToolRequest, exclude bool) (*mcp.CallToolResult, error) {
	snapID, err := req.RequireString("snap_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out request.Outcome[models.Status]
	if exclude {
		v := views.NewCategoryList(s.client, category)
		defer v.Close()
		out = v.Exclude(ctx, snapID)
	} else {
		v := views.NewExcludedSnaps(s.client)
		defer v.Close()
		out = v.Include(ctx, snapID, category)
	}
	if out.Failure != nil {
		return s.result(nil, out.Failure), nil
	}
	verb := "included in"
	if exclude {
		verb = "excluded from"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s %s", snapID, verb, category)), nil
}

func (s *Server) listExcludedSnaps(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := views.NewExcludedSnaps(s.client)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(v.Groups(), out.Failure), nil
}

func (s *Server) listEditorialSlices(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := views.NewEditorialSlices(s.client)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(v.Slices(), out.Failure), nil
}

func (s *Server) getEditorialSlice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := views.NewSliceDetails(s.client, id)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(out.Data, out.Failure), nil
}

func (s *Server) createEditorialSlice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := ""
	if d, err := req.RequireString("description"); err == nil {
		description = d
	}
	v := views.NewEditorialSlices(s.client)
	defer v.Close()
	out, err := v.Create(ctx, name, description)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Failure != nil {
		return s.result(nil, out.Failure), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created slice %q", name)), nil
}

func (s *Server) addSnapToSlice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.editSlice(ctx, req, (*views.SliceDetails).AddSnap)
}

func (s *Server) removeSnapFromSlice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.editSlice(ctx, req, (*views.SliceDetails).RemoveSnap)
}

func (s *Server) editSlice(ctx context.Context, req mcp.CallToolRequest,
	op func(*views.SliceDetails, context.Context, string) request.Outcome[models.Status],
) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := views.NewSliceDetails(s.client, id)
	defer v.Close()
	if out := op(v, ctx, name); out.Failure != nil {
		return s.result(nil, out.Failure), nil
	}
	return mcp.NewToolResultText(v.Success()), nil
}

func (s *Server) collectorStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := views.NewCollector(s.client)
	defer v.Close()
	out := v.Mount(ctx)
	return s.result(out.Data, out.Failure), nil
}

func (s *Server) runPipelineStep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step, err := req.RequireString("step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := views.NewCollector(s.client)
	defer v.Close()
	out, err := v.Run(ctx, step)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Failure != nil {
		return s.result(nil, out.Failure), nil
	}
	return mcp.NewToolResultText(v.Message()), nil
}

func (s *Server) listFeatured(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b := views.NewFeaturedBoard(s.client)
	defer b.Close()
	out := b.Mount(ctx)
	return s.result(b.Snaps(), out.Failure), nil
}

func (s *Server) searchStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	search := views.NewStoreSearch(s.client)
	defer search.Close()
	hits, msg := search.Search(ctx, query)
	if msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	if hits == nil {
		hits = []models.SearchSnap{}
	}
	return s.result(hits, nil), nil
}

func (s *Server) getCurationGuide(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CurationGuide), nil
}

func (s *Server) readGuideResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     CurationGuide,
		},
	}, nil
}
