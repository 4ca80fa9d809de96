package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
	"github.com/starford/snapcurator/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend(t)
	return New(testutil.Client(t, b.URL()), "test"), b
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call helper, so dispatch to the handlers.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_categories":        srv.listCategories,
		"list_category_snaps":    srv.listCategorySnaps,
		"exclude_snap":           srv.excludeSnap,
		"include_snap":           srv.includeSnap,
		"list_excluded_snaps":    srv.listExcludedSnaps,
		"list_editorial_slices":  srv.listEditorialSlices,
		"get_editorial_slice":    srv.getEditorialSlice,
		"create_editorial_slice": srv.createEditorialSlice,
		"add_snap_to_slice":      srv.addSnapToSlice,
		"remove_snap_from_slice": srv.removeSnapFromSlice,
		"collector_status":       srv.collectorStatus,
		"run_pipeline_step":      srv.runPipelineStep,
		"list_featured":          srv.listFeatured,
		"search_store":           srv.searchStore,
		"get_curation_guide":     srv.getCurationGuide,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListCategories(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var cats []models.Category
	if err := json.Unmarshal([]byte(resultText(r)), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != len(models.DashboardCategories) || cats[0].ID != models.CategoryPopular {
		t.Errorf("categories = %+v", cats)
	}
}

func TestListCategorySnaps(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_category_snaps", map[string]interface{}{"category": "popular"})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var snaps []models.Snap
	if err := json.Unmarshal([]byte(resultText(r)), &snaps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snaps) != 3 || snaps[0].Name != "vlc" {
		t.Errorf("snaps = %+v", snaps)
	}
}

func TestExcludeAndInclude(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "exclude_snap", map[string]interface{}{"snap_id": "id-vlc", "category": "popular"})
	if got := resultText(r); got != "id-vlc excluded from popular" {
		t.Errorf("exclude = %q", got)
	}
	r = callTool(t, srv, "list_excluded_snaps", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"id-vlc"`) {
		t.Errorf("excluded list missing vlc: %s", resultText(r))
	}

	r = callTool(t, srv, "include_snap", map[string]interface{}{"snap_id": "id-vlc", "category": "popular"})
	if got := resultText(r); got != "id-vlc included in popular" {
		t.Errorf("include = %q", got)
	}
}

func TestMissingArgument(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "exclude_snap", map[string]interface{}{"snap_id": "id-vlc"})
	if !r.IsError {
		t.Error("expected error for missing category")
	}
}

func TestSliceTools(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_editorial_slice", map[string]interface{}{"name": "Games"})
	if r.IsError {
		t.Fatalf("create: %s", resultText(r))
	}
	r = callTool(t, srv, "add_snap_to_slice", map[string]interface{}{"id": "games", "name": "blender"})
	if got := resultText(r); got != "'blender' added to the 'games'." {
		t.Errorf("add = %q", got)
	}
	r = callTool(t, srv, "get_editorial_slice", map[string]interface{}{"id": "games"})
	var detail models.SliceDetail
	if err := json.Unmarshal([]byte(resultText(r)), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Snaps) != 1 || detail.Snaps[0].Name != "blender" {
		t.Errorf("detail = %+v", detail)
	}
	r = callTool(t, srv, "remove_snap_from_slice", map[string]interface{}{"id": "games", "name": "blender"})
	if got := resultText(r); got != "'blender' deleted from the 'games'." {
		t.Errorf("remove = %q", got)
	}

	r = callTool(t, srv, "list_editorial_slices", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"games"`) {
		t.Errorf("slices = %s", resultText(r))
	}
}

func TestGetEditorialSlice_Missing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_editorial_slice", map[string]interface{}{"id": "nope"})
	if !r.IsError || resultText(r) != request.GenericMessage {
		t.Errorf("result = %q, error = %v", resultText(r), r.IsError)
	}
}

func TestPipelineTools(t *testing.T) {
	srv, b := testServer(t)

	r := callTool(t, srv, "collector_status", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"extra_fields"`) {
		t.Errorf("status = %s", resultText(r))
	}

	r = callTool(t, srv, "run_pipeline_step", map[string]interface{}{"step": "collect"})
	if r.IsError || !strings.Contains(resultText(r), "collect") {
		t.Errorf("run = %q", resultText(r))
	}
	r = callTool(t, srv, "run_pipeline_step", map[string]interface{}{"step": "publish"})
	if !r.IsError {
		t.Error("expected error for unknown step")
	}
	if got := b.RanSteps(); len(got) != 1 {
		t.Errorf("ran steps = %v", got)
	}
}

func TestFeaturedAndSearch(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_featured", map[string]interface{}{})
	var featured []models.FeaturedSnap
	if err := json.Unmarshal([]byte(resultText(r)), &featured); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(featured) != models.FeaturedSlots {
		t.Errorf("featured = %d", len(featured))
	}

	r = callTool(t, srv, "search_store", map[string]interface{}{"query": "krita"})
	if !strings.Contains(resultText(r), `"id-krita"`) {
		t.Errorf("search = %s", resultText(r))
	}
	r = callTool(t, srv, "search_store", map[string]interface{}{"query": "kr"})
	if got := resultText(r); got != "[]" {
		t.Errorf("short search = %q", got)
	}
}

func TestSessionExpired(t *testing.T) {
	srv, b := testServer(t)
	b.FailWith(http.MethodGet, "/api/settings", http.StatusUnauthorized)

	r := callTool(t, srv, "collector_status", map[string]interface{}{})
	if !r.IsError || !strings.Contains(resultText(r), b.URL()+"/login") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestCurationGuide(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_curation_guide", map[string]interface{}{})
	if !strings.Contains(resultText(r), "top_rated") {
		t.Error("guide does not list categories")
	}
}
