package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/snapcurator/internal/models"
)

// Backend is an in-memory stand-in for the recommendation API. It keeps
// enough state for mutations to be visible in later reads.
type Backend struct {
	Server *httptest.Server

	mu          sync.Mutex
	catalog     []models.Snap
	top         map[string][]string
	excluded    map[string]map[string]bool
	categories  []models.Category
	slices      []*models.SliceDetail
	lastUpdated string
	steps       []models.CollectorStep
	ranSteps    []string
	featured    []models.FeaturedSnap
	store       []models.SearchSnap
	savedOrder  []string
	failures    map[string]int
	calls       []string
}

// NewBackend starts a backend seeded with a small catalog.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		top:         make(map[string][]string),
		excluded:    make(map[string]map[string]bool),
		failures:    make(map[string]int),
		lastUpdated: "2025-02-01T10:00:00",
	}
	b.seed()
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend root URL.
func (b *Backend) URL() string { return b.Server.URL }

// FailWith makes every request matching method and path answer status.
func (b *Backend) FailWith(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = status
}

// Heal removes a failure installed with FailWith.
func (b *Backend) Heal(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// Calls returns every request received as "METHOD /path?query".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// RanSteps returns the pipeline steps triggered so far.
func (b *Backend) RanSteps() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.ranSteps)
}

// SavedOrder returns the snap ids of the last featured save.
func (b *Backend) SavedOrder() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.savedOrder)
}

// SetStep overrides the recorded state of a pipeline step.
func (b *Backend) SetStep(id string, success bool, lastRun string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.steps {
		if b.steps[i].ID != id {
			continue
		}
		ok := success
		b.steps[i].Success = &ok
		if success {
			b.steps[i].LastSuccessfulRun = lastRun
		} else {
			b.steps[i].LastFailedRun = lastRun
		}
	}
	b.lastUpdated = lastRun
}

// SetFeatured replaces the featured list.
func (b *Backend) SetFeatured(snaps []models.FeaturedSnap) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.featured = slices.Clone(snaps)
}

// FeaturedFixture returns n distinct featured entries.
func FeaturedFixture(n int) []models.FeaturedSnap {
	out := make([]models.FeaturedSnap, n)
	for i := range out {
		name := "featured-" + string(rune('a'+i))
		out[i] = models.FeaturedSnap{
			SnapID:      "id-" + name,
			PackageName: name,
			Title:       strings.ToUpper(name),
		}
	}
	return out
}

func (b *Backend) seed() {
	for _, name := range []string{"vlc", "firefox", "code", "spotify", "gimp", "blender"} {
		b.catalog = append(b.catalog, models.Snap{
			SnapID:    "id-" + name,
			Name:      name,
			Title:     strings.ToUpper(name[:1]) + name[1:],
			Summary:   name + " summary",
			Publisher: "publisher-" + name,
			Revision:  "1",
		})
	}
	b.top[models.CategoryPopular] = []string{"id-vlc", "id-firefox", "id-code"}
	b.top[models.CategoryRecent] = []string{"id-spotify", "id-gimp"}
	b.top[models.CategoryTrending] = []string{"id-blender", "id-code"}
	b.top[models.CategoryTopRated] = []string{"id-gimp", "id-vlc"}
	for _, c := range models.DashboardCategories {
		b.categories = append(b.categories, models.Category{ID: c.ID, Name: c.Label})
		b.excluded[c.ID] = make(map[string]bool)
	}
	b.slices = []*models.SliceDetail{{
		Slice: models.Slice{ID: "dev_tools", Name: "Dev tools"},
		Snaps: []models.Snap{b.catalog[2]},
	}}
	f := false
	names := map[string]string{
		models.StepCollect: "Collect", models.StepFilter: "Filter",
		models.StepExtraFields: "Extra fields", models.StepScore: "Score",
	}
	for _, id := range models.PipelineSteps {
		b.steps = append(b.steps, models.CollectorStep{ID: id, Name: names[id], Success: &f})
	}
	b.featured = FeaturedFixture(models.FeaturedSlots)
	b.store = []models.SearchSnap{
		{
			SnapID:    "id-krita",
			Package:   models.SearchPackage{Name: "krita", DisplayName: "Krita", Description: "Digital painting"},
			Publisher: models.SearchPublisher{Name: "kde", DisplayName: "KDE", Validation: "starred"},
		},
		{
			SnapID:    "id-kdenlive",
			Package:   models.SearchPackage{Name: "kdenlive", DisplayName: "Kdenlive", Description: "Video editor"},
			Publisher: models.SearchPublisher{Name: "kde", DisplayName: "KDE", Validation: "verified"},
		},
	}
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Get("/api/categories", b.listCategories)
	r.Get("/api/snaps", b.listSnaps)
	r.Post("/api/exclude_snap", b.setExcluded(true))
	r.Post("/api/include_snap", b.setExcluded(false))
	r.Get("/api/excluded_snaps", b.listExcluded)

	r.Get("/api/editorial_slices", b.listSlices)
	r.Post("/api/editorial_slice", b.createSlice)
	r.Get("/api/editorial_slice/{id}", b.getSlice)
	r.Post("/api/editorial_slice/{id}", b.updateSlice)
	r.Delete("/api/editorial_slice/{id}", b.deleteSlice)
	r.Post("/api/editorial_slice/{id}/snaps", b.addToSlice)
	r.Post("/api/editorial_slice/{id}/remove_snap", b.removeFromSlice)

	r.Get("/api/settings", b.settings)
	r.Post("/api/run_pipeline_step", b.runStep)

	r.Get("/featured", b.listFeatured)
	r.Post("/featured", b.saveFeatured)
	r.Get("/store/store.json", b.search)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		call := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			call += "?" + r.URL.RawQuery
		}
		b.calls = append(b.calls, call)
		status, fail := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if fail {
			reply(w, status, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var success = map[string]string{"status": "success"}

func (b *Backend) snapByID(id string) (models.Snap, bool) {
	for _, s := range b.catalog {
		if s.SnapID == id {
			return s, true
		}
	}
	return models.Snap{}, false
}

func (b *Backend) snapByName(name string) (models.Snap, bool) {
	for _, s := range b.catalog {
		if s.Name == name {
			return s, true
		}
	}
	return models.Snap{}, false
}

func (b *Backend) sliceByID(id string) (*models.SliceDetail, int) {
	for i, s := range b.slices {
		if s.ID == id {
			return s, i
		}
	}
	return nil, -1
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply(w, http.StatusOK, b.categories)
}

func (b *Backend) listSnaps(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	category := r.URL.Query().Get("category")
	out := models.SnapList{Snaps: []models.Snap{}}
	for _, id := range b.top[category] {
		if b.excluded[category][id] {
			continue
		}
		if s, ok := b.snapByID(id); ok {
			out.Snaps = append(out.Snaps, s)
		}
	}
	reply(w, http.StatusOK, out)
}

func (b *Backend) setExcluded(exclude bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ref models.SnapRef
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
			reply(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if ref.SnapID != "" && ref.Category != "" {
			if b.excluded[ref.Category] == nil {
				b.excluded[ref.Category] = make(map[string]bool)
			}
			if exclude {
				b.excluded[ref.Category][ref.SnapID] = true
			} else {
				delete(b.excluded[ref.Category], ref.SnapID)
			}
		}
		reply(w, http.StatusOK, success)
	}
}

func (b *Backend) listExcluded(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ExcludedGroup, 0, len(b.categories))
	for _, c := range b.categories {
		g := models.ExcludedGroup{Category: models.CategoryRef{ID: c.ID, Name: c.Name}, Snaps: []models.Snap{}}
		for _, s := range b.catalog {
			if b.excluded[c.ID][s.SnapID] {
				g.Snaps = append(g.Snaps, s)
			}
		}
		out = append(out, g)
	}
	reply(w, http.StatusOK, out)
}

func (b *Backend) listSlices(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.SliceListItem, 0, len(b.slices))
	for _, s := range b.slices {
		out = append(out, models.SliceListItem{Slice: s.Slice, SnapsCount: len(s.Snaps)})
	}
	reply(w, http.StatusOK, out)
}

func slugify(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune("!@#$%^&*()+=[]{}|;:,.<>?/", r) {
			return -1
		}
		return r
	}, slug)
}

func (b *Backend) createSlice(w http.ResponseWriter, r *http.Request) {
	var in models.SliceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := slugify(in.Name)
	if s, _ := b.sliceByID(id); s != nil {
		reply(w, http.StatusInternalServerError, map[string]string{"status": "failed", "error": "Slice cannot be created."})
		return
	}
	b.slices = append(b.slices, &models.SliceDetail{
		Slice: models.Slice{ID: id, Name: in.Name, Description: in.Description},
		Snaps: []models.Snap{},
	})
	reply(w, http.StatusOK, success)
}

func (b *Backend) getSlice(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, _ := b.sliceByID(chi.URLParam(r, "id"))
	if s == nil {
		reply(w, http.StatusNotFound, map[string]string{"error": "Slice not found"})
		return
	}
	reply(w, http.StatusOK, s)
}

func (b *Backend) updateSlice(w http.ResponseWriter, r *http.Request) {
	var in models.SliceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		reply(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, _ := b.sliceByID(chi.URLParam(r, "id"))
	if s == nil {
		reply(w, http.StatusInternalServerError, map[string]string{"status": "failed"})
		return
	}
	s.Name = in.Name
	s.Description = in.Description
	reply(w, http.StatusOK, success)
}

func (b *Backend) deleteSlice(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, i := b.sliceByID(chi.URLParam(r, "id"))
	if i < 0 {
		reply(w, http.StatusNotFound, map[string]string{"error": "Slice not found"})
		return
	}
	b.slices = slices.Delete(b.slices, i, i+1)
	reply(w, http.StatusOK, success)
}

func (b *Backend) addToSlice(w http.ResponseWriter, r *http.Request) {
	var in models.SnapName
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	s, _ := b.sliceByID(chi.URLParam(r, "id"))
	if s == nil {
		reply(w, http.StatusNotFound, map[string]string{"error": "Slice not found"})
		return
	}
	snap, found := b.snapByName(in.Name)
	if !found {
		reply(w, http.StatusNotFound, map[string]string{"error": "Snap not found"})
		return
	}
	if !slices.ContainsFunc(s.Snaps, func(m models.Snap) bool { return m.SnapID == snap.SnapID }) {
		s.Snaps = append(s.Snaps, snap)
	}
	reply(w, http.StatusOK, success)
}

func (b *Backend) removeFromSlice(w http.ResponseWriter, r *http.Request) {
	var in models.SnapName
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, found := b.snapByName(in.Name)
	if !found {
		reply(w, http.StatusNotFound, map[string]string{"error": "Snap not found"})
		return
	}
	if s, _ := b.sliceByID(chi.URLParam(r, "id")); s != nil {
		s.Snaps = slices.DeleteFunc(s.Snaps, func(m models.Snap) bool { return m.SnapID == snap.SnapID })
	}
	reply(w, http.StatusOK, success)
}

func (b *Backend) settings(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply(w, http.StatusOK, models.CollectorInfo{
		LastUpdated:   b.lastUpdated,
		PipelineSteps: slices.Clone(b.steps),
	})
}

func (b *Backend) runStep(w http.ResponseWriter, r *http.Request) {
	var in models.RunStepRequest
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.StepName == "" {
		reply(w, http.StatusBadRequest, map[string]string{"error": "Step name is required"})
		return
	}
	if !slices.Contains(models.PipelineSteps, in.StepName) {
		reply(w, http.StatusBadRequest, map[string]string{"error": "Invalid step name"})
		return
	}
	b.mu.Lock()
	b.ranSteps = append(b.ranSteps, in.StepName)
	b.mu.Unlock()
	reply(w, http.StatusOK, models.RunStepResult{
		Status:  "success",
		Message: "Pipeline step '" + in.StepName + "' started, please don't trigger again until last run time is updated",
	})
}

func (b *Backend) listFeatured(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply(w, http.StatusOK, b.featured)
}

func (b *Backend) saveFeatured(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		reply(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}
	raw := r.PostForm.Get("snaps")
	if raw == "" {
		reply(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Snaps cannot be empty"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savedOrder = strings.Split(raw, ",")
	reply(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := models.SearchResponse{Packages: []models.SearchSnap{}}
	for _, s := range b.store {
		if strings.Contains(s.Package.Name, q) || strings.Contains(strings.ToLower(s.Package.DisplayName), q) {
			out.Packages = append(out.Packages, s)
		}
	}
	reply(w, http.StatusOK, out)
}
