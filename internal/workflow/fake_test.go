package workflow

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/graphdeck/graphdeck-cli/pkg/controlplane"
)

// fakeControlPlane is an in-memory control plane for workflow tests. Each
// revision carries a status plan: successive GetRevision calls step through
// it and the final entry sticks, so a test can script
// PENDING -> BUILDING -> DEPLOYED without timing games.
type fakeControlPlane struct {
	mu           sync.Mutex
	integrations []controlplane.Integration
	repos        map[string][]controlplane.Repository
	deployments  map[string]*controlplane.Deployment
	revisions    map[string][]*controlplane.Revision
	plans        map[string][]controlplane.RevisionStatus

	// createPlan and patchPlan are the status plans assigned to revisions
	// spawned by deployment creation and by patches, respectively
	createPlan []controlplane.RevisionStatus
	patchPlan  []controlplane.RevisionStatus

	// onPatch, when set, replaces the default one-revision-per-patch
	// behavior; it runs with the fake's lock held
	onPatch func(f *fakeControlPlane, deploymentID string)

	// onList, when set, runs before each revision listing with the fake's
	// lock held
	onList func(f *fakeControlPlane, deploymentID string)

	seq    int
	clock  time.Time
	server *httptest.Server
}

func newFakeControlPlane(t *testing.T) *fakeControlPlane {
	t.Helper()
	f := &fakeControlPlane{
		repos:       make(map[string][]controlplane.Repository),
		deployments: make(map[string]*controlplane.Deployment),
		revisions:   make(map[string][]*controlplane.Revision),
		plans:       make(map[string][]controlplane.RevisionStatus),
		createPlan:  []controlplane.RevisionStatus{controlplane.RevisionPending, controlplane.RevisionBuilding, controlplane.RevisionDeployed},
		patchPlan:   []controlplane.RevisionStatus{controlplane.RevisionBuilding, controlplane.RevisionDeployed},
		clock:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// client returns a control plane client pointed at the fake
func (f *fakeControlPlane) client(t *testing.T) *controlplane.Client {
	t.Helper()
	c, err := controlplane.NewClient(f.server.URL, "test-key")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func (f *fakeControlPlane) addIntegration(id string, repos ...controlplane.Repository) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.integrations = append(f.integrations, controlplane.Integration{ID: id, Provider: "github"})
	f.repos[id] = repos
}

// addDeployment seeds a deployment with one revision in the given terminal
// status
func (f *fakeControlPlane) addDeployment(name string, status controlplane.RevisionStatus) *controlplane.Deployment {
	f.mu.Lock()
	defer f.mu.Unlock()
	dep := f.newDeploymentLocked(name, map[string]interface{}{})
	f.newRevisionLocked(dep.ID, []controlplane.RevisionStatus{status})
	return dep
}

// addEmptyDeployment seeds a deployment with no revisions
func (f *fakeControlPlane) addEmptyDeployment(name string) *controlplane.Deployment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newDeploymentLocked(name, map[string]interface{}{})
}

func (f *fakeControlPlane) addRevisionAt(deploymentID string, status controlplane.RevisionStatus, at time.Time) *controlplane.Revision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addRevisionAtLocked(deploymentID, status, at)
}

// addRevisionPlan seeds a revision whose status advances along plan as it is
// fetched
func (f *fakeControlPlane) addRevisionPlan(deploymentID string, plan ...controlplane.RevisionStatus) *controlplane.Revision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newRevisionLocked(deploymentID, plan)
}

func (f *fakeControlPlane) deploymentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deployments)
}

func (f *fakeControlPlane) deploymentExists(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.deployments[id]
	return ok
}

func (f *fakeControlPlane) newDeploymentLocked(name string, sourceConfig map[string]interface{}) *controlplane.Deployment {
	f.seq++
	dep := &controlplane.Deployment{
		ID:           fmt.Sprintf("dep-%d", f.seq),
		Name:         name,
		Source:       controlplane.SourceGithub,
		SourceConfig: sourceConfig,
		CreatedAt:    f.tickLocked(),
	}
	f.deployments[dep.ID] = dep
	return dep
}

func (f *fakeControlPlane) newRevisionLocked(deploymentID string, plan []controlplane.RevisionStatus) *controlplane.Revision {
	f.seq++
	rev := &controlplane.Revision{
		ID:           fmt.Sprintf("rev-%d", f.seq),
		DeploymentID: deploymentID,
		Status:       plan[0],
		CreatedAt:    f.tickLocked(),
	}
	f.revisions[deploymentID] = append(f.revisions[deploymentID], rev)
	f.plans[rev.ID] = plan
	return rev
}

// addRevisionAtLocked seeds a revision with an explicit creation timestamp
// and a fixed status, for tests that need out-of-order listings
func (f *fakeControlPlane) addRevisionAtLocked(deploymentID string, status controlplane.RevisionStatus, at time.Time) *controlplane.Revision {
	f.seq++
	rev := &controlplane.Revision{
		ID:           fmt.Sprintf("rev-%d", f.seq),
		DeploymentID: deploymentID,
		Status:       status,
		CreatedAt:    at.Format(time.RFC3339),
	}
	f.revisions[deploymentID] = append(f.revisions[deploymentID], rev)
	f.plans[rev.ID] = []controlplane.RevisionStatus{status}
	return rev
}

// tickLocked advances the fake clock one second per resource so creation
// timestamps are distinct and ordered
func (f *fakeControlPlane) tickLocked() string {
	f.clock = f.clock.Add(time.Second)
	return f.clock.Format(time.RFC3339)
}

// stepLocked advances a revision along its status plan and marks the owning
// deployment's URL once it deploys
func (f *fakeControlPlane) stepLocked(rev *controlplane.Revision) {
	plan := f.plans[rev.ID]
	if len(plan) > 1 {
		f.plans[rev.ID] = plan[1:]
	}
	rev.Status = f.plans[rev.ID][0]
	if rev.Status == controlplane.RevisionDeployed {
		if dep, ok := f.deployments[rev.DeploymentID]; ok {
			if dep.SourceConfig == nil {
				dep.SourceConfig = map[string]interface{}{}
			}
			dep.SourceConfig["custom_url"] = "https://" + dep.Name + ".graphdeck.app"
		}
	}
}

func (f *fakeControlPlane) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case r.URL.Path == "/v1/integrations/github/install":
		json.NewEncoder(w).Encode(controlplane.IntegrationsPage{Resources: f.integrations})

	case len(parts) == 5 && parts[0] == "v1" && parts[4] == "repos":
		json.NewEncoder(w).Encode(controlplane.RepositoriesPage{Resources: f.repos[parts[3]]})

	case r.URL.Path == "/v2/deployments" && r.Method == http.MethodGet:
		f.listDeploymentsLocked(w, r)

	case r.URL.Path == "/v2/deployments" && r.Method == http.MethodPost:
		var req controlplane.CreateDeploymentRequest
		json.NewDecoder(r.Body).Decode(&req)
		dep := f.newDeploymentLocked(req.Name, req.SourceConfig)
		f.newRevisionLocked(dep.ID, f.createPlan)
		json.NewEncoder(w).Encode(dep)

	case len(parts) == 3 && parts[0] == "v2":
		f.deploymentByIDLocked(w, r, parts[2])

	case len(parts) == 4 && parts[3] == "revisions":
		json.NewEncoder(w).Encode(f.revisionsPageLocked(parts[2]))

	case len(parts) == 5 && parts[3] == "revisions":
		f.revisionByIDLocked(w, parts[2], parts[4])

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error": "no route for %s"}`, r.URL.Path)
	}
}

func (f *fakeControlPlane) listDeploymentsLocked(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("name_contains")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var matched []controlplane.Deployment
	for _, dep := range f.deployments {
		if filter == "" || strings.Contains(dep.Name, filter) {
			matched = append(matched, *dep)
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	json.NewEncoder(w).Encode(controlplane.DeploymentsPage{
		Resources: matched[offset:],
		Offset:    offset,
	})
}

func (f *fakeControlPlane) deploymentByIDLocked(w http.ResponseWriter, r *http.Request, id string) {
	dep, ok := f.deployments[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "deployment not found"}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(dep)
	case http.MethodPatch:
		var req controlplane.PatchDeploymentRequest
		json.NewDecoder(r.Body).Decode(&req)
		for k, v := range req.SourceConfig {
			dep.SourceConfig[k] = v
		}
		if f.onPatch != nil {
			f.onPatch(f, id)
		} else {
			f.newRevisionLocked(id, f.patchPlan)
		}
		json.NewEncoder(w).Encode(dep)
	case http.MethodDelete:
		delete(f.deployments, id)
		delete(f.revisions, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeControlPlane) revisionsPageLocked(deploymentID string) controlplane.RevisionsPage {
	if f.onList != nil {
		f.onList(f, deploymentID)
	}
	var page controlplane.RevisionsPage
	page.Resources = []controlplane.Revision{}
	for _, rev := range f.revisions[deploymentID] {
		page.Resources = append(page.Resources, *rev)
	}
	return page
}

func (f *fakeControlPlane) revisionByIDLocked(w http.ResponseWriter, deploymentID, revisionID string) {
	for _, rev := range f.revisions[deploymentID] {
		if rev.ID == revisionID {
			f.stepLocked(rev)
			json.NewEncoder(w).Encode(rev)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error": "revision not found"}`))
}

// fastPoll keeps the test suite quick; production defaults are minutes
func fastPoll() PollOptions {
	return PollOptions{Interval: 2 * time.Millisecond, Deadline: 500 * time.Millisecond}
}

func fastMutate() MutateOptions {
	return MutateOptions{AppearInterval: 2 * time.Millisecond, AppearDeadline: 500 * time.Millisecond}
}
