package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
	err  error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[string]*domain.User{}}
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByTokenIdentifier(_ context.Context, tok string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.TokenIdentifier == tok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubUserRepo) CreateIfAbsent(_ context.Context, u *domain.User) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.TokenIdentifier == u.TokenIdentifier {
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return u, true, nil
}

func (r *stubUserRepo) AddOrganization(_ context.Context, userID, orgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OrgIDs = append(u.OrgIDs, orgID)
	return nil
}

func (r *stubUserRepo) RemoveOrganization(_ context.Context, userID, orgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.OrgIDs[:0]
	for _, id := range u.OrgIDs {
		if id != orgID {
			kept = append(kept, id)
		}
	}
	u.OrgIDs = kept
	return nil
}

type stubOrgRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Organization
}

func newStubOrgRepo() *stubOrgRepo { return &stubOrgRepo{byID: map[string]*domain.Organization{}} }

func (r *stubOrgRepo) Create(_ context.Context, o *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *stubOrgRepo) FindByID(_ context.Context, id string) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrgRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	var out []*domain.Organization
	for _, id := range ids {
		if o, err := r.FindByID(ctx, id); err == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrgRepo) UpdateName(_ context.Context, id, name string) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	o.Name = name
	cp := *o
	return &cp, nil
}

func (r *stubOrgRepo) UpdatePlanByBillingRef(_ context.Context, ref string, plan domain.Plan) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.BillingRef == ref {
			o.Plan = plan
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *stubOrgRepo) setPlan(id string, plan domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].Plan = plan
}

type stubMembershipRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Membership
}

func newStubMembershipRepo() *stubMembershipRepo {
	return &stubMembershipRepo{byID: map[string]*domain.Membership{}}
}

func (r *stubMembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.OrgID == m.OrgID && existing.UserID == m.UserID {
			return domain.ErrAlreadyMember
		}
	}
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *stubMembershipRepo) FindByID(_ context.Context, id string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMembershipRepo) FindByOrgAndUser(_ context.Context, orgID, userID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.OrgID == orgID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMembershipNotFound
}

func (r *stubMembershipRepo) list(match func(*domain.Membership) bool) []*domain.Membership {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Membership
	for _, m := range r.byID {
		if match(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubMembershipRepo) ListByOrg(_ context.Context, orgID string) ([]*domain.Membership, error) {
	return r.list(func(m *domain.Membership) bool { return m.OrgID == orgID }), nil
}

func (r *stubMembershipRepo) ListByUser(_ context.Context, userID string) ([]*domain.Membership, error) {
	return r.list(func(m *domain.Membership) bool { return m.UserID == userID }), nil
}

func (r *stubMembershipRepo) UpdateRole(_ context.Context, id, role string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	m.Role = role
	cp := *m
	return &cp, nil
}

func (r *stubMembershipRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrMembershipNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubGoalRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Goal
	patches []domain.GoalPatch
}

func newStubGoalRepo() *stubGoalRepo { return &stubGoalRepo{byID: map[string]*domain.Goal{}} }

func (r *stubGoalRepo) Create(_ context.Context, g *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.byID[g.ID] = &cp
	return nil
}

func (r *stubGoalRepo) FindByID(_ context.Context, id string) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	cp := *g
	cp.ActionPlan = cloneSteps(g.ActionPlan)
	return &cp, nil
}

func (r *stubGoalRepo) ListByOrg(_ context.Context, orgID string) ([]*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Goal
	for _, g := range r.byID {
		if g.OrgID == orgID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubGoalRepo) Update(_ context.Context, id string, p domain.GoalPatch) (*domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	r.patches = append(r.patches, p)
	updated := g.Apply(p)
	r.byID[id] = &updated
	cp := updated
	return &cp, nil
}

func (r *stubGoalRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrGoalNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubJobRepo struct {
	mu      sync.Mutex
	jobs    []domain.Job
	records []domain.MetricRecord
}

func (r *stubJobRepo) Create(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *j)
	return nil
}

func (r *stubJobRepo) ListByOrg(_ context.Context, orgID string) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Job
	for _, j := range r.jobs {
		if j.OrgID == orgID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *stubJobRepo) CreateMetric(_ context.Context, m *domain.MetricRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *m)
	return nil
}

func (r *stubJobRepo) ListMetricsByOrg(_ context.Context, orgID string) ([]domain.MetricRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MetricRecord
	for _, m := range r.records {
		if m.OrgID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubKnowledgeRepo struct {
	mu       sync.Mutex
	articles []*domain.Article
	queries  []string
}

func (r *stubKnowledgeRepo) Create(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, a)
	return nil
}

func (r *stubKnowledgeRepo) ListByOrg(_ context.Context, orgID string) ([]*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Article
	for _, a := range r.articles {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Search matches articles whose title or text contains the query.
func (r *stubKnowledgeRepo) Search(_ context.Context, orgID, query string, limit int) ([]domain.SearchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	var out []domain.SearchResult
	q := strings.ToLower(query)
	for _, a := range r.articles {
		if a.OrgID != orgID {
			continue
		}
		if strings.Contains(strings.ToLower(a.Title+" "+a.Text), q) {
			out = append(out, domain.SearchResult{Title: a.Title, Text: a.Text, Score: 1})
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubThreadRepo struct {
	mu       sync.Mutex
	threads  map[string]*domain.Thread
	messages []*domain.Message
}

func newStubThreadRepo() *stubThreadRepo {
	return &stubThreadRepo{threads: map[string]*domain.Thread{}}
}

func (r *stubThreadRepo) Create(_ context.Context, t *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[t.ID] = t
	return nil
}

func (r *stubThreadRepo) FindByID(_ context.Context, id string) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}
	return t, nil
}

func (r *stubThreadRepo) AppendMessage(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
	return nil
}

func (r *stubThreadRepo) ListMessages(_ context.Context, threadID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Plan cache with a controllable clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type cacheEntry struct {
	raw     []byte
	expires time.Time
}

type stubPlanCache struct {
	mu      sync.Mutex
	clock   *fakeClock
	entries map[string]cacheEntry
	sets    int
}

func newStubPlanCache(clock *fakeClock) *stubPlanCache {
	return &stubPlanCache{clock: clock, entries: map[string]cacheEntry{}}
}

func (c *stubPlanCache) Get(_ context.Context, goalID string) ([]domain.ActionStep, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[goalID]
	if !ok || !c.clock.Now().Before(e.expires) {
		return nil, false, nil
	}
	var steps []domain.ActionStep
	if err := json.Unmarshal(e.raw, &steps); err != nil {
		return nil, false, err
	}
	return steps, true, nil
}

func (c *stubPlanCache) Set(_ context.Context, goalID string, steps []domain.ActionStep, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	c.entries[goalID] = cacheEntry{raw: raw, expires: c.clock.Now().Add(ttl)}
	c.sets++
	return nil
}

// ---------------------------------------------------------------------------
// LLM and queue stubs
// ---------------------------------------------------------------------------

type stubLLM struct {
	mu          sync.Mutex
	completions []string
	completeErr error
	chatReplies []*ports.ChatReply
	chatErr     error
	calls       int
	chatReqs    []ports.ChatRequest
	prompts     []string
	gate        chan struct{}
}

func (l *stubLLM) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	if l.gate != nil {
		<-l.gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.prompts = append(l.prompts, req.Prompt)
	if l.completeErr != nil {
		return "", l.completeErr
	}
	if len(l.completions) == 0 {
		return "", errors.New("no completion scripted")
	}
	out := l.completions[0]
	if len(l.completions) > 1 {
		l.completions = l.completions[1:]
	}
	return out, nil
}

func (l *stubLLM) Chat(_ context.Context, req ports.ChatRequest) (*ports.ChatReply, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	req.History = append([]ports.LLMMessage(nil), req.History...)
	l.chatReqs = append(l.chatReqs, req)
	if l.chatErr != nil {
		return nil, l.chatErr
	}
	if len(l.chatReplies) == 0 {
		return nil, errors.New("no chat reply scripted")
	}
	out := l.chatReplies[0]
	if len(l.chatReplies) > 1 {
		l.chatReplies = l.chatReplies[1:]
	}
	return out, nil
}

func (l *stubLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type stubQueue struct {
	turns []ports.ChatTurn
	err   error
}

func (q *stubQueue) Enqueue(turn ports.ChatTurn) error {
	if q.err != nil {
		return q.err
	}
	q.turns = append(q.turns, turn)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture: one organization with an admin and a member
// ---------------------------------------------------------------------------

const (
	testOrgID    = "org_1"
	adminUserID  = "user_admin"
	memberUserID = "user_member"
	outsiderID   = "user_outsider"
)

var (
	asAdmin    = ports.Identity{TokenIdentifier: "https://issuer|admin", Name: "Ada Admin"}
	asMember   = ports.Identity{TokenIdentifier: "https://issuer|member", Name: "Max Member"}
	asOutsider = ports.Identity{TokenIdentifier: "https://issuer|outsider", Name: "Olga Outsider"}
)

type fixture struct {
	users       *stubUserRepo
	orgs        *stubOrgRepo
	memberships *stubMembershipRepo
	goals       *stubGoalRepo
	jobs        *stubJobRepo
}

func newFixture(plan domain.Plan) *fixture {
	f := &fixture{
		users:       newStubUserRepo(),
		orgs:        newStubOrgRepo(),
		memberships: newStubMembershipRepo(),
		goals:       newStubGoalRepo(),
		jobs:        &stubJobRepo{},
	}
	f.users.byID[adminUserID] = &domain.User{ID: adminUserID, Name: "Ada Admin", TokenIdentifier: asAdmin.TokenIdentifier, OrgIDs: []string{testOrgID}}
	f.users.byID[memberUserID] = &domain.User{ID: memberUserID, Name: "Max Member", TokenIdentifier: asMember.TokenIdentifier, OrgIDs: []string{testOrgID}}
	f.users.byID[outsiderID] = &domain.User{ID: outsiderID, Name: "Olga Outsider", TokenIdentifier: asOutsider.TokenIdentifier}
	f.orgs.byID[testOrgID] = &domain.Organization{ID: testOrgID, Name: "Shine Bros", Plan: plan, BillingRef: "bill_org_1"}
	f.memberships.byID["m_admin"] = &domain.Membership{ID: "m_admin", OrgID: testOrgID, UserID: adminUserID, Role: domain.RoleAdmin}
	f.memberships.byID["m_member"] = &domain.Membership{ID: "m_member", OrgID: testOrgID, UserID: memberUserID, Role: domain.RoleMember}
	return f
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
