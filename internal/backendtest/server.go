// Package backendtest runs an in-process fake of the Backend API for
// tests. It stores entities in memory, honors bearer auth, and
// deliberately mixes the two list response shapes (bare array vs
// {data, total, totalPages}) so the normalization layer is exercised.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"banhangso/client/internal/domain"
	"banhangso/client/internal/xid"
)

// DefaultEmail and DefaultPassword are the seeded login credentials.
const (
	DefaultEmail    = "admin@banhangso.vn"
	DefaultPassword = "admin123"
)

var signingSecret = []byte("backendtest-signing-secret")

type collection struct {
	envelope bool
	order    []string
	items    map[string]map[string]any
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu          sync.Mutex
	srv         *httptest.Server
	email       string
	password    string
	user        domain.User
	org         domain.Organization
	collections map[string]*collection
	counts      map[string]int
	failures    map[string]failure
	delays      map[string]time.Duration
	rejectAll   bool
}

// convertTargets maps a document resource to the resource its convert
// endpoint produces.
var convertTargets = map[string]string{
	"quotes": "orders",
	"orders": "invoices",
}

func New() *Server {
	s := &Server{
		email:    DefaultEmail,
		password: DefaultPassword,
		user:     domain.User{ID: "u1", Email: DefaultEmail, Name: "Chủ cửa hàng", Role: "owner"},
		org:      domain.Organization{ID: "org1", Name: "Tạp hóa Bình Minh", Address: "Hà Nội"},
		collections: map[string]*collection{},
		counts:      map[string]int{},
		failures:    map[string]failure{},
		delays:      map[string]time.Duration{},
	}
	// The real backend is inconsistent about pagination envelopes;
	// mirror that here so clients cannot get away with assuming one
	// shape.
	for resource, envelope := range map[string]bool{
		"products":              true,
		"categories":            false,
		"customers":             false,
		"suppliers":             false,
		"invoices":              true,
		"orders":                false,
		"quotes":                false,
		"purchases":             true,
		"deliveries":            false,
		"inventory-checks":      false,
		"cashflow-transactions": true,
	} {
		s.collections[resource] = &collection{envelope: envelope, items: map[string]map[string]any{}}
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.route))
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Close() { s.srv.Close() }

// Count returns how many requests hit the exact method+path (query
// string excluded).
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+path]
}

// CountPrefix returns how many requests hit method+path for any path
// with the given prefix.
func (s *Server) CountPrefix(method, prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for key, n := range s.counts {
		if strings.HasPrefix(key, method+" "+prefix) {
			total += n
		}
	}
	return total
}

// SetDelay makes every request to method+path stall for d before being
// handled, for exercising in-flight state.
func (s *Server) SetDelay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[method+" "+path] = d
}

// Seed inserts an entity into a collection; v must marshal with an "id"
// field. A missing id is generated.
func (s *Server) Seed(resource string, v any) string {
	item := toMap(v)
	id, _ := item["id"].(string)
	if id == "" {
		id = xid.New(resource)
		item["id"] = id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[resource]
	if _, exists := col.items[id]; !exists {
		col.order = append(col.order, id)
	}
	col.items[id] = item
	return id
}

// SetEnvelope overrides the list response shape for one resource.
func (s *Server) SetEnvelope(resource string, envelope bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[resource].envelope = envelope
}

// FailNext makes the next request to method+path fail once with the
// given status and message.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// RevokeTokens makes every authenticated call fail with 401, simulating
// a token the backend no longer accepts.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAll = true
}

// IssueToken mints a token the fake backend will accept, for seeding
// stored-session tests without going through login.
func (s *Server) IssueToken(ttl time.Duration) string {
	return signToken(s.user.ID, ttl)
}

func signToken(subject string, ttl time.Duration) string {
	claims := jwtlib.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
		Issuer:    "backendtest",
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingSecret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return token
}

func validToken(raw string) bool {
	token, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return signingSecret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	return err == nil && token.Valid
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	routeKey := r.Method + " " + r.URL.Path
	s.mu.Lock()
	s.counts[routeKey]++
	delay := s.delays[routeKey]
	if f, ok := s.failures[routeKey]; ok {
		delete(s.failures, routeKey)
		s.mu.Unlock()
		writeError(w, f.status, f.message)
		return
	}
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if r.Method == http.MethodPost && r.URL.Path == "/auth/login" {
		s.handleLogin(w, r)
		return
	}

	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch {
	case r.URL.Path == "/auth/me" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.snapshotUser())
	case r.URL.Path == "/auth/profile" && r.Method == http.MethodPut:
		s.handleProfileUpdate(w, r)
	case r.URL.Path == "/organization" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.snapshotOrg())
	case r.URL.Path == "/organization" && r.Method == http.MethodPut:
		s.handleOrgUpdate(w, r)
	default:
		s.handleResource(w, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	reject := s.rejectAll
	s.mu.Unlock()
	if reject {
		return false
	}
	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, "Bearer ") {
		return false
	}
	return validToken(strings.TrimPrefix(authorization, "Bearer "))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	ok := req.Email == s.email && req.Password == s.password
	user := s.user
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, domain.LoginResponse{
		Token: signToken(user.ID, 8*time.Hour),
		User:  user,
	})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	s.user.Name = req.Name
	s.user.Email = req.Email
	user := s.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleOrgUpdate(w http.ResponseWriter, r *http.Request) {
	var org domain.Organization
	if err := json.NewDecoder(r.Body).Decode(&org); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	org.ID = s.org.ID
	s.org = org
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": org})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := segments[0]

	s.mu.Lock()
	col, ok := s.collections[resource]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown resource")
		return
	}

	switch {
	case len(segments) == 1 && r.Method == http.MethodGet:
		s.handleList(w, r, resource, col)
	case len(segments) == 1 && r.Method == http.MethodPost:
		s.handleCreate(w, r, resource, col)
	case len(segments) == 2 && r.Method == http.MethodGet:
		s.handleGet(w, col, segments[1])
	case len(segments) == 2 && r.Method == http.MethodPut:
		s.handleUpdate(w, r, col, segments[1])
	case len(segments) == 2 && r.Method == http.MethodDelete:
		s.handleDelete(w, col, segments[1])
	case len(segments) == 3 && segments[2] == "convert" && r.Method == http.MethodPost:
		s.handleConvert(w, resource, segments[1])
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, resource string, col *collection) {
	partyID := r.URL.Query().Get("party_id")

	s.mu.Lock()
	items := make([]map[string]any, 0, len(col.order))
	for _, id := range col.order {
		item := col.items[id]
		if partyID != "" && !matchesParty(item, partyID) {
			continue
		}
		items = append(items, item)
	}
	envelope := col.envelope
	s.mu.Unlock()

	if envelope {
		totalPages := 1
		if len(items) == 0 {
			totalPages = 0
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": items, "total": len(items), "totalPages": totalPages})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func matchesParty(item map[string]any, partyID string) bool {
	for _, field := range []string{"customer_id", "supplier_id", "party_id"} {
		if v, _ := item[field].(string); v == partyID {
			return true
		}
	}
	return false
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, resource string, col *collection) {
	var item map[string]any
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, _ := item["id"].(string)
	if id == "" {
		id = xid.New(resource)
		item["id"] = id
	}
	if _, ok := item["created_at"]; !ok {
		item["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	if _, exists := col.items[id]; !exists {
		col.order = append(col.order, id)
	}
	col.items[id] = item
	s.mu.Unlock()

	// Created entities come back wrapped, matching the backend's habit
	// of wrapping mutation responses even for bare-array resources.
	writeJSON(w, http.StatusCreated, map[string]any{"data": item})
}

func (s *Server) handleGet(w http.ResponseWriter, col *collection, id string) {
	s.mu.Lock()
	item, ok := col.items[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, col *collection, id string) {
	var item map[string]any
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item["id"] = id

	s.mu.Lock()
	_, ok := col.items[id]
	if ok {
		col.items[id] = item
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": item})
}

func (s *Server) handleDelete(w http.ResponseWriter, col *collection, id string) {
	s.mu.Lock()
	_, ok := col.items[id]
	if ok {
		delete(col.items, id)
		for i, existing := range col.order {
			if existing == id {
				col.order = append(col.order[:i], col.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConvert(w http.ResponseWriter, resource, id string) {
	target, ok := convertTargets[resource]
	if !ok {
		writeError(w, http.StatusNotFound, "resource has no conversion")
		return
	}

	s.mu.Lock()
	source := s.collections[resource]
	item, exists := source.items[id]
	if !exists {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	item["status"] = "converted"

	created := make(map[string]any, len(item))
	for k, v := range item {
		created[k] = v
	}
	newID := xid.New(target)
	created["id"] = newID
	created["status"] = "draft"
	delete(created, "valid_until")
	created["created_at"] = time.Now().UTC().Format(time.RFC3339)

	dst := s.collections[target]
	dst.order = append(dst.order, newID)
	dst.items[newID] = created
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (s *Server) snapshotUser() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Server) snapshotOrg() domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.org
}

func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("backendtest: marshal seed: %v", err))
	}
	var item map[string]any
	if err := json.Unmarshal(data, &item); err != nil {
		panic(fmt.Sprintf("backendtest: unmarshal seed: %v", err))
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
