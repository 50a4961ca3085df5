package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironhull/wsim/internal/auth"
	"github.com/ironhull/wsim/internal/model"
	"github.com/ironhull/wsim/internal/service"
	"github.com/ironhull/wsim/pkg/wsim"
)

// --- Mock Repositories ---

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("user-%d", m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.DisplayName = displayName
	return nil
}

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, scenarioName, turnDuration string, mapWidth, mapHeight int, wind, victoryCondition string, turnLimit int) (*model.Game, error) {
	g := &model.Game{
		ID:               fmt.Sprintf("game-%d", len(m.games)+1),
		Name:             name,
		CreatorID:        creatorID,
		Status:           "waiting",
		ScenarioName:     scenarioName,
		MapWidth:         mapWidth,
		MapHeight:        mapHeight,
		WindDirection:    wind,
		VictoryCondition: victoryCondition,
		TurnLimit:        turnLimit,
		TurnDuration:     turnDuration,
		CreatedAt:        time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, side string) error {
	if _, ok := m.games[gameID]; !ok {
		return fmt.Errorf("game not found")
	}
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID: gameID, UserID: userID, Side: side, JoinedAt: time.Now(),
	})
	return nil
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) SetStarted(_ context.Context, gameID string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game not found")
	}
	g.Status = "active"
	now := time.Now()
	g.StartedAt = &now
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game not found")
	}
	g.Status = "finished"
	g.Winner = winner
	now := time.Now()
	g.FinishedAt = &now
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

type mockTurnRepo struct {
	orders []model.TurnRecord
	events []model.EventRecord
}

func newMockTurnRepo() *mockTurnRepo {
	return &mockTurnRepo{}
}

func (m *mockTurnRepo) SaveOrders(_ context.Context, record model.TurnRecord) error {
	m.orders = append(m.orders, record)
	return nil
}

func (m *mockTurnRepo) OrdersByGame(_ context.Context, gameID string) ([]model.TurnRecord, error) {
	var result []model.TurnRecord
	for _, o := range m.orders {
		if o.GameID == gameID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockTurnRepo) AppendEvents(_ context.Context, records []model.EventRecord) error {
	m.events = append(m.events, records...)
	return nil
}

func (m *mockTurnRepo) EventsByGame(_ context.Context, gameID string) ([]model.EventRecord, error) {
	var result []model.EventRecord
	for _, e := range m.events {
		if e.GameID == gameID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockTurnRepo) EventsByTurn(_ context.Context, gameID string, turnNumber int) ([]model.EventRecord, error) {
	var result []model.EventRecord
	for _, e := range m.events {
		if e.GameID == gameID && e.TurnNumber == turnNumber {
			result = append(result, e)
		}
	}
	return result, nil
}

type mockGameCache struct {
	state  map[string]json.RawMessage
	orders map[string]map[string]json.RawMessage
	ready  map[string]map[string]bool
	timers map[string]time.Time
}

func newMockGameCache() *mockGameCache {
	return &mockGameCache{
		state:  make(map[string]json.RawMessage),
		orders: make(map[string]map[string]json.RawMessage),
		ready:  make(map[string]map[string]bool),
		timers: make(map[string]time.Time),
	}
}

func (m *mockGameCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	m.state[gameID] = state
	return nil
}

func (m *mockGameCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.state[gameID], nil
}

func (m *mockGameCache) DeleteGameState(_ context.Context, gameID string) error {
	delete(m.state, gameID)
	return nil
}

func (m *mockGameCache) SetOrders(_ context.Context, gameID, side string, orders json.RawMessage) error {
	if m.orders[gameID] == nil {
		m.orders[gameID] = make(map[string]json.RawMessage)
	}
	m.orders[gameID][side] = orders
	return nil
}

func (m *mockGameCache) GetOrders(_ context.Context, gameID, side string) (json.RawMessage, error) {
	return m.orders[gameID][side], nil
}

func (m *mockGameCache) GetAllOrders(_ context.Context, gameID string, sides []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, side := range sides {
		if v, ok := m.orders[gameID][side]; ok {
			result[side] = v
		}
	}
	return result, nil
}

func (m *mockGameCache) MarkReady(_ context.Context, gameID, side string) error {
	if m.ready[gameID] == nil {
		m.ready[gameID] = make(map[string]bool)
	}
	m.ready[gameID][side] = true
	return nil
}

func (m *mockGameCache) UnmarkReady(_ context.Context, gameID, side string) error {
	delete(m.ready[gameID], side)
	return nil
}

func (m *mockGameCache) ReadyCount(_ context.Context, gameID string) (int64, error) {
	return int64(len(m.ready[gameID])), nil
}

func (m *mockGameCache) ReadySides(_ context.Context, gameID string) ([]string, error) {
	var sides []string
	for side := range m.ready[gameID] {
		sides = append(sides, side)
	}
	return sides, nil
}

func (m *mockGameCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	m.timers[gameID] = deadline
	return nil
}

func (m *mockGameCache) ClearTimer(_ context.Context, gameID string) error {
	delete(m.timers, gameID)
	return nil
}

func (m *mockGameCache) ClearTurnData(_ context.Context, gameID string, sides []string) error {
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.timers, gameID)
	return nil
}

func (m *mockGameCache) DeleteGameData(_ context.Context, gameID string, sides []string) error {
	delete(m.state, gameID)
	delete(m.orders, gameID)
	delete(m.ready, gameID)
	delete(m.timers, gameID)
	return nil
}

// --- Helpers ---

func reqWithUserID(method, path string, body string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := auth.SetUserIDForTest(req.Context(), userID)
	return req.WithContext(ctx)
}

func testScenario() *service.Scenario {
	return &service.Scenario{
		Name:             "two_frigate_duel",
		MapWidth:         20,
		MapHeight:        20,
		Wind:             "N",
		VictoryCondition: "first_struck",
		Ships: []service.ScenarioShip{
			{Name: "HMS Victory", Side: "P1", BowCol: 5, BowRow: 5, Facing: "E", BattleSailSpeed: 3, GunsL: 10, GunsR: 10, Hull: 12, Rigging: 10, Crew: 80, Marines: 10},
			{Name: "Redoutable", Side: "P2", BowCol: 8, BowRow: 5, Facing: "W", BattleSailSpeed: 3, GunsL: 10, GunsR: 10, Hull: 12, Rigging: 10, Crew: 80, Marines: 10},
		},
	}
}

// --- User Handler Tests ---

func TestGetMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
		Provider:    "google",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "user-1")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Alice" {
		t.Errorf("expected Alice, got %s", user.DisplayName)
	}
}

func TestGetMeNotFound(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":"Bob"}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Bob" {
		t.Errorf("expected Bob, got %s", user.DisplayName)
	}
}

func TestUpdateMeEmptyName(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{ID: "user-1"}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":""}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateMeInvalidJSON(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", "not json", "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Game Handler Tests ---

func newTestGameHandler() (*GameHandler, *mockGameRepo, *mockGameCache) {
	gameRepo := newMockGameRepo()
	cache := newMockGameCache()
	gameSvc := service.NewGameService(gameRepo, cache, wsim.DefaultHitTables(), 10)
	orderSvc := service.NewOrderService(gameRepo, newMockTurnRepo(), cache)
	return NewGameHandler(gameSvc, orderSvc, NewHub()), gameRepo, cache
}

func TestCreateGame(t *testing.T) {
	h, _, _ := newTestGameHandler()

	scenarioJSON, _ := json.Marshal(testScenario())
	body := fmt.Sprintf(`{"name":"Test Game","scenario":%s}`, scenarioJSON)
	req := reqWithUserID(http.MethodPost, "/games", body, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var game model.Game
	json.Unmarshal(rec.Body.Bytes(), &game)
	if game.Name != "Test Game" {
		t.Errorf("expected 'Test Game', got %s", game.Name)
	}
}

func TestCreateGameMissingName(t *testing.T) {
	h, _, _ := newTestGameHandler()

	scenarioJSON, _ := json.Marshal(testScenario())
	body := fmt.Sprintf(`{"name":"","scenario":%s}`, scenarioJSON)
	req := reqWithUserID(http.MethodPost, "/games", body, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateGameMissingScenario(t *testing.T) {
	h, _, _ := newTestGameHandler()

	req := reqWithUserID(http.MethodPost, "/games", `{"name":"Test Game"}`, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListGamesEmpty(t *testing.T) {
	h, _, _ := newTestGameHandler()

	req := reqWithUserID(http.MethodGet, "/games", "", "user-1")
	rec := httptest.NewRecorder()
	h.ListGames(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetGameNotFound(t *testing.T) {
	h, _, _ := newTestGameHandler()

	req := reqWithUserID(http.MethodGet, "/games/nonexistent", "", "user-1")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetGame(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJoinGameNotFound(t *testing.T) {
	h, _, _ := newTestGameHandler()

	req := reqWithUserID(http.MethodPost, "/games/nonexistent/join", `{"side":"P2"}`, "user-1")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.JoinGame(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJoinGameInvalidSide(t *testing.T) {
	h, gameRepo, cache := newTestGameHandler()
	ctx := context.Background()
	scenarioJSON, _ := json.Marshal(testScenario())
	_ = cache
	gameRepo.Create(ctx, "Test", "user-1", "two_frigate_duel", "2m", 20, 20, "N", "first_struck", 0)
	_ = scenarioJSON

	req := reqWithUserID(http.MethodPost, "/games/game-1/join", `{"side":"P9"}`, "user-2")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.JoinGame(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// --- Auth Handler Tests ---

func TestRefreshTokenValid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	refresh, _ := jwtMgr.GenerateRefreshToken("user-1")
	body := fmt.Sprintf(`{"refresh_token":"%s"}`, refresh)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tokens auth.TokenPair
	json.Unmarshal(rec.Body.Bytes(), &tokens)
	if tokens.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"invalid"}`))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshTokenBadBody(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Phase Handler Tests ---

func TestListEventsEmpty(t *testing.T) {
	turnRepo := newMockTurnRepo()
	phaseSvc := service.NewPhaseService(newMockGameRepo(), turnRepo, newMockGameCache(), service.NoopBroadcaster{}, wsim.NewSeededRNG(1))
	h := NewPhaseHandler(phaseSvc, turnRepo, NewHub())

	req := reqWithUserID(http.MethodGet, "/games/game-1/events", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.ListEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestResolveMovementNoActiveGame(t *testing.T) {
	turnRepo := newMockTurnRepo()
	phaseSvc := service.NewPhaseService(newMockGameRepo(), turnRepo, newMockGameCache(), service.NoopBroadcaster{}, wsim.NewSeededRNG(1))
	h := NewPhaseHandler(phaseSvc, turnRepo, NewHub())

	req := reqWithUserID(http.MethodPost, "/games/game-1/resolve-movement", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.ResolveMovement(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
