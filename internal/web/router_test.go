package web_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chainreaction/internal/dependencies/mocks"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage/memory"
	"github.com/mcoot/chainreaction/internal/testutil"
	"github.com/mcoot/chainreaction/internal/web"
	"github.com/mcoot/chainreaction/internal/web/sse"
	"github.com/mcoot/chainreaction/internal/web/ws"
)

type RouterSuite struct {
	suite.Suite
	random     *mocks.MockRandom
	hubManager *sse.HubManager
	controller *game.Controller
	server     *httptest.Server
	ctx        context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.random = mocks.NewMockRandom()
	s.hubManager = sse.NewHubManager(logger)
	wsHub := ws.NewHub(logger)
	s.controller = game.NewController(
		memory.New(),
		seat.New(s.random, seat.Config{BcryptCost: bcrypt.MinCost}),
		mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		mocks.NewMockIDs("game-1"),
		game.MultiPublisher{sse.NewBroadcaster(s.hubManager, logger), wsHub},
		game.Config{},
		logger,
	)
	router := web.NewRouter(web.RouterConfig{
		Logger:     logger,
		Games:      s.controller,
		HubManager: s.hubManager,
		WSHandler:  ws.NewHandler(ws.HandlerConfig{Games: s.controller, Hub: wsHub, Logger: logger}),
	})
	s.server = httptest.NewServer(router)
	s.ctx = context.Background()
}

func (s *RouterSuite) TearDownTest() {
	s.hubManager.CloseAll()
	s.server.Close()
}

func (s *RouterSuite) createGame() *game.CreatedGame {
	s.random.QueueString("secretsecretsecretsecretsecret01", "secretsecretsecretsecretsecret02")
	created, err := s.controller.CreateGame(s.ctx, game.CreateParams{})
	s.Require().NoError(err)
	return created
}

func (s *RouterSuite) get(path string) *http.Response {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	s.T().Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// readEvent returns the next event name and data line
func readEvent(reader *bufio.Reader) (string, string, error) {
	var name, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data, nil
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func (s *RouterSuite) TestEventsUnknownGame() {
	resp := s.get("/games/missing/events")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RouterSuite) TestEventsBadToken() {
	created := s.createGame()

	resp := s.get("/games/" + string(created.Game.ID) + "/events?token=1.wrong")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterSuite) TestEventsStreamMoves() {
	created := s.createGame()
	id := created.Game.ID

	resp := s.get("/games/" + string(id) + "/events?token=" + created.Tokens[1])
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
	reader := bufio.NewReader(resp.Body)

	name, _, err := readEvent(reader)
	s.Require().NoError(err)
	s.Equal("connected", name)

	hub := s.hubManager.GetHub(id)
	s.Require().NotNil(hub)
	s.Require().Eventually(func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = s.controller.ApplyMove(s.ctx, id, 1, model.Position{Row: 1, Col: 1})
	s.Require().NoError(err)

	name, data, err := readEvent(reader)
	s.Require().NoError(err)
	s.Equal(string(model.EventMoveApplied), name)
	s.Contains(data, `"game_id":"game-1"`)

	_, err = s.controller.Undo(s.ctx, id)
	s.Require().NoError(err)

	name, data, err = readEvent(reader)
	s.Require().NoError(err)
	s.Equal(string(model.EventHistoryChanged), name)
	s.Contains(data, `"direction":"undo"`)
}

func (s *RouterSuite) TestWebsocketRouteMounted() {
	created := s.createGame()

	// A plain GET without upgrade headers reaches the handler and is rejected by the upgrader
	resp := s.get("/games/" + string(created.Game.ID) + "/ws")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
