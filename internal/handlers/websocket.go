package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mango-roulette-backend/internal/models"
	"mango-roulette-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	redisService *services.RedisService
	hub          *WebSocketHub
}

type WebSocketHub struct {
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	Username string
	Conn     *websocket.Conn
}

type Message struct {
	Type     string      `json:"type"`
	Username string      `json:"username,omitempty"`
	RoundID  string      `json:"round_id,omitempty"`
	Data     interface{} `json:"data"`
}

func NewWebSocketHandler(redisService *services.RedisService) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		redisService: redisService,
		hub:          hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	username := c.GetString("username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		Username: username,
		Conn:     conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendBalance(c, client)

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.sendPong(client)
	}
}

func (h *WebSocketHandler) sendBalance(c *gin.Context, client *Client) {
	account, err := h.redisService.GetAccount(c.Request.Context(), client.Username)
	if err != nil {
		log.Printf("Failed to get account for WS: %v", err)
		return
	}

	msg := Message{
		Type: "BALANCE_UPDATE",
		Data: gin.H{
			"mangos":           account.Mangos,
			"mango_juice":      account.MangoJuice,
			"fermented_mangos": account.FermentedMangos,
			"expired_juice":    account.ExpiredJuice,
		},
	}

	client.Conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendPong(client *Client) {
	msg := Message{
		Type: "PONG",
		Data: gin.H{
			"timestamp": time.Now().Unix(),
		},
	}

	client.Conn.WriteJSON(msg)
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.Username] = client.Conn
			log.Printf("Client registered: %s", client.Username)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.Username]; ok {
				delete(hub.clients, client.Username)
				log.Printf("Client unregistered: %s", client.Username)
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	if message.Username != "" {
		if conn, ok := hub.clients[message.Username]; ok {
			conn.WriteJSON(message)
		}
	} else {
		for _, conn := range hub.clients {
			conn.WriteJSON(message)
		}
	}
}

// BroadcastRoundUpdate pushes a phase change to every connected client.
func (h *WebSocketHandler) BroadcastRoundUpdate(round *models.GameRound) {
	data := gin.H{
		"round_id":        round.RoundID,
		"phase":           round.Phase,
		"betting_ends_at": round.BettingEndsAt,
		"result_ends_at":  round.ResultEndsAt,
		"timestamp":       time.Now().Unix(),
	}

	if round.Phase == models.PhaseSpinning || round.Phase == models.PhaseResult {
		data["winning_outcome"] = round.WinningOutcome
		data["secondary_outcome"] = round.SecondaryOutcome
	}

	h.hub.broadcast <- &Message{
		Type:    "ROUND_UPDATE",
		RoundID: round.RoundID,
		Data:    data,
	}
}

// BroadcastSettlement pushes the round result globally and each
// bettor's personal outcome directly to them.
func (h *WebSocketHandler) BroadcastSettlement(round *models.GameRound, bets []*models.Bet) {
	h.hub.broadcast <- &Message{
		Type:    "ROUND_SETTLED",
		RoundID: round.RoundID,
		Data: gin.H{
			"round_id":          round.RoundID,
			"winning_outcome":   round.WinningOutcome,
			"secondary_outcome": round.SecondaryOutcome,
			"total_staked":      round.TotalStaked,
			"total_paid":        round.TotalPaid,
			"payout_scale":      round.PayoutScale,
			"timestamp":         time.Now().Unix(),
		},
	}

	for _, bet := range bets {
		h.hub.broadcast <- &Message{
			Type:     "BET_SETTLED",
			Username: bet.Username,
			RoundID:  round.RoundID,
			Data: gin.H{
				"bet_id":   bet.ID,
				"type":     bet.Type,
				"amount":   bet.Amount,
				"currency": bet.Currency,
				"win":      bet.Win,
				"payout":   bet.Payout,
			},
		}
	}
}
