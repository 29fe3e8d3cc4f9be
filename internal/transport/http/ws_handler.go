package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Seljaki2/bingo/internal/app"
	"github.com/Seljaki2/bingo/internal/domain"
)

type WSHandler struct {
	engine   *app.GameEngine
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.GameEngine) *WSHandler {
	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startMatchPayload struct {
	AgeGroupID  int   `json:"ageGroupId"`
	CategoryIDs []int `json:"categoryIds"`
	UserIDs     []int `json:"userIds"`
}

type submitAnswerPayload struct {
	PlayerID      int          `json:"playerId"`
	QuestionID    int          `json:"questionId"`
	SelectedIndex int          `json:"selectedIndex"`
	Cell          *domain.Cell `json:"cell,omitempty"`
}

type leaderboardPayload struct {
	AgeGroupID int `json:"ageGroupId"`
	Limit      int `json:"limit"`
}

type addQuestionPayload struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	ImageURL      string   `json:"imageUrl"`
	CategoryID    int      `json:"categoryId"`
	AgeGroupID    int      `json:"ageGroupId"`
	CorrectOption int      `json:"correctOption"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and dispatches game messages.
// Responses are written from the read loop, so a single goroutine owns the
// connection and writes never race.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		if err := h.dispatch(conn, r, inbound); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

func (h *WSHandler) dispatch(conn *websocket.Conn, r *http.Request, inbound inboundMessage) error {
	ctx := r.Context()

	switch inbound.Type {
	case "startMatch":
		var payload startMatchPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return writeError(conn, domain.ErrInvalidParameters)
		}
		state, err := h.engine.StartMatch(ctx, payload.AgeGroupID, payload.CategoryIDs, payload.UserIDs)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[domain.MatchState]{Type: "matchStarted", Payload: state})

	case "submitAnswer":
		var payload submitAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return writeError(conn, domain.ErrInvalidParameters)
		}
		result, err := h.engine.SubmitAnswer(ctx, payload.PlayerID, payload.QuestionID, payload.SelectedIndex, payload.Cell)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[domain.AnswerResult]{Type: "answerResult", Payload: result})

	case "endMatch":
		records, err := h.engine.EndMatch(ctx)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[[]domain.LeaderboardRecord]{Type: "matchEnded", Payload: records})

	case "matchState":
		state, err := h.engine.MatchState()
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[domain.MatchState]{Type: "matchState", Payload: state})

	case "ageGroups":
		groups, err := h.engine.AgeGroups(ctx)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[[]domain.AgeGroup]{Type: "ageGroups", Payload: groups})

	case "categories":
		categories, err := h.engine.Categories(ctx)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[[]domain.Category]{Type: "categories", Payload: categories})

	case "leaderboard":
		var payload leaderboardPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return writeError(conn, domain.ErrInvalidParameters)
			}
		}
		records, err := h.engine.Leaderboard(ctx, payload.AgeGroupID, payload.Limit)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[[]domain.LeaderboardRecord]{Type: "leaderboard", Payload: records})

	case "addQuestion":
		var payload addQuestionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return writeError(conn, domain.ErrInvalidParameters)
		}
		question, err := h.engine.AddQuestion(ctx, domain.Question{
			Prompt:     payload.Prompt,
			Options:    payload.Options,
			ImageURL:   payload.ImageURL,
			CategoryID: payload.CategoryID,
			AgeGroupID: payload.AgeGroupID,
		}, payload.CorrectOption)
		if err != nil {
			return writeError(conn, err)
		}
		return conn.WriteJSON(outboundMessage[domain.Question]{Type: "questionAdded", Payload: question})

	default:
		return conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
			Code:    "invalidParameters",
			Message: "unsupported message type",
		}})
	}
}

func writeError(conn *websocket.Conn, err error) error {
	return conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	}})
}

// errorCode maps engine errors to the codes the desktop client switches on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		return "invalidParameters"
	case errors.Is(err, domain.ErrMatchInProgress):
		return "matchAlreadyInProgress"
	case errors.Is(err, domain.ErrNoActiveMatch):
		return "noActiveMatch"
	case errors.Is(err, domain.ErrUnknownPlayer):
		return "unknownPlayer"
	case errors.Is(err, domain.ErrUnknownQuestion):
		return "unknownQuestion"
	default:
		return "externalStoreFailure"
	}
}
