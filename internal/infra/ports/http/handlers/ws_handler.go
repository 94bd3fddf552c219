package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mockmate/interviewroom/internal/application/config"
	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/application/token"
	"github.com/mockmate/interviewroom/internal/domain/events"
	"github.com/mockmate/interviewroom/internal/infra/adapters/memory"
	"github.com/mockmate/interviewroom/internal/infra/appctx"
	"github.com/mockmate/interviewroom/internal/usecase"
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	signalingUsecase usecase.SignalingUsecase

	signalRepo memory.SignalConnRepository
}

func NewWebSocketHandler(cfg *config.Config, signalingUsecase usecase.SignalingUsecase, signalRepo memory.SignalConnRepository) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		signalingUsecase: signalingUsecase,
		signalRepo:       signalRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	claims, ok := appctx.Participant(c.Request().Context())
	if !ok {
		return fmt.Errorf("get participant from context")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	h.signalRepo.Add(claims.Identity, ws)
	defer h.signalRepo.Remove(claims.Identity)

	if err = h.signalingUsecase.HandleConnect(c.Request().Context(), claims); err != nil {
		slog.Error(
			"handle connect",
			slog.Any(constant.Error, err),
			slog.String(constant.RoomName, claims.RoomName),
		)

		h.signalRepo.Write(claims.Identity, events.Message{Type: constant.Error, Data: mustMarshal(events.ErrorEvent{Message: "room unavailable"})})

		return nil
	}

	err = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	if err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				// Through the repository so pings never race a
				// concurrent answer or candidate write.
				if err := h.signalRepo.Ping(claims.Identity); err != nil {
					slog.Error("ping failed", slog.Any(constant.Error, err))
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		default:
			_, msg, err := ws.ReadMessage()
			if err != nil {
				h.handleWebsocketError(claims, err)

				if err = h.signalingUsecase.HandleLeave(c.Request().Context(), claims); err != nil {
					slog.Error(
						"handle leave while reading websocket message",
						slog.Any(constant.Error, err),
						slog.String(constant.Identity, claims.Identity),
					)
				}

				return nil
			}

			signalMessage := new(events.Message)

			if err = json.Unmarshal(msg, &signalMessage); err != nil {
				slog.Error("unmarshal websocket message", slog.Any(constant.Error, err))

				return nil
			}

			if err = h.handleMessage(c.Request().Context(), claims, signalMessage); err != nil {
				slog.Error("handle message", slog.Any(constant.Error, err))
			}
		}
	}
}

func (h *WebSocketHandler) handleMessage(
	ctx context.Context,
	claims *token.Claims,
	msg *events.Message,
) error {
	switch msg.Type {
	case "offer":
		var offer events.SdpEvent

		if err := json.Unmarshal(msg.Data, &offer); err != nil {
			return fmt.Errorf("unmarshal offer: %w", err)
		}

		if err := h.signalingUsecase.HandleOffer(ctx, claims, offer.SDP); err != nil {
			return fmt.Errorf("handle offer: %w", err)
		}

	case "candidate":
		var candidate events.IceCandidateEvent

		if err := json.Unmarshal(msg.Data, &candidate); err != nil {
			return fmt.Errorf("unmarshal ice candidate: %w", err)
		}

		if err := h.signalingUsecase.HandleCandidate(ctx, claims, candidate.Candidate); err != nil {
			return fmt.Errorf("handle ice candidate: %w", err)
		}

	case "leave":
		if err := h.signalingUsecase.HandleLeave(ctx, claims); err != nil {
			return fmt.Errorf("handle leave: %w", err)
		}

	default:
		return errors.New("unknown message type")
	}

	return nil
}

func (h *WebSocketHandler) handleWebsocketError(claims *token.Claims, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("participant disconnected from websocket", slog.String(constant.Identity, claims.Identity))
		default:
			slog.Error("websocket close error")
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
		)
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return data
}
