package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/eventlane/chatgate/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "bearer token")
	eventID := flag.String("event", "", "event id to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	header := http.Header{}
	if *token != "" {
		header.Set("Authorization", "Bearer "+*token)
	}
	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(id int64, actionType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", actionType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{ID: id, Type: actionType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", actionType, err)
		}
		return nil
	}

	if err := send(1, proto.TypeJoinEvent, proto.JoinEventData{EventID: *eventID}); err != nil {
		return err
	}
	if err := send(2, proto.TypeSendEventMessage, proto.SendEventMessageData{EventID: *eventID, Message: *text}); err != nil {
		return err
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}
		fmt.Printf("type=%s id=%d event=%s data=%s\n", outbound.Type, outbound.ID, outbound.Event, string(raw))

		if outbound.Error != nil {
			fmt.Printf("error: %s %s\n", outbound.Error.Code, outbound.Error.Message)
		}

		if outbound.Event == proto.EventEventMessage {
			var evt proto.EventMessagePayload
			if unmarshalErr := json.Unmarshal(raw, &evt); unmarshalErr != nil {
				return fmt.Errorf("unmarshal event message: %w", unmarshalErr)
			}
			fmt.Printf("message: event=%s sender=%s text=%q ts=%d\n", evt.EventID, evt.SenderID, evt.Message, evt.CreatedAt)
			return nil
		}
	}
}
