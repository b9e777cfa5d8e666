package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/eventlane/chatgate/internal/core"
	"github.com/eventlane/chatgate/internal/proto"
	"github.com/eventlane/chatgate/internal/store"
)

// dispatch runs one client-initiated action through the hub and shapes
// the reply. Every failure becomes a structured acknowledgement plus a
// mirrored error event; nothing escapes to tear down the connection.
func (h *WSHandler) dispatch(ctx context.Context, client *core.Client, inbound proto.Inbound) []proto.Outbound {
	switch inbound.Type {
	case proto.TypeJoinEvent:
		var data proto.JoinEventData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		result, err := h.hub.JoinEvent(ctx, client, core.JoinEventRequest{
			EventID:   data.EventID,
			EventSlug: data.EventSlug,
		})
		if err != nil {
			return failure(inbound.ID, err)
		}
		return ack(inbound.ID, proto.JoinAck{OK: true, EventID: result.EventID, EventSlug: result.EventSlug})

	case proto.TypeLeaveEvent:
		var data proto.JoinEventData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		if err := h.hub.LeaveEvent(ctx, client, core.LeaveEventRequest{
			EventID:   data.EventID,
			EventSlug: data.EventSlug,
		}); err != nil {
			return failure(inbound.ID, err)
		}
		return ack(inbound.ID, proto.Ack{OK: true})

	case proto.TypeEventHistory:
		var data proto.EventHistoryData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		msgs, err := h.hub.EventHistory(ctx, client, core.EventHistoryRequest{
			EventID:   data.EventID,
			EventSlug: data.EventSlug,
			Limit:     data.Limit,
		})
		if err != nil {
			return failure(inbound.ID, err)
		}
		payload := lo.Map(msgs, func(m *store.EventMessage, _ int) proto.EventMessagePayload {
			return eventMessagePayload(m)
		})
		return ack(inbound.ID, proto.DataAck{OK: true, Data: payload})

	case proto.TypeSendEventMessage:
		var data proto.SendEventMessageData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		msg, err := h.hub.SendEventMessage(ctx, client, core.SendEventMessageRequest{
			EventID:   data.EventID,
			EventSlug: data.EventSlug,
			Message:   data.Message,
		})
		if err != nil {
			return failure(inbound.ID, err)
		}
		return ack(inbound.ID, proto.DataAck{OK: true, Data: eventMessagePayload(msg)})

	case proto.TypeSendPrivateMessage:
		var data proto.SendPrivateMessageData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		msg, err := h.hub.SendPrivateMessage(ctx, client, core.SendPrivateMessageRequest{
			ToUserID: data.ToUserID,
			Message:  data.Message,
		})
		if err != nil {
			return failure(inbound.ID, err)
		}
		return ack(inbound.ID, proto.DataAck{OK: true, Data: privateMessagePayload(msg)})

	case proto.TypePrivateHistory:
		var data proto.PrivateHistoryData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		req := core.PrivateHistoryRequest{WithUserID: data.WithUserID, Limit: data.Limit}
		if data.Before > 0 {
			before := time.UnixMilli(data.Before)
			req.Before = &before
		}
		msgs, err := h.hub.PrivateHistory(ctx, client, req)
		if err != nil {
			return failure(inbound.ID, err)
		}
		payload := lo.Map(msgs, func(m *store.PrivateMessage, _ int) proto.PrivateMessagePayload {
			return privateMessagePayload(m)
		})
		return ack(inbound.ID, proto.DataAck{OK: true, Data: payload})

	case proto.TypeTypingIndicator:
		var data proto.TypingData
		if err := h.decode(inbound.Data, &data); err != nil {
			return failure(inbound.ID, err)
		}
		if err := h.hub.Typing(ctx, client, core.TypingRequest{
			ToUserID: data.ToUserID,
			IsTyping: data.IsTyping,
		}); err != nil {
			return failure(inbound.ID, err)
		}
		return ack(inbound.ID, proto.Ack{OK: true})

	default:
		return failure(inbound.ID, core.BadRequest("unknown action type"))
	}
}

// decode unmarshals and validates an action payload.
func (h *WSHandler) decode(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return core.BadRequest("missing payload")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return core.BadRequest("malformed payload")
	}
	if err := h.validate.Struct(target); err != nil {
		return core.BadRequest("missing required fields")
	}
	return nil
}

func ack(id int64, data any) []proto.Outbound {
	return []proto.Outbound{{Type: proto.OutboundTypeAck, ID: id, Data: data}}
}

// failure shapes an error into the uniform failed ack plus a mirrored
// error event.
func failure(id int64, err error) []proto.Outbound {
	domainErr := core.AsError(err)
	return []proto.Outbound{
		{
			Type: proto.OutboundTypeAck,
			ID:   id,
			Data: proto.ErrorAck{OK: false, Error: domainErr.Code, Message: domainErr.Message},
		},
		{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: domainErr.Code, Message: domainErr.Message},
		},
	}
}

func eventMessagePayload(m *store.EventMessage) proto.EventMessagePayload {
	return proto.EventMessagePayload{
		ID:         m.ID,
		EventID:    m.EventID,
		SenderID:   m.SenderID,
		SenderType: m.SenderKind,
		Message:    m.Body,
		CreatedAt:  m.CreatedAt.UnixMilli(),
	}
}

func privateMessagePayload(m *store.PrivateMessage) proto.PrivateMessagePayload {
	return proto.PrivateMessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Body,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt.UnixMilli(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventJoined:
		return push(proto.EventJoined, proto.JoinedEvent{
			EventID:   event.EventID,
			EventSlug: event.EventSlug,
		})
	case core.EventRoomMessage:
		return push(proto.EventEventMessage, eventMessagePayload(event.Message))
	case core.EventPrivateMessage:
		return push(proto.EventPrivateMessage, privateMessagePayload(event.Private))
	case core.EventTyping:
		return push(proto.EventTyping, proto.TypingEvent{
			FromUserID: event.FromUserID,
			IsTyping:   event.IsTyping,
		})
	case core.EventStatusChange:
		return push(proto.EventStatusChange, proto.StatusChangeEvent{
			UserID:   event.UserID,
			IsOnline: event.IsOnline,
		})
	case core.EventTicketRoomReady:
		return push(proto.EventTicketRoomReady, proto.TicketRoomReadyEvent{
			EventID: event.EventID,
		})
	case core.EventPublished:
		return push(proto.EventPublished, proto.EventPublishedEvent{
			EventID:   event.EventID,
			EventSlug: event.EventSlug,
			EventName: event.EventName,
		})
	case core.EventError:
		if event.Err == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: core.CodeInternal, Message: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Err.Code, Message: event.Err.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func push(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}
