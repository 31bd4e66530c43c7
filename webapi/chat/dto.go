package chat

import "github.com/amirasaad/fxchat/pkg/chat"

// MessageRequest is one line typed by the user.
type MessageRequest struct {
	Message string `json:"message" validate:"max=500"`
}

// ReplyResponse carries the bot's replies and where the session now is.
type ReplyResponse struct {
	Messages []chat.Message `json:"messages"`
	State    string         `json:"state"`
	UserName string         `json:"userName,omitempty"`
}

func toReply(bot *chat.Bot, msgs []chat.Message) ReplyResponse {
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ReplyResponse{
		Messages: msgs,
		State:    bot.State().Name(),
		UserName: bot.UserName(),
	}
}
