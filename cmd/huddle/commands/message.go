// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/huddle-chat/huddle/cmd/huddle/cli"
	"github.com/huddle-chat/huddle/lib/panel"
	"github.com/huddle-chat/huddle/lib/ref"
)

func (a *app) messageCommand() *cli.Command {
	return &cli.Command{
		Name:    "message",
		Summary: "Send, edit, delete, and react to messages",
		Subcommands: []*cli.Command{
			a.messageSendCommand(),
			a.messageEditCommand(),
			a.messageDeleteCommand(),
			a.messageReactCommand(),
		},
	}
}

type messageSendParams struct {
	connectionParams
	Channel      string `flag:"channel" desc:"channel to post to"`
	Member       string `flag:"member" desc:"member to message directly"`
	Conversation string `flag:"conversation" desc:"conversation to post to"`
	Parent       string `flag:"parent" desc:"message to reply to in its thread"`
	Image        string `flag:"image" desc:"image file to attach"`
}

// targets counts how many destinations were given.
func (p *messageSendParams) targets() int {
	count := 0
	for _, value := range []string{p.Channel, p.Member, p.Conversation, p.Parent} {
		if value != "" {
			count++
		}
	}
	return count
}

func (a *app) messageSendCommand() *cli.Command {
	var params messageSendParams
	return &cli.Command{
		Name:    "send",
		Summary: "Post a message to a channel, conversation, or thread",
		Usage:   "huddle message send (--channel ID | --member ID | --conversation ID | --parent ID) [--image FILE] [BODY...]",
		Examples: []cli.Example{
			{Description: "Post to a channel", Command: "huddle message send --channel chn_... 'hello **team**'"},
			{Description: "Message a member directly", Command: "huddle message send --member mem_... 'got a minute?'"},
			{Description: "Attach an image", Command: "huddle message send --channel chn_... --image diagram.png"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if params.targets() != 1 {
				return cli.Validation("exactly one of --channel, --member, --conversation, or --parent is required")
			}
			body := strings.Join(args, " ")
			if strings.TrimSpace(body) == "" && params.Image == "" {
				return cli.Validation("message body or --image is required")
			}
			ctx, conn, err := a.connect(ctx, params.connectionParams, "message/send")
			if err != nil {
				return err
			}
			defer conn.Close()

			image, err := conn.uploadImage(ctx, params.Image)
			if err != nil {
				return err
			}
			if params.Parent != "" {
				parent, err := parseMessage(params.Parent)
				if err != nil {
					return err
				}
				return a.reply(ctx, conn, parent, body, image)
			}

			view, err := conn.sendTarget(ctx, &params)
			if err != nil {
				return err
			}
			defer view.Close()
			var id ref.MessageID
			if image != "" {
				id, err = view.SendImage(ctx, body, image)
			} else {
				id, err = view.Send(ctx, body)
			}
			if err != nil {
				return conn.finish(err)
			}
			fmt.Fprintf(a.io.Out, "Sent: %s\n", id)
			return nil
		},
	}
}

// sendTarget opens the channel or conversation params names. The
// workspace comes from the channel or member itself.
func (c *connection) sendTarget(ctx context.Context, params *messageSendParams) (stream, error) {
	switch {
	case params.Channel != "":
		channelID, err := parseChannel(params.Channel)
		if err != nil {
			return nil, err
		}
		channel, err := c.backend.GetChannel(ctx, channelID)
		if err != nil {
			return nil, cli.Classify(err)
		}
		return panel.NewChannelView(c.env, channel.WorkspaceID, channelID), nil
	case params.Member != "":
		memberID, err := parseMember(params.Member)
		if err != nil {
			return nil, err
		}
		member, err := c.backend.GetMember(ctx, memberID)
		if err != nil {
			return nil, cli.Classify(err)
		}
		view, err := panel.OpenConversation(ctx, c.env, member.WorkspaceID, memberID)
		if err != nil {
			return nil, cli.Classify(err)
		}
		return view, nil
	default:
		conversationID, err := parseConversation(params.Conversation)
		if err != nil {
			return nil, err
		}
		view, _, err := c.openConversation(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		return view, nil
	}
}

// uploadImage stores the file at path as media and returns its URL, or
// "" when path is empty.
func (c *connection) uploadImage(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cli.Validation("reading image: %w", err)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", cli.Validation("%s is not an image (detected %s)", path, contentType)
	}
	url, err := c.backend.UploadMedia(ctx, contentType, data)
	if err != nil {
		return "", cli.Classify(err)
	}
	return url, nil
}

func (a *app) messageEditCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "edit",
		Summary: "Replace the body of one of your messages",
		Usage:   "huddle message edit MESSAGE BODY... [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "MESSAGE", "BODY..."); err != nil {
				return err
			}
			return a.onMessage(ctx, params, "message/edit", args[0], func(ctx context.Context, view stream, id ref.MessageID) error {
				return view.Edit(ctx, id, strings.Join(args[1:], " "))
			})
		},
	}
}

func (a *app) messageDeleteCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete one of your messages",
		Usage:   "huddle message delete MESSAGE [--yes] [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "MESSAGE"); err != nil {
				return err
			}
			return a.onMessage(ctx, params, "message/delete", args[0], func(ctx context.Context, view stream, id ref.MessageID) error {
				return view.Delete(ctx, id)
			})
		},
	}
}

func (a *app) messageReactCommand() *cli.Command {
	var params connectionParams
	return &cli.Command{
		Name:    "react",
		Summary: "Toggle your reaction on a message",
		Usage:   "huddle message react MESSAGE VALUE [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, "MESSAGE", "VALUE"); err != nil {
				return err
			}
			return a.onMessage(ctx, params, "message/react", args[0], func(ctx context.Context, view stream, id ref.MessageID) error {
				return view.React(ctx, id, args[1])
			})
		},
	}
}

// onMessage opens the stream a message belongs to and runs action on it.
func (a *app) onMessage(ctx context.Context, params connectionParams, command, raw string, action func(context.Context, stream, ref.MessageID) error) error {
	messageID, err := parseMessage(raw)
	if err != nil {
		return err
	}
	ctx, conn, err := a.connect(ctx, params, command)
	if err != nil {
		return err
	}
	defer conn.Close()

	view, _, err := conn.streamOf(ctx, messageID)
	if err != nil {
		return err
	}
	defer view.Close()
	return conn.finish(action(ctx, view, messageID))
}
