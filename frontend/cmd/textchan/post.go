package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/textchan-dev/textchan/frontend/internal/apiclient"
)

var postCmd = &cobra.Command{
	Use:   "post <body>",
	Short: "Start a new thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runPost,
}

var replyCmd = &cobra.Command{
	Use:   "reply <thread-id> <body>",
	Short: "Reply to a thread",
	Args:  cobra.ExactArgs(2),
	RunE:  runReply,
}

func init() {
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(replyCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	thread, err := client.CreateThread(cmd.Context(), args[0], userId())
	if err != nil {
		return postFailed(cmd.Context(), err)
	}
	out.Success("Created thread #%d", thread.Id)
	return nil
}

func runReply(cmd *cobra.Command, args []string) error {
	id, err := parseThreadId(args[0])
	if err != nil {
		return err
	}
	reply, err := client.CreateReply(cmd.Context(), id, args[1], userId())
	if err != nil {
		return postFailed(cmd.Context(), err)
	}
	out.Success("Replied to #%d (reply %d)", reply.ThreadId, reply.Id)
	return nil
}

// postFailed refreshes the status banner right away when the store is full.
func postFailed(ctx context.Context, err error) error {
	if apiclient.IsStorageLimit(err) {
		if status, statusErr := client.GetStatus(ctx); statusErr == nil {
			out.Status(status)
		}
	}
	return err
}
