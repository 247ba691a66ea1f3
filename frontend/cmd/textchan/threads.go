package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/textchan-dev/textchan/shared/domain"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List threads, newest first",
	Args:  cobra.NoArgs,
	RunE:  runThreads,
}

var showCmd = &cobra.Command{
	Use:   "show <thread-id>",
	Short: "Show a thread and its replies",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(showCmd)
}

func runThreads(cmd *cobra.Command, args []string) error {
	threads, err := client.GetThreads(cmd.Context())
	if err != nil {
		return err
	}
	out.Threads(threads, nil)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseThreadId(args[0])
	if err != nil {
		return err
	}
	resp, err := client.GetReplies(cmd.Context(), id)
	if err != nil {
		return err
	}
	out.Thread(resp.Thread, resp.Replies)
	return nil
}

func parseThreadId(s string) (domain.ThreadId, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid thread id: %s", s)
	}
	return id, nil
}
