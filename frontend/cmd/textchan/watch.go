package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/textchan-dev/textchan/frontend/internal/watch"
	"github.com/textchan-dev/textchan/shared/domain"
)

var (
	watchOpen   []string
	watchStream bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the forum on screen, refreshing in the background",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchOpen, "open", nil, "thread ids whose replies are shown")
	watchCmd.Flags().BoolVar(&watchStream, "stream", false, "follow the server's event stream instead of polling threads")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var open []domain.ThreadId
	for _, s := range watchOpen {
		id, err := parseThreadId(s)
		if err != nil {
			return err
		}
		open = append(open, id)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err := watch.New(client, out, open...).Run(ctx, watchStream)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
