package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hivekv/hivekv/client"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe [topic]",
	Short: "Subscribes to a topic and prints messages until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		sub, err := client.Subscribe(c, args[0])
		if err != nil {
			return err
		}
		defer sub.Close()

		fmt.Printf("subscribed to %q, id=%d\n", args[0], sub.ID)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		for {
			select {
			case msg, ok := <-sub.Messages:
				if !ok {
					return nil
				}
				printValues(msg)
			case err := <-sub.Errs:
				return err
			case <-ctx.Done():
				return nil
			}
		}
	},
}
