package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hivekv/hivekv/wire"
)

var (
	hgetCmd = &cobra.Command{
		Use:   "hget [table] [key]",
		Short: "Reads one key from a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHget(args[0], args[1]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hgetallCmd = &cobra.Command{
		Use:   "hgetall [table]",
		Short: "Reads every key in a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHgetall(args[0]))
			if err != nil {
				return err
			}
			return printPairs(resp)
		},
	}

	hmgetCmd = &cobra.Command{
		Use:   "hmget [table] [key...]",
		Short: "Reads several keys from a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHmget(args[0], args[1:]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hsetCmd = &cobra.Command{
		Use:   "hset [table] [key] [value]",
		Short: "Sets one key in a table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			req := wire.NewHset(args[0], wire.KvPair{Key: args[1], Value: wire.String(args[2])})
			resp, err := c.Call(req)
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hmsetCmd = &cobra.Command{
		Use:   "hmset [table] [key=value...]",
		Short: "Sets several keys in a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args[1:])
			if err != nil {
				return err
			}

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHmset(args[0], pairs))
			if err != nil {
				return err
			}
			return printStatus(resp)
		},
	}

	hdelCmd = &cobra.Command{
		Use:   "hdel [table] [key]",
		Short: "Deletes one key from a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHdel(args[0], args[1]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hmdelCmd = &cobra.Command{
		Use:   "hmdel [table] [key...]",
		Short: "Deletes several keys from a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHmdel(args[0], args[1:]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hexistCmd = &cobra.Command{
		Use:   "hexist [table] [key]",
		Short: "Checks whether a key exists in a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHexist(args[0], args[1]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	hmexistCmd = &cobra.Command{
		Use:   "hmexist [table] [key...]",
		Short: "Checks whether several keys exist in a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewHmexist(args[0], args[1:]))
			if err != nil {
				return err
			}
			return printValues(resp)
		},
	}

	publishCmd = &cobra.Command{
		Use:   "publish [topic] [value...]",
		Short: "Publishes values to a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			values := make([]wire.Value, len(args)-1)
			for i, v := range args[1:] {
				values[i] = wire.String(v)
			}

			resp, err := c.Call(wire.NewPublish(args[0], values))
			if err != nil {
				return err
			}
			return printStatus(resp)
		},
	}

	unsubscribeCmd = &cobra.Command{
		Use:   "unsubscribe [topic] [subscription-id]",
		Short: "Unsubscribes a previously issued subscription id from a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("subscription-id must be a number: %w", err)
			}

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(wire.NewUnsubscribe(args[0], uint32(id)))
			if err != nil {
				return err
			}
			return printStatus(resp)
		},
	}
)
