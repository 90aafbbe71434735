package main

import (
	"fmt"
	"time"

	"github.com/ochronus/goputiokit/internal/poll"
	"github.com/ochronus/goputiokit/pkg/putio"
	"github.com/spf13/cobra"
)

func newMP4Cmd(c *cli) *cobra.Command {
	mp4Cmd := &cobra.Command{
		Use:   "mp4",
		Short: "MP4 conversion",
	}

	statusCmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the MP4 conversion status of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()
			res := <-file.MP4Status(cmd.Context())
			if res.Err != nil {
				return fmt.Errorf("failed to get mp4 status: %w", res.Err)
			}
			printMP4(c, res.Value)
			return nil
		},
	}

	var (
		wait     bool
		interval time.Duration
	)
	convertCmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Start an MP4 conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			if err := report(c, <-file.ConvertToMP4(cmd.Context()), "start conversion of %d", file.ID); err != nil {
				return err
			}
			if !wait {
				return nil
			}

			var last putio.MP4
			err = poll.Until(cmd.Context(), c.polling(interval), func(int) (bool, error) {
				res := <-file.MP4Status(cmd.Context())
				if res.Err != nil {
					return false, &poll.TransientError{Err: res.Err}
				}
				last = res.Value
				printMP4(c, last)
				return last.Done(), nil
			})
			if err != nil {
				return fmt.Errorf("failed waiting for conversion: %w", err)
			}
			if last.Status == putio.MP4Error {
				return fmt.Errorf("conversion of %d failed", file.ID)
			}
			return nil
		},
	}
	convertCmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the conversion finishes")
	convertCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval while waiting")

	mp4Cmd.AddCommand(statusCmd, convertCmd)
	return mp4Cmd
}

func printMP4(c *cli, mp4 putio.MP4) {
	fmt.Fprintf(c.out, "%s %d%%\n", mp4.Status, mp4.PercentDone)
}

func newSubtitlesCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "subtitles <id>",
		Short: "List the subtitles of a video with their download URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subFormat := putio.SubtitleFormat(format)
			if subFormat != putio.SubtitleSRT && subFormat != putio.SubtitleWebVTT {
				return fmt.Errorf("format must be %s or %s", putio.SubtitleSRT, putio.SubtitleWebVTT)
			}

			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			res := <-file.Subtitles(cmd.Context())
			if res.Err != nil {
				return fmt.Errorf("failed to list subtitles: %w", res.Err)
			}
			for i := range res.Value.List {
				sub := &res.Value.List[i]
				marker := " "
				if sub == res.Value.Default {
					marker = "*"
				}
				language := "-"
				if sub.Language != nil {
					language = *sub.Language
				}
				fmt.Fprintf(c.out, "%s %s\t%s\t%s\t%s\n", marker, sub.Name, language, sub.Source, sub.URL(subFormat))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(putio.SubtitleSRT), "Subtitle format: srt or webvtt")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()
			res := <-client.AccountInfo(cmd.Context())
			if res.Err != nil {
				return fmt.Errorf("failed to get account info: %w", res.Err)
			}
			status := "active"
			if !res.Value.AccountActive {
				status = "inactive"
			}
			fmt.Fprintf(c.out, "%s <%s> (%s)\n", res.Value.Username, res.Value.Mail, status)
			return nil
		},
	}
}
